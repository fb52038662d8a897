// Package v1 provides authentication business logic for API version 1.
//
// Error Handling:
// Failures are classified by the sentinel errors below. Errors that carry
// field attribution are returned as *FieldErrors, which unwraps to its
// sentinel kind. Every auth operation converts its error into a
// domain.MutationResponse in exactly one place (responseFor), so callers
// never see a raw error.
//
// Example Usage:
//
//	if user == nil {
//	    return nil, newFieldErrors(ErrUserNotFound, "User does not exist",
//	        domain.FieldError{Field: "usernameOrEmail", Message: "User does not exist"})
//	}
//
// Error Checking:
//
//	switch {
//	case errors.Is(err, ErrInvalidCredentials):
//	    // 400, field = password
//	case errors.Is(err, ErrUserNotFound):
//	    // 400, field = usernameOrEmail
//	default:
//	    // 500
//	}
package v1

import (
	"errors"
	"net/http"
	"strings"

	"github.com/duynhne/forum-service/internal/core/domain"
)

// Sentinel errors for authentication operations.
var (
	// ErrValidationFailed indicates the register input violated a constraint.
	// Code: 400
	ErrValidationFailed = errors.New("validation failed")

	// ErrUserExists indicates the username or email is already taken.
	// Code: 400
	ErrUserExists = errors.New("user already exists")

	// ErrUserNotFound indicates no user matches the login key.
	// Code: 400
	ErrUserNotFound = errors.New("user does not exist")

	// ErrInvalidCredentials indicates the password does not match.
	// Code: 400
	ErrInvalidCredentials = errors.New("wrong password")

	// ErrNotAuthenticated indicates the caller carries no usable session.
	// Code: 401
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrSessionNotFound indicates the session token does not exist.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExpired indicates the session token has expired.
	ErrSessionExpired = errors.New("session expired")
)

// FieldErrors is a classified failure with per-field attribution.
type FieldErrors struct {
	kind    error
	Message string
	Errors  []domain.FieldError
}

func newFieldErrors(kind error, message string, errs ...domain.FieldError) *FieldErrors {
	return &FieldErrors{kind: kind, Message: message, Errors: errs}
}

func (e *FieldErrors) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return e.kind.Error() + " (" + strings.Join(parts, "; ") + ")"
}

// Unwrap returns the sentinel kind.
func (e *FieldErrors) Unwrap() error { return e.kind }

// responseFor converts err into the response envelope.
// A nil err is not valid input; success responses are built by the caller.
func responseFor(err error) *domain.MutationResponse {
	var fe *FieldErrors
	if errors.As(err, &fe) {
		return &domain.MutationResponse{
			Code:    http.StatusBadRequest,
			Success: false,
			Message: fe.Message,
			Errors:  fe.Errors,
		}
	}

	if errors.Is(err, ErrNotAuthenticated) {
		return &domain.MutationResponse{
			Code:    http.StatusUnauthorized,
			Success: false,
			Message: "Not authenticated",
		}
	}

	return &domain.MutationResponse{
		Code:    http.StatusInternalServerError,
		Success: false,
		Message: "Internal server error: " + err.Error(),
	}
}
