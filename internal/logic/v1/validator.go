package v1

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/duynhne/forum-service/internal/core/domain"
)

// Register input limits.
const (
	MinUsernameLength = 3
	MinPasswordLength = 8

	// ForbiddenUsernameChars may not appear in a username. '@' is reserved
	// so login can tell an email from a username.
	ForbiddenUsernameChars = "@"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateRegisterInput checks every rule and returns one FieldError per
// violation, in rule order. It returns nil when the input is valid.
func ValidateRegisterInput(in domain.RegisterRequest) []domain.FieldError {
	var errs []domain.FieldError

	if utf8.RuneCountInString(in.Username) < MinUsernameLength {
		errs = append(errs, domain.FieldError{
			Field:   "username",
			Message: fmt.Sprintf("Username must be at least %d characters", MinUsernameLength),
		})
	}
	if strings.ContainsAny(in.Username, ForbiddenUsernameChars) {
		errs = append(errs, domain.FieldError{
			Field:   "username",
			Message: "Username cannot include " + ForbiddenUsernameChars,
		})
	}

	if err := validate.Var(in.Email, "required,email"); err != nil {
		errs = append(errs, domain.FieldError{Field: "email", Message: "Invalid email"})
	}

	if utf8.RuneCountInString(in.Password) < MinPasswordLength {
		errs = append(errs, domain.FieldError{
			Field:   "password",
			Message: fmt.Sprintf("Password must be at least %d characters", MinPasswordLength),
		})
	}

	return errs
}
