package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/forum-service/internal/core/domain"
	"github.com/duynhne/forum-service/internal/logger"
	"github.com/duynhne/forum-service/middleware"
)

// SessionTerminator is a session channel that can end the current session.
type SessionTerminator interface {
	EndSession(ctx context.Context) error
}

// AuthService implements authentication business rules.
// It depends on repository interfaces (injected via constructor) and
// MUST NOT access the database or SQL directly.
type AuthService struct {
	users  domain.UserRepository
	hasher PasswordHasher
}

// NewAuthService creates a new AuthService with the given dependencies.
func NewAuthService(users domain.UserRepository, hasher PasswordHasher) *AuthService {
	return &AuthService{
		users:  users,
		hasher: hasher,
	}
}

// Register validates the input, rejects taken usernames and emails, and
// stores a new user with a hashed password.
func (s *AuthService) Register(ctx context.Context, req domain.RegisterRequest) *domain.MutationResponse {
	ctx, span := middleware.StartSpan(ctx, "auth.register", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("username", req.Username),
	))
	defer span.End()

	user, err := s.register(ctx, req)
	if err != nil {
		return s.fail(ctx, span, "register", err)
	}

	span.SetAttributes(attribute.Int("user.id", user.ID))
	span.AddEvent("user.registered")
	return s.succeed(ctx, "register", "User created successfully", user)
}

func (s *AuthService) register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
	if errs := ValidateRegisterInput(req); len(errs) > 0 {
		return nil, newFieldErrors(ErrValidationFailed, "Invalid register input", errs...)
	}

	existing, err := s.users.FindByUsernameOrEmail(ctx, req.Username, req.Email)
	if err != nil {
		return nil, fmt.Errorf("query existing user: %w", err)
	}
	if existing != nil {
		field := "username"
		if existing.Email == req.Email {
			field = "email"
		}
		return nil, userExists(field)
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, req.Username, req.Email, passwordHash)
	if err != nil {
		// Lost a race with a concurrent registration.
		switch {
		case errors.Is(err, domain.ErrDuplicateEmail):
			return nil, userExists("email")
		case errors.Is(err, domain.ErrDuplicateUsername):
			return nil, userExists("username")
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	return user, nil
}

// Login looks the user up by email (when the key contains '@') or username,
// verifies the password and, only then, binds the user to sess.
// A nil sess skips session issuance.
func (s *AuthService) Login(ctx context.Context, req domain.LoginRequest, sess SessionContext) *domain.MutationResponse {
	ctx, span := middleware.StartSpan(ctx, "auth.login", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("usernameOrEmail", req.UsernameOrEmail),
	))
	defer span.End()

	user, err := s.login(ctx, req, sess)
	if err != nil {
		span.SetAttributes(attribute.Bool("auth.success", false))
		return s.fail(ctx, span, "login", err)
	}

	span.SetAttributes(
		attribute.Int("user.id", user.ID),
		attribute.Bool("auth.success", true),
	)
	span.AddEvent("user.authenticated")
	return s.succeed(ctx, "login", "User logged in successfully", user)
}

func (s *AuthService) login(ctx context.Context, req domain.LoginRequest, sess SessionContext) (*domain.User, error) {
	var (
		user *domain.User
		err  error
	)
	if strings.Contains(req.UsernameOrEmail, "@") {
		user, err = s.users.FindByEmail(ctx, req.UsernameOrEmail)
	} else {
		user, err = s.users.FindByUsername(ctx, req.UsernameOrEmail)
	}
	if err != nil {
		return nil, fmt.Errorf("query user %q: %w", req.UsernameOrEmail, err)
	}
	if user == nil {
		return nil, newFieldErrors(ErrUserNotFound, "User does not exist",
			domain.FieldError{Field: "usernameOrEmail", Message: "User does not exist"})
	}

	valid, err := s.hasher.Verify(user.PasswordHash, req.Password)
	if err != nil {
		if !errors.Is(err, ErrMalformedDigest) {
			return nil, fmt.Errorf("verify password: %w", err)
		}
		logger.FromContext(ctx).Warn().Err(err).Int("user_id", user.ID).Msg("Stored password digest is malformed")
		valid = false
	}
	if !valid {
		return nil, newFieldErrors(ErrInvalidCredentials, "Wrong password",
			domain.FieldError{Field: "password", Message: "Wrong password"})
	}

	if sess != nil {
		if err := sess.SetSessionUserID(ctx, user.ID); err != nil {
			return nil, fmt.Errorf("issue session: %w", err)
		}
	}

	return user, nil
}

// Me returns the user bound to sess.
func (s *AuthService) Me(ctx context.Context, sess SessionContext) *domain.MutationResponse {
	ctx, span := middleware.StartSpan(ctx, "auth.me", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	user, err := s.me(ctx, sess)
	if err != nil {
		return s.fail(ctx, span, "me", err)
	}

	span.SetAttributes(attribute.Int("user.id", user.ID))
	return s.succeed(ctx, "me", "User authenticated", user)
}

func (s *AuthService) me(ctx context.Context, sess SessionContext) (*domain.User, error) {
	if sess == nil {
		return nil, ErrNotAuthenticated
	}
	userID, ok := sess.SessionUserID()
	if !ok {
		return nil, ErrNotAuthenticated
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("query user %d: %w", userID, err)
	}
	if user == nil {
		// Sessions are not invalidated when their user disappears.
		return nil, fmt.Errorf("session user %d missing: %w", userID, ErrNotAuthenticated)
	}
	return user, nil
}

// Logout ends the caller's session. Logging out without a session succeeds.
func (s *AuthService) Logout(ctx context.Context, sess SessionTerminator) *domain.MutationResponse {
	ctx, span := middleware.StartSpan(ctx, "auth.logout", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	if sess != nil {
		if err := sess.EndSession(ctx); err != nil {
			return s.fail(ctx, span, "logout", fmt.Errorf("end session: %w", err))
		}
	}

	middleware.RecordAuthOperation("logout", http.StatusOK)
	return &domain.MutationResponse{
		Code:    http.StatusOK,
		Success: true,
		Message: "User logged out successfully",
	}
}

func (s *AuthService) succeed(ctx context.Context, op, message string, user *domain.User) *domain.MutationResponse {
	logger.FromContext(ctx).Info().Str("operation", op).Int("user_id", user.ID).Msg(message)
	middleware.RecordAuthOperation(op, http.StatusOK)

	return &domain.MutationResponse{
		Code:    http.StatusOK,
		Success: true,
		Message: message,
		User:    user.Public(),
	}
}

func (s *AuthService) fail(ctx context.Context, span trace.Span, op string, err error) *domain.MutationResponse {
	resp := responseFor(err)

	log := logger.FromContext(ctx)
	if resp.Code >= http.StatusInternalServerError {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Error().Err(err).Str("operation", op).Msg("Auth operation failed")
	} else {
		span.AddEvent("auth.rejected", trace.WithAttributes(attribute.String("reason", err.Error())))
		log.Info().Err(err).Str("operation", op).Int("code", resp.Code).Msg("Auth operation rejected")
	}

	middleware.RecordAuthOperation(op, resp.Code)
	return resp
}

func userExists(field string) *FieldErrors {
	return newFieldErrors(ErrUserExists, "User already exists",
		domain.FieldError{Field: field, Message: "User already exists"})
}
