package domain

import (
	"context"
	"time"
)

// Session binds the hash of an opaque session token to a user.
// The plaintext token is only ever held by the client.
type Session struct {
	ID        string
	TokenHash string
	UserID    int
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpiredAt reports whether the session is expired at t.
func (s *Session) IsExpiredAt(t time.Time) bool {
	return !t.Before(s.ExpiresAt)
}

// SessionRepository defines the data-access contract for session operations.
// Implementations live in internal/core/repository (Core layer).
type SessionRepository interface {
	// Create stores a new session.
	Create(ctx context.Context, session *Session) error

	// GetByTokenHash returns the session stored under tokenHash.
	// Returns (nil, nil) when the token does not match any session.
	GetByTokenHash(ctx context.Context, tokenHash string) (*Session, error)

	// DeleteByTokenHash removes the session stored under tokenHash.
	// Deleting an unknown session is not an error.
	DeleteByTokenHash(ctx context.Context, tokenHash string) error
}
