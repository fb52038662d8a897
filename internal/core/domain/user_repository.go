package domain

import (
	"context"
	"errors"
	"time"
)

// Errors returned by UserRepository.Create when a storage-level unique
// constraint rejects the insert.
var (
	ErrDuplicateUsername = errors.New("duplicate username")
	ErrDuplicateEmail    = errors.New("duplicate email")
)

// User represents a user record returned from the database.
// It includes the password hash so the Logic layer can verify credentials;
// the hash is never serialized.
type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Public returns a copy of u without the password hash.
func (u *User) Public() *User {
	if u == nil {
		return nil
	}
	cp := *u
	cp.PasswordHash = ""
	return &cp
}

// UserRepository defines the data-access contract for user operations.
// Implementations live in internal/core/repository (Core layer).
// The logic layer depends on this interface only, never on SQL or pgx directly.
type UserRepository interface {
	// FindByUsernameOrEmail returns a user whose username or email matches.
	// When one record matches by email and another by username, the email
	// match is returned. Returns (nil, nil) when no user is found.
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*User, error)

	// FindByUsername returns the user with the given username, or (nil, nil).
	FindByUsername(ctx context.Context, username string) (*User, error)

	// FindByEmail returns the user with the given email, or (nil, nil).
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindByID returns the user with the given id, or (nil, nil).
	FindByID(ctx context.Context, id int) (*User, error)

	// Create inserts a new user and returns the persisted record.
	// Returns ErrDuplicateUsername or ErrDuplicateEmail when a unique
	// constraint is violated.
	Create(ctx context.Context, username, email, passwordHash string) (*User, error)
}
