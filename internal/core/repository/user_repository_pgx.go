package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/duynhne/forum-service/internal/core/domain"
)

// pgxQuerier is the subset of *pgxpool.Pool used by PgxUserRepository.
// pgxmock.PgxPoolIface satisfies it in tests.
type pgxQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const userColumns = `id, username, email, password, created_at, updated_at`

// PgxUserRepository implements domain.UserRepository using pgxpool.
type PgxUserRepository struct {
	pool pgxQuerier
}

// NewUserRepository creates a new PgxUserRepository.
func NewUserRepository(pool pgxQuerier) *PgxUserRepository {
	return &PgxUserRepository{pool: pool}
}

// FindByUsernameOrEmail returns a user matching either field, preferring
// an email match. Returns (nil, nil) when no user is found.
func (r *PgxUserRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
		WHERE email = $2 OR username = $1
		ORDER BY (email = $2) DESC
		LIMIT 1`

	return r.queryOne(ctx, query, username, email)
}

// FindByUsername returns the user with the given username.
// Returns (nil, nil) when no user is found.
func (r *PgxUserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return r.queryOne(ctx, query, username)
}

// FindByEmail returns the user with the given email.
// Returns (nil, nil) when no user is found.
func (r *PgxUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.queryOne(ctx, query, email)
}

// FindByID returns the user with the given id.
// Returns (nil, nil) when no user is found.
func (r *PgxUserRepository) FindByID(ctx context.Context, id int) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.queryOne(ctx, query, id)
}

// Create inserts a new user and returns the stored row, timestamps included.
func (r *PgxUserRepository) Create(ctx context.Context, username, email, passwordHash string) (*domain.User, error) {
	query := `INSERT INTO users (username, email, password) VALUES ($1, $2, $3)
		RETURNING ` + userColumns

	var u domain.User
	err := r.pool.QueryRow(ctx, query, username, email, passwordHash).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if dup := duplicateError(err); dup != nil {
			return nil, dup
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	return &u, nil
}

func (r *PgxUserRepository) queryOne(ctx context.Context, query string, args ...any) (*domain.User, error) {
	var u domain.User
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &u, nil
}

// duplicateError maps a unique_violation on users to the matching domain error.
// The email constraint is checked first so a double collision reports email.
func duplicateError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
		return nil
	}

	switch {
	case strings.Contains(pgErr.ConstraintName, "email"):
		return fmt.Errorf("%s: %w", pgErr.ConstraintName, domain.ErrDuplicateEmail)
	case strings.Contains(pgErr.ConstraintName, "username"):
		return fmt.Errorf("%s: %w", pgErr.ConstraintName, domain.ErrDuplicateUsername)
	default:
		return nil
	}
}
