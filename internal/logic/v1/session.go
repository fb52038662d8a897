package v1

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/duynhne/forum-service/internal/core/domain"
)

// SessionTokenBytes is the entropy of a session token (64 hex chars).
const SessionTokenBytes = 32

// SessionContext is the caller's session channel, threaded explicitly
// through operations that read or establish a session.
type SessionContext interface {
	// SessionUserID returns the user bound to the current session, if any.
	SessionUserID() (int, bool)

	// SetSessionUserID binds userID to a newly issued session.
	SetSessionUserID(ctx context.Context, userID int) error
}

// SessionManager issues and resolves opaque session tokens backed by a
// SessionRepository. Only sha256(token) is stored.
type SessionManager struct {
	sessions domain.SessionRepository
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionManager creates a SessionManager whose sessions live for ttl.
func NewSessionManager(sessions domain.SessionRepository, ttl time.Duration) *SessionManager {
	return &SessionManager{sessions: sessions, ttl: ttl, now: time.Now}
}

// TTL returns the lifetime of issued sessions.
func (m *SessionManager) TTL() time.Duration { return m.ttl }

// Issue creates a session for userID and returns the plaintext token.
func (m *SessionManager) Issue(ctx context.Context, userID int) (string, *domain.Session, error) {
	raw := make([]byte, SessionTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", nil, fmt.Errorf("generate session token: %w", err)
	}
	token := hex.EncodeToString(raw)

	now := m.now()
	session := &domain.Session{
		ID:        uuid.NewString(),
		TokenHash: HashSessionToken(token),
		UserID:    userID,
		ExpiresAt: now.Add(m.ttl),
		CreatedAt: now,
	}
	if err := m.sessions.Create(ctx, session); err != nil {
		return "", nil, fmt.Errorf("persist session: %w", err)
	}

	return token, session, nil
}

// Resolve returns the live session for token.
func (m *SessionManager) Resolve(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}

	session, err := m.sessions.GetByTokenHash(ctx, HashSessionToken(token))
	if err != nil {
		return nil, fmt.Errorf("lookup session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if session.IsExpiredAt(m.now()) {
		return nil, fmt.Errorf("session expired at %v: %w", session.ExpiresAt, ErrSessionExpired)
	}

	return session, nil
}

// Revoke deletes the session for token. Unknown tokens are ignored.
func (m *SessionManager) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := m.sessions.DeleteByTokenHash(ctx, HashSessionToken(token)); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// HashSessionToken returns the hex sha256 of token, the form kept in storage.
func HashSessionToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
