package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/forum-service/internal/logger"
	logicv1 "github.com/duynhne/forum-service/internal/logic/v1"
)

// CookieConfig describes the session cookie handed to clients.
type CookieConfig struct {
	Name     string
	MaxAge   int // seconds
	Secure   bool
	SameSite http.SameSite
}

// cookieSession is the per-request session channel backed by a cookie
// holding the opaque token and the SessionManager holding the record.
type cookieSession struct {
	c        *gin.Context
	sessions *logicv1.SessionManager
	cookie   CookieConfig

	token  string
	userID int
	ok     bool
}

// newCookieSession reads the request's session cookie without resolving it.
// Nothing is written to the response until a session is issued or ended.
func newCookieSession(c *gin.Context, sessions *logicv1.SessionManager, cookie CookieConfig) *cookieSession {
	s := &cookieSession{c: c, sessions: sessions, cookie: cookie}
	if token, err := c.Cookie(cookie.Name); err == nil {
		s.token = token
	}
	return s
}

// loadSession resolves the request's session cookie. A missing, unknown or
// expired token yields an empty session; a stale cookie is cleared.
func loadSession(ctx context.Context, c *gin.Context, sessions *logicv1.SessionManager, cookie CookieConfig) (*cookieSession, error) {
	s := newCookieSession(c, sessions, cookie)
	token := s.token
	s.token = ""
	if token == "" {
		return s, nil
	}

	session, err := sessions.Resolve(ctx, token)
	switch {
	case errors.Is(err, logicv1.ErrSessionNotFound), errors.Is(err, logicv1.ErrSessionExpired):
		s.clearCookie()
		return s, nil
	case err != nil:
		return nil, err
	}

	s.token, s.userID, s.ok = token, session.UserID, true
	return s, nil
}

func (s *cookieSession) SessionUserID() (int, bool) {
	return s.userID, s.ok
}

// SetSessionUserID issues a fresh session for userID, replacing any current one.
// Failing to revoke the previous session does not fail the call.
func (s *cookieSession) SetSessionUserID(ctx context.Context, userID int) error {
	token, _, err := s.sessions.Issue(ctx, userID)
	if err != nil {
		return err
	}
	if s.token != "" {
		if err := s.sessions.Revoke(ctx, s.token); err != nil {
			trace.SpanFromContext(ctx).RecordError(err)
			logger.FromContext(ctx).Warn().Err(err).Int("user_id", userID).Msg("Failed to revoke previous session")
		}
	}

	s.token, s.userID, s.ok = token, userID, true
	s.c.SetSameSite(s.cookie.SameSite)
	s.c.SetCookie(s.cookie.Name, token, s.cookie.MaxAge, "/", "", s.cookie.Secure, true)
	return nil
}

// EndSession revokes the current session and clears the cookie.
func (s *cookieSession) EndSession(ctx context.Context) error {
	if s.token != "" {
		if err := s.sessions.Revoke(ctx, s.token); err != nil {
			return err
		}
	}
	s.token, s.userID, s.ok = "", 0, false
	s.clearCookie()
	return nil
}

func (s *cookieSession) clearCookie() {
	s.c.SetSameSite(s.cookie.SameSite)
	s.c.SetCookie(s.cookie.Name, "", -1, "/", "", s.cookie.Secure, true)
}
