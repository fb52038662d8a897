package v1

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionManager_IssueResolveRevoke(t *testing.T) {
	repo := newMemorySessionRepo()
	mgr := NewSessionManager(repo, time.Hour)
	ctx := context.Background()

	token, session, err := mgr.Issue(ctx, 42)
	require.NoError(t, err)
	assert.Len(t, token, 2*SessionTokenBytes)
	assert.Equal(t, HashSessionToken(token), session.TokenHash)
	assert.NotEqual(t, token, session.TokenHash, "plaintext token must not be stored")
	assert.WithinDuration(t, time.Now().Add(time.Hour), session.ExpiresAt, 5*time.Second)

	got, err := mgr.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, 42, got.UserID)

	require.NoError(t, mgr.Revoke(ctx, token))
	_, err = mgr.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionManager_Resolve(t *testing.T) {
	repo := newMemorySessionRepo()
	mgr := NewSessionManager(repo, time.Hour)
	ctx := context.Background()

	t.Run("empty token", func(t *testing.T) {
		_, err := mgr.Resolve(ctx, "")
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("unknown token", func(t *testing.T) {
		_, err := mgr.Resolve(ctx, "deadbeef")
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("expired", func(t *testing.T) {
		token, _, err := mgr.Issue(ctx, 1)
		require.NoError(t, err)

		mgr.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		defer func() { mgr.now = time.Now }()

		_, err = mgr.Resolve(ctx, token)
		assert.ErrorIs(t, err, ErrSessionExpired)
	})
}

func TestSessionManager_IssueStoreFailure(t *testing.T) {
	repo := newMemorySessionRepo()
	repo.createErr = errors.New("mongo down")
	mgr := NewSessionManager(repo, time.Hour)

	token, session, err := mgr.Issue(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mongo down")
	assert.Empty(t, token)
	assert.Nil(t, session)
}

func TestHashSessionToken(t *testing.T) {
	assert.Equal(t,
		"2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824",
		HashSessionToken("hello"))
}
