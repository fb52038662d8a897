package v1

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgon2idHasher_Hash(t *testing.T) {
	hasher := NewArgon2idHasher(testArgon2Params)

	t.Run("produces self-describing digest", func(t *testing.T) {
		digest, err := hasher.Hash("password123")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(digest, "$argon2id$v=19$m=1024,t=1,p=1$"), digest)
		assert.NotContains(t, digest, "password123")
	})

	t.Run("same password produces different digests (salt)", func(t *testing.T) {
		d1, err := hasher.Hash("samepassword")
		require.NoError(t, err)
		d2, err := hasher.Hash("samepassword")
		require.NoError(t, err)
		assert.NotEqual(t, d1, d2)
	})

	t.Run("rejects empty password", func(t *testing.T) {
		_, err := hasher.Hash("")
		assert.ErrorIs(t, err, ErrEmptyPassword)
	})
}

func TestArgon2idHasher_Verify(t *testing.T) {
	hasher := NewArgon2idHasher(testArgon2Params)

	digest, err := hasher.Hash("correctpassword")
	require.NoError(t, err)

	t.Run("round trip", func(t *testing.T) {
		ok, err := hasher.Verify(digest, "correctpassword")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("other plaintext fails", func(t *testing.T) {
		for _, pw := range []string{"wrongpassword", "correctpassword ", "Correctpassword", ""} {
			ok, err := hasher.Verify(digest, pw)
			require.NoError(t, err)
			assert.False(t, ok, pw)
		}
	})

	t.Run("verifies with parameters embedded in the digest", func(t *testing.T) {
		other := NewArgon2idHasher(Argon2Params{Memory: 2048, Iterations: 2, Parallelism: 2, SaltLength: 8, KeyLength: 16})
		d, err := other.Hash("portable")
		require.NoError(t, err)

		ok, err := hasher.Verify(d, "portable")
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestArgon2idHasher_VerifyMalformed(t *testing.T) {
	hasher := NewArgon2idHasher(testArgon2Params)

	digests := map[string]string{
		"not a digest":        "not-a-valid-hash",
		"wrong algorithm":     "$argon2i$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		"bad version":         "$argon2id$vXX$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		"other version":       "$argon2id$v=16$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		"bad parameters":      "$argon2id$v=19$invalid$c2FsdA$aGFzaA",
		"threads overflow":    "$argon2id$v=19$m=65536,t=1,p=256$c2FsdA$aGFzaA",
		"memory overflow":     "$argon2id$v=19$m=4194304,t=1,p=1$c2FsdA$aGFzaA",
		"memory max uint":     "$argon2id$v=19$m=4294967295,t=1,p=1$c2FsdA$aGFzaA",
		"iterations overflow": "$argon2id$v=19$m=1024,t=1000000,p=1$c2FsdA$aGFzaA",
		"bad salt":            "$argon2id$v=19$m=65536,t=1,p=4$!!!invalid!!!$aGFzaA",
		"bad key":             "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$!!!invalid!!!",
		"empty key":           "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$",
		"bcrypt":              "$2a$10$N9qo8uLOickgx2ZMRZoMyeIvNq.Uf3hE9tQALNP1Qn9sNp5x5x5x5",
	}

	for name, d := range digests {
		t.Run(name, func(t *testing.T) {
			ok, err := hasher.Verify(d, "password")
			assert.False(t, ok)
			assert.ErrorIs(t, err, ErrMalformedDigest)
		})
	}
}
