package v1

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

var (
	// ErrEmptyPassword is returned when hashing an empty password.
	ErrEmptyPassword = errors.New("password cannot be empty")

	// ErrMalformedDigest is returned by Verify when the stored digest cannot be parsed.
	ErrMalformedDigest = errors.New("malformed password digest")
)

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	// Hash returns a self-describing digest of password.
	Hash(password string) (string, error)

	// Verify reports whether password matches digest.
	// A digest that cannot be parsed yields (false, ErrMalformedDigest).
	Verify(digest, password string) (bool, error)
}

// Argon2Params are the argon2id cost parameters written into each digest.
type Argon2Params struct {
	Memory      uint32 // KiB
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultArgon2Params follow the OWASP argon2id recommendation.
var DefaultArgon2Params = Argon2Params{
	Memory:      64 * 1024,
	Iterations:  1,
	Parallelism: 4,
	SaltLength:  16,
	KeyLength:   32,
}

// Cost ceilings accepted from a stored digest. Anything above is treated as
// malformed rather than computed.
const (
	MaxDigestMemoryKB   = 1 << 20 // 1 GiB
	MaxDigestIterations = 16
)

// Argon2idHasher implements PasswordHasher with argon2id and PHC-format digests:
//
//	$argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>
type Argon2idHasher struct {
	params Argon2Params
}

// NewArgon2idHasher creates a hasher that hashes with p. Verification always
// uses the parameters embedded in the digest.
func NewArgon2idHasher(p Argon2Params) *Argon2idHasher {
	return &Argon2idHasher{params: p}
}

// Hash produces an argon2id digest of password with a fresh random salt.
func (h *Argon2idHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	salt := make([]byte, h.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, h.params.Iterations, h.params.Memory, h.params.Parallelism, h.params.KeyLength)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory,
		h.params.Iterations,
		h.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify recomputes the key with the digest's own salt and parameters and
// compares in constant time.
func (h *Argon2idHasher) Verify(digest, password string) (bool, error) {
	parts := strings.Split(digest, "$")
	if len(parts) != 6 || parts[0] != "" {
		return false, fmt.Errorf("%w: expected 6 segments", ErrMalformedDigest)
	}
	if parts[1] != "argon2id" {
		return false, fmt.Errorf("%w: unsupported algorithm %q", ErrMalformedDigest, parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return false, fmt.Errorf("%w: version: %v", ErrMalformedDigest, err)
	}
	if version != argon2.Version {
		return false, fmt.Errorf("%w: unsupported version %d", ErrMalformedDigest, version)
	}

	var memory, iterations, threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &threads); err != nil {
		return false, fmt.Errorf("%w: parameters: %v", ErrMalformedDigest, err)
	}
	if threads == 0 || threads > 255 || iterations == 0 {
		return false, fmt.Errorf("%w: parameters out of range", ErrMalformedDigest)
	}
	if memory > MaxDigestMemoryKB {
		return false, fmt.Errorf("%w: memory cost %d KiB exceeds %d", ErrMalformedDigest, memory, MaxDigestMemoryKB)
	}
	if iterations > MaxDigestIterations {
		return false, fmt.Errorf("%w: time cost %d exceeds %d", ErrMalformedDigest, iterations, MaxDigestIterations)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, fmt.Errorf("%w: salt: %v", ErrMalformedDigest, err)
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, fmt.Errorf("%w: key: %v", ErrMalformedDigest, err)
	}
	if len(want) == 0 || len(want) > 1<<10 {
		return false, fmt.Errorf("%w: key length %d", ErrMalformedDigest, len(want))
	}

	got := argon2.IDKey([]byte(password), salt, iterations, memory, uint8(threads), uint32(len(want)))

	return subtle.ConstantTimeCompare(got, want) == 1, nil
}
