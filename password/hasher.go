package password

import (
	"errors"
	"strings"
)

// ErrPasswordTooShort is returned by Hash when the secret is below MinPasswordBytes.
var ErrPasswordTooShort = errors.New("password too short")

// MinPasswordBytes is the minimum secret length accepted by Hash.
const MinPasswordBytes = 8

// Hasher is the credential verifier capability: hash a secret once at signup,
// verify it at login.
type Hasher interface {
	Hash(secret string) (string, error)
	Verify(secret, digest string) bool
}

// Multi hashes with Primary and verifies digests produced by any of the
// known algorithms, dispatching on the digest prefix.
type Multi struct {
	Primary Hasher
	Bcrypt  *Bcrypt
	Argon2  *Argon2
}

// Hash delegates to the primary hasher.
func (m *Multi) Hash(secret string) (string, error) {
	if m == nil || m.Primary == nil {
		return "", errors.New("password hasher not configured")
	}
	return m.Primary.Hash(secret)
}

// Verify selects the algorithm matching digest and verifies secret against it.
func (m *Multi) Verify(secret, digest string) bool {
	if m == nil {
		return false
	}
	switch {
	case strings.HasPrefix(digest, "$"+algorithmID+"$"):
		return m.Argon2 != nil && m.Argon2.Verify(secret, digest)
	case strings.HasPrefix(digest, "$2"):
		return m.Bcrypt != nil && m.Bcrypt.Verify(secret, digest)
	default:
		return false
	}
}
