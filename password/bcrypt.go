package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is used when a zero cost is configured.
const DefaultBcryptCost = 12

// Bcrypt hashes secrets with bcrypt at a fixed cost factor.
type Bcrypt struct {
	cost int
}

// NewBcrypt validates cost and returns a Bcrypt hasher. A zero cost selects
// DefaultBcryptCost.
func NewBcrypt(cost int) (*Bcrypt, error) {
	if cost == 0 {
		cost = DefaultBcryptCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost must be within [%d, %d]", bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &Bcrypt{cost: cost}, nil
}

// Cost returns the configured cost factor.
func (b *Bcrypt) Cost() int { return b.cost }

// Hash returns the bcrypt digest of secret.
func (b *Bcrypt) Hash(secret string) (string, error) {
	if len(secret) < MinPasswordBytes {
		return "", ErrPasswordTooShort
	}
	// bcrypt only consumes the first 72 bytes.
	if len(secret) > 72 {
		return "", bcrypt.ErrPasswordTooLong
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(secret), b.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify reports whether secret matches digest. Malformed digests return false.
func (b *Bcrypt) Verify(secret, digest string) bool {
	if digest == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(secret)) == nil
}
