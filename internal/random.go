package internal

import (
	"crypto/rand"
	"encoding/base64"
)

// TokenIDSize is the number of random bytes behind every jti.
const TokenIDSize = 16

// NewTokenID returns a 128-bit random identifier encoded as unpadded base64url.
func NewTokenID() (string, error) {
	var id [TokenIDSize]byte
	if _, err := rand.Read(id[:]); err != nil {
		return "", err
	}
	// base64url, no padding, compact
	return base64.RawURLEncoding.EncodeToString(id[:]), nil
}
