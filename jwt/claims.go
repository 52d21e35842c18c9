package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Kind distinguishes access tokens from refresh tokens. It travels in the
// "type" claim.
type Kind string

const (
	// KindAccess marks a short-lived token presented on every request.
	KindAccess Kind = "access"
	// KindRefresh marks a long-lived token exchanged for a new token pair.
	KindRefresh Kind = "refresh"
)

// Claims is the payload of every token: subject, expiry, issued-at, jti and kind.
type Claims struct {
	Type Kind `json:"type,omitempty"`
	jwt.RegisteredClaims
}

// ExpiresAtTime returns the exp claim, or the zero time when absent.
func (c *Claims) ExpiresAtTime() time.Time {
	if c == nil || c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// IssuedAtTime returns the iat claim, or the zero time when absent.
func (c *Claims) IssuedAtTime() time.Time {
	if c == nil || c.IssuedAt == nil {
		return time.Time{}
	}
	return c.IssuedAt.Time
}
