package flows

import (
	"context"
	"time"

	"github.com/MrEthical07/tokenguard/jwt"
)

// LogoutDeps captures logout dependencies.
type LogoutDeps struct {
	Decode        func(string) (*jwt.Claims, error)
	RevokeToken   func(ctx context.Context, claims *jwt.Claims, rawToken string) error
	// AcceptedUntil is the last instant the codec accepts claims, exp plus leeway.
	AcceptedUntil func(*jwt.Claims) time.Time
	Now           func() time.Time

	LogoutMetric int
	Inc          func(int)
	Unavailable  error
}

// LogoutResult reports whether a denylist entry was written.
type LogoutResult struct {
	Revoked bool
	Claims  *jwt.Claims
}

// RunLogout revokes tokenStr. Tokens that no longer decode, or that are past
// their accepted lifetime, need no entry and are reported with Revoked=false.
func RunLogout(ctx context.Context, tokenStr string, deps LogoutDeps) (LogoutResult, error) {
	claims, err := deps.Decode(tokenStr)
	if err != nil {
		return LogoutResult{}, nil
	}
	if !deps.AcceptedUntil(claims).After(deps.Now()) {
		return LogoutResult{Claims: claims}, nil
	}

	if err := deps.RevokeToken(ctx, claims, tokenStr); err != nil {
		return LogoutResult{Claims: claims}, wrapUnavailable(deps.Unavailable, err)
	}

	deps.Inc(deps.LogoutMetric)
	return LogoutResult{Revoked: true, Claims: claims}, nil
}
