package flows

import (
	"context"

	"github.com/MrEthical07/tokenguard/jwt"
)

// RefreshMetrics carries metric IDs needed by the refresh flow.
type RefreshMetrics struct {
	RefreshSuccess   int
	RefreshFailure   int
	RefreshWrongKind int
}

// RefreshErrors carries host-level sentinel errors used by the refresh flow.
type RefreshErrors struct {
	InvalidCredentials error
	Unavailable        error
}

// RefreshDeps captures refresh dependencies. Validation reuses the
// ValidateDeps of the engine so a refresh token passes exactly the checks an
// access token does.
type RefreshDeps struct {
	RequireRefreshKind bool
	Rotate             bool

	Validate   ValidateDeps
	// ClaimToken revokes the presented token unless it is already revoked,
	// reporting whether this call did it.
	ClaimToken func(ctx context.Context, claims *jwt.Claims, rawToken string) (bool, error)
	IssuePair  func(subject string) (TokenPair, error)

	Metrics RefreshMetrics
	Inc     func(int)
	Errors  RefreshErrors
}

// RefreshResult is the new token pair plus the validation outcome behind it.
type RefreshResult struct {
	Validation ValidateResult
	Tokens     TokenPair
}

// RunRefresh exchanges a presented token for a new pair. With Rotate set the
// presented token is consumed: only the caller that claims its denylist entry
// receives the pair, so concurrent replays of one token yield one pair.
func RunRefresh(ctx context.Context, tokenStr string, deps RefreshDeps) (RefreshResult, error) {
	res := RunValidate(ctx, tokenStr, deps.Validate)
	switch res.Failure {
	case ValidateFailureNone:
	case ValidateFailureUnavailable:
		deps.Inc(deps.Metrics.RefreshFailure)
		return RefreshResult{Validation: res}, wrapUnavailable(deps.Errors.Unavailable, res.Err)
	default:
		deps.Inc(deps.Metrics.RefreshFailure)
		return RefreshResult{Validation: res}, deps.Errors.InvalidCredentials
	}

	if deps.RequireRefreshKind && res.Claims.Type != jwt.KindRefresh {
		deps.Inc(deps.Metrics.RefreshWrongKind)
		return RefreshResult{Validation: res}, deps.Errors.InvalidCredentials
	}

	pair, err := deps.IssuePair(res.Principal.ID)
	if err != nil {
		deps.Inc(deps.Metrics.RefreshFailure)
		return RefreshResult{Validation: res}, err
	}

	if deps.Rotate {
		claimed, err := deps.ClaimToken(ctx, res.Claims, tokenStr)
		if err != nil {
			deps.Inc(deps.Metrics.RefreshFailure)
			return RefreshResult{Validation: res}, wrapUnavailable(deps.Errors.Unavailable, err)
		}
		if !claimed {
			deps.Inc(deps.Metrics.RefreshFailure)
			return RefreshResult{Validation: res}, deps.Errors.InvalidCredentials
		}
	}

	deps.Inc(deps.Metrics.RefreshSuccess)
	return RefreshResult{Validation: res, Tokens: pair}, nil
}
