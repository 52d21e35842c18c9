package tokenguard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/MrEthical07/tokenguard/internal/flows"
	"github.com/MrEthical07/tokenguard/internal/rate"
	"github.com/MrEthical07/tokenguard/jwt"
	"github.com/MrEthical07/tokenguard/password"
	"github.com/MrEthical07/tokenguard/permission"
	"github.com/MrEthical07/tokenguard/revocation"
	"github.com/redis/go-redis/v9"
)

// Engine issues, validates and revokes tokens and answers authorization
// questions. It is immutable after [Builder.Build] and safe for concurrent use.
type Engine struct {
	config      Config
	clock       Clock
	logger      *slog.Logger
	redis       redis.UniversalClient
	store       PrincipalStore
	codec       *jwt.Codec
	issuer      *jwt.Issuer
	revocation  *revocation.Store
	hasher      *password.Multi
	rateLimiter *rate.Limiter
	registry    *permission.Registry
	metrics     *Metrics
	flows       flows.Deps
}

// MetricsSnapshot returns a copy of the engine counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// AccessTTL returns the default access-token lifetime.
func (e *Engine) AccessTTL() time.Duration {
	if e == nil {
		return 0
	}
	return e.config.JWT.AccessTTL
}

// Validate resolves a bearer token to its live principal.
//
// Undecodable, expired, revoked and unknown-subject tokens all fail with
// [ErrInvalidCredentials]; the precise reason is logged at debug level only.
// Backend failures return [ErrUnavailable].
func (e *Engine) Validate(ctx context.Context, tokenStr string) (*AuthResult, error) {
	if e == nil || e.codec == nil {
		return nil, ErrEngineNotReady
	}
	if e.metrics.Enabled() {
		start := time.Now()
		defer func() { e.metrics.Observe(MetricValidateLatency, time.Since(start)) }()
	}

	res := flows.RunValidate(ctx, tokenStr, e.flows.Validate)
	if err := e.validateError(ctx, res); err != nil {
		return nil, err
	}

	e.metricInc(MetricValidateSuccess)
	return &AuthResult{
		Principal: principalFromRecord(res.Principal),
		TokenID:   res.Claims.ID,
		Kind:      string(res.Claims.Type),
		IssuedAt:  res.Claims.IssuedAtTime(),
		ExpiresAt: res.Claims.ExpiresAtTime(),
	}, nil
}

func (e *Engine) validateError(ctx context.Context, res flows.ValidateResult) error {
	switch res.Failure {
	case flows.ValidateFailureNone:
		return nil
	case flows.ValidateFailureUnavailable:
		e.metricInc(MetricValidateUnavailable)
		e.logger.WarnContext(ctx, "token validation backend unavailable", "error", res.Err)
		return fmt.Errorf("%w: %v", ErrUnavailable, res.Err)
	default:
		e.metricInc(MetricValidateRejected)
		e.logger.DebugContext(ctx, "token rejected", "reason", res.Failure.String())
		return ErrInvalidCredentials
	}
}

// Login verifies email/password credentials and returns a new token pair.
// A wrong password, unknown email or inactive principal all yield
// [ErrInvalidCredentials] and no token.
func (e *Engine) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	if e == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}

	res, err := flows.RunLogin(ctx, email, password, e.flows.Login)
	if err != nil {
		if errors.Is(err, ErrUnavailable) {
			e.logger.WarnContext(ctx, "login backend unavailable", "error", err)
		}
		return nil, err
	}
	return tokenPair(res.Tokens), nil
}

// Signup registers a principal under the configured default role. With
// auto-login enabled the result also carries a token pair.
func (e *Engine) Signup(ctx context.Context, req SignupRequest) (*SignupResult, error) {
	if e == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}
	if !e.config.Account.Enabled {
		return nil, ErrSignupInvalid
	}

	res, err := flows.RunSignup(ctx, flows.SignupRequest{
		Email:    req.Email,
		Password: req.Password,
	}, e.flows.Signup)
	if err != nil {
		switch {
		case errors.Is(err, ErrConfigurationFault):
			e.metricInc(MetricConfigurationFault)
			e.logger.ErrorContext(ctx, "signup default role missing", "role", e.config.Account.DefaultRole)
		case errors.Is(err, ErrUnavailable):
			e.logger.WarnContext(ctx, "signup backend unavailable", "error", err)
		}
		return nil, err
	}

	out := &SignupResult{Principal: principalFromRecord(res.Principal)}
	if res.Tokens != nil {
		out.Tokens = tokenPair(*res.Tokens)
	}
	return out, nil
}

// Refresh exchanges a refresh token for a new pair. By default access tokens
// are rejected here and the presented refresh token is revoked.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if e == nil || e.codec == nil {
		return nil, ErrEngineNotReady
	}

	res, err := flows.RunRefresh(ctx, refreshToken, e.flows.Refresh)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnavailable):
			e.logger.WarnContext(ctx, "refresh backend unavailable", "error", err)
		case res.Validation.Failure != flows.ValidateFailureNone:
			e.logger.DebugContext(ctx, "refresh rejected", "reason", res.Validation.Failure.String())
		}
		return nil, err
	}
	return tokenPair(res.Tokens), nil
}

// Logout revokes tokenStr until its natural expiry. Tokens that cannot be
// decoded or have already expired are accepted silently.
func (e *Engine) Logout(ctx context.Context, tokenStr string) error {
	if e == nil || e.revocation == nil {
		return ErrEngineNotReady
	}

	res, err := flows.RunLogout(ctx, tokenStr, e.flows.Logout)
	if err != nil {
		e.logger.WarnContext(ctx, "logout backend unavailable", "error", err)
		return err
	}
	if res.Revoked {
		e.logger.DebugContext(ctx, "token revoked", "jti", res.Claims.ID)
	}
	return nil
}

// IsRevoked reports whether tokenStr is on the denylist.
func (e *Engine) IsRevoked(ctx context.Context, tokenStr string) (bool, error) {
	if e == nil || e.revocation == nil {
		return false, ErrEngineNotReady
	}
	revoked, err := e.revocation.IsRevoked(ctx, tokenStr)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return revoked, nil
}

// IssueAccess mints an access token for subject outside the login flow,
// e.g. for service accounts. A non-positive ttl uses the configured default.
func (e *Engine) IssueAccess(subject string, ttl time.Duration) (string, error) {
	if e == nil || e.issuer == nil {
		return "", ErrEngineNotReady
	}
	return e.issuer.IssueAccess(subject, ttl)
}

// Authorize checks that principal holds every capability in required.
// Superusers always pass; otherwise a missing or dangling role yields
// [ErrNoRole] and a missing capability [ErrInsufficientPermissions].
func (e *Engine) Authorize(ctx context.Context, principal Principal, required ...string) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}

	err := flows.RunAuthorize(ctx, recordFromPrincipal(principal), permission.NewSet(required...), e.flows.Authorize)
	if err != nil && errors.Is(err, ErrUnavailable) {
		e.logger.WarnContext(ctx, "role lookup unavailable", "error", err)
	}
	return err
}

// RequireDeclared returns [ErrConfigurationFault] when any name was not
// declared through [Builder.WithCapabilities]. With no declarations every
// name is accepted.
func (e *Engine) RequireDeclared(names ...string) error {
	if e == nil || e.registry == nil {
		return ErrEngineNotReady
	}
	if missing := e.registry.Undeclared(permission.NewSet(names...)); len(missing) > 0 {
		e.metricInc(MetricConfigurationFault)
		e.logger.Error("undeclared capabilities required", "capabilities", missing)
		return fmt.Errorf("%w: undeclared capabilities %v", ErrConfigurationFault, missing)
	}
	return nil
}

// Ping checks the Redis connection backing the denylist.
func (e *Engine) Ping(ctx context.Context) error {
	if e == nil || e.redis == nil {
		return ErrEngineNotReady
	}
	ctx, cancel := context.WithTimeout(ctx, e.config.Revocation.StoreTimeout)
	defer cancel()
	if err := e.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func tokenPair(p flows.TokenPair) *TokenPair {
	return &TokenPair{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		TokenType:    "bearer",
	}
}
