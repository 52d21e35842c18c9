package flows

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// LoginMetrics carries metric IDs needed by the login flow.
type LoginMetrics struct {
	LoginSuccess     int
	LoginFailure     int
	LoginRateLimited int
}

// LoginErrors carries host-level sentinel errors used by the login flow.
type LoginErrors struct {
	InvalidCredentials error
	LoginRateLimited   error
	Unavailable        error
	PrincipalNotFound  error
	// RateLimited is the limiter's own "budget exhausted" error.
	RateLimited error
}

// LoginDeps captures login dependencies. The rate functions may be nil when
// throttling is disabled.
type LoginDeps struct {
	RejectInactive bool

	ClientIPFromContext func(context.Context) string

	CheckLoginRate     func(ctx context.Context, identifier, ip string) error
	IncrementLoginRate func(ctx context.Context, identifier, ip string) error
	ResetLoginRate     func(ctx context.Context, identifier, ip string) error

	// Warn reports best-effort failures that do not change the outcome.
	Warn func(ctx context.Context, msg string, err error)

	FindByEmail    func(ctx context.Context, email string) (PrincipalRecord, error)
	VerifyPassword func(secret, digest string) bool
	IssuePair      func(subject string) (TokenPair, error)

	Metrics LoginMetrics
	Inc     func(int)
	Errors  LoginErrors
}

// LoginResult is the flow-local login response shape.
type LoginResult struct {
	Principal PrincipalRecord
	Tokens    TokenPair
}

// RunLogin verifies email/password credentials and mints a token pair.
// No token is issued on any failure path.
func RunLogin(ctx context.Context, email, password string, deps LoginDeps) (LoginResult, error) {
	email = NormalizeEmail(email)
	ip := ""
	if deps.ClientIPFromContext != nil {
		ip = deps.ClientIPFromContext(ctx)
	}

	if deps.CheckLoginRate != nil {
		if err := deps.CheckLoginRate(ctx, email, ip); err != nil {
			if errors.Is(err, deps.Errors.RateLimited) {
				deps.Inc(deps.Metrics.LoginRateLimited)
				return LoginResult{}, deps.Errors.LoginRateLimited
			}
			return LoginResult{}, wrapUnavailable(deps.Errors.Unavailable, err)
		}
	}

	if email == "" || password == "" {
		return LoginResult{}, loginFailure(ctx, email, ip, deps)
	}

	principal, err := deps.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, deps.Errors.PrincipalNotFound) {
			return LoginResult{}, loginFailure(ctx, email, ip, deps)
		}
		return LoginResult{}, wrapUnavailable(deps.Errors.Unavailable, err)
	}

	if !deps.VerifyPassword(password, principal.PasswordHash) {
		return LoginResult{}, loginFailure(ctx, email, ip, deps)
	}
	if deps.RejectInactive && !principal.Active {
		return LoginResult{}, loginFailure(ctx, email, ip, deps)
	}

	if deps.ResetLoginRate != nil {
		if err := deps.ResetLoginRate(ctx, email, ip); err != nil && deps.Warn != nil {
			deps.Warn(ctx, "login throttle reset failed", err)
		}
	}

	pair, err := deps.IssuePair(principal.ID)
	if err != nil {
		return LoginResult{}, err
	}

	deps.Inc(deps.Metrics.LoginSuccess)
	return LoginResult{Principal: principal, Tokens: pair}, nil
}

func loginFailure(ctx context.Context, email, ip string, deps LoginDeps) error {
	deps.Inc(deps.Metrics.LoginFailure)
	if deps.IncrementLoginRate != nil {
		if err := deps.IncrementLoginRate(ctx, email, ip); err != nil {
			if errors.Is(err, deps.Errors.RateLimited) {
				deps.Inc(deps.Metrics.LoginRateLimited)
				return deps.Errors.LoginRateLimited
			}
			return wrapUnavailable(deps.Errors.Unavailable, err)
		}
	}
	return deps.Errors.InvalidCredentials
}

// NormalizeEmail trims and lower-cases an email so lookups and uniqueness
// checks agree.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func wrapUnavailable(sentinel, err error) error {
	if sentinel == nil || errors.Is(err, sentinel) {
		return err
	}
	return fmt.Errorf("%w: %v", sentinel, err)
}
