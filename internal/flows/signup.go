package flows

import (
	"context"
	"errors"
	"net/mail"
)

// SignupRequest is the flow-local signup input.
type SignupRequest struct {
	Email    string
	Password string
}

// CreatePrincipalInput is what the signup flow hands to the principal store.
type CreatePrincipalInput struct {
	Email        string
	PasswordHash string
	RoleID       string
	Active       bool
}

// SignupMetrics carries metric IDs needed by the signup flow.
type SignupMetrics struct {
	SignupSuccess   int
	SignupDuplicate int
}

// SignupErrors carries host-level sentinel errors used by the signup flow.
type SignupErrors struct {
	Invalid             error
	ConflictingIdentity error
	ConfigurationFault  error
	Unavailable         error
	PrincipalNotFound   error
	RoleNotFound        error
}

// SignupDeps captures signup dependencies.
type SignupDeps struct {
	DefaultRole string
	AutoLogin   bool

	FindByEmail     func(ctx context.Context, email string) (PrincipalRecord, error)
	FindRoleByName  func(ctx context.Context, name string) (RoleRecord, error)
	HashPassword    func(string) (string, error)
	CreatePrincipal func(ctx context.Context, in CreatePrincipalInput) (PrincipalRecord, error)
	IssuePair       func(subject string) (TokenPair, error)

	Metrics SignupMetrics
	Inc     func(int)
	Errors  SignupErrors
}

// SignupResult is the created principal plus, with auto-login, a token pair.
type SignupResult struct {
	Principal PrincipalRecord
	Tokens    *TokenPair
}

// RunSignup registers a new principal under the default role.
//
// A duplicate email is reported before the default role is resolved, so a
// misconfigured role never masks a conflict.
func RunSignup(ctx context.Context, req SignupRequest, deps SignupDeps) (SignupResult, error) {
	email := NormalizeEmail(req.Email)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || req.Password == "" {
		return SignupResult{}, deps.Errors.Invalid
	}

	if _, err := deps.FindByEmail(ctx, email); err == nil {
		deps.Inc(deps.Metrics.SignupDuplicate)
		return SignupResult{}, deps.Errors.ConflictingIdentity
	} else if !errors.Is(err, deps.Errors.PrincipalNotFound) {
		return SignupResult{}, wrapUnavailable(deps.Errors.Unavailable, err)
	}

	role, err := deps.FindRoleByName(ctx, deps.DefaultRole)
	if err != nil {
		if errors.Is(err, deps.Errors.RoleNotFound) {
			return SignupResult{}, deps.Errors.ConfigurationFault
		}
		return SignupResult{}, wrapUnavailable(deps.Errors.Unavailable, err)
	}

	hash, err := deps.HashPassword(req.Password)
	if err != nil {
		return SignupResult{}, err
	}

	principal, err := deps.CreatePrincipal(ctx, CreatePrincipalInput{
		Email:        email,
		PasswordHash: hash,
		RoleID:       role.ID,
		Active:       true,
	})
	if err != nil {
		if errors.Is(err, deps.Errors.ConflictingIdentity) {
			deps.Inc(deps.Metrics.SignupDuplicate)
			return SignupResult{}, deps.Errors.ConflictingIdentity
		}
		return SignupResult{}, wrapUnavailable(deps.Errors.Unavailable, err)
	}

	deps.Inc(deps.Metrics.SignupSuccess)
	result := SignupResult{Principal: principal}
	if !deps.AutoLogin {
		return result, nil
	}

	pair, err := deps.IssuePair(principal.ID)
	if err != nil {
		return SignupResult{}, err
	}
	result.Tokens = &pair
	return result, nil
}
