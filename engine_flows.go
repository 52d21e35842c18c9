package tokenguard

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/tokenguard/internal/flows"
	"github.com/MrEthical07/tokenguard/internal/rate"
	"github.com/MrEthical07/tokenguard/password"
	"golang.org/x/crypto/bcrypt"
)

func (e *Engine) buildFlowDeps() flows.Deps {
	validate := flows.ValidateDeps{
		Decode:            e.codec.Decode,
		IsRevoked:         e.revocation.IsRevokedKey,
		FindPrincipal:     e.findBySubject,
		RejectInactive:    e.config.Security.RejectInactive,
		PrincipalNotFound: ErrPrincipalNotFound,
	}

	login := flows.LoginDeps{
		RejectInactive:      e.config.Security.RejectInactive,
		ClientIPFromContext: clientIPFromContext,
		FindByEmail:         e.findByEmail,
		VerifyPassword:      e.hasher.Verify,
		Warn:                e.warn,
		IssuePair:           e.issuePair,
		Metrics: flows.LoginMetrics{
			LoginSuccess:     int(MetricLoginSuccess),
			LoginFailure:     int(MetricLoginFailure),
			LoginRateLimited: int(MetricLoginRateLimited),
		},
		Inc: e.incInt,
		Errors: flows.LoginErrors{
			InvalidCredentials: ErrInvalidCredentials,
			LoginRateLimited:   ErrLoginRateLimited,
			Unavailable:        ErrUnavailable,
			PrincipalNotFound:  ErrPrincipalNotFound,
			RateLimited:        rate.ErrRateLimited,
		},
	}
	if e.rateLimiter != nil {
		login.CheckLoginRate = e.rateLimiter.CheckLogin
		login.IncrementLoginRate = e.rateLimiter.IncrementLogin
		login.ResetLoginRate = e.rateLimiter.ResetLogin
	}

	return flows.Deps{
		Validate: validate,
		Login:    login,
		Signup: flows.SignupDeps{
			DefaultRole:     e.config.Account.DefaultRole,
			AutoLogin:       e.config.Account.AutoLogin,
			FindByEmail:     e.findByEmail,
			FindRoleByName:  e.findRoleByName,
			HashPassword:    e.hashPassword,
			CreatePrincipal: e.createPrincipal,
			IssuePair:       e.issuePair,
			Metrics: flows.SignupMetrics{
				SignupSuccess:   int(MetricSignupSuccess),
				SignupDuplicate: int(MetricSignupDuplicate),
			},
			Inc: e.incInt,
			Errors: flows.SignupErrors{
				Invalid:             ErrSignupInvalid,
				ConflictingIdentity: ErrConflictingIdentity,
				ConfigurationFault:  ErrConfigurationFault,
				Unavailable:         ErrUnavailable,
				PrincipalNotFound:   ErrPrincipalNotFound,
				RoleNotFound:        ErrRoleNotFound,
			},
		},
		Refresh: flows.RefreshDeps{
			RequireRefreshKind: e.config.Security.RequireRefreshKind,
			Rotate:             e.config.Security.RotateRefreshTokens,
			Validate:           validate,
			ClaimToken:         e.revocation.ClaimClaims,
			IssuePair:          e.issuePair,
			Metrics: flows.RefreshMetrics{
				RefreshSuccess:   int(MetricRefreshSuccess),
				RefreshFailure:   int(MetricRefreshFailure),
				RefreshWrongKind: int(MetricRefreshWrongKind),
			},
			Inc: e.incInt,
			Errors: flows.RefreshErrors{
				InvalidCredentials: ErrInvalidCredentials,
				Unavailable:        ErrUnavailable,
			},
		},
		Logout: flows.LogoutDeps{
			Decode:        e.codec.Decode,
			RevokeToken:   e.revocation.RevokeClaims,
			AcceptedUntil: e.revocation.AcceptedUntil,
			Now:           e.clock.Now,
			LogoutMetric:  int(MetricLogout),
			Inc:           e.incInt,
			Unavailable:   ErrUnavailable,
		},
		Authorize: flows.AuthorizeDeps{
			FindRole:     e.findRole,
			RoleNotFound: ErrRoleNotFound,
			Unavailable:  ErrUnavailable,
			DeniedMetric: int(MetricAuthorizeDenied),
			Inc:          e.incInt,
		},
	}
}

func (e *Engine) incInt(id int) { e.metricInc(MetricID(id)) }

func (e *Engine) warn(ctx context.Context, msg string, err error) {
	e.logger.WarnContext(ctx, msg, "error", err)
}

func (e *Engine) issuePair(subject string) (flows.TokenPair, error) {
	access, err := e.issuer.IssueAccess(subject, 0)
	if err != nil {
		return flows.TokenPair{}, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := e.issuer.IssueRefresh(subject, 0)
	if err != nil {
		return flows.TokenPair{}, fmt.Errorf("issue refresh token: %w", err)
	}
	return flows.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (e *Engine) hashPassword(secret string) (string, error) {
	digest, err := e.hasher.Hash(secret)
	if err != nil {
		if errors.Is(err, password.ErrPasswordTooShort) || errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", fmt.Errorf("%w: %v", ErrSignupInvalid, err)
		}
		return "", err
	}
	return digest, nil
}

func (e *Engine) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, e.config.Store.Timeout)
}

func (e *Engine) findBySubject(ctx context.Context, subject string) (flows.PrincipalRecord, error) {
	ctx, cancel := e.storeContext(ctx)
	defer cancel()

	p, err := e.store.FindBySubject(ctx, subject)
	if err != nil {
		return flows.PrincipalRecord{}, err
	}
	return recordFromPrincipal(*p), nil
}

func (e *Engine) findByEmail(ctx context.Context, email string) (flows.PrincipalRecord, error) {
	ctx, cancel := e.storeContext(ctx)
	defer cancel()

	p, err := e.store.FindByEmail(ctx, email)
	if err != nil {
		return flows.PrincipalRecord{}, err
	}
	return recordFromPrincipal(*p), nil
}

func (e *Engine) findRole(ctx context.Context, roleID string) (flows.RoleRecord, error) {
	ctx, cancel := e.storeContext(ctx)
	defer cancel()

	r, err := e.store.FindRole(ctx, roleID)
	if err != nil {
		return flows.RoleRecord{}, err
	}
	return recordFromRole(*r), nil
}

func (e *Engine) findRoleByName(ctx context.Context, name string) (flows.RoleRecord, error) {
	ctx, cancel := e.storeContext(ctx)
	defer cancel()

	r, err := e.store.FindRoleByName(ctx, name)
	if err != nil {
		return flows.RoleRecord{}, err
	}
	return recordFromRole(*r), nil
}

func (e *Engine) createPrincipal(ctx context.Context, in flows.CreatePrincipalInput) (flows.PrincipalRecord, error) {
	ctx, cancel := e.storeContext(ctx)
	defer cancel()

	p, err := e.store.CreatePrincipal(ctx, CreatePrincipalInput{
		Email:        in.Email,
		PasswordHash: in.PasswordHash,
		RoleID:       in.RoleID,
		IsActive:     in.Active,
	})
	if err != nil {
		return flows.PrincipalRecord{}, err
	}
	return recordFromPrincipal(*p), nil
}

func recordFromPrincipal(p Principal) flows.PrincipalRecord {
	rec := flows.PrincipalRecord{
		ID:           p.ID,
		Email:        p.Email,
		PasswordHash: p.PasswordHash,
		Active:       p.IsActive,
		Superuser:    p.IsSuperuser,
	}
	if p.RoleID != nil {
		rec.RoleID = *p.RoleID
	}
	return rec
}

func principalFromRecord(rec flows.PrincipalRecord) Principal {
	p := Principal{
		ID:           rec.ID,
		Email:        rec.Email,
		PasswordHash: rec.PasswordHash,
		IsActive:     rec.Active,
		IsSuperuser:  rec.Superuser,
	}
	if rec.RoleID != "" {
		roleID := rec.RoleID
		p.RoleID = &roleID
	}
	return p
}

func recordFromRole(r Role) flows.RoleRecord {
	return flows.RoleRecord{
		ID:           r.ID,
		Name:         r.Name,
		Capabilities: r.Capabilities.Names(),
	}
}

