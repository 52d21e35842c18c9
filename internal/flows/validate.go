package flows

import (
	"context"
	"errors"

	"github.com/MrEthical07/tokenguard/jwt"
)

// ValidateFailureKind classifies validation failures for root-level mapping.
// Every kind except ValidateFailureUnavailable is reported to callers as the
// same invalid-credentials error.
type ValidateFailureKind int

const (
	ValidateFailureNone ValidateFailureKind = iota
	ValidateFailureDecode
	ValidateFailureNoSubject
	ValidateFailureRevoked
	ValidateFailureUnknownPrincipal
	ValidateFailureInactive
	ValidateFailureUnavailable
)

func (k ValidateFailureKind) String() string {
	switch k {
	case ValidateFailureNone:
		return "none"
	case ValidateFailureDecode:
		return "decode"
	case ValidateFailureNoSubject:
		return "no_subject"
	case ValidateFailureRevoked:
		return "revoked"
	case ValidateFailureUnknownPrincipal:
		return "unknown_principal"
	case ValidateFailureInactive:
		return "inactive"
	case ValidateFailureUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// ValidateResult carries either the accepted principal or a classified failure.
type ValidateResult struct {
	Failure   ValidateFailureKind
	Err       error
	Claims    *jwt.Claims
	Principal PrincipalRecord
}

// Accepted reports whether validation reached the terminal accepted state.
func (r ValidateResult) Accepted() bool { return r.Failure == ValidateFailureNone }

// ValidateDeps captures token validation dependencies.
type ValidateDeps struct {
	Decode         func(string) (*jwt.Claims, error)
	IsRevoked      func(ctx context.Context, jti, rawToken string) (bool, error)
	FindPrincipal  func(ctx context.Context, subject string) (PrincipalRecord, error)
	RejectInactive bool
	// PrincipalNotFound is the store error meaning "no such principal".
	PrincipalNotFound error
}

// RunValidate walks decode, subject, revocation and principal lookup in order
// and stops at the first failure.
func RunValidate(ctx context.Context, tokenStr string, deps ValidateDeps) ValidateResult {
	claims, err := deps.Decode(tokenStr)
	if err != nil {
		return ValidateResult{Failure: ValidateFailureDecode, Err: err}
	}
	if claims.Subject == "" {
		return ValidateResult{Failure: ValidateFailureNoSubject, Claims: claims}
	}

	revoked, err := deps.IsRevoked(ctx, claims.ID, tokenStr)
	if err != nil {
		return ValidateResult{Failure: ValidateFailureUnavailable, Err: err, Claims: claims}
	}
	if revoked {
		return ValidateResult{Failure: ValidateFailureRevoked, Claims: claims}
	}

	principal, err := deps.FindPrincipal(ctx, claims.Subject)
	if err != nil {
		if deps.PrincipalNotFound != nil && errors.Is(err, deps.PrincipalNotFound) {
			return ValidateResult{Failure: ValidateFailureUnknownPrincipal, Err: err, Claims: claims}
		}
		return ValidateResult{Failure: ValidateFailureUnavailable, Err: err, Claims: claims}
	}
	if deps.RejectInactive && !principal.Active {
		return ValidateResult{Failure: ValidateFailureInactive, Claims: claims}
	}

	return ValidateResult{Claims: claims, Principal: principal}
}
