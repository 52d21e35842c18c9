package tokenguard

import (
	"context"
	"time"

	"github.com/MrEthical07/tokenguard/permission"
)

// Principal is an identity record. The engine only reads it.
type Principal struct {
	ID           string
	Email        string
	PasswordHash string
	IsActive     bool
	IsSuperuser  bool
	// RoleID is nil when no role is assigned.
	RoleID *string
}

// Role is a named capability set.
type Role struct {
	ID           string
	Name         string
	Capabilities permission.Set
}

// CreatePrincipalInput is passed to [PrincipalStore.CreatePrincipal] on signup.
type CreatePrincipalInput struct {
	Email        string
	PasswordHash string
	RoleID       string
	IsActive     bool
}

// PrincipalStore is the persistence boundary for principals and roles.
//
// Lookups return [ErrPrincipalNotFound] or [ErrRoleNotFound] when nothing
// matches; CreatePrincipal returns [ErrConflictingIdentity] for a duplicate
// email. Any other error is treated as a backend failure.
type PrincipalStore interface {
	FindBySubject(ctx context.Context, subject string) (*Principal, error)
	FindByEmail(ctx context.Context, email string) (*Principal, error)
	FindRole(ctx context.Context, roleID string) (*Role, error)
	FindRoleByName(ctx context.Context, name string) (*Role, error)
	CreatePrincipal(ctx context.Context, in CreatePrincipalInput) (*Principal, error)
}

// Clock supplies the current time. Inject a fake through [Builder.WithClock]
// to drive expiry in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// TokenPair is returned by login, refresh and auto-login signup.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
}

// SignupRequest carries the credentials for a new principal.
type SignupRequest struct {
	Email    string
	Password string
}

// SignupResult is the created principal and, when auto-login is enabled, its
// first token pair.
type SignupResult struct {
	Principal Principal
	Tokens    *TokenPair
}

// AuthResult is returned by [Engine.Validate].
type AuthResult struct {
	Principal Principal
	TokenID   string
	Kind      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// MetricsSnapshot is a point-in-time copy of engine counters and histograms.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}
