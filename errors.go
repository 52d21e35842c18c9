package tokenguard

import (
	"errors"

	"github.com/MrEthical07/tokenguard/permission"
)

var (
	// ErrInvalidCredentials covers every authentication failure: bad login,
	// and unparseable, expired, revoked or unknown-subject tokens alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNoRole is returned when a non-superuser principal has no usable role.
	ErrNoRole = permission.ErrNoRole
	// ErrInsufficientPermissions is returned when the role lacks a required capability.
	ErrInsufficientPermissions = permission.ErrInsufficientPermissions
	// ErrConflictingIdentity is returned when signup reuses a registered email.
	ErrConflictingIdentity = errors.New("email already registered")
	// ErrConfigurationFault marks a violated setup invariant, such as a
	// missing default role. It is not retryable.
	ErrConfigurationFault = errors.New("configuration fault")
	// ErrUnavailable marks a transient backend failure or timeout.
	ErrUnavailable = errors.New("backend unavailable")
	// ErrLoginRateLimited is returned when the login throttle trips.
	ErrLoginRateLimited = errors.New("login rate limited")
	// ErrSignupInvalid is returned for malformed signup input.
	ErrSignupInvalid = errors.New("invalid signup request")
	// ErrEngineNotReady is returned by methods on a nil or unbuilt Engine.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrPrincipalNotFound is returned by a [PrincipalStore] when no principal matches.
	ErrPrincipalNotFound = errors.New("principal not found")
	// ErrRoleNotFound is returned by a [PrincipalStore] when no role matches.
	ErrRoleNotFound = errors.New("role not found")
)
