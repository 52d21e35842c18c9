// Package tokenguard provides bearer-token authentication and role-based
// authorization: short-lived access tokens, longer-lived refresh tokens,
// immediate server-side revocation through a TTL denylist, and flat
// capability checks against a principal's role.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// tokenguard is the public surface. It exposes [Engine], [Builder], [Config],
// [PrincipalStore] and value types. Leaf components live in sub-packages:
// jwt (codec and issuer), revocation (denylist), permission (capability sets)
// and password (hashers). Flow orchestration and the login throttle live
// under internal/ and are never exported.
//
// # Failure categories
//
// Every authentication failure, whether a bad signature, an expired or
// revoked token, or an unknown subject, is reported as
// [ErrInvalidCredentials]. Authorization failures ([ErrNoRole],
// [ErrInsufficientPermissions]) stay distinct. Backend trouble is reported
// as [ErrUnavailable] so callers can retry by their own policy.
//
// # What this package must NOT do
//
//   - Expose Redis clients, internal stores, or encoding details in its public API.
//   - Retry failed store calls.
//   - Import any sub-package that re-imports tokenguard (no import cycles).
package tokenguard
