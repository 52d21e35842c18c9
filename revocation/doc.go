// Package revocation implements the token denylist consulted on every
// validation.
//
// # Key layout
//
//	<prefix>:<jti>        tokens carrying a jti
//	<prefix>:<raw token>  fallback for tokens without one
//
// Each entry holds the marker "true" and expires when the token itself would
// have expired, so the denylist never outgrows the set of live tokens.
//
// # What this package must NOT do
//
//   - Delete entries explicitly; expiry is the only removal path.
//   - Retry failed store calls. Failures surface as [ErrUnavailable].
package revocation
