// Package middleware exposes net/http adapters that put tokenguard in front
// of protected handlers.
//
// # Guards
//
//   - [Guard] validates the bearer token and stores the [tokenguard.AuthResult]
//     in the request context.
//   - [RequireCapabilities] runs after Guard and checks the principal's role.
//
// Failures are written as plain-text responses: 401 with a Bearer challenge
// for rejected tokens, 403 for authorization denials, 503 when a backend is
// unavailable.
//
// # What this package must NOT do
//
//   - Parse or create JWTs directly (delegates to Engine).
//   - Access Redis (Engine handles I/O).
//   - Make authorization decisions beyond what Engine.Validate and
//     Engine.Authorize return.
package middleware
