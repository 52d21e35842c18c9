// Package permission resolves whether a principal's role grants a requested
// set of capabilities.
//
// # Matching
//
// Capabilities are plain strings compared by exact membership. There is no
// wildcard or hierarchy: "orders:write" does not imply "orders:read".
//
// # Architecture boundaries
//
// This package is a pure in-memory data structure with no I/O. Role lookup
// happens in the Engine, which hands the resolved [Grant] to [Authorize].
//
// # What this package must NOT do
//
//   - Access Redis, databases, or the network.
//   - Import tokenguard, jwt, or revocation.
package permission
