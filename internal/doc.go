// Package internal contains helpers private to tokenguard, currently the jti
// generator.
//
// # Sub-packages
//
//   - flows: pure-function orchestrators for every Engine operation
//   - metrics: lock-free counters and latency histograms
//   - rate: Redis-backed login throttling
//   - app, httpapi, platform: the tokenguard server binary
//
// # What this package must NOT do
//
//   - Export types that appear in the public tokenguard API.
//   - Be imported by any package outside the tokenguard module.
package internal
