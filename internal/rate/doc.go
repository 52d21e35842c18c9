// Package rate implements the Redis-backed login throttle.
//
// # Window semantics
//
// Fixed-window counters: INCR + conditional EXPIRE on first hit. Key prefixes:
//   - al:  login failures per identifier
//   - ali: login failures per client IP
//
// # What this package must NOT do
//
//   - Decide what counts as a failed attempt; callers increment explicitly.
//   - Be imported outside the tokenguard module.
package rate
