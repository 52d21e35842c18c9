// Package flows contains pure-function orchestrators for every Engine operation.
//
// Each flow function (RunLogin, RunValidate, RunRefresh, etc.) accepts a typed
// dependency struct and returns results without side-effects beyond those
// dependencies. The Engine builds the dependency structs once at Build time
// and stays a thin adapter over them.
//
// # Architecture boundaries
//
// Flow functions coordinate calls to the token codec, revocation store,
// principal store, rate limiter and metrics. They do NOT own any of these
// resources; ownership stays with the Engine.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import tokenguard (to avoid import cycles).
//   - Log. Failure detail is returned to the Engine, which decides what to log.
package flows
