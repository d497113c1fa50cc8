// Package flows contains pure-function orchestrators for every Engine operation.
//
// Each flow function (RunMint, RunErase, RunResolve, RunSignIn, etc.) accepts
// a typed dependency struct carrying the cache, the association store, the
// key layout configuration and host-level sentinel errors. The Engine builds
// these once and stays thin.
//
// # Ordering
//
// RunMint writes durable rows before cache entries and never rolls back.
// RunErase always attempts the primary cache deletion, even after earlier
// failures, and aggregates every failure into one error.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import goIdentity (to avoid import cycles).
//   - Retry failed I/O.
package flows
