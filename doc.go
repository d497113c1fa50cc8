// Package goIdentity manages the lifecycle of opaque session tokens.
//
// After a credential check succeeds, [Engine.Mint] generates a token, records
// it against the user's login and token association rows in a durable
// [association.Store], and caches the session record with an expiry in a
// [session.Cache]. [Engine.Erase] reverses every one of those effects.
//
// Engine methods are safe to call from multiple goroutines after
// initialization through [Builder.Build].
//
// # Exclusivity
//
// With TokenConfig.EnableMultiEnd false, the Engine maintains a
// (user, endpoint class) → token index entry that always names the most
// recent token. A newer Mint overwrites the entry but does not revoke the
// older token, which stays resolvable until its own TTL elapses.
//
// # Partial failure
//
// The store and the cache are written without a distributed transaction.
// Mint writes durable rows first and cache entries second and never rolls
// back; Erase deletes durable rows, then the index entry, and always deletes
// the primary cache entry last. Each step has its own error sentinel so an
// operator can reconcile the two stores.
//
// # What this package must NOT do
//
//   - Expose Redis clients or encoding details in its public API.
//   - Perform I/O outside of Engine methods (construction via Builder is
//     allocation-only until Build).
//   - Import any sub-package that re-imports goIdentity.
package goIdentity
