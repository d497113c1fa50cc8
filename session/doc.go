// Package session provides the cached representation of an authenticated
// session and the Redis-backed cache it lives in.
//
// # Binary encoding
//
// A [Record] is stored as a compact, versioned binary blob. The encoder is
// append-only: new versions add trailing fields and never reinterpret old ones.
//
// # Architecture boundaries
//
// This package owns the [Record] model, its codec and the [Cache] contract with
// its Redis implementation. It does not know about durable associations, key
// layouts or the exclusivity policy; those belong to the Engine.
//
// # What this package must NOT do
//
//   - Import goIdentity, keys or association (no upward imports).
//   - Interpret a miss as an error on behalf of callers: it reports
//     [ErrCacheMiss] and lets the caller decide.
package session
