// Package association defines the durable login and token associations that
// back every minted session, and the [Store] contract that persists them.
//
// # Row identity
//
// A [Login] is unique on (UserID, Provider, ProviderKey). A [Token] is unique
// on (UserID, Provider, Name). Upserts keyed on those tuples replace the
// mutable columns and keep the original row ID and CreatedAt.
//
// # Architecture boundaries
//
// This package owns the row model, the [Store] interface and an in-process
// [MemoryStore]. The PostgreSQL implementation lives in association/postgres.
// Key derivation and the cache are not this package's concern.
//
// # What this package must NOT do
//
//   - Import goIdentity, session or keys.
//   - Treat removal of a missing row as an error.
package association
