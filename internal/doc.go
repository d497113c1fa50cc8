// Package internal holds helpers private to goIdentity, chiefly the default
// token symbol generator.
//
// # Sub-packages
//
//   - audit: async event dispatch (Dispatcher + Sink implementations)
//   - database/migrate: embedded schema migrations
//   - flows: Run* orchestrators behind every Engine operation
//   - limiters: sign-in and sign-up attempt throttles
//   - metrics: lock-free counters and latency histograms
//   - rate: Redis fixed-window counters used by limiters
//   - userdir: Postgres-backed user directory
//
// # What this package must NOT do
//
//   - Export types that appear in the public goIdentity API.
//   - Be imported by any package outside the goIdentity module.
package internal
