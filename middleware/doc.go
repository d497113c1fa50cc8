// Package middleware exposes HTTP guards that admit requests carrying a live
// goIdentity session token.
//
// # Guards
//
//   - [Guard]: resolves the bearer token and applies a [Policy].
//   - [RequireSession]: any live session is accepted.
//   - [RequireCurrentSession]: only the session the exclusivity index
//     currently names for the user and endpoint class is accepted.
//
// Each guard reads the Authorization header, calls Engine.Resolve, and injects
// the resolved session record into the request context.
//
// # Architecture boundaries
//
// This package is the capability check performed before a handler invokes
// Engine operations. It does NOT mint or erase tokens itself.
//
// # What this package must NOT do
//
//   - Access Redis (Engine handles I/O).
//   - Make authorization decisions beyond the Policy check.
package middleware
