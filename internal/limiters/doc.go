// Package limiters holds the sign-in and sign-up throttle policies built on
// internal/rate.
//
//   - [SignInLimiter] counts failed sign-ins per identifier and, optionally,
//     per client IP. A successful sign-in clears both windows.
//   - [SignUpLimiter] counts sign-up attempts per client IP.
//
// Both are nil-safe: every method on a nil receiver returns nil.
package limiters
