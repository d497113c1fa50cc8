// Package rate provides the Redis fixed-window counter used by the sign-in
// and sign-up throttles.
//
// # Window semantics
//
// INCR, then EXPIRE on the first hit of a window. The window therefore
// starts at the first counted event and is not extended by later ones.
//
// Policies (which keys, which limits) live in internal/limiters.
package rate
