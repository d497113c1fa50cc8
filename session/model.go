package session

// Record is the in-flight representation of one authenticated session.
//
// Expiry is not stored here: the cache entry's time-to-live is authoritative.
// IssuedAt is informational (unix seconds).
type Record struct {
	UserID      string
	UserName    string
	EndType     string
	TokenSymbol string
	IssuedAt    int64
}
