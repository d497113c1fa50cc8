// Package keys derives the cache keys and durable-store provider keys that tie
// one session to its login/token association rows.
//
// Every function is pure: the same inputs always produce the same string, in
// every process. Writers and erasers compute keys independently, so any change
// to a layout here orphans entries written under the old layout.
package keys

// DeriveLoginProviderKey returns the provider key of the login association row
// for a (user, endpoint class) pair.
func DeriveLoginProviderKey(userID, endType string) string {
	return userID + "_" + endType
}

// DeriveProviderTokenName returns the name of the token association row for an
// endpoint class. suffix separates token kinds that share one provider.
func DeriveProviderTokenName(endType, suffix string) string {
	return endType + "_" + suffix
}

// DeriveCacheTokenKey returns the cache key of the primary token → session
// lookup.
func DeriveCacheTokenKey(prefix, tokenSymbol string) string {
	return prefix + ":" + tokenSymbol
}

// DeriveUserMapTokenKey returns the cache key of the secondary
// (endpoint class, user) → token lookup used when sessions are exclusive.
// prefix and endType must not contain ':'; userID may.
func DeriveUserMapTokenKey(prefix, endType, userID string) string {
	return prefix + ":" + endType + ":" + userID
}
