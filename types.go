package goIdentity

import (
	"context"
	"time"
)

// Endpoint classes used by the bundled binaries. Any non-empty string is a
// valid EndType; these are conveniences.
const (
	EndTypeWeb    = "web"
	EndTypeMobile = "mobile"
	EndTypeSignUp = "signup"
)

// MintRequest is the subject of a newly verified sign-in.
type MintRequest struct {
	UserID   string
	UserName string
	EndType  string
}

// SessionRecord is what a token resolves to while its cache entry lives.
type SessionRecord struct {
	UserID      string
	UserName    string
	EndType     string
	TokenSymbol string
	IssuedAt    time.Time
}

// SessionInfo describes one durable token association of a user. Active is
// false when the association outlived its cache entry.
type SessionInfo struct {
	EndType   string
	TokenName string
	Token     string
	Active    bool
	IssuedAt  time.Time
	UpdatedAt time.Time
}

// UserRecord is the credential view of a user consumed by SignIn.
type UserRecord struct {
	UserID       string
	Identifier   string
	DisplayName  string
	PasswordHash string
}

// UserProvider is the user directory used by SignIn and SignUp.
// GetUserByIdentifier returns ErrUserNotFound for unknown identifiers and
// CreateUser returns ErrAccountExists for taken ones.
type UserProvider interface {
	GetUserByIdentifier(ctx context.Context, identifier string) (UserRecord, error)
	CreateUser(ctx context.Context, identifier, passwordHash string) (UserRecord, error)
}

// HealthStatus is the result of Engine.Health.
type HealthStatus struct {
	CacheOK        bool
	CacheError     string
	AssociationOK  bool
	AssociationErr string
	Latency        time.Duration
}

// Healthy reports whether both backends answered.
func (h HealthStatus) Healthy() bool {
	return h.CacheOK && h.AssociationOK
}
