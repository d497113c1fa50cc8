package association

import (
	"context"
	"time"
)

// Login is the durable record that a user has signed in through a given
// provider and endpoint class.
type Login struct {
	ID          string
	UserID      string
	Provider    string
	ProviderKey string
	DisplayName string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Token is the durable record of the token value issued to a user for a
// provider and name.
type Token struct {
	ID        string
	UserID    string
	Provider  string
	Name      string
	Value     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store persists login and token associations. Upserts are idempotent on the
// row's unique tuple; removes succeed when the row is already gone.
// Implementations must be safe for concurrent use.
type Store interface {
	UpsertLogin(ctx context.Context, userID, provider, providerKey, displayName string) error
	RemoveLogin(ctx context.Context, userID, provider, providerKey string) error
	UpsertToken(ctx context.Context, userID, provider, name, value string) error
	RemoveToken(ctx context.Context, userID, provider, name string) error

	// ListTokens returns every token row of userID under provider, ordered by
	// Name.
	ListTokens(ctx context.Context, userID, provider string) ([]Token, error)
	Ping(ctx context.Context) error
}
