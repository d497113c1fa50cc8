package association

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

type loginKey struct {
	userID, provider, providerKey string
}

type tokenKey struct {
	userID, provider, name string
}

// MemoryStore is an in-process [Store]. It is meant for tests, examples and
// single-node deployments where losing associations on restart is acceptable.
type MemoryStore struct {
	mu     sync.RWMutex
	logins map[loginKey]Login
	tokens map[tokenKey]Token
	now    func() time.Time
}

// NewMemoryStore creates an empty [MemoryStore].
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		logins: make(map[loginKey]Login),
		tokens: make(map[tokenKey]Token),
		now:    time.Now,
	}
}

// UpsertLogin implements [Store].
func (s *MemoryStore) UpsertLogin(ctx context.Context, userID, provider, providerKey, displayName string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	k := loginKey{userID, provider, providerKey}
	row, ok := s.logins[k]
	if !ok {
		row = Login{
			ID:          ulid.Make().String(),
			UserID:      userID,
			Provider:    provider,
			ProviderKey: providerKey,
			CreatedAt:   now,
		}
	}
	row.DisplayName = displayName
	row.UpdatedAt = now
	s.logins[k] = row
	return nil
}

// RemoveLogin implements [Store].
func (s *MemoryStore) RemoveLogin(ctx context.Context, userID, provider, providerKey string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.logins, loginKey{userID, provider, providerKey})
	s.mu.Unlock()
	return nil
}

// UpsertToken implements [Store].
func (s *MemoryStore) UpsertToken(ctx context.Context, userID, provider, name, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	k := tokenKey{userID, provider, name}
	row, ok := s.tokens[k]
	if !ok {
		row = Token{
			ID:        ulid.Make().String(),
			UserID:    userID,
			Provider:  provider,
			Name:      name,
			CreatedAt: now,
		}
	}
	row.Value = value
	row.UpdatedAt = now
	s.tokens[k] = row
	return nil
}

// RemoveToken implements [Store].
func (s *MemoryStore) RemoveToken(ctx context.Context, userID, provider, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.tokens, tokenKey{userID, provider, name})
	s.mu.Unlock()
	return nil
}

// ListTokens implements [Store].
func (s *MemoryStore) ListTokens(ctx context.Context, userID, provider string) ([]Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	out := make([]Token, 0, 4)
	for k, row := range s.tokens {
		if k.userID == userID && k.provider == provider {
			out = append(out, row)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Ping implements [Store]. It never fails.
func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Login returns the login row for the tuple, if any.
func (s *MemoryStore) Login(userID, provider, providerKey string) (Login, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.logins[loginKey{userID, provider, providerKey}]
	return row, ok
}

// Token returns the token row for the tuple, if any.
func (s *MemoryStore) Token(userID, provider, name string) (Token, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.tokens[tokenKey{userID, provider, name}]
	return row, ok
}

// Len reports the number of login and token rows held.
func (s *MemoryStore) Len() (logins, tokens int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.logins), len(s.tokens)
}

var _ Store = (*MemoryStore)(nil)
