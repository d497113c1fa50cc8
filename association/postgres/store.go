// Package postgres provides PostgreSQL storage for login and token
// associations.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/oklog/ulid/v2"

	"github.com/MrEthical07/goIdentity/association"
)

const (
	loginsTable = "user_logins"
	tokensTable = "user_tokens"
)

// psq is the PostgreSQL statement builder with dollar placeholders.
var psq = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// tokenColumns lists columns returned by token SELECT queries.
var tokenColumns = []string{
	"id", "user_id", "provider", "name", "value", "created_at", "updated_at",
}

// Store implements association.Store using PostgreSQL. The tables are created
// by internal/database/migrate.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Config configures the PostgreSQL association store.
type Config struct {
	// Now overrides the clock used for created_at/updated_at. Defaults to
	// time.Now.
	Now func() time.Time
}

// New creates a new PostgreSQL association store.
func New(db *sql.DB, cfg Config) *Store {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Store{db: db, now: cfg.Now}
}

// UpsertLogin inserts the login row or refreshes its display name.
func (s *Store) UpsertLogin(ctx context.Context, userID, provider, providerKey, displayName string) error {
	now := s.now().UTC()
	query, args, err := psq.Insert(loginsTable).
		Columns("id", "user_id", "provider", "provider_key", "display_name", "created_at", "updated_at").
		Values(ulid.Make().String(), userID, provider, providerKey, displayName, now, now).
		Suffix("ON CONFLICT (user_id, provider, provider_key) DO UPDATE SET display_name = EXCLUDED.display_name, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("building login upsert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upserting login: %w", err)
	}
	return nil
}

// RemoveLogin deletes the login row. A missing row is not an error.
func (s *Store) RemoveLogin(ctx context.Context, userID, provider, providerKey string) error {
	query, args, err := psq.Delete(loginsTable).
		Where(sq.And{
			sq.Eq{"user_id": userID},
			sq.Eq{"provider": provider},
			sq.Eq{"provider_key": providerKey},
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building login delete: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("deleting login: %w", err)
	}
	return nil
}

// UpsertToken inserts the token row or replaces its value.
func (s *Store) UpsertToken(ctx context.Context, userID, provider, name, value string) error {
	now := s.now().UTC()
	query, args, err := psq.Insert(tokensTable).
		Columns("id", "user_id", "provider", "name", "value", "created_at", "updated_at").
		Values(ulid.Make().String(), userID, provider, name, value, now, now).
		Suffix("ON CONFLICT (user_id, provider, name) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("building token upsert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upserting token: %w", err)
	}
	return nil
}

// RemoveToken deletes the token row. A missing row is not an error.
func (s *Store) RemoveToken(ctx context.Context, userID, provider, name string) error {
	query, args, err := psq.Delete(tokensTable).
		Where(sq.And{
			sq.Eq{"user_id": userID},
			sq.Eq{"provider": provider},
			sq.Eq{"name": name},
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building token delete: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("deleting token: %w", err)
	}
	return nil
}

// ListTokens returns the user's token rows for provider ordered by name.
func (s *Store) ListTokens(ctx context.Context, userID, provider string) ([]association.Token, error) {
	query, args, err := psq.Select(tokenColumns...).
		From(tokensTable).
		Where(sq.And{
			sq.Eq{"user_id": userID},
			sq.Eq{"provider": provider},
		}).
		OrderBy("name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building token query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying tokens: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []association.Token
	for rows.Next() {
		var tok association.Token
		if err := rows.Scan(
			&tok.ID, &tok.UserID, &tok.Provider, &tok.Name, &tok.Value,
			&tok.CreatedAt, &tok.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning token: %w", err)
		}
		out = append(out, tok)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating token rows: %w", err)
	}

	return out, nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("pinging database: %w", err)
	}
	return nil
}

// Verify interface compliance.
var _ association.Store = (*Store)(nil)
