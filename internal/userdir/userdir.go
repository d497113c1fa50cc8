// Package userdir is the PostgreSQL user directory behind SignIn and SignUp
// in cmd/identity-server. It reads and writes the users table created by
// internal/database/migrate.
package userdir

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"

	goIdentity "github.com/MrEthical07/goIdentity"
)

const (
	usersTable = "users"

	// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
	uniqueViolation = "23505"
)

var psq = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Store implements goIdentity.UserProvider using PostgreSQL.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// New creates a user directory over db.
func New(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// GetUserByIdentifier returns goIdentity.ErrUserNotFound when no row matches.
func (s *Store) GetUserByIdentifier(ctx context.Context, identifier string) (goIdentity.UserRecord, error) {
	query, args, err := psq.Select("id", "identifier", "display_name", "password_hash").
		From(usersTable).
		Where(sq.Eq{"identifier": identifier}).
		ToSql()
	if err != nil {
		return goIdentity.UserRecord{}, fmt.Errorf("building user select: %w", err)
	}

	var user goIdentity.UserRecord
	err = s.db.QueryRowContext(ctx, query, args...).
		Scan(&user.UserID, &user.Identifier, &user.DisplayName, &user.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return goIdentity.UserRecord{}, goIdentity.ErrUserNotFound
	}
	if err != nil {
		return goIdentity.UserRecord{}, fmt.Errorf("querying user: %w", err)
	}
	return user, nil
}

// CreateUser inserts a user with a new ULID. A taken identifier yields
// goIdentity.ErrAccountExists.
func (s *Store) CreateUser(ctx context.Context, identifier, passwordHash string) (goIdentity.UserRecord, error) {
	user := goIdentity.UserRecord{
		UserID:       ulid.Make().String(),
		Identifier:   identifier,
		PasswordHash: passwordHash,
	}

	query, args, err := psq.Insert(usersTable).
		Columns("id", "identifier", "password_hash", "created_at").
		Values(user.UserID, identifier, passwordHash, s.now().UTC()).
		ToSql()
	if err != nil {
		return goIdentity.UserRecord{}, fmt.Errorf("building user insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return goIdentity.UserRecord{}, goIdentity.ErrAccountExists
		}
		return goIdentity.UserRecord{}, fmt.Errorf("inserting user: %w", err)
	}
	return user, nil
}

var _ goIdentity.UserProvider = (*Store)(nil)
