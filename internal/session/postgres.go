package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/najubudeen/vanturalog/internal/domain"
)

// DB is the subset of pgxpool.Pool the store needs. pgxmock satisfies it.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const sessionColumns = "token, display_name, role, email, avatar_url, subject_id"

// PostgresStore persists sessions server-side, keyed by an opaque session id.
// The browser holds only the id (sealed in a cookie); the bearer token never
// leaves the database.
type PostgresStore struct {
	db  DB
	id  uuid.UUID
	ttl time.Duration
}

// NewPostgresStore binds a store to one session id.
func NewPostgresStore(db DB, id uuid.UUID, ttl time.Duration) *PostgresStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &PostgresStore{db: db, id: id, ttl: ttl}
}

// Get loads the session row. Expired rows count as absent; the cleanup job
// removes them later.
func (s *PostgresStore) Get(ctx context.Context) (*Data, error) {
	query, args, err := psql.
		Select(sessionColumns).
		From("sessions").
		Where(sq.Eq{"id": s.id}).
		Where(sq.Gt{"expires_at": time.Now().UTC()}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("session: build query: %w", err)
	}

	var d Data
	row := s.db.QueryRow(ctx, query, args...)
	if err := row.Scan(&d.Token, &d.DisplayName, &d.Role, &d.Email, &d.AvatarURL, &d.SubjectID); err != nil {
		return nil, mapError(err, s.id)
	}
	return &d, nil
}

// Set upserts the session row and refreshes its expiry.
func (s *PostgresStore) Set(ctx context.Context, d *Data) error {
	now := time.Now().UTC().Truncate(time.Microsecond)

	query, args, err := psql.
		Insert("sessions").
		Columns("id", "token", "display_name", "role", "email", "avatar_url", "subject_id", "created_at", "updated_at", "expires_at").
		Values(s.id, d.Token, d.DisplayName, d.Role, d.Email, d.AvatarURL, d.SubjectID, now, now, now.Add(s.ttl)).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			token = EXCLUDED.token,
			display_name = EXCLUDED.display_name,
			role = EXCLUDED.role,
			email = EXCLUDED.email,
			avatar_url = EXCLUDED.avatar_url,
			subject_id = EXCLUDED.subject_id,
			updated_at = EXCLUDED.updated_at,
			expires_at = EXCLUDED.expires_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("session: build upsert: %w", err)
	}

	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return mapError(err, s.id)
	}
	return nil
}

// Clear deletes the session row. Deleting an absent row is not an error.
func (s *PostgresStore) Clear(ctx context.Context) error {
	query, args, err := psql.
		Delete("sessions").
		Where(sq.Eq{"id": s.id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("session: build delete: %w", err)
	}

	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return mapError(err, s.id)
	}
	return nil
}

// mapError converts pgx/pgconn errors into domain errors.
func mapError(err error, id uuid.UUID) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("session %s: %w", id, err)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("session %s: %w", id, domain.ErrValidation)
		case "23514": // check_violation
			return fmt.Errorf("session %s: %w", id, domain.ErrValidation)
		}
	}

	return fmt.Errorf("session %s: %w", id, err)
}
