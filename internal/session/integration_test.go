package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/najubudeen/vanturalog/internal/domain"
	"github.com/najubudeen/vanturalog/internal/session"
	"github.com/najubudeen/vanturalog/internal/session/testhelper"
)

func newStore(t *testing.T, ttl time.Duration) (*session.PostgresStore, *pgxpool.Pool) {
	t.Helper()
	pool := testhelper.SetupTestDB(t)
	return session.NewPostgresStore(pool, uuid.New(), ttl), pool
}

func sampleData() *session.Data {
	return &session.Data{
		Token:       "header.payload.signature",
		DisplayName: "naju",
		Role:        "administrator",
		Email:       "naju@example.com",
		AvatarURL:   "https://example.com/avatar.png",
		SubjectID:   7,
	}
}

func TestPostgresStore_SetGetRoundTrip(t *testing.T) {
	t.Parallel()
	store, _ := newStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, sampleData()))

	got, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleData(), got)
}

func TestPostgresStore_GetMissing(t *testing.T) {
	t.Parallel()
	store, _ := newStore(t, time.Hour)

	_, err := store.Get(context.Background())
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestPostgresStore_SetReplacesExisting(t *testing.T) {
	t.Parallel()
	store, _ := newStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, sampleData()))

	updated := sampleData()
	updated.DisplayName = "renamed"
	updated.Token = "fresh.token.value"
	require.NoError(t, store.Set(ctx, updated))

	got, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.DisplayName)
	assert.Equal(t, "fresh.token.value", got.Token)
}

func TestPostgresStore_ClearRemovesRow(t *testing.T) {
	t.Parallel()
	store, _ := newStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, sampleData()))
	require.NoError(t, store.Clear(ctx))

	_, err := store.Get(ctx)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	// Clearing an already-empty session is not an error.
	require.NoError(t, store.Clear(ctx))
}

func TestPostgresStore_ExpiredRowCountsAsAbsent(t *testing.T) {
	t.Parallel()
	store, _ := newStore(t, time.Millisecond)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, sampleData()))
	time.Sleep(50 * time.Millisecond)

	_, err := store.Get(ctx)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestPostgresStore_SessionsAreIsolatedByID(t *testing.T) {
	t.Parallel()
	pool := testhelper.SetupTestDB(t)
	ctx := context.Background()

	a := session.NewPostgresStore(pool, uuid.New(), time.Hour)
	b := session.NewPostgresStore(pool, uuid.New(), time.Hour)

	require.NoError(t, a.Set(ctx, sampleData()))

	_, err := b.Get(ctx)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
