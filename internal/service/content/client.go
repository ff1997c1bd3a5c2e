// Package content implements the data-freshness side of the house: queries
// and mutations against the content API, optimistic submissions with
// reconciliation, serialized polling and comment thread assembly.
package content

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/najubudeen/vanturalog/internal/auth"
	"github.com/najubudeen/vanturalog/internal/contentapi"
	"github.com/najubudeen/vanturalog/internal/domain"
)

// contentClient is the content API surface the sync client needs.
type contentClient interface {
	Do(ctx context.Context, op *contentapi.Operation, vars map[string]any, token string) (*contentapi.Response, error)
}

// errorClassifier buckets upstream error messages.
type errorClassifier interface {
	Classify(msgs []string) auth.Classification
}

// tokenSource supplies the current bearer token, empty when anonymous.
// The session manager satisfies this; the sync client never sees the
// identity behind the token.
type tokenSource interface {
	Token() string
}

// anonymous is the tokenSource for unauthenticated feeds.
type anonymous struct{}

func (anonymous) Token() string { return "" }

// Anonymous returns a token source that never authenticates.
func Anonymous() tokenSource { return anonymous{} }

// DefaultOptimisticTTL bounds how long an unmatched optimistic record is
// kept before it expires as unresolved.
const DefaultOptimisticTTL = 10 * time.Minute

// SyncClient keeps one logical session's view of the content API fresh.
// It is safe for concurrent use; the per-feed sync state is guarded by a
// single mutex.
type SyncClient struct {
	log      *slog.Logger
	api      contentClient
	classify errorClassifier
	tokens   tokenSource

	optimisticTTL time.Duration
	now           func() time.Time

	mu     sync.Mutex
	states map[string]*syncState
}

// syncState is the per-feed bookkeeping: the last snapshot and the
// optimistic records not yet confirmed by one.
type syncState struct {
	items    []domain.ContentItem
	revision int64
	pending  []*PendingItem
}

// Option customizes a SyncClient.
type Option func(*SyncClient)

// WithOptimisticTTL overrides the optimistic record expiry.
func WithOptimisticTTL(d time.Duration) Option {
	return func(c *SyncClient) { c.optimisticTTL = d }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *SyncClient) { c.now = now }
}

// NewSyncClient creates a sync client bound to one token source.
func NewSyncClient(logger *slog.Logger, api contentClient, classify errorClassifier, tokens tokenSource, opts ...Option) *SyncClient {
	c := &SyncClient{
		log:           logger.With("service", "content"),
		api:           api,
		classify:      classify,
		tokens:        tokens,
		optimisticTTL: DefaultOptimisticTTL,
		now:           time.Now,
		states:        make(map[string]*syncState),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// state returns the feed state for a key, creating it on first use.
// Caller must hold c.mu.
func (c *SyncClient) state(key string) *syncState {
	s, ok := c.states[key]
	if !ok {
		s = &syncState{}
		c.states[key] = s
	}
	return s
}
