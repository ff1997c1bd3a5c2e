package content

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/najubudeen/vanturalog/internal/domain"
)

func item(id, parent int64, content string) domain.ContentItem {
	return domain.ContentItem{ID: id, ParentID: parent, Content: content, Approval: domain.ApprovalApproved}
}

func TestReconcile_ResolvesByContentMatch(t *testing.T) {
	t.Parallel()

	c := newClient(&contentClientMock{})
	c.registerPending("post-a", "hello there")

	// The server wrapped the submission in a paragraph tag.
	snap := c.Reconcile("post-a", []domain.ContentItem{item(1, 0, "<p>hello there</p>\n")})

	assert.Empty(t, snap.Pending)
	assert.Len(t, snap.Items, 1)
}

func TestReconcile_ContainmentMatchesBothWays(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		submitted string
		fetched   string
	}{
		{"server trimmed", "hello there friends", "hello there"},
		{"server expanded", "hello", "hello, edited by a moderator"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := newClient(&contentClientMock{})
			c.registerPending("p", tt.submitted)

			snap := c.Reconcile("p", []domain.ContentItem{item(1, 0, tt.fetched)})
			assert.Empty(t, snap.Pending)
		})
	}
}

func TestReconcile_KeepsUnmatchedPending(t *testing.T) {
	t.Parallel()

	c := newClient(&contentClientMock{})
	p := c.registerPending("post-a", "still in moderation")

	snap := c.Reconcile("post-a", []domain.ContentItem{item(1, 0, "unrelated")})

	require.Len(t, snap.Pending, 1)
	assert.Equal(t, p.ID, snap.Pending[0].ID)
}

func TestReconcile_IsIdempotent(t *testing.T) {
	t.Parallel()

	c := newClient(&contentClientMock{})
	c.registerPending("post-a", "pending one")

	items := []domain.ContentItem{item(1, 0, "first"), item(2, 0, "second")}

	first := c.Reconcile("post-a", items)
	second := c.Reconcile("post-a", items)

	assert.Equal(t, first, second)
}

func TestReconcile_ExpiresByTimeout(t *testing.T) {
	t.Parallel()

	now := time.Now()
	clock := &now

	c := newClient(&contentClientMock{},
		WithOptimisticTTL(time.Minute),
		WithClock(func() time.Time { return *clock }))

	c.registerPending("post-a", "never approved")

	snap := c.Reconcile("post-a", nil)
	require.Len(t, snap.Pending, 1)

	later := now.Add(2 * time.Minute)
	clock = &later

	snap = c.Reconcile("post-a", nil)
	assert.Empty(t, snap.Pending)
}

func TestReconcile_FeedsAreIndependent(t *testing.T) {
	t.Parallel()

	c := newClient(&contentClientMock{})
	c.registerPending("post-a", "for feed a")

	snap := c.Reconcile("post-b", []domain.ContentItem{item(1, 0, "for feed a")})
	assert.Empty(t, snap.Pending)

	assert.Len(t, c.SnapshotFor("post-a").Pending, 1)
}

func TestReconcile_EmptyPendingNeverMatches(t *testing.T) {
	t.Parallel()

	c := newClient(&contentClientMock{})
	c.registerPending("p", "<br>")

	// The pending record normalizes to empty; an empty string must not
	// match every fetched item.
	snap := c.Reconcile("p", []domain.ContentItem{item(1, 0, "real comment")})
	require.Len(t, snap.Pending, 1)
}

func TestDropPending_RollsBack(t *testing.T) {
	t.Parallel()

	c := newClient(&contentClientMock{})
	p := c.registerPending("p", "refused by upstream")
	c.registerPending("p", "kept")

	c.dropPending("p", p.ID)

	snap := c.SnapshotFor("p")
	require.Len(t, snap.Pending, 1)
	assert.Equal(t, "kept", snap.Pending[0].Content)
}
