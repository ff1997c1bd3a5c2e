package content

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/najubudeen/vanturalog/internal/domain"
)

// PendingItem is one optimistic submission awaiting confirmation from a
// later snapshot.
type PendingItem struct {
	ID          uuid.UUID
	Content     string
	SubmittedAt time.Time
}

// Snapshot is a reconciled feed view: the approved items from the latest
// fetch plus the submitter's own still-pending records, which the caller
// overlays so the author sees their comment before moderation.
type Snapshot struct {
	Items   []domain.ContentItem
	Pending []PendingItem
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// normalize strips markup and surrounding whitespace so an optimistic
// record can be matched against the server's rendered version of it.
func normalize(s string) string {
	return strings.TrimSpace(tagPattern.ReplaceAllString(s, ""))
}

// contentMatches reports whether a fetched item confirms a pending record.
// The server may wrap the submission in markup or trim it, so equality and
// containment in either direction all count.
func contentMatches(item, pending string) bool {
	if item == "" || pending == "" {
		return false
	}
	return item == pending ||
		strings.Contains(item, pending) ||
		strings.Contains(pending, item)
}

// registerPending records an optimistic submission for a feed.
func (c *SyncClient) registerPending(key, content string) PendingItem {
	p := &PendingItem{
		ID:          uuid.New(),
		Content:     content,
		SubmittedAt: c.now(),
	}

	c.mu.Lock()
	s := c.state(key)
	s.pending = append(s.pending, p)
	c.mu.Unlock()

	return *p
}

// dropPending removes an optimistic record, used to roll back a submission
// the upstream refused.
func (c *SyncClient) dropPending(key string, id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.state(key)
	kept := s.pending[:0]
	for _, p := range s.pending {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	s.pending = kept
}

// Reconcile folds a freshly fetched item list into the feed state and
// returns the resulting snapshot.
//
// Pending records whose content now appears in the fetched list are
// resolved and removed. Records older than the optimistic TTL expire,
// which means "unresolved", not "failed": the submission may still be
// sitting in a moderation queue. Reconciling the same list twice yields
// the same snapshot.
func (c *SyncClient) Reconcile(key string, items []domain.ContentItem) Snapshot {
	fetched := make([]string, len(items))
	for i, item := range items {
		fetched[i] = normalize(item.Content)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.state(key)
	cutoff := c.now().Add(-c.optimisticTTL)

	kept := s.pending[:0]
	for _, p := range s.pending {
		want := normalize(p.Content)

		matched := false
		for _, have := range fetched {
			if contentMatches(have, want) {
				matched = true
				break
			}
		}
		if matched {
			c.log.Debug("optimistic record confirmed", "feed", key, "record", p.ID.String())
			continue
		}
		if p.SubmittedAt.Before(cutoff) {
			c.log.Debug("optimistic record expired unresolved", "feed", key, "record", p.ID.String())
			continue
		}
		kept = append(kept, p)
	}
	s.pending = kept

	s.items = items
	for _, item := range items {
		if item.Revision > s.revision {
			s.revision = item.Revision
		}
	}

	return snapshotLocked(s)
}

// SnapshotFor returns the current snapshot for a feed without fetching.
func (c *SyncClient) SnapshotFor(key string) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return snapshotLocked(c.state(key))
}

func snapshotLocked(s *syncState) Snapshot {
	snap := Snapshot{
		Items:   make([]domain.ContentItem, len(s.items)),
		Pending: make([]PendingItem, len(s.pending)),
	}
	copy(snap.Items, s.items)
	for i, p := range s.pending {
		snap.Pending[i] = *p
	}
	return snap
}
