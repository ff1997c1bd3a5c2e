package content

import (
	"context"
	"errors"
	"time"

	"github.com/najubudeen/vanturalog/internal/domain"
)

// DefaultPollInterval matches the comment feed's refresh cadence.
const DefaultPollInterval = 30 * time.Second

// PollConfig tunes one polling loop.
type PollConfig struct {
	Interval time.Duration
	// Visible gates ticks: when it reports false the tick is skipped
	// entirely, so a backgrounded feed costs nothing upstream. Nil means
	// always visible.
	Visible func() bool
}

// PollComments re-fetches one comment feed on a fixed cadence and delivers
// a reconciled snapshot after every successful fetch.
//
// Ticks are strictly serialized: the next fetch starts only after the
// previous one finished, and ticker fires that land while a fetch is
// running are dropped, never queued. A failed fetch is logged and the loop
// waits for the next tick; a credential rejection is surfaced once and
// stops the loop, since retrying cannot help. Cancelling the context stops
// the loop; a fetch already in flight runs to completion against its own
// context and its result is discarded.
func (c *SyncClient) PollComments(ctx context.Context, slug string, cfg PollConfig) <-chan Snapshot {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultPollInterval
	}

	out := make(chan Snapshot, 1)

	go func() {
		defer close(out)

		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			if cfg.Visible != nil && !cfg.Visible() {
				continue
			}

			snap, err := c.CommentFeed(ctx, slug)
			if err != nil {
				var partial *domain.PartialDataError
				switch {
				case errors.As(err, &partial):
					// Usable data arrived alongside errors; deliver it.
				case errors.Is(err, domain.ErrUnauthorized):
					c.log.Warn("poll stopped, credential rejected", "feed", slug)
					return
				default:
					if ctx.Err() == nil {
						c.log.Warn("poll fetch failed", "feed", slug, "error", err.Error())
					}
					continue
				}
			}

			// Drop ticks that accumulated while the fetch was running.
			select {
			case <-ticker.C:
			default:
			}

			select {
			case out <- snap:
			case <-ctx.Done():
				return
			default:
				// The consumer is behind; replace the stale snapshot.
				select {
				case <-out:
				default:
				}
				out <- snap
			}
		}
	}()

	return out
}
