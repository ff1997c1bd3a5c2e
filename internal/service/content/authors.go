package content

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/graph-gophers/dataloader/v7"

	"github.com/najubudeen/vanturalog/internal/contentapi"
	"github.com/najubudeen/vanturalog/internal/domain"
)

const (
	maxBatch = 100
	wait     = 2 * time.Millisecond
)

var opAuthors = contentapi.MustOperation(`
query GetAuthors($ids: [Int]) {
  users(where: {include: $ids}, first: 100) {
    nodes {
      databaseId
      name
      avatar {
        url
      }
    }
  }
}`)

// AuthorLoader batches author profile lookups so a comment thread with
// fifty commenters costs one API call, not fifty.
type AuthorLoader struct {
	loader *dataloader.Loader[int64, *domain.Author]
}

// NewAuthorLoader creates a loader bound to one sync client. Loaders cache
// within their lifetime, so create one per request.
func NewAuthorLoader(c *SyncClient) *AuthorLoader {
	return &AuthorLoader{
		loader: dataloader.NewBatchedLoader(
			newAuthorBatchFn(c),
			dataloader.WithWait[int64, *domain.Author](wait),
			dataloader.WithBatchCapacity[int64, *domain.Author](maxBatch),
		),
	}
}

// Load fetches one author, batched with concurrent Load calls.
func (l *AuthorLoader) Load(ctx context.Context, id int64) (*domain.Author, error) {
	return l.loader.Load(ctx, id)()
}

// LoadMany fetches several authors in one batch.
func (l *AuthorLoader) LoadMany(ctx context.Context, ids []int64) ([]*domain.Author, error) {
	results, errs := l.loader.LoadMany(ctx, ids)()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

func newAuthorBatchFn(c *SyncClient) dataloader.BatchFunc[int64, *domain.Author] {
	return func(ctx context.Context, keys []int64) []*dataloader.Result[*domain.Author] {
		authors, err := c.fetchAuthors(ctx, keys)
		if err != nil {
			return errorResults[*domain.Author](len(keys), err)
		}

		byID := make(map[int64]*domain.Author, len(authors))
		for i := range authors {
			byID[authors[i].ID] = &authors[i]
		}

		out := make([]*dataloader.Result[*domain.Author], len(keys))
		for i, key := range keys {
			// Unknown ids resolve to nil rather than an error: a deleted
			// account's comments still render.
			out[i] = &dataloader.Result[*domain.Author]{Data: byID[key]}
		}
		return out
	}
}

func errorResults[V any](n int, err error) []*dataloader.Result[V] {
	out := make([]*dataloader.Result[V], n)
	for i := range out {
		out[i] = &dataloader.Result[V]{Error: err}
	}
	return out
}

func (c *SyncClient) fetchAuthors(ctx context.Context, ids []int64) ([]domain.Author, error) {
	raw, err := c.Query(ctx, opAuthors, map[string]any{"ids": ids})
	if err != nil {
		return nil, err
	}

	var payload struct {
		Users struct {
			Nodes []struct {
				DatabaseID int64  `json:"databaseId"`
				Name       string `json:"name"`
				Avatar     *struct {
					URL string `json:"url"`
				} `json:"avatar"`
			} `json:"nodes"`
		} `json:"users"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("content.fetchAuthors: decode: %w", domain.ErrTransient)
	}

	authors := make([]domain.Author, 0, len(payload.Users.Nodes))
	for _, n := range payload.Users.Nodes {
		a := domain.Author{ID: n.DatabaseID, Name: n.Name}
		if n.Avatar != nil {
			a.AvatarURL = n.Avatar.URL
		}
		authors = append(authors, a)
	}
	return authors, nil
}
