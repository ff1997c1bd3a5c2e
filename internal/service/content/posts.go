package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/najubudeen/vanturalog/internal/contentapi"
	"github.com/najubudeen/vanturalog/internal/domain"
)

var opSinglePost = contentapi.MustOperation(`
query GetSinglePost($slug: String!) {
  postBy(slug: $slug) {
    databaseId
    title
    content
    comments(where: {orderby: COMMENT_DATE}) {
      nodes {
        databaseId
        content
        date
        status
        parentDatabaseId
        author {
          node {
            name
            avatar {
              url
            }
          }
        }
      }
    }
  }
}`)

var opPosts = contentapi.MustOperation(`
query GetPosts($categoryName: String) {
  posts(where: {categoryName: $categoryName}, first: 100) {
    nodes {
      databaseId
      title
      slug
      excerpt
    }
  }
}`)

// The content API reports comment dates in local time without a zone.
const dateLayout = "2006-01-02T15:04:05"

type commentNode struct {
	DatabaseID       int64  `json:"databaseId"`
	Content          string `json:"content"`
	Date             string `json:"date"`
	Status           string `json:"status"`
	ParentDatabaseID int64  `json:"parentDatabaseId"`
	Author           struct {
		Node *struct {
			Name   string `json:"name"`
			Avatar *struct {
				URL string `json:"url"`
			} `json:"avatar"`
		} `json:"node"`
	} `json:"author"`
}

func (n commentNode) toItem() domain.ContentItem {
	item := domain.ContentItem{
		ID:       n.DatabaseID,
		ParentID: n.ParentDatabaseID,
		Content:  n.Content,
		Approval: domain.ParseApprovalState(n.Status),
	}
	if t, err := time.Parse(dateLayout, n.Date); err == nil {
		item.Published = t
		item.Revision = t.Unix()
	}
	if a := n.Author.Node; a != nil {
		item.AuthorName = a.Name
		if a.Avatar != nil {
			item.AuthorAvatarURL = a.Avatar.URL
		}
	}
	return item
}

// PostBySlug fetches one post with its full comment list. Partial data is
// decoded and returned along with the PartialDataError.
func (c *SyncClient) PostBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	raw, qErr := c.Query(ctx, opSinglePost, map[string]any{"slug": slug})
	var partial *domain.PartialDataError
	if qErr != nil && !errors.As(qErr, &partial) {
		return nil, qErr
	}

	var payload struct {
		PostBy *struct {
			DatabaseID int64  `json:"databaseId"`
			Title      string `json:"title"`
			Content    string `json:"content"`
			Comments   struct {
				Nodes []commentNode `json:"nodes"`
			} `json:"comments"`
		} `json:"postBy"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("content.PostBySlug: decode: %w", domain.ErrTransient)
	}
	if payload.PostBy == nil {
		return nil, fmt.Errorf("content.PostBySlug %q: %w", slug, domain.ErrNotFound)
	}

	post := &domain.Post{
		ID:      payload.PostBy.DatabaseID,
		Slug:    slug,
		Title:   payload.PostBy.Title,
		Content: payload.PostBy.Content,
	}
	for _, n := range payload.PostBy.Comments.Nodes {
		post.Comments = append(post.Comments, n.toItem())
	}
	return post, qErr
}

// Posts lists published posts, optionally filtered by category.
func (c *SyncClient) Posts(ctx context.Context, categoryName string) ([]domain.Post, error) {
	vars := map[string]any{}
	if categoryName != "" {
		vars["categoryName"] = categoryName
	}

	raw, qErr := c.Query(ctx, opPosts, vars)
	var partial *domain.PartialDataError
	if qErr != nil && !errors.As(qErr, &partial) {
		return nil, qErr
	}

	var payload struct {
		Posts struct {
			Nodes []struct {
				DatabaseID int64  `json:"databaseId"`
				Title      string `json:"title"`
				Slug       string `json:"slug"`
				Excerpt    string `json:"excerpt"`
			} `json:"nodes"`
		} `json:"posts"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("content.Posts: decode: %w", domain.ErrTransient)
	}

	posts := make([]domain.Post, 0, len(payload.Posts.Nodes))
	for _, n := range payload.Posts.Nodes {
		posts = append(posts, domain.Post{
			ID:      n.DatabaseID,
			Slug:    n.Slug,
			Title:   n.Title,
			Content: n.Excerpt,
		})
	}
	return posts, qErr
}
