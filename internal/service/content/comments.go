package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/najubudeen/vanturalog/internal/contentapi"
	"github.com/najubudeen/vanturalog/internal/domain"
)

var opCreateComment = contentapi.MustOperation(`
mutation CreateComment($author: String!, $email: String!, $content: String!, $postId: Int!, $clientMutationId: String!) {
  createComment(input: {author: $author, authorEmail: $email, content: $content, commentOn: $postId, clientMutationId: $clientMutationId}) {
    success
    clientMutationId
    comment {
      databaseId
      content
      status
    }
  }
}`)

// CommentInput holds one comment submission.
type CommentInput struct {
	PostID   int64
	FeedKey  string // the post slug, identifying the feed to reconcile
	Author   string
	Email    string
	Content  string
}

// Validate validates the comment input.
func (i CommentInput) Validate() error {
	var errs []domain.FieldError

	if i.PostID == 0 {
		errs = append(errs, domain.FieldError{Field: "post_id", Message: "required"})
	}
	if strings.TrimSpace(i.Content) == "" {
		errs = append(errs, domain.FieldError{Field: "content", Message: "required"})
	}
	if !strings.Contains(i.Email, "@") {
		errs = append(errs, domain.FieldError{Field: "email", Message: "a valid email address is required"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// SubmitComment sends one comment and registers an optimistic record for
// its feed. The record is rolled back if the upstream refuses the write,
// so a failed submission never haunts later snapshots.
func (c *SyncClient) SubmitComment(ctx context.Context, input CommentInput) (PendingItem, error) {
	if err := input.Validate(); err != nil {
		return PendingItem{}, err
	}

	body := strings.TrimSpace(input.Content)
	author := input.Author
	if author == "" {
		author = "Anonymous"
	}

	pending := c.registerPending(input.FeedKey, body)

	raw, err := c.Mutate(ctx, opCreateComment, map[string]any{
		"author":           author,
		"email":            input.Email,
		"content":          body,
		"postId":           input.PostID,
		"clientMutationId": "comment-" + pending.ID.String(),
	})
	if err != nil {
		c.dropPending(input.FeedKey, pending.ID)
		return PendingItem{}, err
	}

	var payload struct {
		CreateComment struct {
			Success bool `json:"success"`
			Comment *struct {
				DatabaseID int64  `json:"databaseId"`
				Status     string `json:"status"`
			} `json:"comment"`
		} `json:"createComment"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		c.dropPending(input.FeedKey, pending.ID)
		return PendingItem{}, fmt.Errorf("content.SubmitComment: decode: %w", domain.ErrTransient)
	}
	if !payload.CreateComment.Success || payload.CreateComment.Comment == nil {
		c.dropPending(input.FeedKey, pending.ID)
		return PendingItem{}, domain.NewValidationError("comment", "the submission was not accepted")
	}

	c.log.InfoContext(ctx, "comment submitted",
		"feed", input.FeedKey,
		"status", payload.CreateComment.Comment.Status)
	return pending, nil
}

// CommentFeed fetches a post's comments, keeps only the approved ones and
// reconciles them against this feed's optimistic records. The returned
// snapshot carries the approved items plus the caller's own still-pending
// submissions for overlay.
func (c *SyncClient) CommentFeed(ctx context.Context, slug string) (Snapshot, error) {
	post, err := c.PostBySlug(ctx, slug)
	if err != nil {
		var partial *domain.PartialDataError
		if !errors.As(err, &partial) {
			return Snapshot{}, err
		}
	}

	approved := make([]domain.ContentItem, 0, len(post.Comments))
	for _, item := range post.Comments {
		if item.Approval == domain.ApprovalApproved {
			approved = append(approved, item)
		}
	}
	return c.Reconcile(slug, approved), err
}
