package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/najubudeen/vanturalog/internal/domain"
	contentsvc "github.com/najubudeen/vanturalog/internal/service/content"
	sessionsvc "github.com/najubudeen/vanturalog/internal/service/session"
	"github.com/najubudeen/vanturalog/internal/transport/middleware"
	"github.com/najubudeen/vanturalog/pkg/ctxutil"
)

// syncClientBuilder creates a request-scoped sync client bound to the
// request's token source. Optimistic overlay across page loads is the
// browser's job; the server hands back the pending record on submission.
type syncClientBuilder func(tokens interface{ Token() string }) *contentsvc.SyncClient

// ContentHandler serves the post, comment and settings endpoints.
type ContentHandler struct {
	build syncClientBuilder
	log   *slog.Logger
}

// NewContentHandler creates a ContentHandler.
func NewContentHandler(build syncClientBuilder, logger *slog.Logger) *ContentHandler {
	return &ContentHandler{build: build, log: logger.With("handler", "content")}
}

func (h *ContentHandler) client(r *http.Request) *contentsvc.SyncClient {
	return h.build(managerTokens{ctx: r.Context(), mgr: middleware.ManagerFromCtx(r.Context())})
}

// managerTokens adapts the session manager to the sync client's token
// source: the stored token rides along without forcing a verify cycle.
type managerTokens struct {
	ctx context.Context
	mgr *sessionsvc.Manager
}

func (t managerTokens) Token() string { return t.mgr.StoredToken(t.ctx) }

type commentResponse struct {
	ID        int64             `json:"id"`
	Author    string            `json:"author"`
	AvatarURL string            `json:"avatarUrl,omitempty"`
	Content   string            `json:"content"`
	Published time.Time         `json:"published"`
	Replies   []commentResponse `json:"replies,omitempty"`
}

func toCommentResponses(threads []*domain.Thread) []commentResponse {
	out := make([]commentResponse, 0, len(threads))
	for _, t := range threads {
		out = append(out, commentResponse{
			ID:        t.Item.ID,
			Author:    t.Item.AuthorName,
			AvatarURL: t.Item.AuthorAvatarURL,
			Content:   t.Item.Content,
			Published: t.Item.Published,
			Replies:   toCommentResponses(t.Replies),
		})
	}
	return out
}

// Posts handles GET /api/posts?category=name.
func (h *ContentHandler) Posts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.client(r).Posts(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		writeDomainError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"posts": posts})
}

// Post handles GET /api/posts/{slug}: the post body plus its approved
// comments, threaded. Partial data still renders, with the upstream
// messages surfaced as warnings.
func (h *ContentHandler) Post(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if slug == "" {
		writeError(w, http.StatusBadRequest, "missing slug")
		return
	}

	c := h.client(r)
	post, err := c.PostBySlug(r.Context(), slug)

	var warnings []string
	if err != nil {
		var partial *domain.PartialDataError
		if !errors.As(err, &partial) {
			writeDomainError(h.log, w, r, err)
			return
		}
		warnings = partial.Messages
	}

	approved := make([]domain.ContentItem, 0, len(post.Comments))
	for _, item := range post.Comments {
		if item.Approval == domain.ApprovalApproved {
			approved = append(approved, item)
		}
	}
	snap := c.Reconcile(slug, approved)

	writeJSON(w, http.StatusOK, map[string]any{
		"post": map[string]any{
			"id":      post.ID,
			"slug":    post.Slug,
			"title":   post.Title,
			"content": post.Content,
		},
		"comments": toCommentResponses(contentsvc.BuildThread(snap.Items)),
		"pending":  snap.Pending,
		"warnings": warnings,
	})
}

type submitCommentRequest struct {
	PostID  int64  `json:"postId"`
	Slug    string `json:"slug"`
	Content string `json:"content"`
}

// SubmitComment handles POST /api/comments. Author name and email come
// from the resolved identity, never from the request body.
func (h *ContentHandler) SubmitComment(w http.ResponseWriter, r *http.Request) {
	id, ok := ctxutil.IdentityFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "login required to comment")
		return
	}

	var req submitCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	pending, err := h.client(r).SubmitComment(r.Context(), contentsvc.CommentInput{
		PostID:  req.PostID,
		FeedKey: req.Slug,
		Author:  id.DisplayName,
		Email:   id.Email,
		Content: req.Content,
	})
	if err != nil {
		writeDomainError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"pending": pending,
		"message": "comment submitted, it will appear after approval",
	})
}

// Authors handles GET /api/authors?ids=1,2,3 through the batching loader.
func (h *ContentHandler) Authors(w http.ResponseWriter, r *http.Request) {
	raw := strings.Split(r.URL.Query().Get("ids"), ",")
	ids := make([]int64, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid author id: "+s)
			return
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		writeError(w, http.StatusBadRequest, "missing ids")
		return
	}

	loader := contentsvc.NewAuthorLoader(h.client(r))
	authors, err := loader.LoadMany(r.Context(), ids)
	if err != nil {
		writeDomainError(h.log, w, r, err)
		return
	}

	out := make([]*domain.Author, 0, len(authors))
	for _, a := range authors {
		if a != nil {
			out = append(out, a)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"authors": out})
}

// LogoSettings handles GET /api/settings/logo.
func (h *ContentHandler) LogoSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.client(r).LogoSettings(r.Context())
	if err != nil {
		writeDomainError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

type updateLogoRequest struct {
	Width        int  `json:"width"`
	Height       int  `json:"height"`
	DisplayTitle bool `json:"displayTitle"`
}

// UpdateLogoSettings handles POST /api/settings/logo. Administrators only.
func (h *ContentHandler) UpdateLogoSettings(w http.ResponseWriter, r *http.Request) {
	id, ok := ctxutil.IdentityFromCtx(r.Context())
	if !ok || !id.IsAdmin() {
		writeError(w, http.StatusForbidden, "administrator role required")
		return
	}

	var req updateLogoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.client(r).UpdateLogoSettings(r.Context(), req.Width, req.Height, req.DisplayTitle); err != nil {
		writeDomainError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

type updateProfileRequest struct {
	DisplayName string `json:"displayName"`
	MediaID     int64  `json:"mediaId"`
}

// UpdateProfile handles POST /api/profile for the logged-in account.
func (h *ContentHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := ctxutil.IdentityFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "login required")
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.client(r).UpdateProfile(r.Context(), id.SubjectID, req.DisplayName, req.MediaID); err != nil {
		writeDomainError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
