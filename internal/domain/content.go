package domain

import "time"

// ApprovalState is the moderation state of a content item.
type ApprovalState string

const (
	ApprovalPending  ApprovalState = "pending"
	ApprovalApproved ApprovalState = "approved"
	ApprovalOther    ApprovalState = "other"
)

// ParseApprovalState normalizes the content API's moderation vocabulary
// (WPGraphQL reports APPROVE/HOLD in varying case).
func ParseApprovalState(s string) ApprovalState {
	switch s {
	case "APPROVE", "approve", "approved":
		return ApprovalApproved
	case "HOLD", "hold", "pending", "0":
		return ApprovalPending
	default:
		return ApprovalOther
	}
}

// ContentItem is one comment (or other threaded payload) as reported by
// the content API. ParentID 0 marks a root item.
type ContentItem struct {
	ID              int64
	ParentID        int64
	AuthorName      string
	AuthorAvatarURL string
	Content         string
	Published       time.Time
	Approval        ApprovalState
	Revision        int64
}

// Thread is a content item with its nested replies.
type Thread struct {
	Item    ContentItem
	Replies []*Thread
}

// Post is one published document with its comment list.
type Post struct {
	ID       int64
	Slug     string
	Title    string
	Content  string
	Comments []ContentItem
}

// Author is a content API user profile as seen next to published items.
type Author struct {
	ID        int64
	Name      string
	AvatarURL string
}

// LogoSettings is the site branding block. The scalar fields are
// last-write-wins: an update simply overwrites whatever the API holds.
type LogoSettings struct {
	SourceURL    string
	Width        int
	Height       int
	DisplayTitle bool
	SiteTitle    string
}
