// Package session persists authenticated-session state between requests.
// The resilience logic in service/session talks only to the Store
// interface, so it can be tested without cookies or a database.
package session

import "context"

// Data is the persisted session record. It mirrors the attributes the
// content API hands back at login; Token is the bearer credential and is
// stored sealed wherever the backing medium is client-visible.
type Data struct {
	Token       string
	DisplayName string
	Role        string
	Email       string
	AvatarURL   string
	SubjectID   int64
}

// Store is one session's key-value persistence, scoped to a single
// request (cookie jar) or browsing session (database row).
type Store interface {
	// Get returns the persisted session data, or domain.ErrNotFound
	// when no session exists.
	Get(ctx context.Context) (*Data, error)
	// Set persists the full record, replacing any previous state.
	Set(ctx context.Context, d *Data) error
	// Clear atomically removes all persisted session state.
	Clear(ctx context.Context) error
}
