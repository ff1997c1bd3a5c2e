// Package session implements the session lifecycle: login, registration,
// logout and the resolve step that turns persisted state plus one upstream
// verification into the request's effective identity.
//
// The central rule is asymmetric failure handling: only an explicit
// credential rejection (or logout) destroys a session. A content API that
// is down, slow or babbling keeps the cached identity alive in a degraded
// state so users are not logged out by somebody else's outage.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/najubudeen/vanturalog/internal/auth"
	"github.com/najubudeen/vanturalog/internal/contentapi"
	"github.com/najubudeen/vanturalog/internal/domain"
	"github.com/najubudeen/vanturalog/internal/session"
)

// State is the session lifecycle position.
type State int

const (
	// StateUnauthenticated means no usable session exists.
	StateUnauthenticated State = iota
	// StateVerified means the content API confirmed the token during this
	// resolve cycle.
	StateVerified
	// StateDegradedTrusted means verification failed transiently and the
	// cached identity is being trusted until the upstream recovers.
	StateDegradedTrusted
)

func (s State) String() string {
	switch s {
	case StateVerified:
		return "verified"
	case StateDegradedTrusted:
		return "degraded_trusted"
	default:
		return "unauthenticated"
	}
}

// contentClient is the content API surface the manager needs.
type contentClient interface {
	Do(ctx context.Context, op *contentapi.Operation, vars map[string]any, token string) (*contentapi.Response, error)
}

// errorClassifier buckets upstream error messages.
type errorClassifier interface {
	Classify(msgs []string) auth.Classification
}

// Manager owns one session's lifecycle. It is bound to a Store, which in
// the HTTP path is itself bound to one request/response pair, so a Manager
// instance lives for one request.
type Manager struct {
	log      *slog.Logger
	api      contentClient
	classify errorClassifier
	store    session.Store

	verifyTimeout time.Duration

	mu       sync.Mutex
	state    State
	identity domain.Identity
}

// ManagerOption customizes a Manager.
type ManagerOption func(*Manager)

// WithVerifyTimeout caps how long one verification round-trip may take.
func WithVerifyTimeout(d time.Duration) ManagerOption {
	return func(m *Manager) { m.verifyTimeout = d }
}

// NewManager creates a session manager.
func NewManager(logger *slog.Logger, api contentClient, classify errorClassifier, store session.Store, opts ...ManagerOption) *Manager {
	m := &Manager{
		log:           logger.With("service", "session"),
		api:           api,
		classify:      classify,
		store:         store,
		verifyTimeout: 10 * time.Second,
		state:         StateUnauthenticated,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// CurrentIdentity returns the effective identity with the credential
// stripped. Rendering code only ever sees this view.
func (m *Manager) CurrentIdentity() (domain.Identity, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateUnauthenticated {
		return domain.Identity{}, false
	}
	return m.identity.Redacted(), true
}

// Token hands the raw credential to the request layer. Nothing above the
// transport boundary should call this.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.identity.Token
}

// StoredToken returns the session's bearer token without verifying it:
// the in-memory one when the lifecycle has settled this request, otherwise
// whatever the store holds. The proxy and the read endpoints attach it
// as-is and let the content API be the judge.
func (m *Manager) StoredToken(ctx context.Context) string {
	if tok := m.Token(); tok != "" {
		return tok
	}
	data, err := m.store.Get(ctx)
	if err != nil {
		return ""
	}
	return data.Token
}

func (m *Manager) setState(state State, id domain.Identity) {
	m.mu.Lock()
	m.state = state
	m.identity = id
	m.mu.Unlock()
}

// dataToIdentity converts persisted session data to a domain identity.
func dataToIdentity(d *session.Data) domain.Identity {
	return domain.Identity{
		SubjectID:   d.SubjectID,
		DisplayName: d.DisplayName,
		Email:       d.Email,
		Role:        domain.ParseRole(d.Role),
		AvatarURL:   d.AvatarURL,
		Token:       d.Token,
	}
}

// identityToData converts a domain identity to its persisted form.
func identityToData(id domain.Identity) *session.Data {
	return &session.Data{
		Token:       id.Token,
		DisplayName: id.DisplayName,
		Role:        string(id.Role),
		Email:       id.Email,
		AvatarURL:   id.AvatarURL,
		SubjectID:   id.SubjectID,
	}
}
