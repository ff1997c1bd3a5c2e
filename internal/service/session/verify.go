package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/najubudeen/vanturalog/internal/auth"
	"github.com/najubudeen/vanturalog/internal/contentapi"
	"github.com/najubudeen/vanturalog/internal/domain"
)

var opViewer = contentapi.MustOperation(`
query GetViewer {
  viewer {
    databaseId
    name
    nickname
    email
    avatarUrl
    roles {
      nodes {
        name
      }
    }
  }
}`)

type viewerPayload struct {
	Viewer *struct {
		DatabaseID int64  `json:"databaseId"`
		Name       string `json:"name"`
		Nickname   string `json:"nickname"`
		Email      string `json:"email"`
		AvatarURL  string `json:"avatarUrl"`
		Roles      struct {
			Nodes []struct {
				Name string `json:"name"`
			} `json:"nodes"`
		} `json:"roles"`
	} `json:"viewer"`
}

// Verify checks one token against the content API and reports the outcome
// without touching any state.
//
// The mapping is deliberately asymmetric. Rejected requires positive
// evidence: an HTTP 401/403 or an error message the classifier recognizes
// as a credential refusal. Everything ambiguous, including upstream error
// wording the classifier has never seen, is a transient failure.
func (m *Manager) Verify(ctx context.Context, token string) domain.VerificationResult {
	if token == "" {
		return domain.Rejected()
	}

	ctx, cancel := context.WithTimeout(ctx, m.verifyTimeout)
	defer cancel()

	resp, err := m.api.Do(ctx, opViewer, nil, token)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnauthorized):
			return domain.Rejected()
		case errors.Is(err, domain.ErrUnconfigured):
			return domain.Transient("content api not configured")
		default:
			return domain.Transient(err.Error())
		}
	}

	if len(resp.Errors) > 0 {
		msgs := resp.ErrMessages()
		if m.classify.Classify(msgs) == auth.ClassRejected {
			return domain.Rejected()
		}
		return domain.Transient(fmt.Sprintf("upstream errors: %v", msgs))
	}

	var payload viewerPayload
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		return domain.Transient("undecodable verification response")
	}
	if payload.Viewer == nil {
		// Data came back clean but with no viewer: the API answered and
		// does not know this token.
		return domain.Rejected()
	}

	v := payload.Viewer
	role := ""
	if len(v.Roles.Nodes) > 0 {
		role = v.Roles.Nodes[0].Name
	}
	name := v.Name
	if name == "" {
		name = v.Nickname
	}

	return domain.Verified(domain.Identity{
		SubjectID:   v.DatabaseID,
		DisplayName: name,
		Email:       v.Email,
		Role:        domain.ParseRole(role),
		AvatarURL:   v.AvatarURL,
		Token:       token,
	})
}

// Resolve loads the persisted session, verifies it once against the content
// API and settles the lifecycle state for this request.
//
// Verified refreshes the cached identity from the upstream answer.
// Transient failure keeps the persisted identity and degrades trust.
// Rejection destroys the session. No session at all resolves to
// unauthenticated without an upstream call.
func (m *Manager) Resolve(ctx context.Context) (State, error) {
	data, err := m.store.Get(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			m.setState(StateUnauthenticated, domain.Identity{})
			return StateUnauthenticated, nil
		}
		return StateUnauthenticated, fmt.Errorf("session.Resolve: load: %w", err)
	}

	cached := dataToIdentity(data)

	if exp, ok := auth.TokenExpiry(cached.Token); ok && time.Now().After(exp) {
		// Still verify: the upstream is authoritative and some setups
		// honor tokens past their embedded expiry.
		m.log.DebugContext(ctx, "cached token past embedded expiry",
			slog.Time("expired_at", exp))
	}

	result := m.Verify(ctx, cached.Token)
	switch result.Status {
	case domain.StatusVerified:
		fresh := result.Identity
		if err := m.store.Set(ctx, identityToData(fresh)); err != nil {
			m.log.WarnContext(ctx, "session refresh not persisted", slog.String("error", err.Error()))
		}
		m.setState(StateVerified, fresh)
		return StateVerified, nil

	case domain.StatusTransientFailure:
		m.log.WarnContext(ctx, "verification unavailable, trusting cached identity",
			slog.String("reason", result.Reason),
			slog.String("user", cached.DisplayName))
		m.setState(StateDegradedTrusted, cached)
		return StateDegradedTrusted, nil

	default: // StatusRejected
		m.log.InfoContext(ctx, "session rejected by content api",
			slog.String("user", cached.DisplayName))
		if err := m.store.Clear(ctx); err != nil {
			return StateUnauthenticated, fmt.Errorf("session.Resolve: clear: %w", err)
		}
		m.setState(StateUnauthenticated, domain.Identity{})
		return StateUnauthenticated, nil
	}
}
