package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/najubudeen/vanturalog/internal/auth"
	"github.com/najubudeen/vanturalog/internal/contentapi"
	"github.com/najubudeen/vanturalog/internal/domain"
)

var opLogin = contentapi.MustOperation(`
mutation LoginUser($username: String!, $password: String!) {
  login(input: {username: $username, password: $password, clientMutationId: "login_mutation"}) {
    authToken
    user {
      databaseId
      name
      email
      avatarUrl
      roles {
        nodes {
          name
        }
      }
    }
  }
}`)

type loginPayload struct {
	Login struct {
		AuthToken string `json:"authToken"`
		User      struct {
			DatabaseID int64  `json:"databaseId"`
			Name       string `json:"name"`
			Email      string `json:"email"`
			AvatarURL  string `json:"avatarUrl"`
			Roles      struct {
				Nodes []struct {
					Name string `json:"name"`
				} `json:"nodes"`
			} `json:"roles"`
		} `json:"user"`
	} `json:"login"`
}

// Login exchanges credentials for a bearer token, persists the session and
// moves the lifecycle to verified.
//
// Returns domain.ErrUnauthorized for refused credentials and
// domain.ErrTransient when the upstream could not be reached; only the
// latter leaves any existing session untouched.
func (m *Manager) Login(ctx context.Context, input LoginInput) (*domain.Identity, error) {
	input.Username = strings.TrimSpace(input.Username)

	if err := input.Validate(); err != nil {
		return nil, err
	}

	resp, err := m.api.Do(ctx, opLogin, map[string]any{
		"username": input.Username,
		"password": input.Password,
	}, "")
	if err != nil {
		return nil, fmt.Errorf("session.Login: %w", err)
	}

	if len(resp.Errors) > 0 && !resp.HasData() {
		msgs := resp.ErrMessages()
		if m.classify.Classify(msgs) == auth.ClassTransient {
			return nil, fmt.Errorf("session.Login: %s: %w", strings.Join(msgs, ", "), domain.ErrTransient)
		}
		// Anything else from a login attempt is a refusal; the upstream
		// wording ("incorrect_password", unknown username) rides along.
		return nil, fmt.Errorf("session.Login: %s: %w", strings.Join(msgs, ", "), domain.ErrUnauthorized)
	}

	var payload loginPayload
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		return nil, fmt.Errorf("session.Login: decode: %w", domain.ErrTransient)
	}
	if payload.Login.AuthToken == "" {
		return nil, fmt.Errorf("session.Login: empty auth token: %w", domain.ErrUnauthorized)
	}

	role := ""
	if nodes := payload.Login.User.Roles.Nodes; len(nodes) > 0 {
		role = nodes[0].Name
	}

	id := domain.Identity{
		SubjectID:   payload.Login.User.DatabaseID,
		DisplayName: payload.Login.User.Name,
		Email:       payload.Login.User.Email,
		Role:        domain.ParseRole(role),
		AvatarURL:   payload.Login.User.AvatarURL,
		Token:       payload.Login.AuthToken,
	}
	if id.DisplayName == "" {
		id.DisplayName = input.Username
	}

	if err := m.store.Set(ctx, identityToData(id)); err != nil {
		return nil, fmt.Errorf("session.Login: persist: %w", err)
	}
	m.setState(StateVerified, id)

	if exp, ok := auth.TokenExpiry(id.Token); ok {
		m.log.InfoContext(ctx, "user logged in",
			slog.String("user", id.DisplayName),
			slog.String("role", string(id.Role)),
			slog.Time("token_expires", exp))
	} else {
		m.log.InfoContext(ctx, "user logged in",
			slog.String("user", id.DisplayName),
			slog.String("role", string(id.Role)))
	}

	redacted := id.Redacted()
	return &redacted, nil
}

// IsCredentialError reports whether a login failure should be shown as a
// credentials problem rather than an upstream outage.
func IsCredentialError(err error) bool {
	return errors.Is(err, domain.ErrUnauthorized)
}
