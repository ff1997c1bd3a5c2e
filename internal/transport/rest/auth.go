package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"

	sessionsvc "github.com/najubudeen/vanturalog/internal/service/session"
	"github.com/najubudeen/vanturalog/internal/transport/middleware"
)

// AuthHandler serves POST /api/auth. One endpoint, action-dispatched, so
// the rendering shell has a single place to manage its session.
type AuthHandler struct {
	log *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(logger *slog.Logger) *AuthHandler {
	return &AuthHandler{log: logger.With("handler", "auth")}
}

type authRequest struct {
	Action   string `json:"action"` // login | logout | register
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type identityResponse struct {
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Role      string `json:"role"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// ServeHTTP dispatches on the action field. Login performs the credential
// exchange against the content API and writes the cookie set in the same
// response; logout clears it unconditionally and succeeds even with the
// upstream down.
func (h *AuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req authRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	mgr := middleware.ManagerFromCtx(r.Context())

	switch req.Action {
	case "login":
		id, err := mgr.Login(r.Context(), sessionsvc.LoginInput{
			Username: req.Username,
			Password: req.Password,
		})
		if err != nil {
			writeDomainError(h.log, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"user": identityResponse{
				Name:      id.DisplayName,
				Email:     id.Email,
				Role:      string(id.Role),
				AvatarURL: id.AvatarURL,
			},
		})

	case "logout":
		if err := mgr.Logout(r.Context()); err != nil {
			writeDomainError(h.log, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})

	case "register":
		err := mgr.Register(r.Context(), sessionsvc.RegisterInput{
			Username: req.Username,
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			writeDomainError(h.log, w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"success": true})

	default:
		writeError(w, http.StatusBadRequest, "unknown action")
	}
}

// MeHandler serves GET /api/me: the resolved, redacted identity plus the
// session state, for the shell to render account chrome from.
type MeHandler struct{}

func (MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	mgr := middleware.ManagerFromCtx(r.Context())

	id, ok := mgr.CurrentIdentity()
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"state":         mgr.State().String(),
		"user": identityResponse{
			Name:      id.DisplayName,
			Email:     id.Email,
			Role:      string(id.Role),
			AvatarURL: id.AvatarURL,
		},
	})
}
