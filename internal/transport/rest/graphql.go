package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/najubudeen/vanturalog/internal/contentapi"
	"github.com/najubudeen/vanturalog/internal/domain"
	"github.com/najubudeen/vanturalog/internal/transport/middleware"
)

// apiClient is the content API surface the proxy needs.
type apiClient interface {
	Do(ctx context.Context, op *contentapi.Operation, vars map[string]any, token string) (*contentapi.Response, error)
}

// GraphQLHandler proxies POST /api/graphql to the content API, attaching
// the session's bearer token. The browser never holds the token itself.
type GraphQLHandler struct {
	api apiClient
	log *slog.Logger
}

// NewGraphQLHandler creates the proxy handler.
func NewGraphQLHandler(api apiClient, logger *slog.Logger) *GraphQLHandler {
	return &GraphQLHandler{api: api, log: logger.With("handler", "graphql")}
}

type proxyRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type proxyError struct {
	Message string `json:"message"`
}

type proxyResponse struct {
	Data   json.RawMessage `json:"data,omitempty"`
	Errors []proxyError    `json:"errors,omitempty"`
}

// ServeHTTP forwards one operation. GraphQL errors from the upstream ride
// back on a 200, matching GraphQL convention; only transport-level
// problems produce non-2xx statuses here.
func (h *GraphQLHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeProxyErrors(w, http.StatusBadRequest, "unreadable request body")
		return
	}

	var req proxyRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeProxyErrors(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	op, err := contentapi.NewOperation(req.Query)
	if err != nil {
		writeProxyErrors(w, http.StatusBadRequest, "invalid operation: "+err.Error())
		return
	}

	token := middleware.ManagerFromCtx(r.Context()).StoredToken(r.Context())

	resp, err := h.api.Do(r.Context(), op, req.Variables, token)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnconfigured):
			writeProxyErrors(w, http.StatusInternalServerError,
				"content api endpoint is not configured")
		case errors.Is(err, domain.ErrUnauthorized):
			writeProxyErrors(w, http.StatusUnauthorized, "unauthorized")
		default:
			h.log.WarnContext(r.Context(), "proxy upstream failure",
				slog.String("operation", op.Name),
				slog.String("error", err.Error()))
			writeProxyErrors(w, http.StatusBadGateway,
				"failed to reach the content api")
		}
		return
	}

	out := proxyResponse{Data: resp.Data}
	for _, e := range resp.Errors {
		out.Errors = append(out.Errors, proxyError{Message: e.Message})
	}
	writeJSON(w, http.StatusOK, out)
}

func writeProxyErrors(w http.ResponseWriter, status int, msgs ...string) {
	out := proxyResponse{}
	for _, m := range msgs {
		out.Errors = append(out.Errors, proxyError{Message: m})
	}
	writeJSON(w, status, out)
}
