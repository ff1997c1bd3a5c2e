// Package rest serves the browser-facing JSON API: the auth exchange, the
// GraphQL proxy and the small read endpoints the rendering shell uses.
package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/najubudeen/vanturalog/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeDomainError maps the error taxonomy onto HTTP statuses. Transient
// upstream failures are a 502 so the caller can tell "their side is down"
// apart from "you did something wrong".
func writeDomainError(log *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrUnconfigured):
		writeError(w, http.StatusInternalServerError, "content api endpoint is not configured")
	case errors.Is(err, domain.ErrTransient):
		writeError(w, http.StatusBadGateway, "upstream temporarily unavailable")
	default:
		log.ErrorContext(r.Context(), "internal error", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
