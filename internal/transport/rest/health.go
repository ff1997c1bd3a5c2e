package rest

import (
	"context"
	"net/http"
	"time"
)

// Pinger is any backing dependency worth checking before accepting
// traffic. The Postgres session pool satisfies it; the cookie backend
// registers nothing.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	deps    map[string]Pinger
	version string
}

// NewHealthHandler creates a HealthHandler. deps may be empty.
func NewHealthHandler(version string, deps map[string]Pinger) *HealthHandler {
	return &HealthHandler{deps: deps, version: version}
}

// HealthResponse is the JSON body for /health and /ready.
type HealthResponse struct {
	Status     string            `json:"status"`
	Version    string            `json:"version,omitempty"`
	Components map[string]string `json:"components,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
}

// Live always answers 200; the process is up.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Timestamp: time.Now()})
}

// Ready answers 200 when every registered dependency responds, 503
// otherwise. The content API is deliberately not checked here: this
// service stays up, degraded, while the upstream is down.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	status := "ok"
	components := make(map[string]string, len(h.deps))
	for name, dep := range h.deps {
		if err := dep.Ping(ctx); err != nil {
			components[name] = "down"
			status = "down"
			continue
		}
		components[name] = "ok"
	}

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, HealthResponse{
		Status:     status,
		Version:    h.version,
		Components: components,
		Timestamp:  time.Now(),
	})
}
