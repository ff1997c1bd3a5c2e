// Package contentapi implements the HTTP client for the headless CMS
// GraphQL endpoint. Queries and mutations share one transport shape: a
// single POST with {query, variables}, answered by {data, errors}, with
// bearer-token authentication when a credential is available.
package contentapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/najubudeen/vanturalog/internal/domain"
)

// APIError is a single entry of the GraphQL error list.
type APIError struct {
	Message string `json:"message"`
}

// Response is the decoded body of a content API reply. A response may carry
// data, errors, or both; callers decide how to surface each combination.
type Response struct {
	Data   json.RawMessage `json:"data"`
	Errors []APIError      `json:"errors"`
}

// HasData reports whether the response carries a usable data object.
func (r *Response) HasData() bool {
	return len(r.Data) > 0 && !bytes.Equal(r.Data, []byte("null"))
}

// ErrMessages collects the upstream error messages.
func (r *Response) ErrMessages() []string {
	if len(r.Errors) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, e.Message)
	}
	return msgs
}

type request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// Client talks to one content API endpoint.
type Client struct {
	endpoint string
	httpc    *http.Client
	log      *slog.Logger
}

// New creates a content API client. An empty endpoint produces a client
// whose every call fails with domain.ErrUnconfigured, surfaced to the user
// as a blocking configuration error rather than a crash.
func New(endpoint string, timeout time.Duration, log *slog.Logger) *Client {
	return &Client{
		endpoint: endpoint,
		httpc:    &http.Client{Timeout: timeout},
		log:      log.With("component", "contentapi"),
	}
}

// Do sends one operation. The token is optional: without it the request is
// anonymous and the API serves whatever it allows unauthenticated.
//
// Error mapping: transport failures and timeouts wrap domain.ErrTransient;
// HTTP 401/403 wraps domain.ErrUnauthorized; any well-formed GraphQL body
// (including one carrying errors) is returned as a Response with a nil
// error, because the caller owns the policy for upstream error lists.
func (c *Client) Do(ctx context.Context, op *Operation, vars map[string]any, token string) (*Response, error) {
	if c.endpoint == "" {
		return nil, fmt.Errorf("contentapi.Do %s: %w", op.Name, domain.ErrUnconfigured)
	}

	body, err := json.Marshal(request{Query: op.Source, Variables: vars})
	if err != nil {
		return nil, fmt.Errorf("contentapi.Do %s: marshal: %w", op.Name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("contentapi.Do %s: %w", op.Name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("contentapi.Do %s: %s: %w", op.Name, transportReason(err), domain.ErrTransient)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("contentapi.Do %s: read body: %w", op.Name, domain.ErrTransient)
	}

	c.log.DebugContext(ctx, "content api call",
		slog.String("operation", op.Name),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
		slog.Bool("authenticated", token != ""))

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("contentapi.Do %s: status %d: %w", op.Name, resp.StatusCode, domain.ErrUnauthorized)

	case resp.StatusCode >= 300:
		// Some upstreams report GraphQL errors with a non-200 status.
		// If the body parses as a GraphQL error list, pass it through.
		var gql Response
		if jsonErr := json.Unmarshal(raw, &gql); jsonErr == nil && len(gql.Errors) > 0 {
			return &gql, nil
		}
		return nil, fmt.Errorf("contentapi.Do %s: status %d: %w", op.Name, resp.StatusCode, domain.ErrTransient)
	}

	var out Response
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("contentapi.Do %s: decode: %w", op.Name, domain.ErrTransient)
	}
	return &out, nil
}

// transportReason distinguishes a deadline from a plain connection failure
// for logging and for the transient-failure reason string.
func transportReason(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}
	return "network error"
}
