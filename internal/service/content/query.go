package content

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/najubudeen/vanturalog/internal/auth"
	"github.com/najubudeen/vanturalog/internal/contentapi"
	"github.com/najubudeen/vanturalog/internal/domain"
)

// Query runs one read operation with the current credential attached.
//
// A response carrying both data and errors returns the data together with
// a *domain.PartialDataError so the caller can render and warn at once.
// An errors-only response maps through the classifier: credential refusals
// become ErrUnauthorized, recognizably network-ish messages become
// ErrTransient, and any other wording is treated as transient too, because
// a read that failed for unknown reasons is retried on the next cycle.
func (c *SyncClient) Query(ctx context.Context, op *contentapi.Operation, vars map[string]any) (json.RawMessage, error) {
	resp, err := c.api.Do(ctx, op, vars, c.tokens.Token())
	if err != nil {
		return nil, fmt.Errorf("content.Query %s: %w", op.Name, err)
	}

	switch {
	case resp.HasData() && len(resp.Errors) > 0:
		return resp.Data, &domain.PartialDataError{Messages: resp.ErrMessages()}

	case len(resp.Errors) > 0:
		return nil, c.mapErrors(op, resp.ErrMessages())
	}

	return resp.Data, nil
}

// Mutate runs one write operation. The error mapping differs from Query in
// exactly one place: unrecognized upstream wording is surfaced as a
// validation error, because a refused write carries a message the user
// needs to see ("duplicate comment detected", a moderation rule) rather
// than something worth a silent retry.
func (c *SyncClient) Mutate(ctx context.Context, op *contentapi.Operation, vars map[string]any) (json.RawMessage, error) {
	resp, err := c.api.Do(ctx, op, vars, c.tokens.Token())
	if err != nil {
		return nil, fmt.Errorf("content.Mutate %s: %w", op.Name, err)
	}

	if len(resp.Errors) > 0 && !resp.HasData() {
		msgs := resp.ErrMessages()
		switch c.classify.Classify(msgs) {
		case auth.ClassRejected:
			return nil, fmt.Errorf("content.Mutate %s: %s: %w", op.Name, strings.Join(msgs, ", "), domain.ErrUnauthorized)
		case auth.ClassTransient:
			return nil, fmt.Errorf("content.Mutate %s: %s: %w", op.Name, strings.Join(msgs, ", "), domain.ErrTransient)
		default:
			return nil, domain.NewValidationError(op.Name, strings.Join(msgs, ", "))
		}
	}

	if resp.HasData() && len(resp.Errors) > 0 {
		return resp.Data, &domain.PartialDataError{Messages: resp.ErrMessages()}
	}
	return resp.Data, nil
}

func (c *SyncClient) mapErrors(op *contentapi.Operation, msgs []string) error {
	switch c.classify.Classify(msgs) {
	case auth.ClassRejected:
		return fmt.Errorf("content.Query %s: %s: %w", op.Name, strings.Join(msgs, ", "), domain.ErrUnauthorized)
	default:
		return fmt.Errorf("content.Query %s: %s: %w", op.Name, strings.Join(msgs, ", "), domain.ErrTransient)
	}
}
