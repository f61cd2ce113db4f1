// Package publisher provides the synchronous audit emitter used by the
// autonomy engine. Audit here is fail-soft: a failed append is logged and
// surfaced to the caller, but the engine still returns its verdict so a
// storage outage cannot wedge remediation.
package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	audit "odyssey/pkg/platform/audit"
)

// Publisher captures structured audit events. It is append-only and uses the
// storage layer for persistence so tests can swap sinks easily.
type Publisher struct {
	store  audit.Store
	logger *slog.Logger
}

// New constructs a publisher. The store is required.
func New(store audit.Store, logger *slog.Logger) (*Publisher, error) {
	if store == nil {
		return nil, fmt.Errorf("audit store is required")
	}
	return &Publisher{store: store, logger: logger}, nil
}

// Emit appends one event, filling ID, timestamp, and category defaults.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Category == "" {
		event.Category = audit.AuditAction(event.Action).Category()
	}
	if err := p.store.Append(ctx, event); err != nil {
		if p.logger != nil {
			p.logger.ErrorContext(ctx, "audit append failed",
				"action", event.Action,
				"actor", event.Actor,
				"error", err,
			)
		}
		return fmt.Errorf("audit persistence failed: %w", err)
	}
	return nil
}

// List returns up to limit recent events, newest first.
func (p *Publisher) List(ctx context.Context, limit int) ([]audit.Event, error) {
	return p.store.ListRecent(ctx, limit)
}
