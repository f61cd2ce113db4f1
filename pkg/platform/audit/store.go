package audit

import "context"

// Store persists audit events. Implementations must be append-only: this
// pipeline never updates or deletes an event once written.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}
