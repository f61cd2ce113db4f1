package knowledge

import "context"

// Store upserts and reads knowledge entries. Upsert is last-write-wins by key.
type Store interface {
	Upsert(ctx context.Context, record Record) error
	Get(ctx context.Context, key string) (Record, error)
}
