package constitution

import "context"

// Store fetches and updates the constitutional state. The gate fetches at the
// start of every evaluation; updates come from operator tooling.
type Store interface {
	Fetch(ctx context.Context) (State, error)
	Set(ctx context.Context, state State) error
}
