package audit

import "context"

// Store is an append-only audit sink backed by persistence, so tests can swap
// sinks easily.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListBySubject(ctx context.Context, subject string) ([]Event, error)
}
