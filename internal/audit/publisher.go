package audit

import (
	"context"
	"log/slog"

	"amparo/pkg/requestcontext"
)

// Sink receives events beyond the primary store (e.g. the Kafka stream).
// Sinks are best-effort: a sink failure never fails the business operation.
type Sink interface {
	Publish(event Event)
}

// Publisher captures structured audit events. The store append is
// authoritative; optional sinks fan out asynchronously.
type Publisher struct {
	store  Store
	sinks  []Sink
	logger *slog.Logger
}

// NewPublisher constructs a publisher over the given store and optional sinks.
func NewPublisher(store Store, logger *slog.Logger, sinks ...Sink) *Publisher {
	return &Publisher{store: store, sinks: sinks, logger: logger}
}

// Emit records an event, filling timestamp, actor and client from the request
// context when unset. The store write is best-effort: audit must never block
// claim or payment processing, so failures are logged and swallowed.
func (p *Publisher) Emit(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.ActorID == "" {
		event.ActorID = requestcontext.ActorID(ctx)
	}
	if event.Client == "" {
		event.Client = SummarizeUserAgent(requestcontext.UserAgent(ctx))
	}

	if err := p.store.Append(ctx, event); err != nil {
		p.logger.ErrorContext(ctx, "audit append failed",
			"action", event.Action,
			"subject", event.Subject,
			"error", err,
		)
	}
	for _, sink := range p.sinks {
		sink.Publish(event)
	}
}

// List returns the audit trail for a subject (claim or payment id).
func (p *Publisher) List(ctx context.Context, subject string) ([]Event, error) {
	return p.store.ListBySubject(ctx, subject)
}
