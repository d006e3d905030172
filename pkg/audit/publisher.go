package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Publisher writes audit events to a store, either synchronously or through
// a buffered channel. Override trails are evidence themselves, so the default
// mode is synchronous: the caller blocks until the append succeeds.
type Publisher struct {
	store  Store
	logger *slog.Logger
	inbox  chan Event
	done   chan struct{}
}

type Option func(*Publisher)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithAsyncBuffer switches the publisher to async mode with the given buffer
// size. Events that cannot be buffered are dropped with a log line rather
// than blocking the engine.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.inbox = make(chan Event, size)
	}
}

func NewPublisher(store Store, opts ...Option) *Publisher {
	p := &Publisher{store: store, done: make(chan struct{})}
	for _, opt := range opts {
		opt(p)
	}
	if p.inbox != nil {
		go p.drain()
	}
	return p
}

// Emit records an event, stamping ID and timestamp when absent.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	if p.inbox == nil {
		return p.store.Append(ctx, event)
	}

	select {
	case p.inbox <- event:
		return nil
	default:
		if p.logger != nil {
			p.logger.WarnContext(ctx, "audit buffer full, dropping event",
				"action", event.Action,
				"assessment_id", event.AssessmentID,
			)
		}
		return nil
	}
}

// List returns the recorded events for one assessment.
func (p *Publisher) List(ctx context.Context, assessmentID uuid.UUID) ([]Event, error) {
	return p.store.ListByAssessment(ctx, assessmentID)
}

// Close stops the async drain goroutine. Safe to call in sync mode.
func (p *Publisher) Close() {
	if p.inbox != nil {
		close(p.inbox)
		<-p.done
		return
	}
	close(p.done)
}

func (p *Publisher) drain() {
	defer close(p.done)
	for event := range p.inbox {
		if err := p.store.Append(context.Background(), event); err != nil && p.logger != nil {
			p.logger.Error("audit append failed",
				"action", event.Action,
				"assessment_id", event.AssessmentID,
				"error", err,
			)
		}
	}
}
