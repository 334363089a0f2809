package publisher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	id "agorax/pkg/domain"
	audit "agorax/pkg/platform/audit"
)

// ErrBufferFull is returned in async mode when the buffer cannot accept
// another event. Callers treat this as a dropped event, not a failure of the
// underlying operation.
var ErrBufferFull = errors.New("audit buffer full")

// Publisher fans audit events out to a store, either synchronously or through
// a bounded async buffer. Async mode trades durability for latency: events
// are dropped when the buffer is full, and Close drains whatever is queued.
type Publisher struct {
	store  audit.Store
	sink   audit.Sink
	logger *slog.Logger

	buffer  chan audit.Event
	closeMu sync.Once
	wg      sync.WaitGroup
}

type Option func(*Publisher)

// WithAsyncBuffer enables asynchronous publishing with the given buffer size.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.buffer = make(chan audit.Event, size)
	}
}

// WithSink fans every persisted event out to a streaming sink (Kafka). Sink
// failures are logged, never propagated.
func WithSink(sink audit.Sink) Option {
	return func(p *Publisher) {
		p.sink = sink
	}
}

// WithLogger sets the logger used for dropped and failed events.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.buffer != nil {
		p.wg.Add(1)
		go p.drainLoop()
	}
	return p
}

// Emit records an audit event. In sync mode the store write happens inline;
// in async mode the event is queued and ErrBufferFull is returned when the
// buffer cannot take it. Emitters log the error and move on.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if p.buffer == nil {
		if err := p.store.Append(ctx, event); err != nil {
			return err
		}
		p.stream(ctx, event)
		return nil
	}

	select {
	case p.buffer <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrBufferFull
	}
}

// List returns the events recorded for an actor.
func (p *Publisher) List(ctx context.Context, actorID id.OwnerID) ([]audit.Event, error) {
	return p.store.ListByActor(ctx, actorID)
}

// Close stops the async worker, draining queued events first. Safe to call
// multiple times and in sync mode.
func (p *Publisher) Close() {
	p.closeMu.Do(func() {
		if p.buffer != nil {
			close(p.buffer)
		}
	})
	p.wg.Wait()
}

func (p *Publisher) drainLoop() {
	defer p.wg.Done()
	for event := range p.buffer {
		ctx := context.Background()
		if err := p.store.Append(ctx, event); err != nil {
			p.logger.Error("audit append failed",
				"action", event.Action,
				"entity_type", event.EntityType,
				"entity_id", event.EntityID,
				"error", err,
			)
			continue
		}
		p.stream(ctx, event)
	}
}

func (p *Publisher) stream(ctx context.Context, event audit.Event) {
	if p.sink == nil {
		return
	}
	if err := p.sink.Emit(ctx, event); err != nil {
		p.logger.Error("audit stream emit failed",
			"action", event.Action,
			"entity_type", event.EntityType,
			"error", err,
		)
	}
}
