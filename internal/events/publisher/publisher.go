// Package publisher fans chain events out to the configured store and sinks.
// Emission is synchronous by default; WithAsyncBuffer moves persistence onto
// a worker goroutine so core operations never block on slow sinks.
package publisher

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"patrolfund/internal/events"
)

type Publisher struct {
	store  events.Store
	sinks  []events.Sink
	logger *slog.Logger

	inbox  chan events.Event
	wg     sync.WaitGroup
	closed chan struct{}
}

type Option func(*Publisher)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) { p.logger = logger }
}

// WithSink registers an additional out-of-process sink.
func WithSink(sink events.Sink) Option {
	return func(p *Publisher) {
		if sink != nil {
			p.sinks = append(p.sinks, sink)
		}
	}
}

// WithAsyncBuffer switches the publisher to buffered asynchronous delivery.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) { p.inbox = make(chan events.Event, size) }
}

func NewPublisher(store events.Store, opts ...Option) *Publisher {
	p := &Publisher{
		store:  store,
		logger: slog.Default(),
		closed: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.inbox != nil {
		p.wg.Add(1)
		go p.run()
	}
	return p
}

// Emit records an event. In async mode a full buffer falls back to
// synchronous delivery rather than dropping the event: the event trail is the
// only record indexers have.
func (p *Publisher) Emit(ctx context.Context, event events.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if p.inbox == nil {
		return p.deliver(ctx, event)
	}
	select {
	case p.inbox <- event:
		return nil
	default:
		return p.deliver(ctx, event)
	}
}

// List returns recent events from the backing store.
func (p *Publisher) List(ctx context.Context, limit int) ([]events.Event, error) {
	return p.store.ListRecent(ctx, limit)
}

// Close drains the async buffer and stops the worker.
func (p *Publisher) Close() {
	if p.inbox == nil {
		return
	}
	close(p.closed)
	p.wg.Wait()
}

func (p *Publisher) run() {
	defer p.wg.Done()
	for {
		select {
		case event := <-p.inbox:
			if err := p.deliver(context.Background(), event); err != nil {
				p.logger.Warn("async event delivery failed", "event_id", event.ID, "error", err)
			}
		case <-p.closed:
			for {
				select {
				case event := <-p.inbox:
					if err := p.deliver(context.Background(), event); err != nil {
						p.logger.Warn("async event delivery failed", "event_id", event.ID, "error", err)
					}
				default:
					return
				}
			}
		}
	}
}

// deliver persists to the store, then offers the event to each sink. Sink
// failures are logged and do not fail delivery.
func (p *Publisher) deliver(ctx context.Context, event events.Event) error {
	if err := p.store.Append(ctx, event); err != nil {
		return err
	}
	for _, sink := range p.sinks {
		if err := sink.Send(ctx, event); err != nil {
			p.logger.Warn("event sink send failed",
				"event_id", event.ID,
				"event_type", string(event.Type),
				"error", err,
			)
		}
	}
	return nil
}
