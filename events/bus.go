package events

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	TopicReviewStateChanged  = "review.state_changed"
	TopicContentStatusChange = "content.status_changed"
)

// Envelope wraps every payload travelling over the bus.
type Envelope struct {
	EventID    string
	EventType  string
	OccurredAt time.Time
	Payload    any
}

// NewEnvelope stamps payload with a fresh event id.
func NewEnvelope(eventType string, occurredAt time.Time, payload any) Envelope {
	return Envelope{
		EventID:    uuid.NewString(),
		EventType:  eventType,
		OccurredAt: occurredAt,
		Payload:    payload,
	}
}

type Handler func(context.Context, Envelope) error

// ErrBusDrained is returned by Publish once Drain has emptied the bus.
var ErrBusDrained = errors.New("event bus drained")

// Bus is an in-process publish/subscribe broker. Each subscription owns one
// channel and one consumer goroutine, so a handler never runs concurrently
// with itself and sees events in publish order.
type Bus struct {
	mu          sync.Mutex
	subscribers map[string][]chan Envelope
	queueSize   int
	logger      *slog.Logger
	wg          sync.WaitGroup

	// pending counts deliveries not yet handled; idle is signalled at zero.
	pending  int
	idle     *sync.Cond
	draining bool
}

func NewBus(queueSize int, logger *slog.Logger) *Bus {
	if queueSize <= 0 {
		queueSize = 128
	}
	if logger == nil {
		logger = slog.Default()
	}
	b := &Bus{
		subscribers: make(map[string][]chan Envelope),
		queueSize:   queueSize,
		logger:      logger,
	}
	b.idle = sync.NewCond(&b.mu)
	return b
}

// Publish hands event to every subscriber of topic. A full subscriber queue
// blocks the publisher until there is room or ctx is done; events are never
// dropped. Handlers may publish while the bus drains.
func (b *Bus) Publish(ctx context.Context, topic string, event Envelope) error {
	b.mu.Lock()
	if b.draining && b.pending == 0 {
		b.mu.Unlock()
		return ErrBusDrained
	}
	subs := append([]chan Envelope(nil), b.subscribers[topic]...)
	b.pending += len(subs)
	b.mu.Unlock()

	for i, sub := range subs {
		select {
		case sub <- event:
		case <-ctx.Done():
			b.handled(len(subs) - i)
			b.logger.Error("event publish aborted",
				"event", "bus_publish_aborted",
				"module", "events",
				"topic", topic,
				"event_id", event.EventID,
				"error", ctx.Err().Error(),
			)
			return ctx.Err()
		}
	}

	b.logger.Debug("event published",
		"event", "bus_publish",
		"module", "events",
		"topic", topic,
		"event_id", event.EventID,
		"event_type", event.EventType,
	)
	return nil
}

// Subscribe registers handler on topic and starts its consumer. The consumer
// stops when ctx is cancelled, after handling whatever is already queued.
// Handler errors are logged and never reach the publisher.
func (b *Bus) Subscribe(ctx context.Context, topic string, consumer string, handler Handler) error {
	ch := make(chan Envelope, b.queueSize)

	b.mu.Lock()
	b.subscribers[topic] = append(b.subscribers[topic], ch)
	b.mu.Unlock()

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for {
			select {
			case <-ctx.Done():
				b.removeSubscriber(topic, ch)
				b.flush(context.WithoutCancel(ctx), topic, consumer, handler, ch)
				return
			case event := <-ch:
				b.dispatch(ctx, topic, consumer, handler, event)
				b.handled(1)
			}
		}
	}()
	return nil
}

// flush handles the envelopes left in ch after its consumer was stopped.
func (b *Bus) flush(ctx context.Context, topic, consumer string, handler Handler, ch chan Envelope) {
	for {
		select {
		case event := <-ch:
			b.dispatch(ctx, topic, consumer, handler, event)
			b.handled(1)
		default:
			return
		}
	}
}

func (b *Bus) dispatch(ctx context.Context, topic, consumer string, handler Handler, event Envelope) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("consumer handler panicked",
				"event", "bus_consume_panic",
				"module", "events",
				"topic", topic,
				"consumer", consumer,
				"event_id", event.EventID,
				"panic", r,
			)
		}
	}()
	if err := handler(ctx, event); err != nil {
		b.logger.Error("consumer handler failed",
			"event", "bus_consume_failed",
			"module", "events",
			"topic", topic,
			"consumer", consumer,
			"event_id", event.EventID,
			"event_type", event.EventType,
			"error", err.Error(),
		)
	}
}

// Drain blocks until every published event, including those published by
// handlers along the way, has been handled. Afterwards Publish fails with
// ErrBusDrained. Publishers outside the bus must be stopped first.
func (b *Bus) Drain() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.draining = true
	for b.pending > 0 {
		b.idle.Wait()
	}
}

// Wait blocks until every consumer goroutine has returned.
func (b *Bus) Wait() {
	b.wg.Wait()
}

func (b *Bus) handled(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending -= n
	if b.pending == 0 {
		b.idle.Broadcast()
	}
}

func (b *Bus) removeSubscriber(topic string, target chan Envelope) {
	b.mu.Lock()
	defer b.mu.Unlock()

	items := b.subscribers[topic]
	if len(items) == 0 {
		return
	}
	filtered := make([]chan Envelope, 0, len(items))
	for _, item := range items {
		if item != target {
			filtered = append(filtered, item)
		}
	}
	b.subscribers[topic] = filtered
}
