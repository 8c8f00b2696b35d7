// internal/events/bus.go
package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrBusClosed  = errors.New("event bus is shutting down")
	ErrBufferFull = errors.New("event channel full")
)

// Publisher accepts committed ledger events.
type Publisher interface {
	Publish(event Event) error
}

type route struct {
	id      string
	handler Handler
}

// Bus fans committed ledger events out to sinks, the archive and the metrics
// collector. Delivery runs on one goroutine, in publication order, and each
// event reaches its handlers in subscription order.
type Bus struct {
	logger *zap.Logger

	mu     sync.RWMutex
	routes map[EventType][]route

	// sendMu orders sends against close so drain sees every accepted event.
	sendMu sync.RWMutex
	queue  chan Event
	closed chan struct{}
	once   sync.Once
	done   sync.WaitGroup

	published atomic.Uint64
	delivered atomic.Uint64
	dropped   atomic.Uint64
	failed    atomic.Uint64
}

// BusStats is a point-in-time view of the bus counters.
type BusStats struct {
	Capacity        int            `json:"capacity"`
	Pending         int            `json:"pending"`
	Published       uint64         `json:"published"`
	Delivered       uint64         `json:"delivered"`
	Dropped         uint64         `json:"dropped"`
	HandlerFailures uint64         `json:"handler_failures"`
	Subscribers     map[string]int `json:"subscribers"`
}

// NewBus starts a bus whose queue holds bufferSize events.
func NewBus(logger *zap.Logger, bufferSize int) *Bus {
	b := &Bus{
		logger: logger.Named("event_bus"),
		routes: make(map[EventType][]route),
		queue:  make(chan Event, max(bufferSize, 1)),
		closed: make(chan struct{}),
	}
	b.done.Add(1)
	go b.dispatch()
	return b
}

// Subscribe registers a handler for one event type.
func (b *Bus) Subscribe(eventType EventType, handler Handler) Subscription {
	id := uuid.NewString()

	b.mu.Lock()
	b.routes[eventType] = append(b.routes[eventType], route{id: id, handler: handler})
	b.mu.Unlock()

	b.logger.Debug("Handler subscribed",
		zap.String("event_type", string(eventType)),
		zap.String("subscription_id", id))
	return &subscription{id: id, eventBus: b, typ: eventType}
}

// SubscribeFunc subscribes a plain function.
func (b *Bus) SubscribeFunc(eventType EventType, fn func(context.Context, Event) error) Subscription {
	return b.Subscribe(eventType, HandlerFunc(fn))
}

// SubscribeAll registers one handler for every ledger event type.
func (b *Bus) SubscribeAll(handler Handler) Subscription {
	subs := make(multiSubscription, 0, len(AllTypes))
	for _, t := range AllTypes {
		subs = append(subs, b.Subscribe(t, handler))
	}
	return subs
}

// Publish queues an event without blocking. Ledger state is already
// committed when this runs, so a full queue drops the event and reports
// ErrBufferFull rather than stalling the writer.
func (b *Bus) Publish(event Event) error {
	b.sendMu.RLock()
	defer b.sendMu.RUnlock()

	select {
	case <-b.closed:
		return ErrBusClosed
	default:
	}

	select {
	case b.queue <- event:
		b.published.Add(1)
		return nil
	default:
		b.dropped.Add(1)
		b.logger.Warn("Event queue full, dropping event",
			zap.String("event_type", string(event.Type())),
			zap.Time("event_time", event.Timestamp()))
		return ErrBufferFull
	}
}

// PublishSync delivers an event to its handlers in the caller's goroutine
// and joins their errors.
func (b *Bus) PublishSync(ctx context.Context, event Event) error {
	b.mu.RLock()
	routes := append([]route(nil), b.routes[event.Type()]...)
	b.mu.RUnlock()

	var errs []error
	for _, r := range routes {
		if err := b.deliver(ctx, r, event); err != nil {
			b.failed.Add(1)
			b.logger.Error("Handler error",
				zap.String("event_type", string(event.Type())),
				zap.String("subscription_id", r.id),
				zap.Error(err))
			errs = append(errs, err)
		}
	}
	b.delivered.Add(1)

	if len(errs) > 0 {
		return fmt.Errorf("%s: %d handler(s) failed: %w", event.Type(), len(errs), errors.Join(errs...))
	}
	return nil
}

// deliver isolates the dispatch loop from a panicking sink.
func (b *Bus) deliver(ctx context.Context, r route, event Event) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("handler panic: %v", p)
		}
	}()
	return r.handler.Handle(ctx, event)
}

func (b *Bus) dispatch() {
	defer b.done.Done()
	ctx := context.Background()

	for {
		select {
		case event := <-b.queue:
			_ = b.PublishSync(ctx, event)
		case <-b.closed:
			b.drain(ctx)
			return
		}
	}
}

func (b *Bus) drain(ctx context.Context) {
	for {
		select {
		case event := <-b.queue:
			_ = b.PublishSync(ctx, event)
		default:
			return
		}
	}
}

func (b *Bus) unsubscribe(id string, eventType EventType) {
	b.mu.Lock()
	defer b.mu.Unlock()

	routes := b.routes[eventType]
	for i, r := range routes {
		if r.id == id {
			routes = append(routes[:i:i], routes[i+1:]...)
			break
		}
	}
	if len(routes) == 0 {
		delete(b.routes, eventType)
	} else {
		b.routes[eventType] = routes
	}
	b.logger.Debug("Handler unsubscribed",
		zap.String("event_type", string(eventType)),
		zap.String("subscription_id", id))
}

// Shutdown stops accepting events and waits until the queued ones have been
// delivered or ctx ends. It is safe to call more than once.
func (b *Bus) Shutdown(ctx context.Context) error {
	b.once.Do(func() {
		b.logger.Info("Shutting down event bus", zap.Int("pending", len(b.queue)))
		b.sendMu.Lock()
		close(b.closed)
		b.sendMu.Unlock()
	})

	finished := make(chan struct{})
	go func() {
		b.done.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		b.logger.Info("Event bus drained", zap.Uint64("delivered", b.delivered.Load()))
		return nil
	case <-ctx.Done():
		b.logger.Warn("Event bus shutdown timeout", zap.Int("pending", len(b.queue)))
		return ctx.Err()
	}
}

func (b *Bus) Stats() BusStats {
	b.mu.RLock()
	subscribers := make(map[string]int, len(b.routes))
	for t, routes := range b.routes {
		subscribers[string(t)] = len(routes)
	}
	b.mu.RUnlock()

	return BusStats{
		Capacity:        cap(b.queue),
		Pending:         len(b.queue),
		Published:       b.published.Load(),
		Delivered:       b.delivered.Load(),
		Dropped:         b.dropped.Load(),
		HandlerFailures: b.failed.Load(),
		Subscribers:     subscribers,
	}
}
