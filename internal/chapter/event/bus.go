package event

import (
	"context"
	"sync"
	"time"
)

// Handler receives published events. Handlers run synchronously on the
// publisher's goroutine; publishers must not hold locks that a handler
// calling back into them would need.
type Handler func(ctx context.Context, evt Event)

// Bus is an in-process publish/subscribe surface with per-type and
// catch-all subscriptions.
type Bus struct {
	mu       sync.RWMutex
	handlers map[Type][]Handler
	all      []Handler
	clock    func() time.Time
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[Type][]Handler),
		clock:    time.Now,
	}
}

// Subscribe registers a handler for a single event type.
func (b *Bus) Subscribe(t Type, handler Handler) {
	if b == nil || handler == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[t] = append(b.handlers[t], handler)
}

// SubscribeAll registers a handler for every event type.
func (b *Bus) SubscribeAll(handler Handler) {
	if b == nil || handler == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.all = append(b.all, handler)
}

// Publish delivers the event to all matching handlers in subscription
// order. Publishing on a nil bus is a no-op so event emission never needs
// guarding.
func (b *Bus) Publish(ctx context.Context, evt Event) {
	if b == nil {
		return
	}
	if evt.Timestamp.IsZero() {
		clock := b.clock
		if clock == nil {
			clock = time.Now
		}
		evt.Timestamp = clock().UTC()
	}

	b.mu.RLock()
	typed := append([]Handler(nil), b.handlers[evt.Type]...)
	all := append([]Handler(nil), b.all...)
	b.mu.RUnlock()

	for _, handler := range typed {
		handler(ctx, evt)
	}
	for _, handler := range all {
		handler(ctx, evt)
	}
}
