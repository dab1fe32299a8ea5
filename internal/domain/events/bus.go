package events

import (
	"context"
	"sync"

	"github.com/treviro/treviro_service/pkg/logger"
	"github.com/treviro/treviro_service/pkg/metrics"
)

// Handler processes a single event. A returned error (or a panic) is logged
// and counted; it never aborts sibling handlers or the publisher.
type Handler func(ctx context.Context, evt Event) error

type subscription struct {
	handler Handler
}

// Bus is an in-memory, at-most-once publish/subscribe hub decoupling the
// record-mutation services from the dashboard aggregator.
//
// One Bus is constructed per user session and injected into the services
// that need it, so the bus never carries events for more than one tenant.
// Delivery is non-persistent: a crash between a record write and its publish
// loses that aggregate update, recoverable only via full recalculation.
type Bus struct {
	mu      sync.RWMutex
	subs    map[EventType][]*subscription
	logger  *logger.Logger
}

// NewBus creates an empty event bus.
func NewBus(log *logger.Logger) *Bus {
	return &Bus{
		subs:   make(map[EventType][]*subscription),
		logger: log,
	}
}

// Subscribe registers a handler for the exact event type and returns its
// de-registration callback. Multiple handlers per type are allowed. Calling
// the returned function more than once is a no-op.
func (b *Bus) Subscribe(t EventType, h Handler) func() {
	sub := &subscription{handler: h}

	b.mu.Lock()
	b.subs[t] = append(b.subs[t], sub)
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			kept := b.subs[t][:0]
			for _, s := range b.subs[t] {
				if s != sub {
					kept = append(kept, s)
				}
			}
			b.subs[t] = kept
		})
	}
}

// Publish invokes all handlers registered for evt.Type concurrently and
// returns once every handler has completed. Handler errors and panics are
// logged, never propagated: a failing handler cannot prevent its siblings
// from completing, and Publish itself always succeeds.
func (b *Bus) Publish(ctx context.Context, evt Event) {
	b.mu.RLock()
	subs := make([]*subscription, len(b.subs[evt.Type]))
	copy(subs, b.subs[evt.Type])
	b.mu.RUnlock()

	metrics.EventsPublishedTotal.WithLabelValues(string(evt.Type)).Inc()

	var wg sync.WaitGroup
	for _, sub := range subs {
		wg.Add(1)
		go func(s *subscription) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					metrics.EventHandlerFailuresTotal.WithLabelValues(string(evt.Type)).Inc()
					b.logger.Errorw("event handler panicked",
						"event_type", evt.Type,
						"user_id", evt.UserID,
						"panic", r,
					)
				}
			}()
			if err := s.handler(ctx, evt); err != nil {
				metrics.EventHandlerFailuresTotal.WithLabelValues(string(evt.Type)).Inc()
				b.logger.Errorw("event handler failed",
					"event_type", evt.Type,
					"user_id", evt.UserID,
					"error", err,
				)
			}
		}(sub)
	}
	wg.Wait()
}

// SubscriberCount reports the live handler count for an event type.
func (b *Bus) SubscriberCount(t EventType) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[t])
}
