package eventbus

import (
	"context"
	"sync"

	"github.com/philly/postboard/internal/platform/logger"
)

type subscriber struct {
	id      uint64
	handler Handler
}

// Bus fans events out to the handlers subscribed to their topic.
type Bus struct {
	mu            sync.RWMutex // Protects subscriptions and nextID
	subscriptions map[Topic][]subscriber
	nextID        uint64
	logger        logger.Logger
}

// NewBus creates a new event bus.
func NewBus(logger logger.Logger) *Bus {
	return &Bus{
		subscriptions: make(map[Topic][]subscriber),
		logger:        logger,
	}
}

// Subscription is the handle returned by Subscribe. Unsubscribe is idempotent.
type Subscription struct {
	bus   *Bus
	topic Topic
	id    uint64
	once  sync.Once
}

// Topic returns the topic the subscription listens on.
func (s *Subscription) Topic() Topic { return s.topic }

// Unsubscribe removes the handler from the bus. Events already dispatched to
// the handler may still be running when it returns.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.bus.remove(s.topic, s.id)
	})
}

// Subscribe adds a handler for a specific topic.
func (b *Bus) Subscribe(topic Topic, handler Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subscriptions[topic] = append(b.subscriptions[topic], subscriber{id: id, handler: handler})

	return &Subscription{bus: b, topic: topic, id: id}
}

func (b *Bus) remove(topic Topic, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subscriptions[topic]
	for i, sub := range subs {
		if sub.id == id {
			b.subscriptions[topic] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(b.subscriptions[topic]) == 0 {
		delete(b.subscriptions, topic)
	}
}

// SubscriberCount reports how many handlers are registered for topic.
func (b *Bus) SubscriberCount(topic Topic) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscriptions[topic])
}

// Publish sends an event to all subscribers of a topic (Fire-and-Forget).
// Handlers run on their own goroutine with a context that outlives the
// publisher's cancellation, so a finished HTTP request or a torn down listener
// does not abort the refetch it triggered.
func (b *Bus) Publish(ctx context.Context, event Event) {
	b.mu.RLock()
	subs := append([]subscriber(nil), b.subscriptions[event.Topic]...)
	b.mu.RUnlock()

	handlerCtx := context.WithoutCancel(ctx)
	for _, sub := range subs {
		go func(h Handler) {
			if err := h(handlerCtx, event); err != nil {
				b.logger.Error(handlerCtx, "event handler failed", "topic", event.Topic, "error", err)
			}
		}(sub.handler)
	}
}
