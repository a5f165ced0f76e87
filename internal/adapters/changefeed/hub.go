// Package changefeed turns row change notifications, whatever transport
// delivered them, into bus events and back into per-table subscriptions.
package changefeed

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/philly/postboard/internal/platform/eventbus"
	"github.com/philly/postboard/internal/platform/events"
	"github.com/philly/postboard/internal/platform/logger"
	"github.com/philly/postboard/internal/posts/ports"
)

// Hub is the in-process realtime fan-out shared by every backend client.
type Hub struct {
	bus    *eventbus.Bus
	logger logger.Logger
	clock  func() time.Time
}

// NewHub creates a hub publishing on bus.
func NewHub(bus *eventbus.Bus, logger logger.Logger) *Hub {
	return &Hub{
		bus:    bus,
		logger: logger,
		clock:  time.Now,
	}
}

// Publish delivers a row change to every subscriber of its table.
func (h *Hub) Publish(ctx context.Context, change events.RowChangedEvent) {
	if change.OccurredAt.IsZero() {
		change.OccurredAt = h.clock()
	}
	h.logger.Debug(ctx, "row change received",
		"table", change.Table,
		"kind", change.Kind,
		"source", change.Source,
	)
	h.bus.Publish(ctx, eventbus.Event{
		Topic:   events.RowChangedTopic(change.Table),
		Payload: change,
	})
}

// Subscribe registers handler for the given kinds of change on table.
func (h *Hub) Subscribe(ctx context.Context, table string, kinds []events.ChangeKind, handler ports.ChangeHandler) (ports.Subscription, error) {
	if handler == nil {
		return nil, fmt.Errorf("changefeed: nil handler for table %s", table)
	}
	wanted := make(map[events.ChangeKind]bool, len(kinds))
	for _, k := range kinds {
		if !k.IsValid() {
			return nil, fmt.Errorf("changefeed: unknown change kind %q", k)
		}
		wanted[k] = true
	}

	busSub := h.bus.Subscribe(events.RowChangedTopic(table), func(ctx context.Context, event eventbus.Event) error {
		change, ok := event.Payload.(events.RowChangedEvent)
		if !ok {
			return fmt.Errorf("changefeed: unexpected payload %T", event.Payload)
		}
		if !wanted[change.Kind] {
			return nil
		}
		handler(ctx, ports.Change{
			Table:  change.Table,
			Kind:   change.Kind,
			Record: ports.Row(change.Record),
			Source: change.Source,
		})
		return nil
	})

	sub := &subscription{id: uuid.New(), table: table, busSub: busSub, hub: h}
	h.logger.Info(ctx, "realtime subscription opened", "subscription_id", sub.id, "table", table, "kinds", kinds)
	return sub, nil
}

type subscription struct {
	id     uuid.UUID
	table  string
	busSub *eventbus.Subscription
	hub    *Hub
}

func (s *subscription) Unsubscribe() error {
	s.busSub.Unsubscribe()
	s.hub.logger.Info(context.Background(), "realtime subscription closed", "subscription_id", s.id, "table", s.table)
	return nil
}
