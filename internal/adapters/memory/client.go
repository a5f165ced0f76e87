// Package memory is an in-process backend: tables live in memory and every
// insert is pushed through the realtime hub like the hosted service would.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/philly/postboard/internal/adapters/changefeed"
	"github.com/philly/postboard/internal/platform/events"
	"github.com/philly/postboard/internal/posts/ports"
)

const sourceName = "memory"

type table struct {
	rows   []ports.Row
	nextID int64
	lastTS time.Time
}

// Client implements ports.Client without any external service.
type Client struct {
	hub   *changefeed.Hub
	clock func() time.Time

	mu     sync.RWMutex
	tables map[string]*table
}

// Option customizes a Client.
type Option func(*Client)

// WithClock overrides the clock used for created_at.
func WithClock(clock func() time.Time) Option {
	return func(c *Client) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// NewClient creates an empty in-memory backend.
func NewClient(hub *changefeed.Hub, opts ...Option) *Client {
	c := &Client{
		hub:    hub,
		clock:  time.Now,
		tables: make(map[string]*table),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchOrdered returns copies of every row of table sorted by orderBy.
func (c *Client) FetchOrdered(ctx context.Context, tableName string, columns []string, orderBy string, dir ports.Direction) ([]ports.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	var rows []ports.Row
	if t, ok := c.tables[tableName]; ok {
		rows = make([]ports.Row, 0, len(t.rows))
		for _, row := range t.rows {
			rows = append(rows, project(row, columns))
		}
	}
	c.mu.RUnlock()

	if rows == nil {
		return []ports.Row{}, nil
	}

	sort.SliceStable(rows, func(i, j int) bool {
		cmp := compare(rows[i][orderBy], rows[j][orderBy])
		if dir == ports.Descending {
			return cmp > 0
		}
		return cmp < 0
	})
	return rows, nil
}

// InsertRow stores fields, assigning id and created_at, and publishes an INSERT.
func (c *Client) InsertRow(ctx context.Context, tableName string, fields map[string]any, returning []string) (ports.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, ok := fields[ports.ColumnID]; ok {
		return nil, &ports.ServiceError{Message: `cannot insert a non-DEFAULT value into column "id"`, Code: "428C9"}
	}

	c.mu.Lock()
	t, ok := c.tables[tableName]
	if !ok {
		t = &table{}
		c.tables[tableName] = t
	}
	t.nextID++
	now := c.clock().UTC()
	if !now.After(t.lastTS) {
		now = t.lastTS.Add(time.Microsecond)
	}
	t.lastTS = now

	row := make(ports.Row, len(fields)+2)
	for k, v := range fields {
		row[k] = v
	}
	row[ports.ColumnID] = t.nextID
	row[ports.ColumnCreatedAt] = now
	t.rows = append(t.rows, row)

	result := project(row, returning)
	record := project(row, nil)
	c.mu.Unlock()

	c.hub.Publish(ctx, events.RowChangedEvent{
		Table:      tableName,
		Kind:       events.ChangeInsert,
		Record:     record,
		Source:     sourceName,
		OccurredAt: now,
	})
	return result, nil
}

// SubscribeChanges registers handler on the hub.
func (c *Client) SubscribeChanges(ctx context.Context, tableName string, kinds []events.ChangeKind, handler ports.ChangeHandler) (ports.Subscription, error) {
	return c.hub.Subscribe(ctx, tableName, kinds, handler)
}

// Ping always succeeds.
func (c *Client) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Count reports how many rows table holds.
func (c *Client) Count(tableName string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if t, ok := c.tables[tableName]; ok {
		return len(t.rows)
	}
	return 0
}

// project copies the requested columns of row; nil columns copies everything.
func project(row ports.Row, columns []string) ports.Row {
	out := make(ports.Row, len(row))
	if columns == nil {
		for k, v := range row {
			out[k] = v
		}
		return out
	}
	for _, col := range columns {
		if v, ok := row[col]; ok {
			out[col] = v
		}
	}
	return out
}

func compare(a, b any) int {
	switch av := a.(type) {
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Compare(bv)
		}
	case int64:
		if bv, ok := b.(int64); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		}
	case string:
		if bv, ok := b.(string); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		}
	}
	return compareFallback(a, b)
}

func compareFallback(a, b any) int {
	as, bs := fmt.Sprint(a), fmt.Sprint(b)
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	}
	return 0
}

var (
	_ ports.Client = (*Client)(nil)
	_ ports.Pinger = (*Client)(nil)
)
