package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/philly/postboard/internal/platform/events"
	"github.com/philly/postboard/internal/posts/ports"
)

var baseTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func row(id int64, content string, minutes int) ports.Row {
	return ports.Row{
		"id":         id,
		"content":    content,
		"created_at": baseTime.Add(time.Duration(minutes) * time.Minute),
	}
}

// scriptedClient is a ports.Client whose answers are supplied per call.
type scriptedClient struct {
	mu sync.Mutex

	fetch  func(ctx context.Context, call int) ([]ports.Row, error)
	insert func(ctx context.Context, call int, fields map[string]any) (ports.Row, error)

	fetchCalls   int
	insertCalls  int
	lastTable    string
	subscribeErr error
	handler      ports.ChangeHandler
	kinds        []events.ChangeKind
	unsubscribed int
}

func (c *scriptedClient) FetchOrdered(ctx context.Context, table string, columns []string, orderBy string, dir ports.Direction) ([]ports.Row, error) {
	c.mu.Lock()
	c.fetchCalls++
	call := c.fetchCalls
	c.lastTable = table
	fn := c.fetch
	c.mu.Unlock()

	if fn == nil {
		return []ports.Row{}, nil
	}
	return fn(ctx, call)
}

func (c *scriptedClient) InsertRow(ctx context.Context, table string, fields map[string]any, returning []string) (ports.Row, error) {
	c.mu.Lock()
	c.insertCalls++
	call := c.insertCalls
	c.lastTable = table
	fn := c.insert
	c.mu.Unlock()

	if fn == nil {
		return nil, errors.New("insert not scripted")
	}
	return fn(ctx, call, fields)
}

func (c *scriptedClient) SubscribeChanges(ctx context.Context, table string, kinds []events.ChangeKind, handler ports.ChangeHandler) (ports.Subscription, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.subscribeErr != nil {
		return nil, c.subscribeErr
	}
	c.handler = handler
	c.kinds = kinds
	return &scriptedSubscription{client: c}, nil
}

func (c *scriptedClient) counts() (fetches, inserts int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetchCalls, c.insertCalls
}

func (c *scriptedClient) push(ctx context.Context, kind events.ChangeKind) {
	c.mu.Lock()
	h := c.handler
	c.mu.Unlock()
	if h != nil {
		h(ctx, ports.Change{Table: ports.DefaultPostsTable, Kind: kind, Source: "test"})
	}
}

func (c *scriptedClient) unsubscribeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unsubscribed
}

type scriptedSubscription struct {
	client *scriptedClient
}

func (s *scriptedSubscription) Unsubscribe() error {
	s.client.mu.Lock()
	defer s.client.mu.Unlock()
	s.client.unsubscribed++
	s.client.handler = nil
	return nil
}

func rowsOf(rows ...ports.Row) func(context.Context, int) ([]ports.Row, error) {
	return func(context.Context, int) ([]ports.Row, error) { return rows, nil }
}

var _ ports.Client = (*scriptedClient)(nil)
