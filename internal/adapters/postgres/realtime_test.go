package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/philly/postboard/internal/adapters/changefeed"
	"github.com/philly/postboard/internal/platform/eventbus"
	"github.com/philly/postboard/internal/platform/events"
	"github.com/philly/postboard/internal/platform/logger"
	"github.com/philly/postboard/internal/posts/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRealtime_Defaults(t *testing.T) {
	r := NewRealtime(nil, nil, logger.NewNop(), RealtimeConfig{})

	assert.Equal(t, DefaultNotifyChannel, r.cfg.Channel)
	assert.Equal(t, time.Second, r.cfg.RetryInterval)
	assert.Equal(t, 30*time.Second, r.cfg.MaxRetryInterval)
}

func TestNextDelay(t *testing.T) {
	assert.Equal(t, 2*time.Second, nextDelay(time.Second, 10*time.Second))
	assert.Equal(t, 10*time.Second, nextDelay(8*time.Second, 10*time.Second))
}

func TestRealtime_RunRejectsBadChannel(t *testing.T) {
	r := NewRealtime(nil, nil, logger.NewNop(), RealtimeConfig{Channel: "Bad-Channel"})

	err := r.Run(context.Background())
	assert.Error(t, err)
}

func TestRealtime_HandleNotification(t *testing.T) {
	hub := changefeed.NewHub(eventbus.NewBus(logger.NewNop()), logger.NewNop())
	r := NewRealtime(nil, hub, logger.NewNop(), RealtimeConfig{})

	got := make(chan ports.Change, 1)
	sub, err := hub.Subscribe(context.Background(), "posts", events.AllChangeKinds(),
		func(ctx context.Context, change ports.Change) { got <- change })
	require.NoError(t, err)
	defer func() { _ = sub.Unsubscribe() }()

	r.handleNotification(context.Background(), "not json")
	r.handleNotification(context.Background(),
		`{"table":"posts","type":"INSERT","id":7,"commit_timestamp":"2024-05-01T10:00:00.5Z"}`)

	select {
	case change := <-got:
		assert.Equal(t, events.ChangeInsert, change.Kind)
		assert.Equal(t, "postgres", change.Source)
		assert.Equal(t, ports.Row{"id": float64(7)}, change.Record)
	case <-time.After(time.Second):
		t.Fatal("notification not republished")
	}
}
