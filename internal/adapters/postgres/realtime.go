package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/philly/postboard/internal/adapters/changefeed"
	"github.com/philly/postboard/internal/platform/logger"
	"github.com/philly/postboard/internal/platform/postgres"
)

const (
	// DefaultNotifyChannel is the channel the posts trigger notifies on.
	DefaultNotifyChannel = "postboard_changes"

	realtimeSource = "postgres"
)

// RealtimeConfig configures the LISTEN loop
type RealtimeConfig struct {
	Channel          string
	RetryInterval    time.Duration
	MaxRetryInterval time.Duration
}

// Realtime holds a dedicated connection listening on the notify channel and
// republishes every notification on the hub.
type Realtime struct {
	pool   *pgxpool.Pool
	hub    *changefeed.Hub
	logger logger.Logger
	cfg    RealtimeConfig
}

// NewRealtime creates a listener; Run starts it.
func NewRealtime(pool *pgxpool.Pool, hub *changefeed.Hub, logger logger.Logger, cfg RealtimeConfig) *Realtime {
	if cfg.Channel == "" {
		cfg.Channel = DefaultNotifyChannel
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = time.Second
	}
	if cfg.MaxRetryInterval < cfg.RetryInterval {
		cfg.MaxRetryInterval = 30 * time.Second
	}
	return &Realtime{pool: pool, hub: hub, logger: logger, cfg: cfg}
}

// Name identifies the worker in logs
func (r *Realtime) Name() string { return "postgres-realtime" }

// Run listens until ctx is done, reconnecting with exponential backoff.
func (r *Realtime) Run(ctx context.Context) error {
	channel, err := postgres.QuoteIdentifier(r.cfg.Channel)
	if err != nil {
		return fmt.Errorf("Realtime.Run: %w", err)
	}

	delay := r.cfg.RetryInterval
	for {
		subscribed, err := r.listen(ctx, channel)
		if ctx.Err() != nil {
			r.logger.Info(ctx, "realtime channel CLOSED", "channel", r.cfg.Channel)
			return nil
		}
		if subscribed {
			delay = r.cfg.RetryInterval
		}
		r.logger.Warn(ctx, "realtime channel CHANNEL_ERROR",
			"channel", r.cfg.Channel,
			"error", err,
			"retry_in", delay,
		)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
		delay = nextDelay(delay, r.cfg.MaxRetryInterval)
	}
}

func (r *Realtime) listen(ctx context.Context, channel string) (bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer func() {
		// The connection goes back to the pool, so drop the registration first.
		cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if _, err := conn.Exec(cleanupCtx, "UNLISTEN *"); err != nil {
			conn.Conn().Close(cleanupCtx)
		}
		conn.Release()
	}()

	if _, err := conn.Exec(ctx, "LISTEN "+channel); err != nil {
		return false, fmt.Errorf("listen: %w", err)
	}
	r.logger.Info(ctx, "realtime channel SUBSCRIBED", "channel", r.cfg.Channel)

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return true, fmt.Errorf("wait for notification: %w", err)
		}
		r.handleNotification(ctx, notification.Payload)
	}
}

func (r *Realtime) handleNotification(ctx context.Context, payload string) {
	change, err := changefeed.DecodePayload([]byte(payload), realtimeSource)
	if err != nil {
		r.logger.Warn(ctx, "dropping realtime notification", "error", err)
		return
	}
	r.hub.Publish(ctx, change)
}

func nextDelay(current, limit time.Duration) time.Duration {
	next := current * 2
	if next > limit {
		return limit
	}
	return next
}
