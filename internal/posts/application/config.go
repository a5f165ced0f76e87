package application

import (
	"context"
	"time"

	"github.com/philly/postboard/internal/posts/ports"
)

// FeedConfig configures the feed store, composer and view
type FeedConfig struct {
	// Table is the backend table holding posts
	Table string
	// RequestTimeout bounds every backend call; zero disables the bound
	RequestTimeout time.Duration
}

func (c FeedConfig) table() string {
	if c.Table == "" {
		return ports.DefaultPostsTable
	}
	return c.Table
}

func (c FeedConfig) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.RequestTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.RequestTimeout)
}
