package application

import (
	"context"
	"sync"

	"github.com/philly/postboard/internal/platform/events"
	"github.com/philly/postboard/internal/platform/logger"
	"github.com/philly/postboard/internal/posts/ports"
)

// FeedView owns the push subscription of a feed store for as long as the
// feed is shown.
type FeedView struct {
	client ports.Client
	store  *FeedStore
	logger logger.Logger
	cfg    FeedConfig

	mu     sync.Mutex
	active bool
	live   bool
}

// NewFeedView creates an inactive view over store.
func NewFeedView(client ports.Client, store *FeedStore, logger logger.Logger, cfg FeedConfig) *FeedView {
	return &FeedView{client: client, store: store, logger: logger, cfg: cfg}
}

// Activate subscribes to every kind of change on the posts table and runs
// the initial load. A failed subscription is logged and the feed carries on
// without live updates. The returned release func unsubscribes; it is safe
// to call more than once and must be called on every exit path, including
// when the initial load fails.
func (v *FeedView) Activate(ctx context.Context) (func(), error) {
	v.mu.Lock()
	if v.active {
		v.mu.Unlock()
		return func() {}, ErrFeedAlreadyActive
	}
	v.active = true
	v.mu.Unlock()

	sub, err := v.client.SubscribeChanges(ctx, v.cfg.table(), events.AllChangeKinds(), v.handleChange)
	if err != nil {
		chErr := requestError(ErrSubscribeFailed, err)
		v.logger.Error(ctx, "realtime subscription failed, live updates disabled",
			"table", v.cfg.table(),
			"code", chErr.Code,
			"error", err,
		)
		sub = nil
	}

	v.mu.Lock()
	v.live = sub != nil
	v.mu.Unlock()

	var once sync.Once
	release := func() {
		once.Do(func() {
			if sub != nil {
				if err := sub.Unsubscribe(); err != nil {
					v.logger.Warn(context.Background(), "failed to release realtime subscription", "error", err)
				}
			}
			v.mu.Lock()
			v.active = false
			v.live = false
			v.mu.Unlock()
		})
	}

	if err := v.store.LoadInitial(ctx); err != nil {
		return release, err
	}
	return release, nil
}

// Live reports whether the view currently receives push notifications.
func (v *FeedView) Live() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.live
}

// Active reports whether the view is between Activate and release.
func (v *FeedView) Active() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.active
}

func (v *FeedView) handleChange(ctx context.Context, change ports.Change) {
	if err := v.store.OnRemoteChange(ctx, change.Kind); err != nil {
		v.logger.Warn(ctx, "refetch after remote change failed",
			"kind", change.Kind,
			"source", change.Source,
			"error", err,
		)
	}
}
