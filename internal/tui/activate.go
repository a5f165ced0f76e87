package tui

import "context"

// Activator is implemented by application.FeedView.
type Activator interface {
	Activate(ctx context.Context) (func(), error)
}

// StartFeed activates view in the background so the UI can show the loading
// state. A failed first load is reported by the feed itself. The returned
// stop cancels an activation still in progress, then releases it.
func StartFeed(parent context.Context, view Activator) (stop func()) {
	ctx, cancel := context.WithCancel(parent)
	released := make(chan func(), 1)
	go func() {
		release, _ := view.Activate(ctx)
		released <- release
	}()

	return func() {
		cancel()
		(<-released)()
	}
}
