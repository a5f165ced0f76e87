package application

import (
	"context"
	"errors"
	"testing"

	"github.com/philly/postboard/internal/platform/events"
	"github.com/philly/postboard/internal/platform/logger"
	"github.com/philly/postboard/internal/posts/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newView(client *scriptedClient) (*FeedView, *FeedStore) {
	store := newStore(client)
	return NewFeedView(client, store, logger.NewNop(), FeedConfig{}), store
}

func TestFeedView_ActivateSubscribesAndLoads(t *testing.T) {
	client := &scriptedClient{fetch: rowsOf(row(1, "a", 1))}
	view, store := newView(client)

	release, err := view.Activate(context.Background())
	require.NoError(t, err)
	defer release()

	assert.True(t, view.Active())
	assert.True(t, view.Live())
	assert.ElementsMatch(t, events.AllChangeKinds(), client.kinds)
	assert.Equal(t, FeedPopulated, store.Snapshot().State)
}

func TestFeedView_RemoteChangeRefetches(t *testing.T) {
	client := &scriptedClient{}
	client.fetch = func(_ context.Context, call int) ([]ports.Row, error) {
		if call == 1 {
			return []ports.Row{}, nil
		}
		return []ports.Row{row(1, "from elsewhere", 1)}, nil
	}
	view, store := newView(client)
	release, err := view.Activate(context.Background())
	require.NoError(t, err)
	defer release()

	client.push(context.Background(), events.ChangeDelete)

	assert.Equal(t, []int64{1}, ids(store.Snapshot().Posts))
}

func TestFeedView_ReleaseUnsubscribesOnce(t *testing.T) {
	client := &scriptedClient{fetch: rowsOf()}
	view, _ := newView(client)

	release, err := view.Activate(context.Background())
	require.NoError(t, err)
	release()
	release()

	assert.Equal(t, 1, client.unsubscribeCount())
	assert.False(t, view.Active())
	assert.False(t, view.Live())

	// No handler is left behind, so pushes no longer refetch.
	client.push(context.Background(), events.ChangeInsert)
	fetches, _ := client.counts()
	assert.Equal(t, 1, fetches)
}

func TestFeedView_ReleaseAfterFailedLoad(t *testing.T) {
	client := &scriptedClient{fetch: func(context.Context, int) ([]ports.Row, error) {
		return nil, errors.New("service unavailable")
	}}
	view, store := newView(client)

	release, err := view.Activate(context.Background())
	require.ErrorIs(t, err, ErrFetchFailed)
	require.NotNil(t, release)
	release()

	assert.Equal(t, 1, client.unsubscribeCount())
	assert.Equal(t, FeedUnavailable, store.Snapshot().State)
}

func TestFeedView_SubscribeFailureDegrades(t *testing.T) {
	client := &scriptedClient{fetch: rowsOf(row(1, "a", 1)), subscribeErr: errors.New("realtime disabled")}
	view, store := newView(client)

	release, err := view.Activate(context.Background())
	require.NoError(t, err)
	defer release()

	assert.False(t, view.Live())
	assert.True(t, view.Active())
	assert.Equal(t, FeedPopulated, store.Snapshot().State)
	assert.Empty(t, store.Snapshot().Error)
}

func TestFeedView_ActivateTwice(t *testing.T) {
	client := &scriptedClient{fetch: rowsOf()}
	view, _ := newView(client)

	release, err := view.Activate(context.Background())
	require.NoError(t, err)

	_, err = view.Activate(context.Background())
	assert.ErrorIs(t, err, ErrFeedAlreadyActive)

	release()
	release2, err := view.Activate(context.Background())
	require.NoError(t, err)
	release2()
}
