package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/philly/postboard/internal/platform/logger"
	"github.com/philly/postboard/internal/posts/domain"
	"github.com/philly/postboard/internal/posts/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoInsert(_ context.Context, call int, fields map[string]any) (ports.Row, error) {
	return row(int64(call), fields["content"].(string), call), nil
}

func TestComposer_EmptyContentSendsNoRequest(t *testing.T) {
	client := &scriptedClient{insert: echoInsert}
	composer := NewComposer(client, logger.NewNop(), FeedConfig{}, nil)

	for _, content := range []string{"", "   ", "\n\t"} {
		_, err := composer.Submit(context.Background(), content)
		assert.ErrorIs(t, err, ErrEmptyContent, "content %q", content)
	}

	_, inserts := client.counts()
	assert.Zero(t, inserts)
}

func TestComposer_SuccessClearsDraftAndNotifies(t *testing.T) {
	client := &scriptedClient{insert: echoInsert}
	var created []domain.Post
	composer := NewComposer(client, logger.NewNop(), FeedConfig{}, func(_ context.Context, p domain.Post) {
		created = append(created, p)
	})
	composer.SetDraft("  hello  ")

	post, err := composer.Submit(context.Background(), "  hello  ")

	require.NoError(t, err)
	assert.Equal(t, int64(1), post.ID)
	assert.Equal(t, "hello", post.Content)
	assert.Equal(t, []domain.Post{post}, created)
	assert.Equal(t, ComposerState{}, composer.State())
}

func TestComposer_StoresContentAsTyped(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"tag in prose", "use <div> for layout", "use <div> for layout"},
		{"comparisons", "x<y and y>z", "x<y and y>z"},
		{"script only", "<script>alert(1)</script>", "<script>alert(1)</script>"},
		{"entities", "  <b>fish & chips</b>\n", "<b>fish & chips</b>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sent string
			client := &scriptedClient{insert: func(ctx context.Context, call int, fields map[string]any) (ports.Row, error) {
				sent = fields["content"].(string)
				return echoInsert(ctx, call, fields)
			}}
			composer := NewComposer(client, logger.NewNop(), FeedConfig{}, nil)

			post, err := composer.Submit(context.Background(), tt.content)

			require.NoError(t, err)
			assert.Equal(t, tt.want, sent)
			assert.Equal(t, tt.want, post.Content)
		})
	}
}

func TestComposer_FailureKeepsDraft(t *testing.T) {
	client := &scriptedClient{insert: func(context.Context, int, map[string]any) (ports.Row, error) {
		return nil, &ports.ServiceError{Message: "new row violates row-level security policy", Code: "42501"}
	}}
	called := false
	composer := NewComposer(client, logger.NewNop(), FeedConfig{}, func(context.Context, domain.Post) { called = true })

	_, err := composer.Submit(context.Background(), "hello")

	assert.ErrorIs(t, err, ErrInsertFailed)
	assert.Equal(t, "new row violates row-level security policy", err.Error())
	assert.False(t, called)
	state := composer.State()
	assert.Equal(t, "hello", state.Draft)
	assert.False(t, state.Submitting)
	assert.Equal(t, "new row violates row-level security policy", state.Error)
}

func TestComposer_RejectsSecondSubmitWhileInFlight(t *testing.T) {
	gate := make(chan struct{})
	client := &scriptedClient{insert: func(ctx context.Context, call int, fields map[string]any) (ports.Row, error) {
		<-gate
		return echoInsert(ctx, call, fields)
	}}
	composer := NewComposer(client, logger.NewNop(), FeedConfig{}, nil)

	done := make(chan error, 1)
	go func() {
		_, err := composer.Submit(context.Background(), "first")
		done <- err
	}()
	require.Eventually(t, func() bool { return composer.State().Submitting }, time.Second, time.Millisecond)
	assert.False(t, composer.CanSubmit())

	_, err := composer.Submit(context.Background(), "second")
	assert.ErrorIs(t, err, ErrSubmissionInFlight)

	close(gate)
	require.NoError(t, <-done)
	_, inserts := client.counts()
	assert.Equal(t, 1, inserts)

	// Reusable once idle again.
	_, err = composer.Submit(context.Background(), "third")
	assert.NoError(t, err)
}

func TestComposer_RetryAfterFailure(t *testing.T) {
	client := &scriptedClient{}
	client.insert = func(ctx context.Context, call int, fields map[string]any) (ports.Row, error) {
		if call == 1 {
			return nil, errors.New("connection reset")
		}
		return echoInsert(ctx, call, fields)
	}
	composer := NewComposer(client, logger.NewNop(), FeedConfig{}, nil)

	_, err := composer.Submit(context.Background(), "hello")
	require.Error(t, err)
	assert.Equal(t, "connection reset", composer.State().Error)

	_, err = composer.Submit(context.Background(), composer.State().Draft)
	require.NoError(t, err)
	assert.Empty(t, composer.State().Error)
}

func TestComposer_CanSubmit(t *testing.T) {
	composer := NewComposer(&scriptedClient{}, logger.NewNop(), FeedConfig{}, nil)

	assert.False(t, composer.CanSubmit())
	composer.SetDraft("  ")
	assert.False(t, composer.CanSubmit())
	composer.SetDraft("hi")
	assert.True(t, composer.CanSubmit())
}

func TestFeedComposer_InsertsIntoStore(t *testing.T) {
	client := &scriptedClient{fetch: rowsOf(), insert: echoInsert}
	store := newStore(client)
	require.NoError(t, store.LoadInitial(context.Background()))
	composer := NewFeedComposer(client, logger.NewNop(), FeedConfig{}, store)

	_, err := composer.Submit(context.Background(), "hello")

	require.NoError(t, err)
	snap := store.Snapshot()
	require.Len(t, snap.Posts, 1)
	assert.Equal(t, "hello", snap.Posts[0].Content)
}
