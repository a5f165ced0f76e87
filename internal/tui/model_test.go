package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/philly/postboard/internal/adapters/changefeed"
	"github.com/philly/postboard/internal/adapters/memory"
	"github.com/philly/postboard/internal/platform/eventbus"
	"github.com/philly/postboard/internal/platform/logger"
	"github.com/philly/postboard/internal/posts/application"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModel(t *testing.T) (Model, *application.FeedStore) {
	t.Helper()
	log := logger.NewNop()
	client := memory.NewClient(changefeed.NewHub(eventbus.NewBus(log), log))
	cfg := application.FeedConfig{}
	store := application.NewFeedStore(client, log, cfg)
	composer := application.NewFeedComposer(client, log, cfg, store)
	return New(context.Background(), store, composer, nil), store
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model, cmd
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return m
}

func TestModel_LoadingThenEmpty(t *testing.T) {
	m, store := newTestModel(t)
	assert.Contains(t, m.View(), "Loading posts...")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	m, _ = update(t, m, snapshotMsg(store.Snapshot()))

	assert.Contains(t, m.View(), "No posts yet.")
}

func TestModel_SubmitClearsInput(t *testing.T) {
	m, store := newTestModel(t)
	require.NoError(t, store.LoadInitial(context.Background()))

	m = typeText(t, m, "hello from the terminal")
	assert.Equal(t, "hello from the terminal", m.composer.State().Draft)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Contains(t, m.View(), "Posting...")

	// A second enter while the first is pending sends nothing
	_, again := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, again)

	m, _ = update(t, m, cmd())
	m, _ = update(t, m, snapshotMsg(store.Snapshot()))

	assert.Empty(t, m.input.Value())
	assert.NotContains(t, m.View(), "Posting...")
	assert.Contains(t, m.View(), "hello from the terminal")
}

func TestModel_InputLockedWhileSubmitting(t *testing.T) {
	m, store := newTestModel(t)
	require.NoError(t, store.LoadInitial(context.Background()))

	m = typeText(t, m, "first")
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.False(t, m.input.Focused())

	m = typeText(t, m, " and more")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Equal(t, "first", m.input.Value())
	assert.Equal(t, "first", m.composer.State().Draft)

	m, _ = update(t, m, cmd())

	assert.True(t, m.input.Focused())
	assert.Empty(t, m.input.Value())
	m = typeText(t, m, "second")
	assert.Equal(t, "second", m.input.Value())
}

func TestModel_SubmitFailureRefocusesInput(t *testing.T) {
	m, _ := newTestModel(t)
	m = typeText(t, m, "draft")
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	m, _ = update(t, m, submittedMsg{err: application.ErrInsertFailed})

	assert.True(t, m.input.Focused())
	assert.Equal(t, "draft", m.input.Value())
}

func TestModel_EmptySubmitIsNoop(t *testing.T) {
	m, _ := newTestModel(t)
	m = typeText(t, m, "   ")

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
}

func TestModel_SubmitErrorKeepsDraft(t *testing.T) {
	m, _ := newTestModel(t)
	m = typeText(t, m, "draft")
	m.submitting = true

	m, _ = update(t, m, submittedMsg{err: application.ErrInsertFailed})

	assert.Equal(t, "draft", m.input.Value())
	assert.Contains(t, m.View(), "could not create post")
}

func TestModel_Quit(t *testing.T) {
	m, _ := newTestModel(t)

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_WaitsOnWatch(t *testing.T) {
	log := logger.NewNop()
	client := memory.NewClient(changefeed.NewHub(eventbus.NewBus(log), log))
	store := application.NewFeedStore(client, log, application.FeedConfig{})
	updates, stop := store.Watch()
	m := New(context.Background(), store, application.NewFeedComposer(client, log, application.FeedConfig{}, store), updates)

	cmd := m.waitForSnapshot()
	require.NotNil(t, cmd)
	require.NoError(t, store.LoadInitial(context.Background()))

	msg := cmd()
	snap, ok := msg.(snapshotMsg)
	require.True(t, ok)
	assert.Equal(t, application.FeedEmpty, snap.State)

	stop()
	assert.Nil(t, m.waitForSnapshot()())
}
