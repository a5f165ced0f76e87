// Package tui is a terminal front end for the board. It drives the same feed
// store and composer as the web page.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/philly/postboard/internal/posts/application"
)

const timestampLayout = "Jan 2 15:04"

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	timestampStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	cardStyle      = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)
)

type snapshotMsg application.FeedSnapshot

type submittedMsg struct{ err error }

type loadedMsg struct{ err error }

// Model is the bubbletea model of the board
type Model struct {
	ctx      context.Context
	store    *application.FeedStore
	composer *application.Composer
	updates  <-chan application.FeedSnapshot

	input      textinput.Model
	snapshot   application.FeedSnapshot
	submitting bool
	err        string

	width  int
	height int
}

// New creates the model. updates is a channel from FeedStore.Watch.
func New(ctx context.Context, store *application.FeedStore, composer *application.Composer, updates <-chan application.FeedSnapshot) Model {
	input := textinput.New()
	input.Placeholder = "What's on your mind?"
	input.CharLimit = 500
	input.Focus()

	return Model{
		ctx:      ctx,
		store:    store,
		composer: composer,
		updates:  updates,
		input:    input,
		snapshot: store.Snapshot(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForSnapshot())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(msg.Width-4, 10)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "ctrl+r":
			return m, m.reload()
		case "enter":
			return m.submit()
		}
		if m.submitting {
			return m, nil
		}

	case snapshotMsg:
		m.snapshot = application.FeedSnapshot(msg)
		return m, m.waitForSnapshot()

	case submittedMsg:
		m.submitting = false
		focus := m.input.Focus()
		if msg.err != nil {
			m.err = msg.err.Error()
			return m, focus
		}
		m.err = ""
		m.input.Reset()
		return m, focus

	case loadedMsg:
		// Load failures reach the view through the snapshot
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.composer.SetDraft(m.input.Value())
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	content := m.input.Value()
	if m.submitting || strings.TrimSpace(content) == "" {
		return m, nil
	}
	// Input stays read-only until the result arrives
	m.submitting = true
	m.err = ""
	m.input.Blur()

	composer, ctx := m.composer, m.ctx
	return m, func() tea.Msg {
		_, err := composer.Submit(ctx, content)
		return submittedMsg{err: err}
	}
}

func (m Model) reload() tea.Cmd {
	store, ctx := m.store, m.ctx
	return func() tea.Msg {
		return loadedMsg{err: store.Reload(ctx)}
	}
}

func (m Model) waitForSnapshot() tea.Cmd {
	updates := m.updates
	if updates == nil {
		return nil
	}
	return func() tea.Msg {
		snap, ok := <-updates
		if !ok {
			return nil
		}
		return snapshotMsg(snap)
	}
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Postboard"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	if m.submitting {
		b.WriteString(statusStyle.Render("Posting..."))
		b.WriteString("\n")
	}

	errMsg := m.err
	if errMsg == "" {
		errMsg = m.snapshot.Error
	}
	if errMsg != "" {
		b.WriteString(errorStyle.Render(errMsg))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch m.snapshot.State {
	case application.FeedLoading:
		b.WriteString(statusStyle.Render("Loading posts..."))
		b.WriteString("\n")
	case application.FeedEmpty:
		b.WriteString(statusStyle.Render("No posts yet. Be the first to post."))
		b.WriteString("\n")
	case application.FeedUnavailable:
		b.WriteString(statusStyle.Render("Posts are unavailable. Press ctrl+r to retry."))
		b.WriteString("\n")
	}

	for _, p := range m.snapshot.Posts {
		card := p.Content + "\n" + timestampStyle.Render(p.CreatedAt.In(time.Local).Format(timestampLayout))
		b.WriteString(cardStyle.Render(card))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(statusStyle.Render(fmt.Sprintf("%d posts · enter post · ctrl+r reload · esc quit", len(m.snapshot.Posts))))
	return b.String()
}
