package application

import (
	"context"
	"html"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/philly/postboard/internal/platform/logger"
	"github.com/philly/postboard/internal/posts/domain"
	"github.com/philly/postboard/internal/posts/ports"
)

// CreatedHandler receives every post the composer created.
type CreatedHandler func(ctx context.Context, post domain.Post)

// ComposerState is a read-only copy of the composer.
type ComposerState struct {
	Draft      string
	Submitting bool
	Error      string
}

// Composer validates and submits new posts. It allows one outstanding
// create request at a time.
type Composer struct {
	id        uuid.UUID
	client    ports.Client
	logger    logger.Logger
	cfg       FeedConfig
	sanitizer *bluemonday.Policy
	onCreated CreatedHandler

	mu       sync.Mutex
	draft    string
	inFlight bool
	lastErr  string
}

// NewComposer creates a composer; onCreated may be nil.
func NewComposer(client ports.Client, logger logger.Logger, cfg FeedConfig, onCreated CreatedHandler) *Composer {
	return &Composer{
		id:        uuid.New(),
		client:    client,
		logger:    logger,
		cfg:       cfg,
		sanitizer: bluemonday.StrictPolicy(),
		onCreated: onCreated,
	}
}

// NewFeedComposer wires a composer whose created posts go straight into store.
func NewFeedComposer(client ports.Client, logger logger.Logger, cfg FeedConfig, store *FeedStore) *Composer {
	return NewComposer(client, logger, cfg, func(_ context.Context, post domain.Post) {
		store.InsertOptimistic(post)
	})
}

// SetDraft records what the user is typing.
func (c *Composer) SetDraft(draft string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = draft
}

// State returns the current draft, submission flag and error.
func (c *Composer) State() ComposerState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ComposerState{Draft: c.draft, Submitting: c.inFlight, Error: c.lastErr}
}

// CanSubmit mirrors the enabled state of the submit control.
func (c *Composer) CanSubmit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.inFlight && strings.TrimSpace(c.draft) != ""
}

// Submit creates a post from content. Empty content and a submission already
// in flight are rejected without contacting the backend. On success the
// draft is cleared and the post handed to the on-created handler; on failure
// the draft is kept and the backend's message recorded.
func (c *Composer) Submit(ctx context.Context, content string) (domain.Post, error) {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return domain.Post{}, ErrSubmissionInFlight
	}
	c.draft = content
	trimmed, err := domain.NormalizeContent(content)
	if err != nil {
		c.mu.Unlock()
		return domain.Post{}, ErrEmptyContent
	}
	c.inFlight = true
	c.lastErr = ""
	c.mu.Unlock()

	if c.hasMarkup(trimmed) {
		c.logger.Debug(ctx, "content contains markup, storing as typed", "composer_id", c.id)
	}

	post, err := c.create(ctx, trimmed)

	c.mu.Lock()
	c.inFlight = false
	if err != nil {
		c.lastErr = ports.UserMessage(err)
		c.mu.Unlock()
		c.logger.Warn(ctx, "failed to create post", "composer_id", c.id, "error", err)
		return domain.Post{}, requestError(ErrInsertFailed, err)
	}
	c.draft = ""
	c.mu.Unlock()

	c.logger.Info(ctx, "post created", "composer_id", c.id, "post_id", post.ID)
	if c.onCreated != nil {
		c.onCreated(ctx, post)
	}
	return post, nil
}

func (c *Composer) create(ctx context.Context, content string) (domain.Post, error) {
	reqCtx, cancel := c.cfg.withTimeout(ctx)
	defer cancel()

	row, err := c.client.InsertRow(reqCtx, c.cfg.table(), ports.NewPostFields(content), ports.PostColumns)
	if err != nil {
		return domain.Post{}, err
	}
	return ports.DecodePost(row)
}

// hasMarkup reports whether content holds anything the strict policy would
// remove. Content is never rewritten; output escaping happens at render time.
func (c *Composer) hasMarkup(content string) bool {
	return html.UnescapeString(c.sanitizer.Sanitize(content)) != content
}
