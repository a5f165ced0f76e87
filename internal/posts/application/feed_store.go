package application

import (
	"context"
	"sync"

	"github.com/philly/postboard/internal/platform/events"
	"github.com/philly/postboard/internal/platform/logger"
	"github.com/philly/postboard/internal/posts/domain"
	"github.com/philly/postboard/internal/posts/ports"
)

// FeedState is what the feed view should render.
type FeedState string

const (
	// FeedLoading: nothing has been loaded yet and no load has failed
	FeedLoading FeedState = "loading"
	// FeedEmpty: a load succeeded and there are no posts
	FeedEmpty FeedState = "empty"
	// FeedPopulated: there is at least one post to show
	FeedPopulated FeedState = "populated"
	// FeedUnavailable: the first load failed, see Error
	FeedUnavailable FeedState = "unavailable"
)

// FeedSnapshot is an immutable copy of the store's state.
type FeedSnapshot struct {
	State   FeedState
	Posts   []domain.Post
	Error   string
	Version uint64
}

type pendingPost struct {
	post domain.Post
	// refetches with a sequence number up to afterSeq were issued before
	// the post existed on the backend and may not contain it
	afterSeq uint64
}

// FeedStore keeps a de-duplicated, newest-first view of the posts table fed
// by bulk loads, remote change notifications and optimistic inserts.
type FeedStore struct {
	client ports.Client
	logger logger.Logger
	cfg    FeedConfig

	mu       sync.Mutex
	posts    []domain.Post
	loaded   bool
	errMsg   string
	issued   uint64
	applied  uint64
	pending  []pendingPost
	version  uint64
	watchers map[uint64]chan FeedSnapshot
	nextID   uint64
}

// NewFeedStore creates an empty store reading through client.
func NewFeedStore(client ports.Client, logger logger.Logger, cfg FeedConfig) *FeedStore {
	return &FeedStore{
		client:   client,
		logger:   logger,
		cfg:      cfg,
		watchers: make(map[uint64]chan FeedSnapshot),
	}
}

// LoadInitial fetches every post. While no load has completed the store
// reports FeedLoading.
func (s *FeedStore) LoadInitial(ctx context.Context) error {
	return s.refetch(ctx, "initial")
}

// Reload refetches on user request.
func (s *FeedStore) Reload(ctx context.Context) error {
	return s.refetch(ctx, "manual")
}

// OnRemoteChange reacts to a change notification. Every kind triggers a
// full refetch.
func (s *FeedStore) OnRemoteChange(ctx context.Context, kind events.ChangeKind) error {
	if !kind.IsValid() {
		return ErrUnknownChangeKind.WithDetails(map[string]string{"kind": string(kind)})
	}
	return s.refetch(ctx, "remote_"+string(kind))
}

// InsertOptimistic places post at its created_at position, normally the
// head. It is a no-op when a post with the same id is already present.
func (s *FeedStore) InsertOptimistic(post domain.Post) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.posts {
		if p.ID == post.ID {
			return
		}
	}

	s.pending = append(s.pending, pendingPost{post: post, afterSeq: s.issued})
	s.posts = insertSorted(s.posts, post)
	s.changedLocked()
}

// Snapshot returns the current state.
func (s *FeedStore) Snapshot() FeedSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Watch returns a channel receiving the latest snapshot after every change,
// starting with the current one. Slow readers only miss intermediate
// snapshots. The returned func stops the watch and closes the channel.
func (s *FeedStore) Watch() (<-chan FeedSnapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	ch := make(chan FeedSnapshot, 1)
	ch <- s.snapshotLocked()
	s.watchers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.watchers, id)
			close(ch)
		})
	}
}

func (s *FeedStore) refetch(ctx context.Context, reason string) error {
	s.mu.Lock()
	s.issued++
	seq := s.issued
	s.mu.Unlock()

	reqCtx, cancel := s.cfg.withTimeout(ctx)
	rows, err := s.client.FetchOrdered(reqCtx, s.cfg.table(), ports.PostColumns, ports.ColumnCreatedAt, ports.Descending)
	cancel()

	var fetched []domain.Post
	if err == nil {
		fetched, err = ports.DecodePosts(rows)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq <= s.applied {
		s.logger.Debug(ctx, "discarding stale refetch", "seq", seq, "applied", s.applied, "reason", reason)
		if err != nil {
			return requestError(ErrFetchFailed, err)
		}
		return nil
	}
	s.applied = seq

	if err != nil {
		s.errMsg = ports.UserMessage(err)
		s.changedLocked()
		s.logger.Warn(ctx, "failed to load posts", "error", err, "seq", seq, "reason", reason)
		return requestError(ErrFetchFailed, err)
	}

	merged := fetched
	kept := s.pending[:0]
	for _, p := range s.pending {
		if p.afterSeq >= seq {
			merged = append(merged, p.post)
			kept = append(kept, p)
		}
	}
	s.pending = kept

	merged = domain.Dedupe(merged)
	domain.SortNewestFirst(merged)
	s.posts = merged
	s.loaded = true
	s.errMsg = ""
	s.changedLocked()

	s.logger.Debug(ctx, "posts loaded", "count", len(merged), "seq", seq, "reason", reason)
	return nil
}

func (s *FeedStore) snapshotLocked() FeedSnapshot {
	posts := make([]domain.Post, len(s.posts))
	copy(posts, s.posts)

	var state FeedState
	switch {
	case len(posts) > 0:
		state = FeedPopulated
	case s.loaded:
		state = FeedEmpty
	case s.errMsg != "":
		state = FeedUnavailable
	default:
		state = FeedLoading
	}

	return FeedSnapshot{
		State:   state,
		Posts:   posts,
		Error:   s.errMsg,
		Version: s.version,
	}
}

func (s *FeedStore) changedLocked() {
	s.version++
	snap := s.snapshotLocked()
	for _, ch := range s.watchers {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}

func insertSorted(posts []domain.Post, post domain.Post) []domain.Post {
	i := 0
	for i < len(posts) && posts[i].NewerThan(post) {
		i++
	}
	posts = append(posts, domain.Post{})
	copy(posts[i+1:], posts[i:])
	posts[i] = post
	return posts
}
