package rest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/philly/postboard/internal/adapters/api"
	"github.com/philly/postboard/internal/platform/events"
	"github.com/philly/postboard/internal/posts/application"
	"github.com/philly/postboard/internal/posts/domain"
)

// sseKeepAlive is how often an idle event stream sends a comment line
const sseKeepAlive = 25 * time.Second

// FeedHandler serves the feed store over HTTP
type FeedHandler struct {
	*BaseHandler
	store *application.FeedStore
	live  LiveStatus

	closing   chan struct{}
	closeOnce sync.Once
}

// NewFeedHandler creates a new feed handler
func NewFeedHandler(base *BaseHandler, store *application.FeedStore, live LiveStatus) *FeedHandler {
	return &FeedHandler{
		BaseHandler: base,
		store:       store,
		live:        live,
		closing:     make(chan struct{}),
	}
}

// CloseStreams ends every open event stream
func (h *FeedHandler) CloseStreams() {
	h.closeOnce.Do(func() { close(h.closing) })
}

// ListPosts returns the current snapshot without contacting the backend
func (h *FeedHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	h.WriteJSONResponse(w, r, h.snapshot(h.store.Snapshot()), http.StatusOK)
}

// ReloadFeed refetches every post
func (h *FeedHandler) ReloadFeed(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Reload(r.Context()); err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSONResponse(w, r, h.snapshot(h.store.Snapshot()), http.StatusOK)
}

// NotifyFeedChange is the webhook entry point of the backend: any kind of
// change triggers a full refetch.
func (h *FeedHandler) NotifyFeedChange(w http.ResponseWriter, r *http.Request, kind api.NotifyFeedChangeParamsKind) {
	parsed, err := events.ParseChangeKind(string(kind))
	if err != nil {
		h.HandleError(w, r, application.ErrUnknownChangeKind.WithDetails(map[string]string{"kind": string(kind)}))
		return
	}
	if err := h.store.OnRemoteChange(r.Context(), parsed); err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSONResponse(w, r, h.snapshot(h.store.Snapshot()), http.StatusAccepted)
}

// StreamFeedEvents pushes a "snapshot" event after every change of the feed
func (h *FeedHandler) StreamFeedEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		h.WriteJSONError(w, r, "STREAMING_UNSUPPORTED", "streaming is not supported", http.StatusInternalServerError)
		return
	}

	// The stream outlives the server's write timeout
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	updates, stop := h.store.Watch()
	defer stop()

	ticker := time.NewTicker(sseKeepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-h.closing:
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case snap, ok := <-updates:
			if !ok {
				return
			}
			data, err := json.Marshal(h.snapshot(snap))
			if err != nil {
				h.logger.Error(r.Context(), "failed to encode feed event", "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "id: %d\nevent: snapshot\ndata: %s\n\n", snap.Version, data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func (h *FeedHandler) snapshot(snap application.FeedSnapshot) api.FeedSnapshot {
	live := false
	if h.live != nil {
		live = h.live.Live()
	}
	out := api.FeedSnapshot{
		State:   api.FeedSnapshotState(snap.State),
		Posts:   make([]api.Post, 0, len(snap.Posts)),
		Version: int64(snap.Version),
		Live:    live,
	}
	for _, p := range snap.Posts {
		out.Posts = append(out.Posts, domainPostToAPI(p))
	}
	if snap.Error != "" {
		msg := snap.Error
		out.Error = &msg
	}
	return out
}

func domainPostToAPI(p domain.Post) api.Post {
	return api.Post{
		Id:        p.ID,
		Content:   p.Content,
		CreatedAt: p.CreatedAt,
	}
}
