// Package web renders the board as a single server-side page.
package web

import (
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/philly/postboard/internal/platform/apperror"
	"github.com/philly/postboard/internal/platform/logger"
	"github.com/philly/postboard/internal/posts/application"
	"github.com/philly/postboard/internal/posts/domain"
)

//go:embed templates/*.html
var templates embed.FS

var pageTemplate = template.Must(template.ParseFS(templates, "templates/feed.html"))

// maxFormBytes bounds the composer form body
const maxFormBytes = 64 << 10

// displayLayout is the server rendered timestamp; the page script replaces it
// with the browser's locale format.
const displayLayout = "Jan 2, 2006 15:04 UTC"

// LiveStatus reports whether the feed receives push updates.
type LiveStatus interface {
	Live() bool
}

// Handler serves the page and the composer form.
type Handler struct {
	store    *application.FeedStore
	composer *application.Composer
	live     LiveStatus
	logger   logger.Logger
}

// NewHandler creates the page handler.
func NewHandler(store *application.FeedStore, composer *application.Composer, live LiveStatus, logger logger.Logger) *Handler {
	return &Handler{
		store:    store,
		composer: composer,
		live:     live,
		logger:   logger,
	}
}

// Mount registers the page routes on r. postMiddleware wraps the form post
// only, so reading the board never requires a session.
func (h *Handler) Mount(r chi.Router, postMiddleware ...func(http.Handler) http.Handler) {
	r.Get("/", h.Page)
	r.With(postMiddleware...).Post("/posts", h.Submit)
}

type postView struct {
	Content string
	ISO     string
	Display string
}

type pageData struct {
	State      string
	Posts      []postView
	Error      string
	Draft      string
	Submitting bool
	Live       bool
}

// Page renders the feed and the composer.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, h.data("", ""), http.StatusOK)
}

// Submit handles the composer form. Success redirects back to the page;
// failure renders the page again with the error and the draft kept.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		h.render(w, r, h.data("invalid form submission", ""), http.StatusBadRequest)
		return
	}
	content := r.PostFormValue("content")

	if _, err := h.composer.Submit(r.Context(), content); err != nil {
		status, message := describe(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error(r.Context(), "form submission failed", "error", err)
		}
		h.render(w, r, h.data(message, content), status)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) data(submitErr, draft string) pageData {
	snap := h.store.Snapshot()
	composer := h.composer.State()

	data := pageData{
		State:      string(snap.State),
		Posts:      make([]postView, 0, len(snap.Posts)),
		Error:      snap.Error,
		Draft:      draft,
		Submitting: composer.Submitting,
	}
	if submitErr != "" {
		data.Error = submitErr
	}
	if h.live != nil {
		data.Live = h.live.Live()
	}
	for _, p := range snap.Posts {
		data.Posts = append(data.Posts, newPostView(p))
	}
	return data
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, data pageData, status int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, data); err != nil {
		h.logger.Error(r.Context(), "failed to render page", "error", err)
	}
}

func newPostView(p domain.Post) postView {
	return postView{
		Content: p.Content,
		ISO:     p.CreatedAt.UTC().Format(time.RFC3339),
		Display: p.CreatedAt.UTC().Format(displayLayout),
	}
}

func describe(err error) (int, string) {
	if appErr, ok := apperror.As(err); ok {
		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusInternalServerError
		}
		return status, appErr.Message
	}
	return http.StatusInternalServerError, "internal server error"
}
