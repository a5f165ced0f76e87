package rest

import (
	"net/http"

	"github.com/philly/postboard/internal/adapters/api"
	"github.com/philly/postboard/internal/posts/application"
)

// ComposerHandler accepts new posts
type ComposerHandler struct {
	*BaseHandler
	composer *application.Composer
}

// NewComposerHandler creates a new composer handler
func NewComposerHandler(base *BaseHandler, composer *application.Composer) *ComposerHandler {
	return &ComposerHandler{
		BaseHandler: base,
		composer:    composer,
	}
}

// CreatePost submits content through the composer. The created post is
// already in the feed when the response is written.
func (h *ComposerHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req api.CreatePostJSONRequestBody
	if !h.DecodeJSON(w, r, &req) {
		return
	}

	post, err := h.composer.Submit(r.Context(), req.Content)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.WriteJSONResponse(w, r, domainPostToAPI(post), http.StatusCreated)
}
