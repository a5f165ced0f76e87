package rest

import (
	"github.com/philly/postboard/internal/adapters/api"
)

// Server combines all handlers to implement api.ServerInterface
type Server struct {
	*HealthHandler
	*FeedHandler
	*ComposerHandler
}

// NewServer creates a new server that implements api.ServerInterface
func NewServer(
	healthHandler *HealthHandler,
	feedHandler *FeedHandler,
	composerHandler *ComposerHandler,
) api.ServerInterface {
	return &Server{
		HealthHandler:   healthHandler,
		FeedHandler:     feedHandler,
		ComposerHandler: composerHandler,
	}
}

// Ensure Server implements api.ServerInterface
var _ api.ServerInterface = (*Server)(nil)
