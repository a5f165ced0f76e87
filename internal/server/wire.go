//go:build wireinject
// +build wireinject

package server

import (
	"context"

	"github.com/google/wire"
	"github.com/philly/postboard/internal/adapters/changefeed"
	"github.com/philly/postboard/internal/adapters/rest"
	"github.com/philly/postboard/internal/adapters/rest/middleware"
	"github.com/philly/postboard/internal/adapters/web"
	"github.com/philly/postboard/internal/platform/eventbus"
	"github.com/philly/postboard/internal/platform/logger"
	"github.com/philly/postboard/internal/posts/application"
)

// InitializeApp creates a fully configured App with all dependencies
func InitializeApp(ctx context.Context) (*App, func(), error) {
	wire.Build(
		// Bootstrap phase and main logger
		logger.ProviderSet,
		LoadConfig,
		provideLoggerConfig,

		// Realtime fan-out
		eventbus.ProviderSet,
		changefeed.ProviderSet,

		// Backend service selected by BACKEND
		ProvideBackend,
		wire.FieldsOf(new(*Backend), "Client", "Pinger"),

		// Application services
		provideFeedConfig,
		application.ProviderSet,
		wire.Bind(new(rest.LiveStatus), new(*application.FeedView)),
		wire.Bind(new(web.LiveStatus), new(*application.FeedView)),

		// REST handlers and the page
		rest.ProviderSet,
		provideVersion, // Provide version string for HealthHandler
		web.ProviderSet,

		// Auth middleware
		provideJWTConfig,
		middleware.ProviderSet,

		// HTTP Server
		NewHTTPServer,

		// App
		NewApp,
	)

	return nil, nil, nil
}
