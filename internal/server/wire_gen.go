// Injectors for wire.go, written out by hand in wire's output layout.
// go generate replaces this file with wire's own output.

//go:generate go run -mod=mod github.com/google/wire/cmd/wire
//go:build !wireinject
// +build !wireinject

package server

import (
	"context"

	"github.com/philly/postboard/internal/adapters/changefeed"
	"github.com/philly/postboard/internal/adapters/rest"
	"github.com/philly/postboard/internal/adapters/rest/middleware"
	"github.com/philly/postboard/internal/adapters/web"
	"github.com/philly/postboard/internal/platform/eventbus"
	"github.com/philly/postboard/internal/platform/logger"
	"github.com/philly/postboard/internal/posts/application"
)

// Injectors from wire.go:

// InitializeApp creates a fully configured App with all dependencies
func InitializeApp(ctx context.Context) (*App, func(), error) {
	bootstrapLogger := logger.NewBootstrapLogger()
	config, err := LoadConfig(bootstrapLogger)
	if err != nil {
		return nil, nil, err
	}
	loggerConfig := provideLoggerConfig(config)
	slogAdapter := logger.NewConfiguredLogger(loggerConfig)
	bus := eventbus.NewBus(slogAdapter)
	hub := changefeed.NewHub(bus, slogAdapter)
	backend, cleanup, err := ProvideBackend(ctx, config, hub, slogAdapter)
	if err != nil {
		return nil, nil, err
	}
	baseHandler := rest.NewBaseHandler(slogAdapter)
	string2 := provideVersion()
	pinger := backend.Pinger
	client := backend.Client
	feedConfig := provideFeedConfig(config)
	feedStore := application.NewFeedStore(client, slogAdapter, feedConfig)
	feedView := application.NewFeedView(client, feedStore, slogAdapter, feedConfig)
	healthHandler := rest.NewHealthHandler(baseHandler, string2, pinger, feedView)
	feedHandler := rest.NewFeedHandler(baseHandler, feedStore, feedView)
	composer := application.NewFeedComposer(client, slogAdapter, feedConfig, feedStore)
	composerHandler := rest.NewComposerHandler(baseHandler, composer)
	serverInterface := rest.NewServer(healthHandler, feedHandler, composerHandler)
	handler := web.NewHandler(feedStore, composer, feedView, slogAdapter)
	jwtConfig := provideJWTConfig(config)
	jwtMiddleware, err := middleware.ProvideJWTMiddleware(ctx, jwtConfig, slogAdapter)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	httpServer := NewHTTPServer(config, serverInterface, handler, jwtMiddleware, slogAdapter)
	app := NewApp(httpServer, config, backend, feedView, slogAdapter)
	return app, func() {
		cleanup()
	}, nil
}
