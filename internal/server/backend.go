package server

import (
	"context"

	"github.com/philly/postboard/internal/adapters/changefeed"
	"github.com/philly/postboard/internal/adapters/memory"
	"github.com/philly/postboard/internal/adapters/mqtt"
	"github.com/philly/postboard/internal/adapters/postgres"
	"github.com/philly/postboard/internal/platform/logger"
	pgplatform "github.com/philly/postboard/internal/platform/postgres"
	"github.com/philly/postboard/internal/platform/seeder"
	"github.com/philly/postboard/internal/posts/ports"
	postsSeeder "github.com/philly/postboard/internal/posts/seeder"
)

// Worker is a long running component started with the app, such as a
// realtime listener.
type Worker interface {
	Name() string
	Run(ctx context.Context) error
}

// Backend is the selected backend service together with the workers that
// feed its change stream and the seeders that prepare it.
type Backend struct {
	Client  ports.Client
	Pinger  ports.Pinger
	Workers []Worker
	Seeders []seeder.Seeder
}

// ProvideBackend builds the backend named by BACKEND
func ProvideBackend(ctx context.Context, config Config, hub *changefeed.Hub, log logger.Logger) (*Backend, func(), error) {
	backend := &Backend{}
	cleanup := func() {}

	switch config.Backend {
	case BackendMemory:
		client := memory.NewClient(hub)
		backend.Client = client
		backend.Pinger = client
		log.Info(ctx, "using in-memory backend")
	default:
		pool, closePool, err := ConnectDatabase(ctx, config.DatabaseURL, log)
		if err != nil {
			return nil, nil, err
		}
		cleanup = closePool

		client := postgres.NewClient(pool, hub)
		backend.Client = client
		backend.Pinger = client
		backend.Workers = append(backend.Workers, postgres.NewRealtime(pool, hub, log, config.Realtime()))
		if config.AutoMigrate {
			tm := pgplatform.NewTransactionManager(pool)
			backend.Seeders = append(backend.Seeders, postgres.NewSchemaSeeder(tm, log, config.PostsTable, config.NotifyChannel))
		}
	}

	if config.MQTTBroker != "" {
		backend.Workers = append(backend.Workers, mqtt.NewRelay(config.MQTT(), hub, log))
	}
	if config.SeedFile != "" {
		backend.Seeders = append(backend.Seeders, postsSeeder.NewPostsSeeder(backend.Client, log, config.SeedFile, config.PostsTable))
	}

	return backend, cleanup, nil
}
