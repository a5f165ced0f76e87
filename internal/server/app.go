package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/philly/postboard/internal/platform/logger"
	"github.com/philly/postboard/internal/platform/seeder"
	"github.com/philly/postboard/internal/posts/application"
)

// shutdownTimeout bounds the graceful shutdown of the HTTP server
const shutdownTimeout = 10 * time.Second

type App struct {
	server  *http.Server
	config  Config
	seeders *seeder.Orchestrator
	workers []Worker
	view    *application.FeedView
	logger  logger.Logger
}

func NewApp(
	server *http.Server,
	config Config,
	backend *Backend,
	view *application.FeedView,
	log logger.Logger,
) *App {
	return &App{
		server:  server,
		config:  config,
		seeders: seeder.NewOrchestrator(log, backend.Seeders),
		workers: backend.Workers,
		view:    view,
		logger:  log,
	}
}

// Run prepares the backend, starts the realtime workers, activates the feed
// and serves HTTP until SIGINT or SIGTERM.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.seeders.RunAll(ctx); err != nil {
		return err
	}

	workerCtx, cancelWorkers := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer func() {
		cancelWorkers()
		wg.Wait()
	}()
	for _, w := range a.workers {
		wg.Add(1)
		go func(w Worker) {
			defer wg.Done()
			a.logger.Info(workerCtx, "starting worker", "worker", w.Name())
			if err := w.Run(workerCtx); err != nil {
				a.logger.Error(workerCtx, "worker stopped", "worker", w.Name(), "error", err)
			}
		}(w)
	}

	release, err := a.view.Activate(ctx)
	defer release()
	if errors.Is(err, application.ErrFeedAlreadyActive) {
		return fmt.Errorf("failed to activate feed: %w", err)
	}
	if err != nil {
		// The feed reports itself unavailable until a reload succeeds
		a.logger.Warn(ctx, "initial feed load failed", "error", err)
	}

	serverErrors := make(chan error, 1)
	go func() {
		a.logger.Info(ctx, "starting server", "address", a.server.Addr)
		serverErrors <- a.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		a.logger.Info(context.Background(), "shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to gracefully shutdown server: %w", err)
		}
	}

	a.logger.Info(context.Background(), "server stopped")
	return nil
}
