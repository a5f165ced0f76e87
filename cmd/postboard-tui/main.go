// cmd/postboard-tui is a terminal client of the board. It reads the same
// configuration as the API server and talks to the backend directly.
package main

import (
	"context"
	"fmt"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/philly/postboard/internal/adapters/changefeed"
	"github.com/philly/postboard/internal/platform/eventbus"
	"github.com/philly/postboard/internal/platform/logger"
	"github.com/philly/postboard/internal/platform/seeder"
	"github.com/philly/postboard/internal/posts/application"
	"github.com/philly/postboard/internal/server"
	"github.com/philly/postboard/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running postboard: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	config, err := server.LoadConfig(logger.NewBootstrapLogger())
	if err != nil {
		return err
	}

	// The terminal belongs to the UI, so nothing else may write to it
	log := logger.NewNop()
	hub := changefeed.NewHub(eventbus.NewBus(log), log)
	backend, cleanup, err := server.ProvideBackend(ctx, config, hub, log)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := seeder.NewOrchestrator(log, backend.Seeders).RunAll(ctx); err != nil {
		return err
	}

	workerCtx, stopWorkers := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer func() {
		stopWorkers()
		wg.Wait()
	}()
	for _, w := range backend.Workers {
		wg.Add(1)
		go func(w server.Worker) {
			defer wg.Done()
			_ = w.Run(workerCtx)
		}(w)
	}

	feedConfig := config.Feed()
	store := application.NewFeedStore(backend.Client, log, feedConfig)
	composer := application.NewFeedComposer(backend.Client, log, feedConfig, store)
	view := application.NewFeedView(backend.Client, store, log, feedConfig)

	updates, stopWatch := store.Watch()
	defer stopWatch()

	stopFeed := tui.StartFeed(ctx, view)
	defer stopFeed()

	p := tea.NewProgram(
		tui.New(ctx, store, composer, updates),
		tea.WithAltScreen(),
	)
	_, err = p.Run()
	return err
}
