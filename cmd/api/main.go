package main

import (
	"context"
	"log"

	"github.com/philly/postboard/internal/server"
)

func main() {
	ctx := context.Background()

	// Initialize the app with all dependencies wired
	app, cleanup, err := server.InitializeApp(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize app: %v", err)
	}
	defer cleanup()

	if err := app.Run(ctx); err != nil {
		cleanup()
		log.Fatalf("Failed to run app: %v", err)
	}
}
