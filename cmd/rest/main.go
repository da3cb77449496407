package main

import (
	"context"
	"log"

	"note-editor-be/internal/bootstrap"
	"note-editor-be/internal/config"
	"note-editor-be/internal/server"
	"note-editor-be/internal/tracer"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(cfg)

	// 3. Restore (or create) the editing session before serving requests
	if err := container.SessionService.Init(context.Background()); err != nil {
		log.Panicf("Unable to restore session: %v", err)
	}

	// 4. Start Background Services
	go func() {
		log.Println("Background: Starting Consumer Service...")
		if err := container.ConsumerService.Consume(context.Background()); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server
	err := srv.Run()

	// Flush any pending debounced writes before exiting.
	if cerr := container.Store.Close(context.Background()); cerr != nil {
		log.Printf("store flush on shutdown: %v", cerr)
	}
	log.Fatal(err)
}
