package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/forkcast/backend/config"
	"github.com/forkcast/backend/internal/database"
	"github.com/forkcast/backend/internal/server"
	"github.com/forkcast/backend/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Redis is optional: without it the favorites live stream is
	// unavailable, everything else still works.
	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		log.Printf("Redis unavailable, favorites live updates disabled: %v", err)
		redisClient = nil
	}

	ctx := context.Background()

	// The detection upload archive is best-effort infrastructure.
	storage, err := config.NewS3Config(ctx)
	if err != nil {
		log.Printf("S3 unavailable, detection uploads will not be archived: %v", err)
		storage = nil
	}

	// The vision relay needs a platform identity; without one the
	// detection route responds 503 at call time.
	var vision *service.VisionService
	if cfg.VisionEndpoint != "" {
		vision, err = service.NewVisionService(ctx, cfg, storage)
		if err != nil {
			log.Printf("Vision service unavailable: %v", err)
			vision = nil
		}
	} else {
		log.Printf("VISION_ENDPOINT not set, object detection disabled")
	}

	srv := server.New(cfg, db, redisClient, vision)

	errChan := make(chan error, 1)
	go func() {
		log.Printf("Starting server on port %s...", cfg.ServerPort)
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-quit:
		log.Printf("Received signal: %v", sig)
	}

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped")
}
