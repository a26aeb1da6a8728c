package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"productgen/internal/app"
	"productgen/internal/clock"
	"productgen/internal/config"
	"productgen/internal/database"
	"productgen/internal/logger"
	"productgen/internal/worker"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize logger
	logger := logger.New(cfg.LogLevel)

	if !cfg.KafkaEnabled() {
		logger.Fatal("KAFKA_BROKERS is not set; the worker has nothing to consume")
	}

	db, err := database.New(cfg.DatabaseURL, cfg.Env == "production")
	if err != nil {
		logger.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	components, err := app.New(cfg, logger, db.DB, clock.RealClock{})
	if err != nil {
		logger.Fatal("Failed to initialize services: %v", err)
	}

	// Initialize worker
	w := worker.New(cfg, components.Processor(), logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start worker
	logger.Info("Starting worker...")
	w.Start(ctx)

	logger.Info("Shutting down worker...")
	w.Stop()
}
