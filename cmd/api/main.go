package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"productgen/internal/api"
	"productgen/internal/app"
	"productgen/internal/clock"
	"productgen/internal/config"
	"productgen/internal/database"
	"productgen/internal/events"
	"productgen/internal/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize logger
	logger := logger.New(cfg.LogLevel)

	// Initialize database
	db, err := database.New(cfg.DatabaseURL, cfg.Env == "production")
	if err != nil {
		logger.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	components, err := app.New(cfg, logger, db.DB, clock.RealClock{})
	if err != nil {
		logger.Fatal("Failed to initialize services: %v", err)
	}

	var publisher events.Publisher
	if cfg.KafkaEnabled() {
		publisher = events.NewKafkaPublisher(cfg, logger.With("component", "events"))
		logger.Info("Batch jobs are published to Kafka topic %s", cfg.KafkaTopic)
	}

	// Initialize API server
	server := api.New(cfg, logger, components, publisher)

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		logger.Error("Server shutdown failed: %v", err)
	}
}
