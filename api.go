// Package handler exposes the admin API as a single serverless function.
package handler

import (
	"net/http"
	"sync"

	"productgen/internal/api"
	"productgen/internal/app"
	"productgen/internal/clock"
	"productgen/internal/config"
	"productgen/internal/database"
	"productgen/internal/logger"
)

var (
	once    sync.Once
	router  http.Handler
	initErr error
)

func setup() {
	cfg, err := config.Load()
	if err != nil {
		initErr = err
		return
	}
	log := logger.New(cfg.LogLevel)

	db, err := database.New(cfg.DatabaseURL, true)
	if err != nil {
		initErr = err
		return
	}
	components, err := app.New(cfg, log, db.DB, clock.RealClock{})
	if err != nil {
		initErr = err
		return
	}

	// Serverless invocations cannot host the worker, so batch jobs run inline.
	router = api.New(cfg, log, components, nil).GetRouter()
}

// Handler is the serverless entrypoint.
func Handler(w http.ResponseWriter, r *http.Request) {
	once.Do(setup)
	if initErr != nil {
		http.Error(w, "service unavailable: "+initErr.Error(), http.StatusServiceUnavailable)
		return
	}
	router.ServeHTTP(w, r)
}
