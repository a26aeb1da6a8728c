// Package app wires repositories, clients and services for the API server
// and the worker.
package app

import (
	"time"

	"gorm.io/gorm"

	"productgen/internal/clock"
	"productgen/internal/config"
	"productgen/internal/drafts"
	"productgen/internal/generation"
	"productgen/internal/logger"
	"productgen/internal/mapping"
	"productgen/internal/repository"
	"productgen/internal/services/ai"
	"productgen/internal/services/catalog"
	"productgen/internal/settings"
	"productgen/internal/storage"
	"productgen/internal/worker/processors"
	"productgen/internal/worker/processors/export"
)

type App struct {
	Config *config.Config
	Logger *logger.Logger

	Drafts   repository.DraftRepository
	Batches  repository.BatchRepository
	Profiles repository.MappingProfileRepository
	Settings *settings.Store
	Files    *storage.Local

	AI         *ai.Client
	Auth       *ai.AuthService
	Catalog    *catalog.Client
	Mapping    *mapping.Config
	Engine     *mapping.Engine
	Importer   *catalog.Service
	Saver      *drafts.Saver
	Reconciler *drafts.Reconciler
	Generation *generation.Service
	Exporter   *export.Exporter
}

func New(cfg *config.Config, log *logger.Logger, db *gorm.DB, clk clock.Clock) (*App, error) {
	files, err := storage.NewLocal(cfg.StorageDir)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:   cfg,
		Logger:   log,
		Drafts:   repository.NewDraftRepository(db),
		Batches:  repository.NewBatchRepository(db),
		Profiles: repository.NewMappingProfileRepository(db),
		Files:    files,
	}
	a.Settings = settings.New(repository.NewSettingRepository(db), cfg, log.With("component", "settings"))

	a.AI = ai.NewClient(a.Settings, time.Duration(cfg.AITimeout)*time.Second, log.With("component", "ai"))
	a.Auth = ai.NewAuthService(a.AI, a.Settings, log.With("component", "ai"))
	a.Catalog = catalog.NewClient(cfg.CatalogAPIURL, cfg.CatalogAPIToken, log.With("component", "catalog"))

	a.Mapping = mapping.NewConfig(a.Profiles, a.Settings, log.With("component", "mapping"))
	a.Engine = mapping.NewEngine(a.Drafts, a.Mapping, a.Catalog, cfg.DefaultCurrency, log.With("component", "mapping"))
	a.Importer = catalog.NewService(a.Engine, a.Drafts, a.Batches, a.Catalog, clk, log.With("component", "import"))

	a.Saver = drafts.NewSaver(a.Drafts, clk, log.With("component", "drafts"))
	a.Reconciler = drafts.NewReconciler(a.Drafts, a.Catalog, log.With("component", "drafts"))
	a.Generation = generation.NewService(a.AI, a.Saver, a.Batches, files, log.With("component", "generation"))
	a.Exporter = export.New(a.Drafts, a.Batches, files, log.With("component", "export"))

	return a, nil
}

// Processor builds the batch job processor used by the worker.
func (a *App) Processor() *processors.EventProcessor {
	return processors.NewEventProcessor(a.Importer, a.Exporter, a.Logger.With("component", "worker"))
}
