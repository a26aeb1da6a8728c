package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"productgen/internal/api/handlers"
	"productgen/internal/api/middleware"
	"productgen/internal/app"
	"productgen/internal/config"
	"productgen/internal/events"
	"productgen/internal/logger"
)

type Server struct {
	config    *config.Config
	logger    *logger.Logger
	router    *gin.Engine
	server    *http.Server
	publisher events.Publisher
}

// New builds the router. A nil publisher runs batch import and export inline.
func New(cfg *config.Config, logger *logger.Logger, a *app.App, publisher events.Publisher) *Server {
	// Set Gin mode
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(middleware.Logger(logger.With("component", "http")))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS(cfg.CORSOrigins))
	router.MaxMultipartMemory = 16 << 20

	// Initialize handlers
	generationHandler := handlers.NewGenerationHandler(a.Generation, logger)
	draftHandler := handlers.NewDraftHandler(a.Drafts, a.Reconciler, a.Engine, a.Importer, logger)
	batchHandler := handlers.NewBatchHandler(a.Batches, a.Reconciler, a.Files, a.Importer, a.Exporter, publisher, logger)
	mappingHandler := handlers.NewMappingHandler(a.Profiles, a.Mapping, logger)
	aiHandler := handlers.NewAIHandler(a.AI, a.Auth, a.Settings, logger)
	dashboardHandler := handlers.NewDashboardHandler(a.AI, a.Drafts, a.Batches, logger)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC()})
	})

	// Routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Generation
		generate := v1.Group("/generate")
		{
			generate.POST("", generationHandler.Generate)
			generate.POST("/csv", generationHandler.GenerateCSV)
			generate.GET("/csv/template", generationHandler.Template)
			generate.GET("/csv/columns", generationHandler.Columns)
		}

		// Drafts
		drafts := v1.Group("/drafts")
		{
			drafts.GET("", draftHandler.List)
			drafts.GET("/export", draftHandler.Export)
			drafts.GET("/:id", draftHandler.Get)
			drafts.DELETE("/:id", draftHandler.Delete)
			drafts.GET("/:id/mapped", draftHandler.Mapped)
			drafts.POST("/:id/catalog", draftHandler.PushToCatalog)
		}

		// Batches
		batches := v1.Group("/batches")
		{
			batches.GET("", batchHandler.List)
			batches.GET("/:id", batchHandler.Get)
			batches.DELETE("/:id", batchHandler.Delete)
			batches.GET("/:id/files/:kind", batchHandler.Download)
			batches.POST("/:id/import", batchHandler.Import)
			batches.POST("/:id/export", batchHandler.Export)
		}

		// Field mapping profiles
		mappings := v1.Group("/mappings")
		{
			mappings.GET("", mappingHandler.List)
			mappings.POST("", mappingHandler.Create)
			mappings.GET("/default", mappingHandler.Default)
			mappings.GET("/rules", mappingHandler.Rules)
			mappings.GET("/:id", mappingHandler.Get)
			mappings.PUT("/:id", mappingHandler.Update)
			mappings.DELETE("/:id", mappingHandler.Delete)
		}

		// AI API connection and settings
		aiGroup := v1.Group("/ai")
		{
			aiGroup.POST("/connect", aiHandler.Connect)
			aiGroup.GET("/health", aiHandler.Health)
		}
		v1.GET("/settings", aiHandler.GetSettings)
		v1.PUT("/settings", aiHandler.UpdateSettings)

		// Dashboard
		v1.GET("/dashboard", dashboardHandler.Get)
		v1.GET("/dashboard/history", dashboardHandler.History)
	}

	return &Server{
		config:    cfg,
		logger:    logger,
		router:    router,
		publisher: publisher,
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%s", s.config.APIHost, s.config.APIPort)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Starting server on %s", addr)
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			s.logger.Warn("Failed to close event publisher: %v", err)
		}
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// GetRouter returns the Gin router for serverless deployments.
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}
