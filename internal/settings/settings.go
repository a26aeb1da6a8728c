// Package settings resolves the stored key/value configuration surface,
// falling back to the environment configuration when a key is unset.
package settings

import (
	"context"

	"productgen/internal/config"
	"productgen/internal/logger"
	"productgen/internal/models"
	"productgen/internal/repository"
)

type Store struct {
	repo     repository.SettingRepository
	logger   *logger.Logger
	defaults map[string]string
}

func New(repo repository.SettingRepository, cfg *config.Config, logger *logger.Logger) *Store {
	return &Store{
		repo:   repo,
		logger: logger,
		defaults: map[string]string{
			models.SettingAIBaseURL:           cfg.AIAPIBaseURL,
			models.SettingAIAPIKey:            cfg.AIAPIKey,
			models.SettingDefaultMappingRules: cfg.DefaultMappingRules,
		},
	}
}

// Value returns the stored value for path, or the environment default.
func (s *Store) Value(ctx context.Context, path string) string {
	value, ok, err := s.repo.Get(ctx, path)
	if err != nil {
		s.logger.Warn("Failed to read setting %s, using default: %v", path, err)
		return s.defaults[path]
	}
	if !ok || value == "" {
		return s.defaults[path]
	}
	return value
}

func (s *Store) Set(ctx context.Context, path, value string) error {
	return s.repo.Set(ctx, path, value)
}
