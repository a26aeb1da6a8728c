package mapping

import (
	"context"
	"fmt"

	"productgen/internal/logger"
	"productgen/internal/models"
	"productgen/internal/repository"
)

// SettingSource provides the stored default rules used when no profile applies.
type SettingSource interface {
	Value(ctx context.Context, path string) string
}

// Config resolves the effective field mapping rules for a product scope.
type Config struct {
	profiles repository.MappingProfileRepository
	settings SettingSource
	logger   *logger.Logger
}

func NewConfig(profiles repository.MappingProfileRepository, settings SettingSource, logger *logger.Logger) *Config {
	return &Config{
		profiles: profiles,
		settings: settings,
		logger:   logger,
	}
}

func (c *Config) GetDefaultProfile(ctx context.Context) (*models.MappingProfile, error) {
	return c.profiles.GetDefault(ctx)
}

// ResolveProfile returns the profile scoped to (productType, attributeSetID),
// then the one scoped to productType alone, then the global default profile.
// It returns nil when none exists.
func (c *Config) ResolveProfile(ctx context.Context, productType string, attributeSetID *int) (*models.MappingProfile, error) {
	if productType != "" {
		profile, err := c.profiles.GetByProductTypeAndAttributeSet(ctx, productType, attributeSetID)
		if err != nil || profile != nil {
			return profile, err
		}
		if attributeSetID != nil {
			profile, err = c.profiles.GetByProductTypeAndAttributeSet(ctx, productType, nil)
			if err != nil || profile != nil {
				return profile, err
			}
		}
	}
	return c.profiles.GetDefault(ctx)
}

// GetMappingRules returns the decoded rules for the scope. It never fails: a
// lookup error or an undecodable rule set yields an empty map so a broken
// configuration only disables mapping.
func (c *Config) GetMappingRules(ctx context.Context, productType string, attributeSetID *int) map[string]string {
	profile, err := c.ResolveProfile(ctx, productType, attributeSetID)
	if err != nil {
		c.logger.Error("Failed to resolve mapping profile for %s: %v", productType, err)
		return map[string]string{}
	}
	if profile != nil {
		return c.decodeProfile(profile)
	}

	raw := c.settings.Value(ctx, models.SettingDefaultMappingRules)
	rules := DecodeRules(raw)
	if raw != "" && len(rules) == 0 {
		c.logger.Warn("Default mapping rules setting could not be decoded")
	}
	return rules
}

// ProfileRules returns the decoded rules of an explicit profile.
func (c *Config) ProfileRules(ctx context.Context, profileID uint) (map[string]string, error) {
	profile, err := c.profiles.GetByID(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("load mapping profile: %w", err)
	}
	return c.decodeProfile(profile), nil
}

func (c *Config) decodeProfile(profile *models.MappingProfile) map[string]string {
	rules := DecodeRules(profile.Rules)
	if profile.Rules != "" && len(rules) == 0 {
		c.logger.Warn("Mapping profile %d (%s) has undecodable rules", profile.ID, profile.Name)
	}
	return rules
}
