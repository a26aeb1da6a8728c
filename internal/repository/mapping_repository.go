package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"productgen/internal/errs"
	"productgen/internal/models"
)

type MappingProfileRepository interface {
	// Save persists the profile. A default profile clears the flag on every
	// other profile of the same scope.
	Save(ctx context.Context, profile *models.MappingProfile) (*models.MappingProfile, error)
	GetByID(ctx context.Context, id uint) (*models.MappingProfile, error)
	// GetDefault returns the default profile without scope, or nil.
	GetDefault(ctx context.Context) (*models.MappingProfile, error)
	// GetByProductTypeAndAttributeSet returns the profile scoped exactly to
	// (productType, attributeSetID), or nil. A nil attributeSetID matches
	// profiles scoped to the product type only.
	GetByProductTypeAndAttributeSet(ctx context.Context, productType string, attributeSetID *int) (*models.MappingProfile, error)
	GetList(ctx context.Context) ([]models.MappingProfile, error)
	Delete(ctx context.Context, id uint) error
}

type GormMappingProfileRepository struct {
	db *gorm.DB
}

func NewMappingProfileRepository(db *gorm.DB) *GormMappingProfileRepository {
	return &GormMappingProfileRepository{db: db}
}

func (r *GormMappingProfileRepository) Save(ctx context.Context, profile *models.MappingProfile) (*models.MappingProfile, error) {
	profile.Name = strings.TrimSpace(profile.Name)
	if profile.Name == "" {
		return nil, fmt.Errorf("%w: mapping profile name is required", errs.ErrInvalid)
	}
	if profile.ProductType != nil && strings.TrimSpace(*profile.ProductType) == "" {
		profile.ProductType = nil
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(profile).Error; err != nil {
			return err
		}
		if !profile.IsDefault {
			return nil
		}
		others := scope(tx.Model(&models.MappingProfile{}), profile.ProductType, profile.AttributeSetID).
			Where("id <> ? AND is_default = ?", profile.ID, true)
		return others.UpdateColumn("is_default", false).Error
	})
	if err != nil {
		return nil, wrapErr(err, "save mapping profile %q", profile.Name)
	}
	return profile, nil
}

func (r *GormMappingProfileRepository) GetByID(ctx context.Context, id uint) (*models.MappingProfile, error) {
	var profile models.MappingProfile
	if err := r.db.WithContext(ctx).First(&profile, "id = ?", id).Error; err != nil {
		return nil, wrapErr(err, "mapping profile %d", id)
	}
	return &profile, nil
}

func (r *GormMappingProfileRepository) GetDefault(ctx context.Context) (*models.MappingProfile, error) {
	query := scope(r.db.WithContext(ctx), nil, nil).Where("is_default = ?", true)
	return r.first(query, "default mapping profile")
}

func (r *GormMappingProfileRepository) GetByProductTypeAndAttributeSet(ctx context.Context, productType string, attributeSetID *int) (*models.MappingProfile, error) {
	query := scope(r.db.WithContext(ctx), &productType, attributeSetID).Order("is_default DESC")
	return r.first(query, fmt.Sprintf("mapping profile for %s", productType))
}

func (r *GormMappingProfileRepository) GetList(ctx context.Context) ([]models.MappingProfile, error) {
	var profiles []models.MappingProfile
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&profiles).Error; err != nil {
		return nil, wrapErr(err, "list mapping profiles")
	}
	return profiles, nil
}

func (r *GormMappingProfileRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.MappingProfile{}, "id = ?", id)
	if res.Error != nil {
		return wrapErr(res.Error, "delete mapping profile %d", id)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: mapping profile %d", errs.ErrNotFound, id)
	}
	return nil
}

func (r *GormMappingProfileRepository) first(query *gorm.DB, what string) (*models.MappingProfile, error) {
	var profile models.MappingProfile
	err := query.Order("id ASC").First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapErr(err, "%s", what)
	}
	return &profile, nil
}

func scope(query *gorm.DB, productType *string, attributeSetID *int) *gorm.DB {
	if productType == nil || *productType == "" {
		query = query.Where("(product_type IS NULL OR product_type = '')")
	} else {
		query = query.Where("product_type = ?", *productType)
	}
	if attributeSetID == nil {
		query = query.Where("attribute_set_id IS NULL")
	} else {
		query = query.Where("attribute_set_id = ?", *attributeSetID)
	}
	return query
}
