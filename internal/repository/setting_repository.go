package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"productgen/internal/models"
)

type SettingRepository interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, path string) (string, bool, error)
	Set(ctx context.Context, path, value string) error
}

type GormSettingRepository struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) *GormSettingRepository {
	return &GormSettingRepository{db: db}
}

func (r *GormSettingRepository) Get(ctx context.Context, path string) (string, bool, error) {
	var setting models.Setting
	err := r.db.WithContext(ctx).First(&setting, "path = ?", path).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, wrapErr(err, "setting %s", path)
	}
	return setting.Value, true, nil
}

func (r *GormSettingRepository) Set(ctx context.Context, path, value string) error {
	setting := models.Setting{Path: path, Value: value}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "path"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&setting).Error
	return wrapErr(err, "set setting %s", path)
}
