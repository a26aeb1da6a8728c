package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"productgen/internal/errs"
	"productgen/internal/models"
)

type BatchCriteria struct {
	Page
	GenerationType models.GenerationType
	ImportStatus   models.ImportStatus
}

type BatchList struct {
	Items []models.Batch `json:"items"`
	Total int64          `json:"total"`
}

type BatchRepository interface {
	Save(ctx context.Context, batch *models.Batch) (*models.Batch, error)
	GetByID(ctx context.Context, id uint) (*models.Batch, error)
	GetList(ctx context.Context, criteria BatchCriteria) (*BatchList, error)
	Delete(ctx context.Context, id uint) error
}

type GormBatchRepository struct {
	db *gorm.DB
}

func NewBatchRepository(db *gorm.DB) *GormBatchRepository {
	return &GormBatchRepository{db: db}
}

func (r *GormBatchRepository) Save(ctx context.Context, batch *models.Batch) (*models.Batch, error) {
	if !batch.GenerationType.Valid() {
		return nil, fmt.Errorf("%w: batch generation type %q", errs.ErrInvalid, batch.GenerationType)
	}
	if err := r.db.WithContext(ctx).Save(batch).Error; err != nil {
		return nil, wrapErr(err, "save batch")
	}
	return batch, nil
}

func (r *GormBatchRepository) GetByID(ctx context.Context, id uint) (*models.Batch, error) {
	var batch models.Batch
	if err := r.db.WithContext(ctx).First(&batch, "id = ?", id).Error; err != nil {
		return nil, wrapErr(err, "batch %d", id)
	}
	return &batch, nil
}

func (r *GormBatchRepository) GetList(ctx context.Context, criteria BatchCriteria) (*BatchList, error) {
	query := r.db.WithContext(ctx).Model(&models.Batch{})
	if criteria.GenerationType != "" {
		query = query.Where("generation_type = ?", criteria.GenerationType)
	}
	if criteria.ImportStatus != "" {
		query = query.Where("import_status = ?", criteria.ImportStatus)
	}

	list := &BatchList{}
	if err := query.Count(&list.Total).Error; err != nil {
		return nil, wrapErr(err, "count batches")
	}
	limit, offset := criteria.limitOffset()
	if err := query.Order("id DESC").Offset(offset).Limit(limit).Find(&list.Items).Error; err != nil {
		return nil, wrapErr(err, "list batches")
	}
	return list, nil
}

func (r *GormBatchRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Batch{}, "id = ?", id)
	if res.Error != nil {
		return wrapErr(res.Error, "delete batch %d", id)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: batch %d", errs.ErrNotFound, id)
	}
	return nil
}
