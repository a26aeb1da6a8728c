package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"productgen/internal/errs"
	"productgen/internal/models"
)

// DraftCriteria filters a draft listing. Nil fields are not applied.
type DraftCriteria struct {
	Page
	BatchID          *uint
	GenerationType   models.GenerationType
	CreatedInCatalog *bool
	Search           string
	// WithTotal runs the extra COUNT query.
	WithTotal bool
}

type DraftList struct {
	Items []models.Draft `json:"items"`
	Total int64          `json:"total"`
}

type DraftRepository interface {
	Save(ctx context.Context, draft *models.Draft) (*models.Draft, error)
	GetByID(ctx context.Context, id uint) (*models.Draft, error)
	// FindByNameAndType returns nil without error when no draft matches.
	FindByNameAndType(ctx context.Context, name string, generationType models.GenerationType) (*models.Draft, error)
	GetList(ctx context.Context, criteria DraftCriteria) (*DraftList, error)
	MarkCreatedInCatalog(ctx context.Context, id uint, catalogProductID int64) error
	Delete(ctx context.Context, id uint) error
}

type GormDraftRepository struct {
	db *gorm.DB
}

func NewDraftRepository(db *gorm.DB) *GormDraftRepository {
	return &GormDraftRepository{db: db}
}

func (r *GormDraftRepository) Save(ctx context.Context, draft *models.Draft) (*models.Draft, error) {
	if draft.ProductName == "" {
		return nil, fmt.Errorf("%w: draft product name is required", errs.ErrInvalid)
	}
	if !draft.GenerationType.Valid() {
		return nil, fmt.Errorf("%w: draft generation type %q", errs.ErrInvalid, draft.GenerationType)
	}
	if err := r.db.WithContext(ctx).Save(draft).Error; err != nil {
		return nil, wrapErr(err, "save draft %q", draft.ProductName)
	}
	return draft, nil
}

func (r *GormDraftRepository) GetByID(ctx context.Context, id uint) (*models.Draft, error) {
	var draft models.Draft
	if err := r.db.WithContext(ctx).First(&draft, "id = ?", id).Error; err != nil {
		return nil, wrapErr(err, "draft %d", id)
	}
	return &draft, nil
}

func (r *GormDraftRepository) FindByNameAndType(ctx context.Context, name string, generationType models.GenerationType) (*models.Draft, error) {
	var draft models.Draft
	err := r.db.WithContext(ctx).
		Where("product_name = ? AND generation_type = ?", name, generationType).
		Order("id ASC").
		First(&draft).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapErr(err, "find draft %q", name)
	}
	return &draft, nil
}

func (r *GormDraftRepository) GetList(ctx context.Context, criteria DraftCriteria) (*DraftList, error) {
	query := r.db.WithContext(ctx).Model(&models.Draft{})

	if criteria.BatchID != nil {
		query = query.Where("batch_id = ?", *criteria.BatchID)
	}
	if criteria.GenerationType != "" {
		query = query.Where("generation_type = ?", criteria.GenerationType)
	}
	if criteria.CreatedInCatalog != nil {
		query = query.Where("is_created_in_catalog = ?", *criteria.CreatedInCatalog)
	}
	if criteria.Search != "" {
		like := "%" + criteria.Search + "%"
		query = query.Where("(product_name LIKE ? OR sku LIKE ?)", like, like)
	}

	list := &DraftList{}
	if criteria.WithTotal {
		if err := query.Count(&list.Total).Error; err != nil {
			return nil, wrapErr(err, "count drafts")
		}
	}

	limit, offset := criteria.limitOffset()
	if err := query.Order("id DESC").Offset(offset).Limit(limit).Find(&list.Items).Error; err != nil {
		return nil, wrapErr(err, "list drafts")
	}
	if !criteria.WithTotal {
		list.Total = int64(len(list.Items))
	}
	return list, nil
}

// MarkCreatedInCatalog records catalog linkage without touching updated_at.
func (r *GormDraftRepository) MarkCreatedInCatalog(ctx context.Context, id uint, catalogProductID int64) error {
	res := r.db.WithContext(ctx).Model(&models.Draft{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"is_created_in_catalog": true,
			"catalog_product_id":    catalogProductID,
		})
	if res.Error != nil {
		return wrapErr(res.Error, "link draft %d", id)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: draft %d", errs.ErrNotFound, id)
	}
	return nil
}

func (r *GormDraftRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Draft{}, "id = ?", id)
	if res.Error != nil {
		return wrapErr(res.Error, "delete draft %d", id)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: draft %d", errs.ErrNotFound, id)
	}
	return nil
}
