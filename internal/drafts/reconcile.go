package drafts

import (
	"context"
	"time"

	"productgen/internal/logger"
	"productgen/internal/models"
	"productgen/internal/repository"
)

// Listing affordances for a draft.
const (
	ActionCreate = "create"
	ActionEdit   = "edit"
	ActionView   = "view"
)

// CatalogProductLoader loads the last modification time of a catalog product.
// A nil time means the catalog product carries no updated_at.
type CatalogProductLoader interface {
	ProductUpdatedAt(ctx context.Context, productID int64) (*time.Time, error)
}

type Reconciler struct {
	drafts  repository.DraftRepository
	catalog CatalogProductLoader
	logger  *logger.Logger
}

func NewReconciler(drafts repository.DraftRepository, catalog CatalogProductLoader, logger *logger.Logger) *Reconciler {
	return &Reconciler{
		drafts:  drafts,
		catalog: catalog,
		logger:  logger,
	}
}

// IsDraftNewerThanCatalogProduct decides between the Edit and View
// affordances. A draft without updated_at is never newer; a catalog product
// without updated_at, or one that cannot be loaded, counts as older. Equal
// timestamps are not newer.
func (r *Reconciler) IsDraftNewerThanCatalogProduct(ctx context.Context, draftUpdatedAt *time.Time, catalogProductID int64) bool {
	if draftUpdatedAt == nil {
		return false
	}
	productUpdatedAt, err := r.catalog.ProductUpdatedAt(ctx, catalogProductID)
	if err != nil {
		r.logger.Warn("Failed to load catalog product %d, treating draft as newer: %v", catalogProductID, err)
		return true
	}
	if productUpdatedAt == nil {
		return true
	}
	return draftUpdatedAt.After(*productUpdatedAt)
}

// HasCatalogCounterpart reports whether any draft of the batch already
// produced a catalog product.
func (r *Reconciler) HasCatalogCounterpart(ctx context.Context, batchID uint) (bool, error) {
	created := true
	list, err := r.drafts.GetList(ctx, repository.DraftCriteria{
		Page:             repository.Page{Page: 1, PageSize: 1},
		BatchID:          &batchID,
		CreatedInCatalog: &created,
	})
	if err != nil {
		return false, err
	}
	return len(list.Items) > 0, nil
}

// Action returns the affordance the draft listing shows for d.
func (r *Reconciler) Action(ctx context.Context, d *models.Draft) string {
	if !d.IsCreatedInCatalog || d.CatalogProductID == nil {
		return ActionCreate
	}
	if r.IsDraftNewerThanCatalogProduct(ctx, d.UpdatedAt, *d.CatalogProductID) {
		return ActionEdit
	}
	return ActionView
}
