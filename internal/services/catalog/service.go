package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"productgen/internal/clock"
	"productgen/internal/errs"
	"productgen/internal/logger"
	"productgen/internal/mapping"
	"productgen/internal/models"
	"productgen/internal/repository"
)

// staleImportAfter is how long a batch may sit in processing before another
// import may take it over.
const staleImportAfter = 30 * time.Minute

// ProductWriter creates and updates catalog products.
type ProductWriter interface {
	CreateProduct(ctx context.Context, product *Product) (int64, error)
	UpdateProduct(ctx context.Context, productID int64, product *Product) error
}

// Mapper produces catalog attribute data for a draft.
type Mapper interface {
	MapDraftToCatalog(ctx context.Context, draftID uint, productType string, attributeSetID *int, profileID *uint) (map[string]interface{}, error)
}

// ImportOptions select the target product type, attribute set and mapping profile.
type ImportOptions struct {
	ProductType    string `json:"product_type"`
	AttributeSetID *int   `json:"attribute_set_id"`
	ProfileID      *uint  `json:"profile_id"`
}

type Result struct {
	DraftID          uint                   `json:"draft_id"`
	CatalogProductID int64                  `json:"catalog_product_id"`
	Created          bool                   `json:"created"`
	Mapped           map[string]interface{} `json:"mapped"`
}

type Service struct {
	mapper      Mapper
	drafts      repository.DraftRepository
	batches     repository.BatchRepository
	writer      ProductWriter
	transformer *Transformer
	validator   *Validator
	clock       clock.Clock
	logger      *logger.Logger
}

func NewService(mapper Mapper, drafts repository.DraftRepository, batches repository.BatchRepository, writer ProductWriter, clk clock.Clock, logger *logger.Logger) *Service {
	return &Service{
		mapper:      mapper,
		drafts:      drafts,
		batches:     batches,
		writer:      writer,
		transformer: NewTransformer(),
		validator:   NewValidator(),
		clock:       clk,
		logger:      logger,
	}
}

// CreateOrUpdateFromDraft maps a draft and creates its catalog product, or
// updates the product it already produced. Linkage is recorded on the draft.
func (s *Service) CreateOrUpdateFromDraft(ctx context.Context, draftID uint, opts ImportOptions) (*Result, error) {
	productType, err := mapping.NormalizeProductType(opts.ProductType)
	if err != nil {
		return nil, err
	}

	mapped, err := s.mapper.MapDraftToCatalog(ctx, draftID, productType, opts.AttributeSetID, opts.ProfileID)
	if err != nil {
		return nil, err
	}
	draft, err := s.drafts.GetByID(ctx, draftID)
	if err != nil {
		return nil, err
	}

	product, err := s.transformer.ToProduct(mapped, productType, opts.AttributeSetID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalid, err)
	}
	if product.SKU == "" {
		product.SKU = draft.SKU
	}
	if product.Name == "" {
		product.Name = draft.ProductName
	}
	if err := s.validator.ValidateProduct(product); err != nil {
		return nil, err
	}

	result := &Result{DraftID: draftID, Mapped: mapped}
	if draft.IsCreatedInCatalog && draft.CatalogProductID != nil {
		if err := s.writer.UpdateProduct(ctx, *draft.CatalogProductID, product); err != nil {
			return nil, fmt.Errorf("update catalog product %d: %w", *draft.CatalogProductID, err)
		}
		result.CatalogProductID = *draft.CatalogProductID
	} else {
		id, err := s.writer.CreateProduct(ctx, product)
		if err != nil {
			return nil, fmt.Errorf("create catalog product: %w", err)
		}
		result.CatalogProductID = id
		result.Created = true
	}

	if err := s.drafts.MarkCreatedInCatalog(ctx, draftID, result.CatalogProductID); err != nil {
		return nil, err
	}
	s.logger.Info("Draft %d synced to catalog product %d (created=%t)", draftID, result.CatalogProductID, result.Created)
	return result, nil
}

// ImportBatch pushes every draft of a batch into the catalog, moving the
// batch through processing to completed, or failed when nothing imports.
// A batch left in processing longer than staleImportAfter, e.g. by a worker
// that died mid-import, can be imported again.
func (s *Service) ImportBatch(ctx context.Context, batchID uint, opts ImportOptions) (*models.Batch, error) {
	batch, err := s.batches.GetByID(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if batch.ImportStatus == models.ImportStatusProcessing {
		if s.clock.Now().Sub(batch.UpdatedAt) < staleImportAfter {
			return nil, fmt.Errorf("%w: batch %d is already being imported", errs.ErrInvalid, batchID)
		}
		s.logger.Warn("Batch %d stuck in processing since %s, importing again", batchID, batch.UpdatedAt.Format(time.RFC3339))
	}

	batch.ImportStatus = models.ImportStatusProcessing
	batch.ErrorMessage = nil
	if _, err := s.batches.Save(ctx, batch); err != nil {
		return nil, err
	}

	imported, failures, listErr := s.importDrafts(ctx, batchID, opts)

	now := s.clock.Now()
	batch.ImportedProducts = imported
	batch.ImportedAt = &now
	switch {
	case listErr != nil:
		batch.ImportStatus = models.ImportStatusFailed
		failures = append(failures, listErr.Error())
	case imported == 0 && len(failures) > 0:
		batch.ImportStatus = models.ImportStatusFailed
	default:
		batch.ImportStatus = models.ImportStatusCompleted
	}
	if len(failures) > 0 {
		msg := strings.Join(failures, "; ")
		if len(msg) > 2000 {
			msg = msg[:2000]
		}
		batch.ErrorMessage = &msg
	}

	if _, err := s.batches.Save(ctx, batch); err != nil {
		return nil, err
	}
	s.logger.Info("Batch %d import %s: %d imported, %d failed", batchID, batch.ImportStatus, imported, len(failures))
	return batch, nil
}

func (s *Service) importDrafts(ctx context.Context, batchID uint, opts ImportOptions) (int, []string, error) {
	imported := 0
	var failures []string

	for page := 1; ; page++ {
		list, err := s.drafts.GetList(ctx, repository.DraftCriteria{
			Page:    repository.Page{Page: page, PageSize: repository.MaxPageSize},
			BatchID: &batchID,
		})
		if err != nil {
			return imported, failures, err
		}
		for _, d := range list.Items {
			if _, err := s.CreateOrUpdateFromDraft(ctx, d.ID, opts); err != nil {
				s.logger.Warn("Draft %d not imported: %v", d.ID, err)
				failures = append(failures, fmt.Sprintf("draft %d: %v", d.ID, err))
				continue
			}
			imported++
		}
		if len(list.Items) < repository.MaxPageSize {
			return imported, failures, nil
		}
	}
}
