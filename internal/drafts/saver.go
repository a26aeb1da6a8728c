package drafts

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"productgen/internal/clock"
	"productgen/internal/errs"
	"productgen/internal/logger"
	"productgen/internal/models"
	"productgen/internal/repository"
)

// SKUMaxLength is the catalog limit on SKU length.
const SKUMaxLength = 64

type SaveResult struct {
	TotalSaved   int `json:"total_saved"`
	CreatedCount int `json:"created_count"`
	UpdatedCount int `json:"updated_count"`
	Skipped      int `json:"skipped"`
}

// Saver persists AI generated products as drafts. A product whose name and
// generation type match an existing draft updates that draft in place.
type Saver struct {
	drafts repository.DraftRepository
	clock  clock.Clock
	logger *logger.Logger
}

func NewSaver(drafts repository.DraftRepository, clk clock.Clock, logger *logger.Logger) *Saver {
	return &Saver{
		drafts: drafts,
		clock:  clk,
		logger: logger,
	}
}

// SaveGenerated stores each item. Items without a product name are skipped;
// the first persistence failure aborts the remaining items.
func (s *Saver) SaveGenerated(ctx context.Context, items []map[string]interface{}, generationType models.GenerationType, batchID *uint) (SaveResult, error) {
	var result SaveResult
	if !generationType.Valid() {
		return result, fmt.Errorf("%w: generation type %q", errs.ErrInvalid, generationType)
	}

	for i, item := range items {
		payload := ParsePayload(item)
		name := payload.Fields.ProductName
		if name == "" {
			s.logger.Warn("Skipping generated item %d: no product name", i)
			result.Skipped++
			continue
		}

		existing, err := s.drafts.FindByNameAndType(ctx, name, generationType)
		if err != nil {
			return result, fmt.Errorf("look up draft %q: %w", name, err)
		}

		now := s.clock.Now()
		draft := existing
		if draft == nil {
			draft = &models.Draft{
				ProductName:        name,
				GenerationType:     generationType,
				IsCreatedInCatalog: false,
				CatalogProductID:   nil,
				RegenerationCount:  0,
				CreatedAt:          now,
			}
		} else {
			draft.RegenerationCount++
		}
		draft.UpdatedAt = &now
		if batchID != nil {
			draft.BatchID = batchID
		}

		draft.SKU = GenerateSKU(name, now)
		applyFields(draft, payload)

		raw, err := json.Marshal(item)
		if err != nil {
			return result, fmt.Errorf("%w: encode ai response for %q: %v", errs.ErrInvalid, name, err)
		}
		draft.AIResponse = string(raw)

		if _, err := s.drafts.Save(ctx, draft); err != nil {
			return result, fmt.Errorf("save draft %q: %w", name, err)
		}

		result.TotalSaved++
		if existing == nil {
			result.CreatedCount++
			s.logger.Debug("Created draft %d for %q", draft.ID, name)
		} else {
			result.UpdatedCount++
			s.logger.Debug("Updated draft %d for %q (regeneration %d)", draft.ID, name, draft.RegenerationCount)
		}
	}

	return result, nil
}

func applyFields(draft *models.Draft, payload Payload) {
	f := payload.Fields
	draft.MetaTitle = f.MetaTitle
	draft.MetaDescription = f.MetaDescription
	draft.ShortDescription = f.ShortDescription
	draft.Description = f.Description
	draft.KeyFeatures = models.StringList(f.KeyFeatures)
	draft.HowToUse = models.StringList(f.HowToUse)
	draft.Ingredients = models.StringList(f.Ingredients)
	draft.Keywords = models.StringList(f.Keywords)
	draft.Pricing = f.Pricing

	if len(payload.Extra) > 0 {
		draft.AdditionalInformation = models.JSONB(payload.Extra)
	} else {
		draft.AdditionalInformation = nil
	}
}

// GenerateSKU derives a local SKU from the product name and a timestamp,
// shortening the name part so the result fits SKUMaxLength.
func GenerateSKU(name string, at time.Time) string {
	base := strings.ToUpper(models.Slug(name))
	if base == "" {
		base = "PRODUCT"
	}
	suffix := at.UTC().Format("20060102150405")
	if room := SKUMaxLength - len(suffix) - 1; len(base) > room {
		base = strings.TrimRight(base[:room], "-")
	}
	return base + "-" + suffix
}
