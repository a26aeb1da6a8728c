package processors

import (
	"context"
	"fmt"

	"productgen/internal/events"
	"productgen/internal/logger"
	"productgen/internal/models"
	"productgen/internal/services/catalog"
	"productgen/internal/worker/processors/validation"
)

// Importer runs a catalog import for a batch.
type Importer interface {
	ImportBatch(ctx context.Context, batchID uint, opts catalog.ImportOptions) (*models.Batch, error)
}

// BatchExporter writes the export file of a batch.
type BatchExporter interface {
	ExportBatch(ctx context.Context, batchID uint, format string) (string, error)
}

type EventProcessor struct {
	logger    *logger.Logger
	validator *validation.Validator
	importer  Importer
	exporter  BatchExporter
}

func NewEventProcessor(importer Importer, exporter BatchExporter, logger *logger.Logger) *EventProcessor {
	return &EventProcessor{
		logger:    logger,
		validator: validation.New(logger),
		importer:  importer,
		exporter:  exporter,
	}
}

func (ep *EventProcessor) Process(ctx context.Context, event events.Event) error {
	if err := ep.validator.ValidateEvent(event); err != nil {
		return err
	}
	log := ep.logger.With("job_id", event.JobID)

	switch event.Type {
	case events.TypeBatchImport:
		batch, err := ep.importer.ImportBatch(ctx, event.BatchID, ImportOptionsFromData(event.Data))
		if err != nil {
			return fmt.Errorf("import batch %d: %w", event.BatchID, err)
		}
		log.Info("Batch %d imported: %d products, status %s", batch.ID, batch.ImportedProducts, batch.ImportStatus)
	case events.TypeBatchExport:
		format, _ := event.Data["format"].(string)
		path, err := ep.exporter.ExportBatch(ctx, event.BatchID, format)
		if err != nil {
			return fmt.Errorf("export batch %d: %w", event.BatchID, err)
		}
		log.Info("Batch %d exported to %s", event.BatchID, path)
	}
	return nil
}

// ImportOptionsData encodes import options into event data.
func ImportOptionsData(opts catalog.ImportOptions) map[string]interface{} {
	data := map[string]interface{}{}
	if opts.ProductType != "" {
		data["product_type"] = opts.ProductType
	}
	if opts.AttributeSetID != nil {
		data["attribute_set_id"] = *opts.AttributeSetID
	}
	if opts.ProfileID != nil {
		data["profile_id"] = *opts.ProfileID
	}
	return data
}

// ImportOptionsFromData is the inverse of ImportOptionsData. Numbers decoded
// from JSON arrive as float64.
func ImportOptionsFromData(data map[string]interface{}) catalog.ImportOptions {
	var opts catalog.ImportOptions
	opts.ProductType, _ = data["product_type"].(string)
	if n, ok := number(data["attribute_set_id"]); ok {
		v := int(n)
		opts.AttributeSetID = &v
	}
	if n, ok := number(data["profile_id"]); ok && n > 0 {
		v := uint(n)
		opts.ProfileID = &v
	}
	return opts
}

func number(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case uint:
		return float64(n), true
	}
	return 0, false
}
