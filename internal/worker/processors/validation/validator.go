package validation

import (
	"fmt"

	"productgen/internal/csvio"
	"productgen/internal/errs"
	"productgen/internal/events"
	"productgen/internal/logger"
	"productgen/internal/mapping"
)

// Validator rejects batch events the processor cannot act on.
type Validator struct {
	logger *logger.Logger
}

func New(logger *logger.Logger) *Validator {
	return &Validator{logger: logger}
}

func (v *Validator) ValidateEvent(event events.Event) error {
	if event.BatchID == 0 {
		return fmt.Errorf("%w: %s event without batch_id", errs.ErrInvalid, event.Type)
	}

	switch event.Type {
	case events.TypeBatchImport:
		if pt, ok := event.Data["product_type"].(string); ok && pt != "" {
			if _, err := mapping.NormalizeProductType(pt); err != nil {
				return err
			}
		}
	case events.TypeBatchExport:
		format, _ := event.Data["format"].(string)
		if format != "" && format != csvio.FormatCSV && format != csvio.FormatXLSX {
			return fmt.Errorf("%w: export format %q", errs.ErrInvalid, format)
		}
	default:
		return fmt.Errorf("%w: unknown event type %q", errs.ErrInvalid, event.Type)
	}

	v.logger.Debug("Event %s for batch %d is valid", event.Type, event.BatchID)
	return nil
}
