package export

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"productgen/internal/csvio"
	"productgen/internal/logger"
	"productgen/internal/models"
	"productgen/internal/repository"
)

// FileStore keeps generated export files.
type FileStore interface {
	Save(sub, name string, r io.Reader) (string, error)
}

// Exporter writes the drafts of a batch to a CSV or XLSX file.
type Exporter struct {
	drafts  repository.DraftRepository
	batches repository.BatchRepository
	files   FileStore
	logger  *logger.Logger
}

func New(drafts repository.DraftRepository, batches repository.BatchRepository, files FileStore, logger *logger.Logger) *Exporter {
	return &Exporter{
		drafts:  drafts,
		batches: batches,
		files:   files,
		logger:  logger,
	}
}

// ExportBatch stores the export file of a batch and returns its path.
func (e *Exporter) ExportBatch(ctx context.Context, batchID uint, format string) (string, error) {
	if _, err := e.batches.GetByID(ctx, batchID); err != nil {
		return "", err
	}

	items, err := CollectDrafts(ctx, e.drafts, repository.DraftCriteria{BatchID: &batchID})
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := csvio.ExportDrafts(&buf, items, format); err != nil {
		return "", err
	}
	_, ext := csvio.ContentType(format)
	path, err := e.files.Save("export", fmt.Sprintf("batch_%d.%s", batchID, ext), &buf)
	if err != nil {
		return "", err
	}

	e.logger.Info("Exported %d drafts of batch %d to %s", len(items), batchID, path)
	return path, nil
}

// CollectDrafts reads every draft matching criteria, page by page.
func CollectDrafts(ctx context.Context, drafts repository.DraftRepository, criteria repository.DraftCriteria) ([]models.Draft, error) {
	var out []models.Draft
	criteria.WithTotal = false
	for page := 1; ; page++ {
		criteria.Page = repository.Page{Page: page, PageSize: repository.MaxPageSize}
		list, err := drafts.GetList(ctx, criteria)
		if err != nil {
			return nil, err
		}
		out = append(out, list.Items...)
		if len(list.Items) < repository.MaxPageSize {
			return out, nil
		}
	}
}
