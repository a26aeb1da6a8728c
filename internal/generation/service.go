// Package generation runs single and bulk (CSV) AI generation and stores the
// results as drafts grouped in a batch.
package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"productgen/internal/csvio"
	"productgen/internal/drafts"
	"productgen/internal/errs"
	"productgen/internal/logger"
	"productgen/internal/models"
	"productgen/internal/repository"
	"productgen/internal/services/ai"
)

// Generator produces content for one product request.
type Generator interface {
	GenerateProduct(ctx context.Context, req ai.GenerateRequest) ([]map[string]interface{}, error)
}

// FileStore keeps batch input and response files.
type FileStore interface {
	Save(sub, name string, r io.Reader) (string, error)
}

type Service struct {
	generator Generator
	saver     *drafts.Saver
	batches   repository.BatchRepository
	files     FileStore
	logger    *logger.Logger
}

// FailedRow is a request the AI API could not generate. Row is its 1-based
// position among the parsed requests.
type FailedRow struct {
	Row         int    `json:"row"`
	ProductName string `json:"product_name,omitempty"`
	Error       string `json:"error"`
}

type Result struct {
	Batch      *models.Batch            `json:"batch"`
	Saved      drafts.SaveResult        `json:"saved"`
	FailedRows []FailedRow              `json:"failed_rows,omitempty"`
	RowErrors  []csvio.RowError         `json:"row_errors,omitempty"`
	Products   []map[string]interface{} `json:"-"`
}

func NewService(generator Generator, saver *drafts.Saver, batches repository.BatchRepository, files FileStore, logger *logger.Logger) *Service {
	return &Service{
		generator: generator,
		saver:     saver,
		batches:   batches,
		files:     files,
		logger:    logger,
	}
}

// GenerateSingle generates one product and stores it in a new single batch.
// An AI failure marks the batch failed and is returned to the caller.
func (s *Service) GenerateSingle(ctx context.Context, req ai.GenerateRequest) (*Result, error) {
	req.ProductName = strings.TrimSpace(req.ProductName)
	if req.ProductName == "" {
		return nil, fmt.Errorf("%w: product_name is required", errs.ErrInvalid)
	}

	batch, err := s.batches.Save(ctx, &models.Batch{GenerationType: models.GenerationTypeSingle})
	if err != nil {
		return nil, err
	}
	log := s.logger.With("batch_id", batch.ID)

	products, err := s.generator.GenerateProduct(ctx, req)
	if err != nil {
		log.Error("Generation failed for %q: %v", req.ProductName, err)
		s.fail(ctx, batch, err)
		return &Result{Batch: batch}, err
	}

	result, err := s.finish(ctx, batch, products, "single_response.json")
	if err != nil {
		return result, err
	}
	log.Info("Generated %d product(s) for %q", result.Saved.TotalSaved, req.ProductName)
	return result, nil
}

// GenerateFromCSV stores the upload, generates every valid row and saves the
// results. A row the AI API rejects is recorded and the batch continues.
func (s *Service) GenerateFromCSV(ctx context.Context, fileName string, r io.Reader) (*Result, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read upload: %v", errs.ErrInvalid, err)
	}

	requests, rowErrors, err := csvio.ParseGenerationCSV(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalid, err)
	}
	if len(requests) == 0 {
		return nil, fmt.Errorf("%w: csv contains no products", errs.ErrInvalid)
	}

	inputPath, err := s.files.Save("input", fileName, bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("%w: store upload: %v", errs.ErrPersistence, err)
	}

	batch, err := s.batches.Save(ctx, &models.Batch{
		GenerationType: models.GenerationTypeCSV,
		InputFileName:  &fileName,
		InputFilePath:  &inputPath,
	})
	if err != nil {
		return nil, err
	}
	log := s.logger.With("batch_id", batch.ID)
	log.Info("Generating %d product(s) from %s", len(requests), fileName)

	var products []map[string]interface{}
	var failed []FailedRow
	for i, req := range requests {
		items, err := s.generator.GenerateProduct(ctx, req)
		if err != nil {
			log.Warn("Row %d (%q) failed: %v", i+1, req.ProductName, err)
			failed = append(failed, FailedRow{Row: i + 1, ProductName: req.ProductName, Error: err.Error()})
			continue
		}
		products = append(products, items...)
	}

	if len(products) == 0 {
		err := fmt.Errorf("%w: all %d rows failed to generate", errs.ErrUpstream, len(requests))
		s.fail(ctx, batch, err)
		return &Result{Batch: batch, FailedRows: failed, RowErrors: rowErrors}, err
	}

	result, err := s.finish(ctx, batch, products, strings.TrimSuffix(fileName, ".csv")+"_response.json")
	if result != nil {
		result.FailedRows = failed
		result.RowErrors = rowErrors
	}
	if err != nil {
		return result, err
	}
	log.Info("Batch done: %d saved, %d failed rows", result.Saved.TotalSaved, len(failed))
	return result, nil
}

func (s *Service) finish(ctx context.Context, batch *models.Batch, products []map[string]interface{}, responseName string) (*Result, error) {
	result := &Result{Batch: batch, Products: products}

	raw, err := json.MarshalIndent(map[string]interface{}{"products": products}, "", "  ")
	if err == nil {
		path, err := s.files.Save("response", responseName, bytes.NewReader(raw))
		if err != nil {
			s.logger.Warn("Could not store response file for batch %d: %v", batch.ID, err)
		} else {
			batch.ResponseFileName = &responseName
			batch.ResponseFilePath = &path
		}
	}

	saved, err := s.saver.SaveGenerated(ctx, products, batch.GenerationType, &batch.ID)
	result.Saved = saved
	batch.TotalProducts = saved.TotalSaved
	if err != nil {
		s.fail(ctx, batch, err)
		return result, err
	}

	if _, err := s.batches.Save(ctx, batch); err != nil {
		return result, err
	}
	return result, nil
}

func (s *Service) fail(ctx context.Context, batch *models.Batch, cause error) {
	msg := cause.Error()
	batch.ImportStatus = models.ImportStatusFailed
	batch.ErrorMessage = &msg
	if _, err := s.batches.Save(ctx, batch); err != nil {
		s.logger.Error("Could not mark batch %d failed: %v", batch.ID, err)
	}
}
