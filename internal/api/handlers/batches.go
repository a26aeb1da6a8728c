package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"productgen/internal/csvio"
	"productgen/internal/drafts"
	"productgen/internal/events"
	"productgen/internal/logger"
	"productgen/internal/models"
	"productgen/internal/repository"
	"productgen/internal/services/catalog"
	"productgen/internal/worker/processors"
)

// BatchFiles reads and deletes stored batch files.
type BatchFiles interface {
	Open(path string) (io.ReadCloser, error)
	Delete(path string) error
}

// BatchHandler serves batches. With a publisher, import and export run on the
// worker; without one they run inside the request.
type BatchHandler struct {
	batches    repository.BatchRepository
	reconciler *drafts.Reconciler
	files      BatchFiles
	importer   processors.Importer
	exporter   processors.BatchExporter
	publisher  events.Publisher
	logger     *logger.Logger
}

func NewBatchHandler(batches repository.BatchRepository, reconciler *drafts.Reconciler, files BatchFiles, importer processors.Importer, exporter processors.BatchExporter, publisher events.Publisher, logger *logger.Logger) *BatchHandler {
	return &BatchHandler{
		batches:    batches,
		reconciler: reconciler,
		files:      files,
		importer:   importer,
		exporter:   exporter,
		publisher:  publisher,
		logger:     logger,
	}
}

func (h *BatchHandler) List(c *gin.Context) {
	criteria := repository.BatchCriteria{
		Page:           pageParams(c),
		GenerationType: models.GenerationType(c.Query("generation_type")),
		ImportStatus:   models.ImportStatus(c.Query("import_status")),
	}

	list, err := h.batches.GetList(c.Request.Context(), criteria)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       list.Items,
		"pagination": pagination(criteria.Page, list.Total),
	})
}

func (h *BatchHandler) Get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	batch, err := h.batches.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	counterpart, err := h.reconciler.HasCatalogCounterpart(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"batch":                   batch,
		"has_catalog_counterpart": counterpart,
	}})
}

// Delete removes the batch and, best effort, its stored files. Drafts of the
// batch are kept.
func (h *BatchHandler) Delete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	batch, err := h.batches.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if err := h.batches.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}

	for _, path := range batch.Files() {
		if err := h.files.Delete(path); err != nil {
			h.logger.Warn("Failed to delete file %s of batch %d: %v", path, id, err)
		}
	}

	c.Status(http.StatusNoContent)
}

// Download streams the stored input CSV or AI response JSON of a batch.
func (h *BatchHandler) Download(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	batch, err := h.batches.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	var name, path *string
	contentType := "text/csv"
	switch c.Param("kind") {
	case "input":
		name, path = batch.InputFileName, batch.InputFilePath
	case "response":
		name, path = batch.ResponseFileName, batch.ResponseFilePath
		contentType = "application/json"
	default:
		badRequest(c, "file must be input or response")
		return
	}
	if path == nil || *path == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("batch %d has no %s file", id, c.Param("kind"))})
		return
	}

	f, err := h.files.Open(*path)
	if err != nil {
		h.logger.Warn("Failed to open file %s of batch %d: %v", *path, id, err)
		c.JSON(http.StatusNotFound, gin.H{"error": "file is no longer available"})
		return
	}
	defer f.Close()

	fileName := fmt.Sprintf("batch_%d_%s", id, c.Param("kind"))
	if name != nil && *name != "" {
		fileName = *name
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, fileName))
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, f); err != nil {
		h.logger.Error("Failed to stream file %s of batch %d: %v", *path, id, err)
	}
}

func (h *BatchHandler) Import(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var opts importRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&opts); err != nil {
			badRequest(c, err.Error())
			return
		}
	}

	batch, err := h.batches.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if h.publisher != nil {
		h.enqueue(c, batch, events.TypeBatchImport, processors.ImportOptionsData(opts.options()))
		return
	}

	batch, err = h.importer.ImportBatch(c.Request.Context(), id, opts.options())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": batch})
}

func (h *BatchHandler) Export(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	format := c.DefaultQuery("format", csvio.FormatCSV)
	if format != csvio.FormatCSV && format != csvio.FormatXLSX {
		badRequest(c, "format must be csv or xlsx")
		return
	}

	batch, err := h.batches.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if h.publisher != nil {
		h.enqueue(c, batch, events.TypeBatchExport, map[string]interface{}{"format": format})
		return
	}

	path, err := h.exporter.ExportBatch(c.Request.Context(), id, format)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"batch_id": id, "path": path, "format": format}})
}

func (h *BatchHandler) enqueue(c *gin.Context, batch *models.Batch, eventType string, data map[string]interface{}) {
	event := events.Event{
		Type:    eventType,
		BatchID: batch.ID,
		JobID:   batch.JobID,
		Data:    data,
	}
	if err := h.publisher.Publish(context.WithoutCancel(c.Request.Context()), event); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"data": gin.H{
		"batch_id": batch.ID,
		"job_id":   batch.JobID,
		"type":     eventType,
		"status":   "queued",
	}})
}

type importRequest struct {
	ProductType    string `json:"product_type"`
	AttributeSetID *int   `json:"attribute_set_id"`
	ProfileID      *uint  `json:"profile_id"`
}

func (r importRequest) options() catalog.ImportOptions {
	return catalog.ImportOptions{
		ProductType:    r.ProductType,
		AttributeSetID: r.AttributeSetID,
		ProfileID:      r.ProfileID,
	}
}
