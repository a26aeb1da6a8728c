package handlers

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"productgen/internal/csvio"
	"productgen/internal/generation"
	"productgen/internal/logger"
	"productgen/internal/services/ai"
)

// maxUploadSize caps bulk generation CSV uploads.
const maxUploadSize = 10 << 20

type GenerationHandler struct {
	service *generation.Service
	logger  *logger.Logger
}

func NewGenerationHandler(service *generation.Service, logger *logger.Logger) *GenerationHandler {
	return &GenerationHandler{
		service: service,
		logger:  logger,
	}
}

func (h *GenerationHandler) Generate(c *gin.Context) {
	var req ai.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	result, err := h.service.GenerateSingle(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": gin.H{
		"batch":    result.Batch,
		"saved":    result.Saved,
		"products": result.Products,
	}})
}

func (h *GenerationHandler) GenerateCSV(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "a CSV file must be uploaded in the 'file' field")
		return
	}
	if file.Size > maxUploadSize {
		badRequest(c, "uploaded file is too large")
		return
	}
	if ext := filepath.Ext(file.Filename); ext != ".csv" && ext != ".CSV" {
		badRequest(c, "only .csv files are accepted")
		return
	}

	f, err := file.Open()
	if err != nil {
		badRequest(c, "failed to read uploaded file")
		return
	}
	defer f.Close()

	result, err := h.service.GenerateFromCSV(c.Request.Context(), file.Filename, f)
	if err != nil {
		if result != nil && result.Batch != nil {
			c.JSON(statusFor(err), gin.H{
				"error":       err.Error(),
				"batch":       result.Batch,
				"failed_rows": result.FailedRows,
				"row_errors":  result.RowErrors,
			})
			return
		}
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": result})
}

func (h *GenerationHandler) Template(c *gin.Context) {
	c.Header("Content-Disposition", `attachment; filename="product_generation_template.csv"`)
	c.Header("Content-Type", "text/csv")
	c.Status(http.StatusOK)
	if err := csvio.WriteTemplate(c.Writer); err != nil {
		h.logger.Error("Failed to write CSV template: %v", err)
	}
}

// Columns describes the template columns for clients building their own files.
func (h *GenerationHandler) Columns(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": csvio.GenerationColumns()})
}
