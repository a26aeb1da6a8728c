package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"productgen/internal/csvio"
	"productgen/internal/drafts"
	"productgen/internal/logger"
	"productgen/internal/mapping"
	"productgen/internal/models"
	"productgen/internal/repository"
	"productgen/internal/services/catalog"
	"productgen/internal/worker/processors/export"
)

type DraftHandler struct {
	drafts     repository.DraftRepository
	reconciler *drafts.Reconciler
	engine     *mapping.Engine
	catalog    *catalog.Service
	logger     *logger.Logger
}

func NewDraftHandler(repo repository.DraftRepository, reconciler *drafts.Reconciler, engine *mapping.Engine, catalogService *catalog.Service, logger *logger.Logger) *DraftHandler {
	return &DraftHandler{
		drafts:     repo,
		reconciler: reconciler,
		engine:     engine,
		catalog:    catalogService,
		logger:     logger,
	}
}

type draftView struct {
	models.Draft
	Action string `json:"action"`
}

func (h *DraftHandler) criteria(c *gin.Context) (repository.DraftCriteria, error) {
	criteria := repository.DraftCriteria{
		Page:           pageParams(c),
		GenerationType: models.GenerationType(c.Query("generation_type")),
		Search:         c.Query("search"),
	}
	batchID, err := optionalUint(c, "batch_id")
	if err != nil {
		return criteria, err
	}
	created, err := optionalBool(c, "created_in_catalog")
	if err != nil {
		return criteria, err
	}
	criteria.BatchID = batchID
	criteria.CreatedInCatalog = created
	return criteria, nil
}

func (h *DraftHandler) List(c *gin.Context) {
	criteria, err := h.criteria(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	criteria.WithTotal = true

	list, err := h.drafts.GetList(c.Request.Context(), criteria)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	views := make([]draftView, 0, len(list.Items))
	for i := range list.Items {
		d := &list.Items[i]
		views = append(views, draftView{Draft: *d, Action: h.reconciler.Action(c.Request.Context(), d)})
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       views,
		"pagination": pagination(criteria.Page, list.Total),
	})
}

func (h *DraftHandler) Get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	draft, err := h.drafts.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": draftView{Draft: *draft, Action: h.reconciler.Action(c.Request.Context(), draft)}})
}

func (h *DraftHandler) Delete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := h.drafts.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *DraftHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", csvio.FormatCSV)
	if format != csvio.FormatCSV && format != csvio.FormatXLSX {
		badRequest(c, fmt.Sprintf("unsupported export format %q", format))
		return
	}

	criteria, err := h.criteria(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	items, err := export.CollectDrafts(c.Request.Context(), h.drafts, criteria)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	contentType, ext := csvio.ContentType(format)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="product_drafts.%s"`, ext))
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	if err := csvio.ExportDrafts(c.Writer, items, format); err != nil {
		h.logger.Error("Failed to export drafts: %v", err)
	}
}

func (h *DraftHandler) importOptions(c *gin.Context) (catalog.ImportOptions, error) {
	opts := catalog.ImportOptions{ProductType: c.Query("product_type")}
	setID, err := optionalInt(c, "attribute_set_id")
	if err != nil {
		return opts, err
	}
	profileID, err := optionalUint(c, "profile_id")
	if err != nil {
		return opts, err
	}
	opts.AttributeSetID = setID
	opts.ProfileID = profileID
	return opts, nil
}

// Mapped previews the catalog attribute data a draft maps to.
func (h *DraftHandler) Mapped(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	opts, err := h.importOptions(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	mapped, err := h.engine.MapDraftToCatalog(c.Request.Context(), id, opts.ProductType, opts.AttributeSetID, opts.ProfileID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": mapped})
}

// PushToCatalog creates the catalog product for a draft, or updates the one
// it is already linked to.
func (h *DraftHandler) PushToCatalog(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var opts catalog.ImportOptions
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&opts); err != nil {
			badRequest(c, err.Error())
			return
		}
	}

	result, err := h.catalog.CreateOrUpdateFromDraft(c.Request.Context(), id, opts)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"data": result})
}
