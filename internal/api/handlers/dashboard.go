package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"productgen/internal/logger"
	"productgen/internal/repository"
	"productgen/internal/services/ai"
)

type DashboardHandler struct {
	client  *ai.Client
	drafts  repository.DraftRepository
	batches repository.BatchRepository
	logger  *logger.Logger
}

func NewDashboardHandler(client *ai.Client, drafts repository.DraftRepository, batches repository.BatchRepository, logger *logger.Logger) *DashboardHandler {
	return &DashboardHandler{
		client:  client,
		drafts:  drafts,
		batches: batches,
		logger:  logger,
	}
}

// Get combines remote usage with local counts. A failing AI API call leaves
// its section empty and reports the error next to it.
func (h *DashboardHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	resp := gin.H{}
	var remoteErrors []string

	if usage, err := h.client.UsageStats(ctx); err != nil {
		h.logger.Warn("Dashboard usage unavailable: %v", err)
		remoteErrors = append(remoteErrors, err.Error())
	} else {
		resp["usage"] = usage
	}
	if account, err := h.client.AccountInfo(ctx); err != nil {
		h.logger.Warn("Dashboard account unavailable: %v", err)
		remoteErrors = append(remoteErrors, err.Error())
	} else {
		resp["account"] = account
	}

	page := repository.Page{Page: 1, PageSize: 1}
	drafts, err := h.drafts.GetList(ctx, repository.DraftCriteria{Page: page, WithTotal: true})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	created := true
	inCatalog, err := h.drafts.GetList(ctx, repository.DraftCriteria{Page: page, CreatedInCatalog: &created, WithTotal: true})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	batches, err := h.batches.GetList(ctx, repository.BatchCriteria{Page: page})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	resp["local"] = gin.H{
		"drafts":            drafts.Total,
		"drafts_in_catalog": inCatalog.Total,
		"batches":           batches.Total,
	}
	if len(remoteErrors) > 0 {
		resp["errors"] = remoteErrors
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (h *DashboardHandler) History(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	history, err := h.client.History(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": history})
}
