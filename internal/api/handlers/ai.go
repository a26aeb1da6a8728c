package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"productgen/internal/errs"
	"productgen/internal/logger"
	"productgen/internal/mapping"
	"productgen/internal/models"
	"productgen/internal/services/ai"
)

// SettingStore reads and writes the admin configuration surface.
type SettingStore interface {
	Value(ctx context.Context, path string) string
	Set(ctx context.Context, path, value string) error
}

type AIHandler struct {
	client   *ai.Client
	auth     *ai.AuthService
	settings SettingStore
	logger   *logger.Logger
}

func NewAIHandler(client *ai.Client, auth *ai.AuthService, settings SettingStore, logger *logger.Logger) *AIHandler {
	return &AIHandler{
		client:   client,
		auth:     auth,
		settings: settings,
		logger:   logger,
	}
}

type connectRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AIHandler) Connect(c *gin.Context) {
	var req connectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	masked, err := h.auth.Connect(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"connected": true, "api_key": masked}})
}

func (h *AIHandler) Health(c *gin.Context) {
	status, err := h.client.Health(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": status})
}

func (h *AIHandler) GetSettings(c *gin.Context) {
	ctx := c.Request.Context()
	key := h.settings.Value(ctx, models.SettingAIAPIKey)
	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		models.SettingAIBaseURL:           h.settings.Value(ctx, models.SettingAIBaseURL),
		models.SettingAIAPIKey:            ai.MaskKey(key),
		models.SettingDefaultMappingRules: h.settings.Value(ctx, models.SettingDefaultMappingRules),
		"connected":                       key != "",
	}})
}

// UpdateSettings stores the writable settings. The API key is only set
// through Connect.
func (h *AIHandler) UpdateSettings(c *gin.Context) {
	var req map[string]string
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	for path, value := range req {
		switch path {
		case models.SettingAIBaseURL:
		case models.SettingDefaultMappingRules:
			if value != "" && len(mapping.DecodeRules(value)) == 0 {
				respondError(c, h.logger, fmt.Errorf("%w: %s could not be decoded", errs.ErrInvalid, path))
				return
			}
		default:
			respondError(c, h.logger, fmt.Errorf("%w: setting %q is not writable", errs.ErrInvalid, path))
			return
		}
	}

	for path, value := range req {
		if err := h.settings.Set(c.Request.Context(), path, value); err != nil {
			respondError(c, h.logger, err)
			return
		}
	}
	h.GetSettings(c)
}
