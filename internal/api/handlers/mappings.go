package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"productgen/internal/errs"
	"productgen/internal/logger"
	"productgen/internal/mapping"
	"productgen/internal/models"
	"productgen/internal/repository"
)

type MappingHandler struct {
	profiles repository.MappingProfileRepository
	config   *mapping.Config
	logger   *logger.Logger
}

func NewMappingHandler(profiles repository.MappingProfileRepository, config *mapping.Config, logger *logger.Logger) *MappingHandler {
	return &MappingHandler{
		profiles: profiles,
		config:   config,
		logger:   logger,
	}
}

// mappingRequest accepts rules either as a stored string (JSON or PHP
// serialized) or as an object of ai_field -> attribute_code.
type mappingRequest struct {
	Name           string          `json:"name" binding:"required"`
	IsDefault      bool            `json:"is_default"`
	ProductType    *string         `json:"product_type"`
	AttributeSetID *int            `json:"attribute_set_id"`
	Rules          json.RawMessage `json:"rules"`
	Description    string          `json:"description"`
}

func (r mappingRequest) apply(profile *models.MappingProfile) error {
	if r.ProductType != nil && *r.ProductType != "" {
		pt, err := mapping.NormalizeProductType(*r.ProductType)
		if err != nil {
			return err
		}
		r.ProductType = &pt
	}

	rules := ""
	if len(r.Rules) > 0 && string(r.Rules) != "null" {
		var raw string
		if err := json.Unmarshal(r.Rules, &raw); err == nil {
			rules = raw
		} else {
			decoded := mapping.DecodeRules(string(r.Rules))
			if len(decoded) == 0 && string(r.Rules) != "{}" && string(r.Rules) != "[]" {
				return fmt.Errorf("%w: rules could not be decoded", errs.ErrInvalid)
			}
			rules = mapping.EncodeRules(decoded)
		}
	}

	profile.Name = r.Name
	profile.IsDefault = r.IsDefault
	profile.ProductType = r.ProductType
	profile.AttributeSetID = r.AttributeSetID
	profile.Rules = rules
	profile.Description = r.Description
	return nil
}

type profileView struct {
	models.MappingProfile
	DecodedRules map[string]string `json:"decoded_rules"`
}

func viewOf(p models.MappingProfile) profileView {
	return profileView{MappingProfile: p, DecodedRules: mapping.DecodeRules(p.Rules)}
}

func (h *MappingHandler) List(c *gin.Context) {
	profiles, err := h.profiles.GetList(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	views := make([]profileView, 0, len(profiles))
	for _, p := range profiles {
		views = append(views, viewOf(p))
	}
	c.JSON(http.StatusOK, gin.H{"data": views})
}

func (h *MappingHandler) Get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	profile, err := h.profiles.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": viewOf(*profile)})
}

func (h *MappingHandler) Create(c *gin.Context) {
	var req mappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	var profile models.MappingProfile
	if err := req.apply(&profile); err != nil {
		respondError(c, h.logger, err)
		return
	}
	saved, err := h.profiles.Save(c.Request.Context(), &profile)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": viewOf(*saved)})
}

func (h *MappingHandler) Update(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	profile, err := h.profiles.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	var req mappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := req.apply(profile); err != nil {
		respondError(c, h.logger, err)
		return
	}
	saved, err := h.profiles.Save(c.Request.Context(), profile)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": viewOf(*saved)})
}

func (h *MappingHandler) Delete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := h.profiles.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *MappingHandler) Default(c *gin.Context) {
	profile, err := h.config.GetDefaultProfile(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if profile == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no default mapping profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": viewOf(*profile)})
}

// Rules returns the effective rules for a product type and attribute set.
func (h *MappingHandler) Rules(c *gin.Context) {
	setID, err := optionalInt(c, "attribute_set_id")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	productType := c.Query("product_type")
	if productType != "" {
		if productType, err = mapping.NormalizeProductType(productType); err != nil {
			respondError(c, h.logger, err)
			return
		}
	}

	rules := h.config.GetMappingRules(c.Request.Context(), productType, setID)
	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"product_type":     productType,
		"attribute_set_id": setID,
		"rules":            rules,
	}})
}
