package models

import (
	"strings"
	"time"
)

type GenerationType string

const (
	GenerationTypeSingle GenerationType = "single"
	GenerationTypeCSV    GenerationType = "csv"
)

func (t GenerationType) Valid() bool {
	return t == GenerationTypeSingle || t == GenerationTypeCSV
}

// Draft is one AI generated product candidate waiting to become a catalog product.
type Draft struct {
	ID             uint           `json:"id" gorm:"primaryKey;autoIncrement"`
	BatchID        *uint          `json:"batch_id" gorm:"index"`
	ProductName    string         `json:"product_name" gorm:"size:255;not null;index:idx_drafts_name_type"`
	GenerationType GenerationType `json:"generation_type" gorm:"size:20;not null;index:idx_drafts_name_type"`
	SKU            string         `json:"sku" gorm:"size:64"`

	MetaTitle        string     `json:"meta_title" gorm:"size:255"`
	MetaDescription  string     `json:"meta_description" gorm:"type:text"`
	ShortDescription string     `json:"short_description" gorm:"type:text"`
	Description      string     `json:"description" gorm:"type:text"`
	KeyFeatures      StringList `json:"key_features" gorm:"type:text"`
	HowToUse         StringList `json:"how_to_use" gorm:"type:text"`
	Ingredients      StringList `json:"ingredients" gorm:"type:text"`
	Keywords         StringList `json:"keywords" gorm:"type:text"`
	Pricing          Pricing    `json:"pricing" gorm:"type:text"`

	AdditionalInformation JSONB  `json:"additional_information" gorm:"type:text"`
	AIResponse            string `json:"ai_response" gorm:"type:text"`

	IsCreatedInCatalog bool       `json:"is_created_in_catalog" gorm:"not null;default:false;index"`
	CatalogProductID   *int64     `json:"catalog_product_id"`
	RegenerationCount  int        `json:"regeneration_count" gorm:"not null;default:0"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          *time.Time `json:"updated_at" gorm:"autoUpdateTime:false"`
}

func (Draft) TableName() string {
	return "product_drafts"
}

// FieldValue resolves an AI field code against the draft. Canonical columns
// win over additional_information. The second result is false when the draft
// has no value for code.
func (d *Draft) FieldValue(code, currency string) (interface{}, bool) {
	switch strings.ToLower(strings.TrimSpace(code)) {
	case "name", "product_name":
		return d.ProductName, d.ProductName != ""
	case "sku":
		return d.SKU, d.SKU != ""
	case "meta_title":
		return d.MetaTitle, d.MetaTitle != ""
	case "meta_description":
		return d.MetaDescription, d.MetaDescription != ""
	case "short_description":
		return d.ShortDescription, d.ShortDescription != ""
	case "description":
		return d.Description, d.Description != ""
	case "key_features":
		return []string(d.KeyFeatures), len(d.KeyFeatures) > 0
	case "how_to_use":
		return []string(d.HowToUse), len(d.HowToUse) > 0
	case "ingredients":
		return []string(d.Ingredients), len(d.Ingredients) > 0
	case "keywords", "meta_keyword", "meta_keywords":
		return []string(d.Keywords), len(d.Keywords) > 0
	case "url_key":
		if v, ok := d.extra("url_key"); ok {
			return v, true
		}
		slug := Slug(d.ProductName)
		return slug, slug != ""
	case "price":
		if r, ok := d.Pricing.Range(currency); ok && r.Min > 0 {
			return r.Min, true
		}
		return d.extra("price")
	case "pricing":
		return map[string]PriceRange(d.Pricing), len(d.Pricing) > 0
	}

	return d.extra(code)
}

func (d *Draft) extra(code string) (interface{}, bool) {
	v, ok := d.AdditionalInformation[code]
	if !ok || IsEmptyValue(v) {
		return nil, false
	}
	return v, true
}

// IsEmptyValue reports whether a decoded JSON value carries no content.
func IsEmptyValue(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []interface{}:
		return len(t) == 0
	case []string:
		return len(t) == 0
	case map[string]interface{}:
		return len(t) == 0
	}
	return false
}
