package models

import "time"

// MappingProfile is a named set of AI field -> catalog attribute rules,
// optionally scoped to a product type and attribute set.
type MappingProfile struct {
	ID             uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Name           string    `json:"name" gorm:"size:255;not null" binding:"required"`
	IsDefault      bool      `json:"is_default" gorm:"not null;default:false;index"`
	ProductType    *string   `json:"product_type" gorm:"size:32;index:idx_mapping_scope"`
	AttributeSetID *int      `json:"attribute_set_id" gorm:"index:idx_mapping_scope"`
	Rules          string    `json:"rules" gorm:"type:text"`
	Description    string    `json:"description" gorm:"type:text"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (MappingProfile) TableName() string {
	return "field_mapping_profiles"
}
