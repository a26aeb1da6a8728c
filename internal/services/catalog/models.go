package catalog

import (
	"fmt"
	"strings"
	"time"
)

// Product is a catalog product as the store API returns it.
type Product struct {
	ID               int64             `json:"id"`
	SKU              string            `json:"sku"`
	Name             string            `json:"name"`
	TypeID           string            `json:"type_id"`
	AttributeSetID   int               `json:"attribute_set_id"`
	Price            float64           `json:"price"`
	Status           int               `json:"status"`
	Visibility       int               `json:"visibility"`
	CreatedAt        string            `json:"created_at,omitempty"`
	UpdatedAt        string            `json:"updated_at,omitempty"`
	CustomAttributes []CustomAttribute `json:"custom_attributes,omitempty"`
}

// CustomAttribute carries one EAV attribute value.
type CustomAttribute struct {
	AttributeCode string      `json:"attribute_code"`
	Value         interface{} `json:"value"`
}

// Attribute is the metadata of a catalog attribute.
type Attribute struct {
	AttributeID   int    `json:"attribute_id"`
	AttributeCode string `json:"attribute_code"`
	FrontendInput string `json:"frontend_input"`
	DefaultLabel  string `json:"default_frontend_label"`
	IsRequired    bool   `json:"is_required"`
	IsUserDefined bool   `json:"is_user_defined"`
	BackendType   string `json:"backend_type"`
}

// ProductPayload is the body of a create or update call.
type ProductPayload struct {
	Product Product `json:"product"`
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// ParseTimestamp reads a catalog timestamp. Zone-less values are UTC.
func ParseTimestamp(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unrecognised timestamp %q", s)
}
