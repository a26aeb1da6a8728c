package catalog

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const (
	StatusEnabled           = 1
	VisibilityCatalogSearch = 4
)

// Transformer turns mapped attribute data into a catalog product. Attributes
// with a dedicated product field are lifted out; everything else becomes a
// custom attribute.
type Transformer struct{}

func NewTransformer() *Transformer {
	return &Transformer{}
}

func (t *Transformer) ToProduct(mapped map[string]interface{}, productType string, attributeSetID *int) (*Product, error) {
	product := &Product{
		TypeID:     productType,
		Status:     StatusEnabled,
		Visibility: VisibilityCatalogSearch,
	}
	if attributeSetID != nil {
		product.AttributeSetID = *attributeSetID
	}

	for code, value := range mapped {
		switch code {
		case "sku":
			product.SKU = fmt.Sprint(value)
		case "name":
			product.Name = fmt.Sprint(value)
		case "price":
			price, err := toPrice(value)
			if err != nil {
				return nil, fmt.Errorf("invalid price format: %w", err)
			}
			product.Price = price
		default:
			product.CustomAttributes = append(product.CustomAttributes, CustomAttribute{
				AttributeCode: code,
				Value:         value,
			})
		}
	}

	sort.Slice(product.CustomAttributes, func(i, j int) bool {
		return product.CustomAttributes[i].AttributeCode < product.CustomAttributes[j].AttributeCode
	})
	return product, nil
}

func toPrice(v interface{}) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(t), 64)
	}
	return 0, fmt.Errorf("unsupported price value %v", v)
}
