package catalog

import (
	"fmt"
	"strings"

	"productgen/internal/errs"
)

// Validator checks a product before it is sent to the catalog.
type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

func (v *Validator) ValidateProduct(p *Product) error {
	var problems []string
	if strings.TrimSpace(p.Name) == "" {
		problems = append(problems, "name is required")
	}
	if strings.TrimSpace(p.SKU) == "" {
		problems = append(problems, "sku is required")
	} else if len(p.SKU) > 64 {
		problems = append(problems, "sku exceeds 64 characters")
	}
	if p.Price < 0 {
		problems = append(problems, "price cannot be negative")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", errs.ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}
