package mapping

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"productgen/internal/errs"
	"productgen/internal/logger"
	"productgen/internal/models"
)

const DefaultProductType = "simple"

// ProductTypes lists the catalog product types a draft can be mapped onto.
var ProductTypes = map[string]bool{
	"simple":       true,
	"configurable": true,
	"virtual":      true,
	"downloadable": true,
	"bundle":       true,
	"grouped":      true,
}

// builtinFields are mapped 1:1 when no rule set applies.
var builtinFields = []string{
	"name",
	"sku",
	"description",
	"short_description",
	"price",
	"meta_title",
	"meta_description",
	"meta_keyword",
	"url_key",
}

func BuiltinRules() map[string]string {
	rules := make(map[string]string, len(builtinFields))
	for _, f := range builtinFields {
		rules[f] = f
	}
	return rules
}

// NormalizeProductType lower-cases productType, defaults it to simple and
// rejects unknown types.
func NormalizeProductType(productType string) (string, error) {
	productType = strings.ToLower(strings.TrimSpace(productType))
	if productType == "" {
		return DefaultProductType, nil
	}
	if !ProductTypes[productType] {
		return "", fmt.Errorf("%w: unknown product type %q", errs.ErrInvalid, productType)
	}
	return productType, nil
}

// DraftSource loads drafts for mapping.
type DraftSource interface {
	GetByID(ctx context.Context, id uint) (*models.Draft, error)
}

// AttributeSource reports the frontend input type of a catalog attribute
// ("text", "textarea", "multiselect", ...).
type AttributeSource interface {
	AttributeInputType(ctx context.Context, code string) (string, error)
}

type Engine struct {
	drafts     DraftSource
	config     *Config
	attributes AttributeSource
	currency   string
	logger     *logger.Logger
}

func NewEngine(drafts DraftSource, config *Config, attributes AttributeSource, currency string, logger *logger.Logger) *Engine {
	return &Engine{
		drafts:     drafts,
		config:     config,
		attributes: attributes,
		currency:   currency,
		logger:     logger,
	}
}

// MapDraftToCatalog builds the attribute_code -> value data for a catalog
// product form from one draft. Mapping is best effort: unmapped or empty
// fields are dropped. It never writes.
func (e *Engine) MapDraftToCatalog(ctx context.Context, draftID uint, productType string, attributeSetID *int, profileID *uint) (map[string]interface{}, error) {
	productType, err := NormalizeProductType(productType)
	if err != nil {
		return nil, err
	}

	draft, err := e.drafts.GetByID(ctx, draftID)
	if err != nil {
		return nil, err
	}

	var rules map[string]string
	if profileID != nil {
		rules, err = e.config.ProfileRules(ctx, *profileID)
		if err != nil {
			return nil, err
		}
	} else {
		rules = e.config.GetMappingRules(ctx, productType, attributeSetID)
	}
	if len(rules) == 0 {
		rules = BuiltinRules()
	}

	return e.Apply(ctx, draft, rules), nil
}

// Apply maps draft values through rules.
func (e *Engine) Apply(ctx context.Context, draft *models.Draft, rules map[string]string) map[string]interface{} {
	result := map[string]interface{}{}
	shapes := map[string]bool{}

	sources := make([]string, 0, len(rules))
	hasPriceRule := false
	for source, target := range rules {
		sources = append(sources, source)
		if target == "price" {
			hasPriceRule = true
		}
	}
	sort.Strings(sources)

	for _, source := range sources {
		target := rules[source]
		if _, taken := result[target]; taken {
			continue
		}
		value, ok := draft.FieldValue(source, e.currency)
		if !ok {
			continue
		}
		shaped, ok := e.shape(ctx, target, value, shapes)
		if !ok {
			continue
		}
		result[target] = shaped
	}

	if !hasPriceRule {
		if price, ok := draft.FieldValue("price", e.currency); ok {
			result["price"] = price
		}
	}
	return result
}

// shape converts a draft value into what the target attribute expects.
func (e *Engine) shape(ctx context.Context, target string, value interface{}, cache map[string]bool) (interface{}, bool) {
	switch v := value.(type) {
	case string:
		v = strings.TrimSpace(v)
		return v, v != ""
	case []string:
		return e.shapeList(ctx, target, v, cache)
	case []interface{}:
		items := make([]string, 0, len(v))
		for _, item := range v {
			if s := stringify(item); s != "" {
				items = append(items, s)
			}
		}
		return e.shapeList(ctx, target, items, cache)
	case map[string]interface{}, map[string]models.PriceRange:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, false
		}
		return string(b), true
	}
	return value, value != nil
}

func (e *Engine) shapeList(ctx context.Context, target string, items []string, cache map[string]bool) (interface{}, bool) {
	if len(items) == 0 {
		return nil, false
	}
	if e.isMultiselect(ctx, target, cache) {
		out := make([]string, len(items))
		copy(out, items)
		return out, true
	}
	joined := models.StringList(items).Join(", ")
	return joined, joined != ""
}

func (e *Engine) isMultiselect(ctx context.Context, code string, cache map[string]bool) bool {
	if multi, ok := cache[code]; ok {
		return multi
	}
	multi := false
	if e.attributes != nil {
		input, err := e.attributes.AttributeInputType(ctx, code)
		if err != nil {
			e.logger.Debug("Attribute metadata for %s unavailable, treating as text: %v", code, err)
		} else {
			multi = input == "multiselect"
		}
	}
	cache[code] = multi
	return multi
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case map[string]interface{}, []interface{}:
		b, _ := json.Marshal(t)
		return string(b)
	}
	return fmt.Sprint(v)
}
