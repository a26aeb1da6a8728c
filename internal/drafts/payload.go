package drafts

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"productgen/internal/models"
)

// excludedKeys never reach additional_information.
var excludedKeys = map[string]bool{
	"primary_keywords":   true,
	"secondary_keywords": true,
	"item_index":         true,
	"generation_time":    true,
	"from_cache":         true,
	"error":              true,
}

// CanonicalFields are the AI response fields stored in typed draft columns.
type CanonicalFields struct {
	ProductName      string
	MetaTitle        string
	MetaDescription  string
	ShortDescription string
	Description      string
	KeyFeatures      []string
	HowToUse         []string
	Ingredients      []string
	Keywords         []string
	Pricing          models.Pricing
}

// Payload splits one AI generated product into typed fields and the
// remaining free-form fields.
type Payload struct {
	Fields CanonicalFields
	Extra  map[string]interface{}
}

func ParsePayload(item map[string]interface{}) Payload {
	consumed := map[string]bool{}
	take := func(keys ...string) interface{} {
		var found interface{}
		for _, k := range keys {
			v, ok := item[k]
			if !ok {
				continue
			}
			consumed[k] = true
			if found == nil && !models.IsEmptyValue(v) {
				found = v
			}
		}
		return found
	}

	var f CanonicalFields
	f.ProductName = text(take("name", "product_name"))
	f.MetaTitle = text(take("meta_title"))
	f.MetaDescription = text(take("meta_description"))
	f.ShortDescription = text(take("short_description"))
	f.Description = text(take("description", "long_description"))
	f.KeyFeatures = list(take("key_features"), "\n")
	f.HowToUse = list(take("how_to_use"), "\n")
	f.Ingredients = ingredientList(take("ingredients"))

	f.Keywords = list(take("keywords"), ",")
	if len(f.Keywords) == 0 {
		f.Keywords = mergeUnique(list(item["primary_keywords"], ","), list(item["secondary_keywords"], ","))
	}

	f.Pricing = pricing(take("pricing"))
	for k, v := range item {
		cur, bound, ok := flatPriceKey(k)
		if !ok {
			continue
		}
		consumed[k] = true
		amount, ok := toFloat(v)
		if !ok {
			continue
		}
		if f.Pricing == nil {
			f.Pricing = models.Pricing{}
		}
		r := f.Pricing[cur]
		if bound == "min" {
			r.Min = amount
		} else {
			r.Max = amount
		}
		f.Pricing[cur] = r
	}

	extra := map[string]interface{}{}
	for k, v := range item {
		if consumed[k] || excludedKeys[k] {
			continue
		}
		extra[k] = v
	}

	return Payload{Fields: f, Extra: extra}
}

func text(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case []interface{}:
		return strings.Join(list(t, "\n"), "\n")
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

// list turns an array or a sep separated string into an ordered string list.
func list(v interface{}, sep string) []string {
	var out []string
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		for _, part := range strings.Split(t, sep) {
			if part = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(part), "-•*")); part != "" {
				out = append(out, part)
			}
		}
	case []string:
		for _, s := range t {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	case []interface{}:
		for _, item := range t {
			if s := listItem(item); s != "" {
				out = append(out, s)
			}
		}
	default:
		if s := strings.TrimSpace(fmt.Sprint(t)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ingredientList accepts comma or newline separated ingredient strings.
func ingredientList(v interface{}) []string {
	if s, ok := v.(string); ok {
		return list(strings.ReplaceAll(s, "\n", ","), ",")
	}
	return list(v, "\n")
}

func listItem(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case map[string]interface{}:
		title := text(firstOf(t, "title", "name", "feature", "step"))
		desc := text(firstOf(t, "description", "detail", "text"))
		switch {
		case title != "" && desc != "":
			return title + ": " + desc
		case title != "":
			return title
		case desc != "":
			return desc
		}
		b, _ := json.Marshal(t)
		return string(b)
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

func firstOf(m map[string]interface{}, keys ...string) interface{} {
	for _, k := range keys {
		if v, ok := m[k]; ok && !models.IsEmptyValue(v) {
			return v
		}
	}
	return nil
}

func mergeUnique(lists ...[]string) []string {
	seen := map[string]bool{}
	var out []string
	for _, l := range lists {
		for _, s := range l {
			key := strings.ToLower(s)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, s)
		}
	}
	return out
}

// pricing reads {"usd": {"min": 10, "max": 12}, "inr": {"min_price": "799"}}.
func pricing(v interface{}) models.Pricing {
	obj, ok := v.(map[string]interface{})
	if !ok {
		return nil
	}
	out := models.Pricing{}
	currencies := make([]string, 0, len(obj))
	for cur := range obj {
		currencies = append(currencies, cur)
	}
	sort.Strings(currencies)
	for _, cur := range currencies {
		band, ok := obj[cur].(map[string]interface{})
		if !ok {
			continue
		}
		var r models.PriceRange
		var found bool
		if min, ok := toFloat(firstOf(band, "min", "min_price")); ok {
			r.Min, found = min, true
		}
		if max, ok := toFloat(firstOf(band, "max", "max_price")); ok {
			r.Max, found = max, true
		}
		if found {
			out[strings.ToUpper(cur)] = r
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// flatPriceKey recognises price_<currency>_min and price_<currency>_max.
func flatPriceKey(k string) (string, string, bool) {
	parts := strings.Split(strings.ToLower(k), "_")
	if len(parts) != 3 || parts[0] != "price" || len(parts[1]) != 3 {
		return "", "", false
	}
	if parts[2] != "min" && parts[2] != "max" {
		return "", "", false
	}
	return strings.ToUpper(parts[1]), parts[2], true
}

func toFloat(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		cleaned := strings.Map(func(r rune) rune {
			if (r >= '0' && r <= '9') || r == '.' || r == '-' {
				return r
			}
			return -1
		}, t)
		if cleaned == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(cleaned, 64)
		return f, err == nil
	}
	return 0, false
}
