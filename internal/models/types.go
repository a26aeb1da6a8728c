package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
)

// scanBytes accepts the value shapes drivers hand back for text columns.
func scanBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, errors.New("type assertion to []byte failed")
	}
}

// JSONB is a JSON object stored in a text column.
type JSONB map[string]interface{}

// Value implements the driver.Valuer interface
func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	b, err := json.Marshal(j)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface
func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, err := scanBytes(value)
	if err != nil {
		return err
	}
	if len(bytes) == 0 {
		*j = nil
		return nil
	}
	return json.Unmarshal(bytes, j)
}

// StringList is an ordered list of strings stored as a JSON array.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	bytes, err := scanBytes(value)
	if err != nil {
		return err
	}
	if len(bytes) == 0 {
		*l = nil
		return nil
	}
	var out []string
	if err := json.Unmarshal(bytes, &out); err != nil {
		return err
	}
	*l = out
	return nil
}

// Join returns the items joined with sep, skipping blanks.
func (l StringList) Join(sep string) string {
	parts := make([]string, 0, len(l))
	for _, item := range l {
		if item = strings.TrimSpace(item); item != "" {
			parts = append(parts, item)
		}
	}
	return strings.Join(parts, sep)
}

// PriceRange is the suggested price band for one currency.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Pricing maps an upper-case currency code to its price band.
type Pricing map[string]PriceRange

func (p Pricing) Value() (driver.Value, error) {
	if p == nil {
		return nil, nil
	}
	b, err := json.Marshal(map[string]PriceRange(p))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (p *Pricing) Scan(value interface{}) error {
	if value == nil {
		*p = nil
		return nil
	}
	bytes, err := scanBytes(value)
	if err != nil {
		return err
	}
	if len(bytes) == 0 {
		*p = nil
		return nil
	}
	out := map[string]PriceRange{}
	if err := json.Unmarshal(bytes, &out); err != nil {
		return err
	}
	*p = out
	return nil
}

// Range looks up a currency case-insensitively.
func (p Pricing) Range(currency string) (PriceRange, bool) {
	if r, ok := p[strings.ToUpper(currency)]; ok {
		return r, true
	}
	for code, r := range p {
		if strings.EqualFold(code, currency) {
			return r, true
		}
	}
	return PriceRange{}, false
}
