package mapping

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

var (
	sourceKeys = []string{"ai_field", "ai_attribute", "source", "from"}
	targetKeys = []string{"catalog_attribute", "magento_attribute", "attribute_code", "attribute", "target", "to"}
)

// DecodeRules decodes a stored rule set. JSON is tried first, then the legacy
// PHP serialized format. Both a flat {"ai_field": "attribute_code"} object and
// a list of row objects ({"ai_field": ..., "attribute": ...}) are accepted.
// Anything undecodable yields an empty map.
func DecodeRules(raw string) map[string]string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return map[string]string{}
	}

	var decoded interface{}
	if err := json.Unmarshal([]byte(raw), &decoded); err == nil {
		return normalizeRules(decoded)
	}
	if decoded, err := unserialize(raw); err == nil {
		return normalizeRules(decoded)
	}
	return map[string]string{}
}

// EncodeRules renders rules as the JSON object stored on a profile.
func EncodeRules(rules map[string]string) string {
	b, _ := json.Marshal(rules)
	return string(b)
}

func normalizeRules(decoded interface{}) map[string]string {
	rules := map[string]string{}

	var rows []interface{}
	switch v := decoded.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			switch item := v[k].(type) {
			case string:
				addRule(rules, k, item)
			case map[string]interface{}:
				rows = append(rows, item)
			}
		}
	case []interface{}:
		rows = v
	}

	for _, row := range rows {
		obj, ok := row.(map[string]interface{})
		if !ok {
			continue
		}
		addRule(rules, pick(obj, sourceKeys), pick(obj, targetKeys))
	}
	return rules
}

func addRule(rules map[string]string, source, target string) {
	source, target = strings.TrimSpace(source), strings.TrimSpace(target)
	if source == "" || target == "" {
		return
	}
	rules[source] = target
}

func pick(obj map[string]interface{}, keys []string) string {
	for _, k := range keys {
		if s, ok := obj[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// unserialize parses the subset of PHP's serialize() output that legacy
// configuration rows use: arrays, strings, integers, floats, booleans and null.
// Arrays become map[string]interface{} keyed by the stringified PHP key.
func unserialize(raw string) (interface{}, error) {
	p := &phpParser{in: raw}
	v, err := p.value()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.in) {
		return nil, fmt.Errorf("trailing data at offset %d", p.pos)
	}
	return v, nil
}

type phpParser struct {
	in  string
	pos int
}

var errSyntax = errors.New("malformed serialized value")

func (p *phpParser) value() (interface{}, error) {
	if p.pos+1 >= len(p.in) {
		return nil, errSyntax
	}
	kind := p.in[p.pos]
	if kind == 'N' {
		p.pos++
		return nil, p.expect(';')
	}
	p.pos++
	if err := p.expect(':'); err != nil {
		return nil, err
	}

	switch kind {
	case 'b':
		n, err := p.until(';')
		if err != nil {
			return nil, err
		}
		return n == "1", nil
	case 'i':
		n, err := p.until(';')
		if err != nil {
			return nil, err
		}
		return strconv.ParseInt(n, 10, 64)
	case 'd':
		n, err := p.until(';')
		if err != nil {
			return nil, err
		}
		return strconv.ParseFloat(n, 64)
	case 's':
		s, err := p.str()
		if err != nil {
			return nil, err
		}
		return s, p.expect(';')
	case 'a':
		return p.array()
	}
	return nil, errSyntax
}

func (p *phpParser) array() (interface{}, error) {
	n, err := p.until(':')
	if err != nil {
		return nil, err
	}
	count, err := strconv.Atoi(n)
	if err != nil || count < 0 {
		return nil, errSyntax
	}
	if err := p.expect('{'); err != nil {
		return nil, err
	}
	out := make(map[string]interface{}, count)
	for i := 0; i < count; i++ {
		key, err := p.value()
		if err != nil {
			return nil, err
		}
		val, err := p.value()
		if err != nil {
			return nil, err
		}
		out[fmt.Sprint(key)] = val
	}
	return out, p.expect('}')
}

// str reads len:"bytes" where len counts bytes.
func (p *phpParser) str() (string, error) {
	n, err := p.until(':')
	if err != nil {
		return "", err
	}
	size, err := strconv.Atoi(n)
	if err != nil || size < 0 {
		return "", errSyntax
	}
	if err := p.expect('"'); err != nil {
		return "", err
	}
	if p.pos+size > len(p.in) {
		return "", errSyntax
	}
	s := p.in[p.pos : p.pos+size]
	p.pos += size
	return s, p.expect('"')
}

func (p *phpParser) until(delim byte) (string, error) {
	end := strings.IndexByte(p.in[p.pos:], delim)
	if end < 0 {
		return "", errSyntax
	}
	s := p.in[p.pos : p.pos+end]
	p.pos += end + 1
	return s, nil
}

func (p *phpParser) expect(c byte) error {
	if p.pos >= len(p.in) || p.in[p.pos] != c {
		return errSyntax
	}
	p.pos++
	return nil
}
