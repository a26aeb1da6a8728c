// Package csvio reads bulk generation requests from CSV and writes draft
// exports as CSV or XLSX.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"productgen/internal/services/ai"
)

// Column describes one column of the bulk generation template.
type Column struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Example     string `json:"example"`
}

func GenerationColumns() []Column {
	return []Column{
		{Name: "product_name", Description: "Product name", Required: true, Example: "Vitamin C Face Serum"},
		{Name: "primary_keywords", Description: "Comma-separated primary keywords", Example: "vitamin c serum, brightening serum"},
		{Name: "secondary_keywords", Description: "Comma-separated secondary keywords", Example: "glow, dark spots"},
		{Name: "category", Description: "Product category", Example: "Skin Care"},
		{Name: "target_audience", Description: "Who the product is for", Example: "Adults 25-45"},
		{Name: "tone", Description: "Writing tone", Example: "friendly"},
		{Name: "language", Description: "Output language", Example: "en"},
		{Name: "additional_instructions", Description: "Free-form prompt additions", Example: ""},
	}
}

var headerAliases = map[string]string{
	"name":         "product_name",
	"product":      "product_name",
	"productname":  "product_name",
	"keywords":     "primary_keywords",
	"instructions": "additional_instructions",
}

// RowError reports a CSV row that could not be turned into a request.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ParseGenerationCSV reads one generation request per data row. Rows without
// a product name are reported, not fatal. Row numbers count the header as 1.
func ParseGenerationCSV(r io.Reader) ([]ai.GenerateRequest, []RowError, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("csv file is empty")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read csv header: %w", err)
	}

	index := map[string]int{}
	for i, h := range header {
		key := normalizeHeader(h)
		if alias, ok := headerAliases[key]; ok {
			key = alias
		}
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}
	if _, ok := index["product_name"]; !ok {
		return nil, nil, fmt.Errorf("csv header must contain a product_name column")
	}

	var requests []ai.GenerateRequest
	var rowErrors []RowError
	rowNum := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		rowNum++
		if err != nil {
			rowErrors = append(rowErrors, RowError{Row: rowNum, Message: err.Error()})
			continue
		}
		if blank(record) {
			continue
		}

		get := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		req := ai.GenerateRequest{
			ProductName:            get("product_name"),
			PrimaryKeywords:        get("primary_keywords"),
			SecondaryKeywords:      get("secondary_keywords"),
			Category:               get("category"),
			TargetAudience:         get("target_audience"),
			Tone:                   get("tone"),
			Language:               get("language"),
			AdditionalInstructions: get("additional_instructions"),
			ItemIndex:              len(requests),
		}
		if req.ProductName == "" {
			rowErrors = append(rowErrors, RowError{Row: rowNum, Message: "product_name is required"})
			continue
		}
		requests = append(requests, req)
	}
	return requests, rowErrors, nil
}

// WriteTemplate writes the header row of the generation template and one example row.
func WriteTemplate(w io.Writer) error {
	cols := GenerationColumns()
	header := make([]string, len(cols))
	example := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.Name
		example[i] = c.Example
	}
	writer := csv.NewWriter(w)
	writer.Write(header)
	writer.Write(example)
	writer.Flush()
	return writer.Error()
}

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.TrimSuffix(h, "*")
	h = strings.TrimSpace(h)
	return strings.ReplaceAll(h, " ", "_")
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
