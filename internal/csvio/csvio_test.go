package csvio

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"productgen/internal/models"
)

func TestParseGenerationCSV(t *testing.T) {
	input := "\ufeffProduct Name*,Primary Keywords,Category,Tone\n" +
		"Vitamin C Serum,\"serum, vitamin c\",Skin Care,friendly\n" +
		",missing name,,\n" +
		",,,\n" +
		"Rose Toner,toner,,\n"

	requests, rowErrors, err := ParseGenerationCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, requests, 2)

	assert.Equal(t, "Vitamin C Serum", requests[0].ProductName)
	assert.Equal(t, "serum, vitamin c", requests[0].PrimaryKeywords)
	assert.Equal(t, "Skin Care", requests[0].Category)
	assert.Equal(t, "friendly", requests[0].Tone)
	assert.Equal(t, 0, requests[0].ItemIndex)
	assert.Equal(t, "Rose Toner", requests[1].ProductName)
	assert.Equal(t, 1, requests[1].ItemIndex)

	require.Len(t, rowErrors, 1)
	assert.Equal(t, 3, rowErrors[0].Row)
}

func TestParseGenerationCSV_HeaderAliases(t *testing.T) {
	requests, _, err := ParseGenerationCSV(strings.NewReader("name,keywords\nSerum,glow\n"))
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, "Serum", requests[0].ProductName)
	assert.Equal(t, "glow", requests[0].PrimaryKeywords)
}

func TestParseGenerationCSV_Errors(t *testing.T) {
	_, _, err := ParseGenerationCSV(strings.NewReader(""))
	assert.Error(t, err)

	_, _, err = ParseGenerationCSV(strings.NewReader("category,tone\nx,y\n"))
	assert.Error(t, err)
}

func TestWriteTemplate_ParsesBack(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTemplate(&buf))

	requests, rowErrors, err := ParseGenerationCSV(&buf)
	require.NoError(t, err)
	assert.Empty(t, rowErrors)
	require.Len(t, requests, 1)
	assert.Equal(t, "Vitamin C Face Serum", requests[0].ProductName)
}

func exportFixture() []models.Draft {
	batch := uint(2)
	catalogID := int64(55)
	updated := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	return []models.Draft{{
		ID:                 1,
		BatchID:            &batch,
		GenerationType:     models.GenerationTypeCSV,
		ProductName:        "Serum",
		SKU:                "SERUM-1",
		KeyFeatures:        models.StringList{"a", "b"},
		Keywords:           models.StringList{"x", "y"},
		Pricing:            models.Pricing{"USD": {Min: 1, Max: 2}, "EUR": {Min: 3, Max: 4}},
		IsCreatedInCatalog: true,
		CatalogProductID:   &catalogID,
		UpdatedAt:          &updated,
	}}
}

func TestExportDrafts_CSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportDrafts(&buf, exportFixture(), FormatCSV))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, exportHeaders, records[0])

	row := map[string]string{}
	for i, h := range records[0] {
		row[h] = records[1][i]
	}
	assert.Equal(t, "Serum", row["product_name"])
	assert.Equal(t, "a | b", row["key_features"])
	assert.Equal(t, "EUR 3.00-4.00; USD 1.00-2.00", row["pricing"])
	assert.Equal(t, "55", row["catalog_product_id"])
	assert.Equal(t, "2024-01-02 03:04:05", row["updated_at"])
}

func TestExportDrafts_XLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportDrafts(&buf, exportFixture(), FormatXLSX))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Drafts")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "product_name", rows[0][3])
	assert.Equal(t, "Serum", rows[1][3])
}

func TestExportDrafts_XLSXLayout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportDrafts(&buf, exportFixture(), FormatXLSX))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	width, err := f.GetColWidth("Drafts", "R")
	require.NoError(t, err)
	assert.Equal(t, 20.0, width)

	styleID, err := f.GetCellStyle("Drafts", "A1")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	require.NotNil(t, style.Font)
	assert.True(t, style.Font.Bold)

	value, err := f.GetCellValue("Drafts", "R1")
	require.NoError(t, err)
	assert.Equal(t, exportHeaders[len(exportHeaders)-1], value)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestExportDrafts_XLSXWriteError(t *testing.T) {
	err := ExportDrafts(failingWriter{}, exportFixture(), FormatXLSX)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestExportDrafts_UnknownFormat(t *testing.T) {
	assert.Error(t, ExportDrafts(&bytes.Buffer{}, nil, "pdf"))
}
