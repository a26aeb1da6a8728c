package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/xuri/excelize/v2"

	"productgen/internal/models"
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

var exportHeaders = []string{
	"id", "batch_id", "generation_type", "product_name", "sku",
	"meta_title", "meta_description", "short_description", "description",
	"key_features", "how_to_use", "ingredients", "keywords", "pricing",
	"is_created_in_catalog", "catalog_product_id", "regeneration_count", "updated_at",
}

func draftRow(d models.Draft) []string {
	batch, catalogID, updated := "", "", ""
	if d.BatchID != nil {
		batch = strconv.FormatUint(uint64(*d.BatchID), 10)
	}
	if d.CatalogProductID != nil {
		catalogID = strconv.FormatInt(*d.CatalogProductID, 10)
	}
	if d.UpdatedAt != nil {
		updated = d.UpdatedAt.UTC().Format("2006-01-02 15:04:05")
	}
	return []string{
		strconv.FormatUint(uint64(d.ID), 10),
		batch,
		string(d.GenerationType),
		d.ProductName,
		d.SKU,
		d.MetaTitle,
		d.MetaDescription,
		d.ShortDescription,
		d.Description,
		d.KeyFeatures.Join(" | "),
		d.HowToUse.Join(" | "),
		d.Ingredients.Join(", "),
		d.Keywords.Join(", "),
		formatPricing(d.Pricing),
		strconv.FormatBool(d.IsCreatedInCatalog),
		catalogID,
		strconv.Itoa(d.RegenerationCount),
		updated,
	}
}

func formatPricing(p models.Pricing) string {
	codes := make([]string, 0, len(p))
	for code := range p {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	out := ""
	for i, code := range codes {
		if i > 0 {
			out += "; "
		}
		r := p[code]
		out += fmt.Sprintf("%s %.2f-%.2f", code, r.Min, r.Max)
	}
	return out
}

// ExportDrafts writes drafts to w in the given format.
func ExportDrafts(w io.Writer, drafts []models.Draft, format string) error {
	switch format {
	case FormatXLSX:
		return exportXLSX(w, drafts)
	case FormatCSV, "":
		return exportCSV(w, drafts)
	}
	return fmt.Errorf("unsupported export format %q", format)
}

func exportCSV(w io.Writer, drafts []models.Draft) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(exportHeaders); err != nil {
		return err
	}
	for _, d := range drafts {
		if err := writer.Write(draftRow(d)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func exportXLSX(w io.Writer, drafts []models.Draft) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Drafts"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	if err != nil {
		return err
	}

	for i, h := range exportHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			return err
		}

		colName, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheetName, colName, colName, 20); err != nil {
			return err
		}
	}

	for r, d := range drafts {
		for c, value := range draftRow(d) {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return fmt.Errorf("draft %d, column %s: %w", d.ID, exportHeaders[c], err)
			}
		}
	}

	return f.Write(w)
}

// ContentType returns the MIME type and file extension of an export format.
func ContentType(format string) (string, string) {
	if format == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "xlsx"
	}
	return "text/csv", "csv"
}
