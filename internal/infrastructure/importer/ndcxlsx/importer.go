// Package ndcxlsx reads drug directory spreadsheets in the NDC package
// export layout into package records. Column order is not assumed; the
// header row is mapped by name.
package ndcxlsx

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/pharmlane/rx-pack-advisor/internal/core/domain"
)

type Importer struct{}

func New() *Importer {
	return &Importer{}
}

// Column headers accepted for each field, lowercased. The NDC export and
// a couple of common hand-edited variants are covered.
var headerAliases = map[string][]string{
	"ndc":          {"ndc", "ndcpackagecode", "ndc_package_code", "package ndc"},
	"drug_name":    {"drug_name", "proprietaryname", "proprietary_name", "drug name", "name"},
	"description":  {"description", "packagedescription", "package_description", "package description"},
	"package_size": {"package_size", "packagesize", "package size", "size"},
	"unit":         {"unit", "packageunit", "package_unit"},
	"active":       {"active", "is_active", "status"},
	"manufacturer": {"manufacturer", "labelername", "labeler_name", "labeler"},
	"dosage_form":  {"dosage_form", "dosageformname", "dosage_form_name", "dosage form"},
}

func (i *Importer) ImportSpreadsheet(ctx context.Context, data io.Reader) ([]domain.PackageRecord, error) {
	workbook, err := excelize.OpenReader(data)
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer func() {
		_ = workbook.Close()
	}()

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("spreadsheet has no sheets")
	}

	rows, err := workbook.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	columns := mapHeader(rows[0])
	if _, ok := columns["ndc"]; !ok {
		return nil, fmt.Errorf("sheet %q has no NDC column", sheets[0])
	}

	var records []domain.PackageRecord
	for _, row := range rows[1:] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, ok := rowToRecord(columns, row)
		if !ok {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func mapHeader(header []string) map[string]int {
	columns := make(map[string]int, len(headerAliases))
	for idx, cell := range header {
		name := strings.ToLower(strings.TrimSpace(cell))
		for field, aliases := range headerAliases {
			if _, taken := columns[field]; taken {
				continue
			}
			for _, alias := range aliases {
				if name == alias {
					columns[field] = idx
					break
				}
			}
		}
	}
	return columns
}

func rowToRecord(columns map[string]int, row []string) (domain.PackageRecord, bool) {
	cell := func(field string) string {
		idx, ok := columns[field]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	ndc := cell("ndc")
	if ndc == "" {
		return domain.PackageRecord{}, false
	}

	rec := domain.PackageRecord{
		NDC:          ndc,
		DrugName:     cell("drug_name"),
		Description:  cell("description"),
		Unit:         cell("unit"),
		Manufacturer: cell("manufacturer"),
		DosageForm:   cell("dosage_form"),
		Active:       parseActive(cell("active")),
	}
	if size := cell("package_size"); size != "" {
		if parsed, err := strconv.ParseFloat(size, 64); err == nil {
			rec.PackageSize = parsed
		}
	}
	if rec.Description != "" {
		rec.Packagings = []string{rec.Description}
	}
	return rec, true
}

// parseActive treats a blank cell as active: the NDC export only flags
// the withdrawn records.
func parseActive(value string) bool {
	switch strings.ToLower(value) {
	case "", "true", "t", "yes", "y", "1", "active":
		return true
	default:
		return false
	}
}
