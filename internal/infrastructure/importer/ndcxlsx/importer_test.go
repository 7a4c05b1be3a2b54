package ndcxlsx

import (
	"bytes"
	"context"
	"testing"

	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	workbook := excelize.NewFile()
	sheet := workbook.GetSheetName(0)
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := workbook.SetSheetRow(sheet, cellRef, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	var buf bytes.Buffer
	if err := workbook.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return &buf
}

func TestImportSpreadsheetMapsHeaderByName(t *testing.T) {
	buf := buildWorkbook(t, [][]any{
		{"PROPRIETARYNAME", "NDCPACKAGECODE", "PACKAGEDESCRIPTION", "LABELERNAME", "DOSAGEFORMNAME", "ACTIVE"},
		{"LISINOPRIL", "0093-1010-01", "30 TABLET in 1 BOTTLE (0093-1010-01)", "Teva", "TABLET", ""},
		{"LISINOPRIL", "0093-1010-05", "90 TABLET in 1 BOTTLE (0093-1010-05)", "Teva", "TABLET", "false"},
	})

	records, err := New().ImportSpreadsheet(context.Background(), buf)
	if err != nil {
		t.Fatalf("ImportSpreadsheet() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	first := records[0]
	if first.NDC != "0093-1010-01" || first.DrugName != "LISINOPRIL" {
		t.Fatalf("unexpected first record: %+v", first)
	}
	if !first.Active {
		t.Fatalf("blank active cell should default to active")
	}
	if len(first.Packagings) != 1 || first.Packagings[0] != first.Description {
		t.Fatalf("description should seed packagings, got %v", first.Packagings)
	}
	if records[1].Active {
		t.Fatalf("explicit false should mark record inactive")
	}
}

func TestImportSpreadsheetSkipsRowsWithoutNDC(t *testing.T) {
	buf := buildWorkbook(t, [][]any{
		{"NDC", "DRUG_NAME"},
		{"", "orphan row"},
		{"0093-1010-01", "LISINOPRIL"},
	})

	records, err := New().ImportSpreadsheet(context.Background(), buf)
	if err != nil {
		t.Fatalf("ImportSpreadsheet() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
}

func TestImportSpreadsheetRejectsMissingNDCColumn(t *testing.T) {
	buf := buildWorkbook(t, [][]any{
		{"DRUG_NAME", "DESCRIPTION"},
		{"LISINOPRIL", "30 TABLET in 1 BOTTLE"},
	})

	if _, err := New().ImportSpreadsheet(context.Background(), buf); err == nil {
		t.Fatalf("expected error for missing NDC column")
	}
}
