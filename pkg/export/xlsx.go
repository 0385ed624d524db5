package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const summarySheet = "Summary"

var sheetNames = map[string]string{
	bucketExact:           "Exact Matches",
	bucketPartial:         "Partial Matches",
	bucketHighDiscrepancy: "High Discrepancy",
	bucketGSTMismatch:     "GST Mismatches",
	bucketTallyMismatch:   "Tally Mismatches",
}

// WriteXLSX writes a workbook with a summary sheet followed by one sheet per bucket.
func WriteXLSX(w io.Writer, doc Document) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), summarySheet); err != nil {
		return err
	}
	if err := writeSheet(f, summarySheet, []string{"metric", "count"}, summaryRows(doc.Summary)); err != nil {
		return err
	}

	for _, t := range buildTables(doc.Result) {
		name := sheetNames[t.name]
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
		if err := writeSheet(f, name, t.header, t.rows); err != nil {
			return err
		}
	}

	return f.Write(w)
}

func writeSheet(f *excelize.File, sheet string, header []string, rows [][]string) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header of %s: %w", sheet, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", i+1, sheet, err)
		}
	}
	return nil
}
