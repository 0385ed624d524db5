package export

import (
	"encoding/csv"
	"io"
)

// WriteCSV writes every bucket into one sheet, tagging each row with its bucket.
func WriteCSV(w io.Writer, doc Document) error {
	writer := csv.NewWriter(w)

	tables := buildTables(doc.Result)
	if err := writer.Write(append([]string{"bucket"}, tables[0].header...)); err != nil {
		return err
	}
	for _, t := range tables {
		for _, row := range t.rows {
			if err := writer.Write(append([]string{t.name}, row...)); err != nil {
				return err
			}
		}
	}

	writer.Flush()
	return writer.Error()
}
