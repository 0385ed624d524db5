package app

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"gstrecon/pkg/checksum"
	"gstrecon/pkg/parser"
	"gstrecon/pkg/sanitizer"
)

func (a *App) newHeadersCommand() *cobra.Command {
	var (
		headerRow int
		preview   int
	)

	cmd := &cobra.Command{
		Use:   "headers <file>",
		Short: "List the columns detected in a CSV or XLSX ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, sum, err := loadDataset(args[0])
			if err != nil {
				return err
			}
			records := parser.SkipToHeaderRow(ds.Records, sanitizer.NormalizeHeaderRow(headerRow))

			a.log.Debug("Parsed ledger", "file", args[0], "rows", len(ds.Records), "checksum", sum)

			w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "File:\t%s\n", filepath.Base(args[0]))
			fmt.Fprintf(w, "Checksum:\t%s\n", sum)
			fmt.Fprintf(w, "Records:\t%d\n\n", len(records))
			fmt.Fprintln(w, "#\tCOLUMN")
			for i, h := range ds.Headers {
				fmt.Fprintf(w, "%d\t%s\n", i+1, h)
			}
			if preview > 0 && len(records) > 0 {
				fmt.Fprintln(w)
				fmt.Fprintln(w, strings.Join(ds.Headers, "\t"))
				for _, rec := range records[:min(preview, len(records))] {
					row := make([]string, len(ds.Headers))
					for i, h := range ds.Headers {
						row[i] = fmt.Sprint(rec[h])
					}
					fmt.Fprintln(w, strings.Join(row, "\t"))
				}
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&headerRow, "header-row", 1, "1-based header row; earlier records are not counted")
	cmd.Flags().IntVar(&preview, "preview", 0, "also print the first N records")
	return cmd
}

// loadDataset parses path and fingerprints its raw bytes.
func loadDataset(path string) (*parser.Dataset, string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	sum, err := checksum.Reader(bytes.NewReader(content))
	if err != nil {
		return nil, "", fmt.Errorf("checksum %s: %w", path, err)
	}
	ds, err := parser.ParseFile(filepath.Base(path), bytes.NewReader(content))
	if err != nil {
		return nil, "", fmt.Errorf("parse %s: %w", path, err)
	}
	return ds, sum, nil
}
