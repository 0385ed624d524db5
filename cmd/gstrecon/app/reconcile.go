package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"gstrecon/pkg/export"
	"gstrecon/pkg/parser"
	"gstrecon/pkg/reconciler"
	"gstrecon/pkg/sanitizer"
)

const (
	outputSummary = "summary"
	outputJSON    = "json"
)

func (a *App) newReconcileCommand() *cobra.Command {
	var (
		mapping    mappingFlags
		gstPath    string
		tallyPath  string
		output     string
		exportPath string
	)

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Reconcile two local ledgers without a server",
		Example: `  gstrecon reconcile --gst gstr2b.xlsx --tally purchases.csv \
    --map "Invoice No=Voucher No" --map GSTIN=GSTIN --map "Taxable Value=Amount" \
    --export result.xlsx`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if output != outputSummary && output != outputJSON {
				return fmt.Errorf("invalid --output %q: expected %s or %s", output, outputSummary, outputJSON)
			}
			req, err := mapping.request("")
			if err != nil {
				return err
			}

			gst, _, err := loadDataset(gstPath)
			if err != nil {
				return err
			}
			tally, _, err := loadDataset(tallyPath)
			if err != nil {
				return err
			}

			opts := []reconciler.Option{}
			if req.PartialThreshold != nil {
				opts = append(opts, reconciler.WithPartialThreshold(*req.PartialThreshold))
			}
			if len(req.KeyFeatures) > 0 {
				opts = append(opts, reconciler.WithKeyFeatures(req.KeyFeatures...))
			}

			result, err := reconciler.ReconcileContext(cmd.Context(),
				parser.SkipToHeaderRow(gst.Records, sanitizer.NormalizeHeaderRow(req.GSTHeaderRow)),
				parser.SkipToHeaderRow(tally.Records, sanitizer.NormalizeHeaderRow(req.TallyHeaderRow)),
				reconciler.NewMapping(
					sanitizer.NormalizeColumnNames(req.GSTColumns),
					sanitizer.NormalizeColumnNames(req.TallyColumns),
				),
				opts...,
			)
			if err != nil {
				return err
			}
			a.log.Info("Reconciliation finished",
				"key_features", result.KeyFeatures,
				"partial_threshold", result.PartialThreshold,
			)

			doc := export.Document{Summary: result.Summary(), Result: result}
			if exportPath != "" {
				if err := writeExport(exportPath, doc); err != nil {
					return err
				}
				a.log.Info("Export written", "path", exportPath)
			}

			if output == outputJSON {
				return export.WriteJSON(a.out, doc)
			}
			return printSummary(a.out, doc.Summary)
		},
	}

	cmd.Flags().StringVar(&gstPath, "gst", "", "GST ledger (.csv, .xlsx, .xlsm)")
	cmd.Flags().StringVar(&tallyPath, "tally", "", "Tally ledger (.csv, .xlsx, .xlsm)")
	cmd.Flags().StringVarP(&output, "output", "o", outputSummary, "stdout format: summary or json")
	cmd.Flags().StringVar(&exportPath, "export", "", "also write the full result to this .json, .csv or .xlsx file")
	mapping.register(cmd)
	_ = cmd.MarkFlagRequired("gst")
	_ = cmd.MarkFlagRequired("tally")
	_ = cmd.MarkFlagRequired("map")
	return cmd
}

// exportFormat picks the export format from path's extension.
func exportFormat(path string) (export.Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("export path %q needs a .json, .csv or .xlsx extension", path)
	}
	return export.ParseFormat(ext)
}

func writeExport(path string, doc export.Document) (err error) {
	format, err := exportFormat(path)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return export.Write(f, format, doc)
}

func printSummary(out io.Writer, s reconciler.Summary) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	rows := []struct {
		label string
		n     int
	}{
		{"GST records", s.TotalGSTRecords},
		{"Tally records", s.TotalTallyRecords},
		{"Exact matches", s.ExactMatches},
		{"Partial matches", s.PartialMatches},
		{"High-discrepancy matches", s.HighDiscrepancyMatches},
		{"Only in GST", s.GSTMismatches},
		{"Only in Tally", s.TallyMismatches},
	}
	for _, r := range rows {
		fmt.Fprintf(w, "%s:\t%d\t\n", r.label, r.n)
	}
	return w.Flush()
}
