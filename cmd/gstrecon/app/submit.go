package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"gstrecon/pkg/client"
)

const (
	EnvServer     = "GSTRECON_SERVER"
	defaultServer = "http://localhost:8080"
)

func (a *App) newSubmitCommand() *cobra.Command {
	var (
		mapping    mappingFlags
		server     string
		gstPath    string
		tallyPath  string
		exportPath string
		wait       time.Duration
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Upload two ledgers to a reconciliation service and reconcile them",
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := mapping.request("")
			if err != nil {
				return err
			}
			var format string
			if exportPath != "" {
				f, err := exportFormat(exportPath)
				if err != nil {
					return err
				}
				format = string(f)
			}

			ctx := cmd.Context()
			api := client.NewReconciliationClient(server)
			if wait > 0 {
				if err := client.NewHttpClient(server).WaitForReady(ctx, wait); err != nil {
					return err
				}
			}

			gst, err := os.Open(gstPath)
			if err != nil {
				return err
			}
			defer gst.Close()
			tally, err := os.Open(tallyPath)
			if err != nil {
				return err
			}
			defer tally.Close()

			upload, err := api.Upload(ctx, filepath.Base(gstPath), gst, filepath.Base(tallyPath), tally)
			if err != nil {
				return fmt.Errorf("upload: %w", err)
			}
			a.log.Info("Uploaded ledgers",
				"upload_id", upload.ID,
				"duplicate", upload.Duplicate,
				"gst_rows", upload.GSTRowCount,
				"tally_rows", upload.TallyRowCount,
			)

			req.UploadID = upload.ID
			resp, err := api.Reconcile(ctx, req, uuid.NewString())
			if err != nil {
				return fmt.Errorf("reconcile: %w", err)
			}

			fmt.Fprintf(a.out, "Upload:         %s\n", upload.ID)
			fmt.Fprintf(a.out, "Reconciliation: %s\n", resp.ID)
			if err := printSummary(a.out, resp.Summary.Summary); err != nil {
				return err
			}

			if exportPath == "" {
				return nil
			}
			body, err := api.Export(ctx, resp.ID, format)
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}
			if err := os.WriteFile(exportPath, body, 0o644); err != nil {
				return err
			}
			a.log.Info("Export written", "path", exportPath, "bytes", len(body))
			return nil
		},
	}

	server = os.Getenv(EnvServer)
	if server == "" {
		server = defaultServer
	}
	cmd.Flags().StringVar(&server, "server", server, "reconciliation service base URL (env "+EnvServer+")")
	cmd.Flags().StringVar(&gstPath, "gst", "", "GST ledger (.csv, .xlsx, .xlsm)")
	cmd.Flags().StringVar(&tallyPath, "tally", "", "Tally ledger (.csv, .xlsx, .xlsm)")
	cmd.Flags().StringVar(&exportPath, "export", "", "download the result to this .json, .csv or .xlsx file")
	cmd.Flags().DurationVar(&wait, "wait", 0, "wait up to this long for the server to report ready")
	mapping.register(cmd)
	_ = cmd.MarkFlagRequired("gst")
	_ = cmd.MarkFlagRequired("tally")
	_ = cmd.MarkFlagRequired("map")
	return cmd
}
