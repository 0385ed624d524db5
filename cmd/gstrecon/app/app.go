// Package app implements the gstrecon command line: local reconciliation of a
// GST and a Tally ledger, and submission to a running reconciliation service.
package app

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"gstrecon/pkg/logger"
)

type App struct {
	out    io.Writer
	errOut io.Writer
	log    *logger.Logger

	logLevel string
}

func New(out, errOut io.Writer) *App {
	return &App{out: out, errOut: errOut}
}

// Execute runs the CLI with args, excluding the program name.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(a.out)
	rootCmd.SetErr(a.errOut)
	return rootCmd.ExecuteContext(ctx)
}

func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gstrecon",
		Short: "Reconcile GST returns against Tally ledgers",
		Long: `gstrecon matches rows of a GST export against a Tally export on a
user-supplied column mapping and sorts them into exact matches, partial
matches, high-discrepancy matches and rows missing from either side.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", logger.WARN, "log level: debug, info, warn, error")

	rootCmd.AddCommand(
		a.newHeadersCommand(),
		a.newReconcileCommand(),
		a.newSubmitCommand(),
		a.newEnqueueCommand(),
	)
	return rootCmd
}

func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	if _, err := logger.ParseLevel(a.logLevel); err != nil {
		return err
	}
	a.log = logger.New(logger.Config{
		Level:   a.logLevel,
		Format:  logger.TEXT,
		Output:  a.errOut,
		Service: "gstrecon-cli",
	})
	return nil
}
