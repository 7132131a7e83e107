// Package cli implements the qccheck command tree.
package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	DBURL   string
}

// NewRootCommand creates the root command for the qccheck CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "qccheck",
		Short:         "Cross-validate traveler, BOM, and unit photos",
		SilenceErrors: true,
		Long: `qccheck cross-checks the identifiers on a job traveler PDF, a BOM
spreadsheet, and photographs of the physical unit, and reports every
contradiction it finds before the unit ships.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if opts.Verbose {
				level = slog.LevelDebug
			}
			// Logs go to stderr so JSON output stays clean on stdout.
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.DBURL, "db", os.Getenv("DB_URL"), "database DSN (postgres:// or sqlite path)")

	cmd.AddCommand(NewAnalyzeCommand(opts))
	cmd.AddCommand(NewBatchCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewDBHealthCommand(opts))

	return cmd
}
