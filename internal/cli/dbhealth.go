package cli

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/mfg-qc/crosscheck/internal/common"
	"github.com/mfg-qc/crosscheck/internal/repository"
)

// NewDBHealthCommand creates the dbhealth command: connect, migrate, ping.
func NewDBHealthCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "dbhealth",
		Short:        "Check database connectivity and schema",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if rootOpts.DBURL == "" {
				return fmt.Errorf("--db or DB_URL is required")
			}
			logger := slog.Default()

			db, err := repository.Open(cmd.Context(), common.DatabaseConfig{
				DSN:         rootOpts.DBURL,
				DialTimeout: 3 * time.Second,
			}, logger)
			if err != nil {
				return fmt.Errorf("DB health: FAIL (%w)", err)
			}
			defer repository.Close(db, logger)

			if err := repository.HealthCheck(cmd.Context(), db, time.Second, logger); err != nil {
				return fmt.Errorf("DB health: FAIL (%w)", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "DB health: OK")
			return nil
		},
	}
}
