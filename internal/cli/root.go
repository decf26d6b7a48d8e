// Package cli wires configuration, the ETL pipeline and its sinks behind a
// Cobra command tree.
package cli

import (
	"time"

	"github.com/BartekS5/renewables-etl/internal/config"
	"github.com/BartekS5/renewables-etl/pkg/logger"
	"github.com/spf13/cobra"
)

// app carries state shared by all sub-commands once configuration is loaded.
type app struct {
	cfg *config.Config
	now func() time.Time
}

func NewRootCmd() *cobra.Command {
	a := &app{now: time.Now}
	opts := defaultRunOptions()

	rootCmd := &cobra.Command{
		Use:   "renewables-etl",
		Short: "Fetch the last week of solar and wind generation into partitioned CSV files",
		Long: `renewables-etl pulls a rolling 7-day window of renewable generation data from
the renewables API, normalizes the column names and writes one CSV file per
api/requested_date partition. Without a sub-command it performs a single run.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := a.runOnce(cmd.Context(), opts)
			return err
		},
	}

	rootCmd.AddCommand(NewRunCmd(a), NewScheduleCmd(a))

	return rootCmd
}

func (a *app) init() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	a.cfg = cfg

	if err := logger.InitLogger(cfg.LogFile, logger.ParseLevel(cfg.LogLevel)); err != nil {
		return err
	}
	logger.Debugf("Loaded %s", cfg)
	return nil
}
