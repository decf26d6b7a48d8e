package cli

import (
	"github.com/BartekS5/renewables-etl/internal/etl"
	"github.com/spf13/cobra"
)

type RunOptions struct {
	OutputDir     string
	EndpointsFile string
	Date          string
	Days          int
	APIs          []string
	Workers       int
	DryRun        bool
}

func defaultRunOptions() *RunOptions {
	return &RunOptions{Days: etl.DefaultWindowDays}
}

func NewRunCmd(a *app) *cobra.Command {
	opts := defaultRunOptions()

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the pipeline once for the rolling window",
		RunE: func(c *cobra.Command, args []string) error {
			_, err := a.runOnce(c.Context(), opts)
			return err
		},
	}

	addRunFlags(cmd, opts)
	cmd.Flags().StringVarP(&opts.Date, "date", "d", "", "Reference date (YYYY-MM-DD); the window ends the day before. Defaults to today")

	return cmd
}

func addRunFlags(cmd *cobra.Command, opts *RunOptions) {
	cmd.Flags().StringVarP(&opts.OutputDir, "output-dir", "o", "", "Local write root (overrides OUTPUT_DIR)")
	cmd.Flags().StringVarP(&opts.EndpointsFile, "endpoints", "e", "", "YAML endpoints file (overrides ENDPOINTS_FILE)")
	cmd.Flags().IntVar(&opts.Days, "days", etl.DefaultWindowDays, "Number of days in the window")
	cmd.Flags().StringSliceVarP(&opts.APIs, "api", "a", nil, "Only process these endpoint names")
	cmd.Flags().IntVarP(&opts.Workers, "workers", "w", 0, "Pairs processed concurrently (overrides WORKERS)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Extract and transform without writing anything")
}
