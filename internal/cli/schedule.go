package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BartekS5/renewables-etl/pkg/logger"
	"github.com/go-co-op/gocron"
	"github.com/spf13/cobra"
)

func NewScheduleCmd(a *app) *cobra.Command {
	opts := defaultRunOptions()
	var cronExpr string

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the pipeline on a cron schedule (UTC) until interrupted",
		RunE: func(c *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(c.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s := gocron.NewScheduler(time.UTC)
			s.SingletonModeAll()

			job, err := s.Cron(cronExpr).Do(func() {
				if _, err := a.runOnce(ctx, opts); err != nil {
					logger.Errorf("Scheduled run failed: %v", err)
				}
			})
			if err != nil {
				return fmt.Errorf("invalid cron expression %q: %w", cronExpr, err)
			}

			s.StartAsync()
			logger.Infof("Scheduler started with %q, next run at %s", cronExpr, job.NextRun().Format(time.RFC3339))

			<-ctx.Done()
			s.Stop()
			logger.Infof("Scheduler stopped")
			return nil
		},
	}

	addRunFlags(cmd, opts)
	cmd.Flags().StringVar(&cronExpr, "cron", "0 6 * * *", "Cron expression evaluated in UTC")

	return cmd
}
