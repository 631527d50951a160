package main

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"feedbacktriage/pkg/config"
)

var watchFlags struct {
	schedule string
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the triage pipeline on a cron schedule",
	Long: `Watch runs the full pipeline repeatedly on a standard 5-field cron
schedule (minute hour day-of-month month day-of-week).

Examples: "0 9 * * *" (daily 9am), "*/30 * * * *" (every 30 minutes).`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchFlags.schedule, "schedule", "", "Cron schedule (overrides config)")
}

func runWatch(cmd *cobra.Command, _ []string) error {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	schedule := cfg.Watch.Schedule
	if watchFlags.schedule != "" {
		schedule = watchFlags.schedule
	}
	if schedule == "" {
		return fmt.Errorf("no schedule: set watch.schedule in config or pass --schedule")
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(schedule)
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}

	ctx := cmd.Context()
	logger.Info("watch started", zap.String("schedule", schedule))
	for {
		now := time.Now()
		next := sched.Next(now)
		logger.Info("next run scheduled",
			zap.Time("at", next),
			zap.Duration("in", next.Sub(now).Round(time.Second)))

		select {
		case <-ctx.Done():
			logger.Info("watch stopped")
			return ctx.Err()
		case <-time.After(next.Sub(now)):
		}

		if err := runBatch(ctx, cfg, logger); err != nil {
			logger.Error("scheduled run failed", zap.Error(err))
		}
	}
}
