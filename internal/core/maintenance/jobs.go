package maintenance

import (
	"context"
	"fmt"

	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/rates"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/scheduler"
)

// Scheduler is the subset of scheduler.Scheduler the jobs need.
type Scheduler interface {
	Add(name, schedule string, job scheduler.Job) error
}

// RateWarmer refreshes exchange rates ahead of the first quote of the day.
type RateWarmer interface {
	Rates(ctx context.Context) rates.Snapshot
}

// JobConfig holds the cron expressions. An empty schedule disables a job.
type JobConfig struct {
	RatesWarmup      string
	LogCleanup       string
	LogRetentionDays int
	// Backup is ignored when BackupEnabled is false.
	Backup        string
	BackupEnabled bool
}

// RegisterJobs adds the housekeeping jobs to s.
func RegisterJobs(s Scheduler, t *Toolkit, warmer RateWarmer, cfg JobConfig) error {
	if warmer != nil {
		err := s.Add("rates-warmup", cfg.RatesWarmup, func(ctx context.Context) error {
			snap := warmer.Rates(ctx)
			if !snap.Complete() {
				return fmt.Errorf("exchange rates still unavailable")
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	err := s.Add("log-cleanup", cfg.LogCleanup, func(context.Context) error {
		_, err := t.CleanOldLogs(cfg.LogRetentionDays)
		return err
	})
	if err != nil {
		return err
	}

	if cfg.BackupEnabled {
		err := s.Add("backup", cfg.Backup, func(context.Context) error {
			_, err := t.Backup()
			return err
		})
		if err != nil {
			return err
		}
	}
	return nil
}
