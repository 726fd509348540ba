// Package scheduler runs the bot's periodic jobs on cron expressions with
// seconds, evaluated in the business time zone.
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is a named unit of periodic work.
type Job func(ctx context.Context) error

type Scheduler struct {
	cron    *cron.Cron
	jobs    map[string]cron.EntryID // name -> entry
	jobsMux sync.RWMutex
	ctx     context.Context
	logger  zerolog.Logger
}

// New creates a scheduler. ctx is passed to every job run and should be
// cancelled on shutdown.
func New(ctx context.Context, loc *time.Location, logger zerolog.Logger) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLocation(loc),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		jobs:   make(map[string]cron.EntryID),
		ctx:    ctx,
		logger: logger,
	}
}

func (s *Scheduler) Start() {
	s.logger.Info().Msg("⏰ Starting scheduler...")
	s.cron.Start()
	s.logger.Info().Int("jobs", len(s.Jobs())).Msg("✅ Scheduler started")
}

// Stop stops scheduling and waits for running jobs.
func (s *Scheduler) Stop() {
	s.logger.Info().Msg("⏰ Stopping scheduler...")
	<-s.cron.Stop().Done()
	s.logger.Info().Msg("✅ Scheduler stopped")
}

// Add registers job under name, replacing any job with the same name.
// An empty schedule disables the job.
func (s *Scheduler) Add(name, schedule string, job Job) error {
	s.jobsMux.Lock()
	defer s.jobsMux.Unlock()

	if entryID, exists := s.jobs[name]; exists {
		s.cron.Remove(entryID)
		delete(s.jobs, name)
	}
	if schedule == "" {
		s.logger.Info().Str("job", name).Msg("⏸️ Job disabled (no schedule)")
		return nil
	}

	entryID, err := s.cron.AddFunc(schedule, func() { s.run(name, job) })
	if err != nil {
		return fmt.Errorf("failed to add cron job %s: %w", name, err)
	}

	s.jobs[name] = entryID
	s.logger.Info().Str("job", name).Str("schedule", schedule).Msg("   ✅ Scheduled job")
	return nil
}

func (s *Scheduler) run(name string, job Job) {
	start := time.Now()
	if err := job(s.ctx); err != nil {
		s.logger.Error().Err(err).Str("job", name).Msg("❌ Scheduled job failed")
		return
	}
	s.logger.Debug().Str("job", name).Dur("took", time.Since(start)).Msg("✅ Scheduled job done")
}

func (s *Scheduler) Remove(name string) {
	s.jobsMux.Lock()
	defer s.jobsMux.Unlock()

	if entryID, exists := s.jobs[name]; exists {
		s.cron.Remove(entryID)
		delete(s.jobs, name)
		s.logger.Info().Str("job", name).Msg("   ✅ Removed scheduled job")
	}
}

// Jobs returns the scheduled job names, sorted.
func (s *Scheduler) Jobs() []string {
	s.jobsMux.RLock()
	defer s.jobsMux.RUnlock()

	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Next returns the next activation of a job, or zero if unknown.
func (s *Scheduler) Next(name string) time.Time {
	s.jobsMux.RLock()
	id, ok := s.jobs[name]
	s.jobsMux.RUnlock()
	if !ok {
		return time.Time{}
	}
	return s.cron.Entry(id).Next
}
