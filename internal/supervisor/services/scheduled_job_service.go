// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/tomtom215/gamecatalog/internal/config"
	"github.com/tomtom215/gamecatalog/internal/logging"
)

// Job is one run of a scheduled task.
type Job func(ctx context.Context) error

// ScheduledJobService runs a Job on a cron schedule under supervision.
//
// Runs never overlap: a tick that arrives while the previous run is still
// going is skipped. Each run gets a context bounded by the job timeout and
// canceled on shutdown. Job errors are logged and do not stop the service.
type ScheduledJobService struct {
	name       string
	spec       string
	schedule   cron.Schedule
	job        Job
	timeout    time.Duration
	runOnStart bool

	running sync.Mutex
	logger  zerolog.Logger
}

// JobOption configures a ScheduledJobService.
type JobOption func(*ScheduledJobService)

// WithJobTimeout bounds each run. Default: 10 minutes.
func WithJobTimeout(d time.Duration) JobOption {
	return func(s *ScheduledJobService) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithRunOnStart runs the job once as soon as the service starts.
func WithRunOnStart() JobOption {
	return func(s *ScheduledJobService) { s.runOnStart = true }
}

// NewScheduledJobService parses spec with config.ScheduleParser.
func NewScheduledJobService(name, spec string, job Job, opts ...JobOption) (*ScheduledJobService, error) {
	schedule, err := config.ScheduleParser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("schedule %q for %s: %w", spec, name, err)
	}
	s := &ScheduledJobService{
		name:     name,
		spec:     spec,
		schedule: schedule,
		job:      job,
		timeout:  10 * time.Minute,
		logger:   logging.WithComponent("scheduler").With().Str("job", name).Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Serve implements suture.Service.
func (s *ScheduledJobService) Serve(ctx context.Context) error {
	cl := cronLogger{logger: s.logger}
	c := cron.New(
		cron.WithParser(config.ScheduleParser),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl)),
	)
	c.Schedule(s.schedule, cron.FuncJob(func() { s.run(ctx) }))

	var wg sync.WaitGroup
	if s.runOnStart {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.run(ctx)
		}()
	}

	c.Start()
	s.logger.Info().Str("schedule", s.spec).Msg("Scheduled job started")

	<-ctx.Done()
	<-c.Stop().Done()
	wg.Wait()
	return ctx.Err()
}

// run executes the job unless a run is already in progress.
func (s *ScheduledJobService) run(ctx context.Context) {
	if !s.running.TryLock() {
		s.logger.Debug().Msg("Previous run still in progress, skipping")
		return
	}
	defer s.running.Unlock()
	if ctx.Err() != nil {
		return
	}

	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	err := s.job(runCtx)
	if err != nil {
		s.logger.Error().Err(err).Dur("duration", time.Since(start)).Msg("Scheduled job failed")
		return
	}
	s.logger.Debug().Dur("duration", time.Since(start)).Msg("Scheduled job finished")
}

// String names the service in supervisor logs.
func (s *ScheduledJobService) String() string {
	return s.name
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Trace().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
