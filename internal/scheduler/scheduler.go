// Package scheduler triggers harvest runs and promotion passes on cron
// schedules.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"almanac/internal/domain"
)

const defaultRunTimeout = 10 * time.Minute

type Harvester interface {
	RunByID(ctx context.Context, id string) (*domain.HarvestStats, error)
	RunAll(ctx context.Context) ([]domain.HarvestStats, error)
}

type Promoter interface {
	PublishApproved(ctx context.Context) (*domain.PublishReport, error)
}

type SourceLister interface {
	ListActive(ctx context.Context) ([]domain.Source, error)
}

// Config holds the global schedules. Empty strings disable a job.
type Config struct {
	RunAll     string
	Publish    string
	RunTimeout time.Duration
}

type Scheduler struct {
	cron      *cron.Cron
	harvester Harvester
	promoter  Promoter
	sources   SourceLister
	cfg       Config
	logger    *slog.Logger
}

func NewScheduler(harvester Harvester, promoter Promoter, sources SourceLister, cfg Config, logger *slog.Logger) *Scheduler {
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = defaultRunTimeout
	}
	cl := cronLogger{logger: logger}

	return &Scheduler{
		// A job still running when its next tick fires is skipped, so runs of
		// the same source never overlap within this process.
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		harvester: harvester,
		promoter:  promoter,
		sources:   sources,
		cfg:       cfg,
		logger:    logger,
	}
}

// Start registers all jobs and blocks until ctx is cancelled, then waits for
// running jobs to finish.
func (s *Scheduler) Start(ctx context.Context) error {
	n, err := s.schedule(ctx)
	if err != nil {
		return err
	}
	s.logger.Info("scheduler started", "jobs", n)

	s.cron.Start()
	<-ctx.Done()

	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
	return ctx.Err()
}

func (s *Scheduler) schedule(ctx context.Context) (int, error) {
	sources, err := s.sources.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("list active sources: %w", err)
	}

	for _, src := range sources {
		if src.Schedule == nil || *src.Schedule == "" {
			continue
		}
		id := src.ID
		job := s.job(ctx, "harvest "+src.Slug, func(ctx context.Context) error {
			_, err := s.harvester.RunByID(ctx, id)
			return err
		})
		if _, err := s.cron.AddJob(*src.Schedule, job); err != nil {
			s.logger.Warn("invalid source schedule", "source", src.Slug, "schedule", *src.Schedule, "error", err)
		}
	}

	if s.cfg.RunAll != "" {
		job := s.job(ctx, "harvest all", func(ctx context.Context) error {
			_, err := s.harvester.RunAll(ctx)
			return err
		})
		if _, err := s.cron.AddJob(s.cfg.RunAll, job); err != nil {
			return 0, fmt.Errorf("schedule run_all: %w", err)
		}
	}

	if s.cfg.Publish != "" {
		job := s.job(ctx, "publish", func(ctx context.Context) error {
			report, err := s.promoter.PublishApproved(ctx)
			if err != nil {
				return err
			}
			s.logger.Info("publish pass finished", "published", report.Published, "errors", len(report.Errors))
			return nil
		})
		if _, err := s.cron.AddJob(s.cfg.Publish, job); err != nil {
			return 0, fmt.Errorf("schedule publish: %w", err)
		}
	}

	return len(s.cron.Entries()), nil
}

func (s *Scheduler) job(ctx context.Context, name string, fn func(ctx context.Context) error) cron.Job {
	return cron.FuncJob(func() {
		runCtx, cancel := context.WithTimeout(ctx, s.cfg.RunTimeout)
		defer cancel()

		start := time.Now()
		if err := fn(runCtx); err != nil {
			s.logger.Error("scheduled job failed", "job", name, "error", err)
			return
		}
		s.logger.Info("scheduled job completed", "job", name, "duration", time.Since(start))
	})
}

// cronLogger routes cron's internal logging through slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
