// Package sched runs the periodic jobs: daily content generation and
// the weekly diversity report, both in the site's local timezone.
package sched

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/halewell/halewell/internal/config"
	"github.com/halewell/halewell/internal/gen"
)

// Reporter receives job outcomes by mail. Satisfied by the mailer.
type Reporter interface {
	RunReport(summary gen.RunSummary) error
	DiversityReport(report gen.Report) error
	Failure(job string, err error) error
}

// Scheduler owns the cron runner. Jobs that fail are logged and
// reported; they are never retried before their next scheduled slot.
type Scheduler struct {
	cfg      config.GenerateConfig
	pipeline *gen.Pipeline
	engine   *gen.Engine
	reporter Reporter
	log      zerolog.Logger
	cron     *cron.Cron
}

func New(cfg config.GenerateConfig, pipeline *gen.Pipeline, engine *gen.Engine,
	reporter Reporter, log zerolog.Logger) (*Scheduler, error) {

	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("sched: %w", err)
	}

	s := &Scheduler{
		cfg:      cfg,
		pipeline: pipeline,
		engine:   engine,
		reporter: reporter,
		log:      log.With().Str("component", "sched").Logger(),
		cron:     cron.New(cron.WithLocation(loc)),
	}

	if _, err := s.cron.AddFunc(cfg.DailyCron, s.runDaily); err != nil {
		return nil, fmt.Errorf("sched: daily schedule %q: %w", cfg.DailyCron, err)
	}
	if _, err := s.cron.AddFunc(cfg.ReportCron, s.runReport); err != nil {
		return nil, fmt.Errorf("sched: report schedule %q: %w", cfg.ReportCron, err)
	}
	return s, nil
}

// Run starts the cron loop and blocks until the context is cancelled
// or a shutdown signal arrives.
func (s *Scheduler) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s.log.Info().
		Str("daily", s.cfg.DailyCron).
		Str("report", s.cfg.ReportCron).
		Str("timezone", s.cfg.Timezone).
		Msg("scheduler starting")
	s.cron.Start()

	<-ctx.Done()
	s.log.Info().Msg("scheduler stopping")

	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(30 * time.Second):
		s.log.Warn().Msg("jobs still running at shutdown deadline")
	}
	return nil
}

// Entries exposes the scheduled jobs, used by status output.
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

func (s *Scheduler) runDaily() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	s.log.Info().Int("count", s.cfg.Count).Msg("daily generation starting")
	summary, err := s.pipeline.RunBatch(ctx, s.cfg.Count, gen.Options{
		Publish: s.cfg.Publish,
	})
	if err != nil {
		s.log.Error().Err(err).Msg("daily generation failed")
		if mailErr := s.reporter.Failure("daily generation", err); mailErr != nil {
			s.log.Warn().Err(mailErr).Msg("failure mail not delivered")
		}
		return
	}

	s.log.Info().
		Int("created", summary.Created).
		Int("duplicates", summary.Duplicates).
		Int("failed", summary.Failed).
		Msg("daily generation finished")
	if err := s.reporter.RunReport(summary); err != nil {
		s.log.Warn().Err(err).Msg("run report mail not delivered")
	}
}

func (s *Scheduler) runReport() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	report, err := s.engine.DiversityReport(ctx, 30)
	if err != nil {
		s.log.Error().Err(err).Msg("diversity report failed")
		if mailErr := s.reporter.Failure("diversity report", err); mailErr != nil {
			s.log.Warn().Err(mailErr).Msg("failure mail not delivered")
		}
		return
	}

	s.log.Info().
		Float64("score", report.Metrics.Overall).
		Int("pieces", report.TotalContent).
		Msg("diversity report generated")
	if err := s.reporter.DiversityReport(report); err != nil {
		s.log.Warn().Err(err).Msg("diversity report mail not delivered")
	}
}
