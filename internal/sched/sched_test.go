package sched

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/halewell/halewell/internal/blog"
	"github.com/halewell/halewell/internal/config"
	"github.com/halewell/halewell/internal/gen"
	"github.com/halewell/halewell/internal/observability"
	"github.com/halewell/halewell/internal/store"
	"github.com/halewell/halewell/internal/testutil/testlog"
)

type fakeReporter struct {
	runs       []gen.RunSummary
	reports    []gen.Report
	failures   []string
	failNotify bool
}

func (f *fakeReporter) RunReport(summary gen.RunSummary) error {
	if f.failNotify {
		return errors.New("smtp down")
	}
	f.runs = append(f.runs, summary)
	return nil
}

func (f *fakeReporter) DiversityReport(report gen.Report) error {
	if f.failNotify {
		return errors.New("smtp down")
	}
	f.reports = append(f.reports, report)
	return nil
}

func (f *fakeReporter) Failure(job string, err error) error {
	f.failures = append(f.failures, job)
	return nil
}

func newTestScheduler(t *testing.T, genCfg config.GenerateConfig) (*Scheduler, *fakeReporter) {
	t.Helper()
	testlog.Start(t)

	st, err := store.NewStore(filepath.Join(t.TempDir(), "sched.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	log := observability.InitTestLogger("sched_test")
	blogSvc := blog.NewService(st, nil, config.Default().Site, log)

	engine := gen.NewEngine(st, genCfg.RecentDays)
	bank := gen.DefaultBank()
	selector := gen.NewSelector(engine, bank, st, genCfg.SimilarityThreshold)
	detector := gen.NewDetector(engine, bank, st, genCfg.SimilarityThreshold)
	composer := gen.NewTemplateComposer(engine)
	pipeline := gen.NewPipeline(selector, detector, composer, blogSvc, engine, st, log)

	reporter := &fakeReporter{}
	s, err := New(genCfg, pipeline, engine, reporter, log)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s, reporter
}

func TestNewRegistersJobs(t *testing.T) {
	s, _ := newTestScheduler(t, config.Default().Generate)
	if got := len(s.Entries()); got != 2 {
		t.Fatalf("entries = %d, want 2", got)
	}
}

func TestNewRejectsBadSchedule(t *testing.T) {
	testlog.Start(t)
	cfg := config.Default().Generate
	cfg.DailyCron = "not a cron line"

	st, err := store.NewStore(filepath.Join(t.TempDir(), "sched.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer st.Close()

	log := observability.InitTestLogger("sched_test")
	engine := gen.NewEngine(st, cfg.RecentDays)
	if _, err := New(cfg, nil, engine, &fakeReporter{}, log); err == nil {
		t.Fatal("bad cron expression accepted")
	}
}

func TestNewRejectsBadTimezone(t *testing.T) {
	testlog.Start(t)
	cfg := config.Default().Generate
	cfg.Timezone = "Mars/Olympus"

	log := observability.InitTestLogger("sched_test")
	if _, err := New(cfg, nil, nil, &fakeReporter{}, log); err == nil {
		t.Fatal("bad timezone accepted")
	}
}

func TestRunDailyReportsSummary(t *testing.T) {
	cfg := config.Default().Generate
	cfg.Count = 1
	s, reporter := newTestScheduler(t, cfg)

	s.runDaily()

	if len(reporter.runs) != 1 {
		t.Fatalf("run reports = %d", len(reporter.runs))
	}
	if reporter.runs[0].Created != 1 {
		t.Errorf("summary = %+v", reporter.runs[0])
	}
	if len(reporter.failures) != 0 {
		t.Errorf("unexpected failure mails: %v", reporter.failures)
	}
}

func TestRunReportSendsDiversity(t *testing.T) {
	s, reporter := newTestScheduler(t, config.Default().Generate)

	s.runReport()

	if len(reporter.reports) != 1 {
		t.Fatalf("diversity reports = %d", len(reporter.reports))
	}
	if reporter.reports[0].PeriodDays != 30 {
		t.Errorf("period = %d", reporter.reports[0].PeriodDays)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	s, _ := newTestScheduler(t, config.Default().Generate)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
