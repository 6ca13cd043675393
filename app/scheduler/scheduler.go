package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/lysyi3m/oss-radar/app/pipeline"
)

// Runner executes pipeline runs on schedule.
type Runner interface {
	RunDaily(ctx context.Context, opts pipeline.RunOptions) (*pipeline.RunResult, error)
	RunWeekly(ctx context.Context, opts pipeline.RunOptions) (*pipeline.RunResult, error)
}

// Scheduler triggers the daily report and weekly digest on cron schedules.
type Scheduler struct {
	cron       *cron.Cron
	runner     Runner
	dailySpec  string
	weeklySpec string
}

func NewScheduler(runner Runner, dailySpec, weeklySpec string) *Scheduler {
	return &Scheduler{
		cron:       cron.New(),
		runner:     runner,
		dailySpec:  dailySpec,
		weeklySpec: weeklySpec,
	}
}

// Start registers both jobs and starts the cron loop. Invalid cron
// expressions are reported before anything runs.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.dailySpec, s.runDaily); err != nil {
		return fmt.Errorf("invalid daily schedule %q: %w", s.dailySpec, err)
	}
	if _, err := s.cron.AddFunc(s.weeklySpec, s.runWeekly); err != nil {
		return fmt.Errorf("invalid weekly schedule %q: %w", s.weeklySpec, err)
	}

	s.cron.Start()
	slog.Info("Scheduler started", "daily", s.dailySpec, "weekly", s.weeklySpec)
	return nil
}

// Stop halts the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	slog.Info("Scheduler stopped")
}

func (s *Scheduler) runDaily() {
	result, err := s.runner.RunDaily(context.Background(), pipeline.RunOptions{})
	logRun("daily", result, err)
}

func (s *Scheduler) runWeekly() {
	result, err := s.runner.RunWeekly(context.Background(), pipeline.RunOptions{})
	logRun("weekly", result, err)
}

func logRun(kind string, result *pipeline.RunResult, err error) {
	if err != nil {
		slog.Error("Scheduled run failed", "kind", kind, "error", err)
		return
	}
	if result.Skipped {
		slog.Info("Scheduled run skipped", "kind", kind, "reason", result.SkipReason)
		return
	}
	slog.Info("Scheduled run complete",
		"kind", kind, "report_date", result.ReportDate,
		"entries", len(result.Entries), "sent", result.Sent)
}
