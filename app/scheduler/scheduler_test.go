package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/lysyi3m/oss-radar/app/pipeline"
)

type mockRunner struct {
	dailyRuns  int
	weeklyRuns int
	err        error
}

func (m *mockRunner) RunDaily(ctx context.Context, opts pipeline.RunOptions) (*pipeline.RunResult, error) {
	m.dailyRuns++
	if m.err != nil {
		return nil, m.err
	}
	return &pipeline.RunResult{ReportDate: "2025-06-01"}, nil
}

func (m *mockRunner) RunWeekly(ctx context.Context, opts pipeline.RunOptions) (*pipeline.RunResult, error) {
	m.weeklyRuns++
	if m.err != nil {
		return nil, m.err
	}
	return &pipeline.RunResult{ReportDate: "2025-06-01"}, nil
}

func TestScheduler_StartStop(t *testing.T) {
	runner := &mockRunner{}
	scheduler := NewScheduler(runner, "0 8 * * *", "0 9 * * 1")

	if err := scheduler.Start(); err != nil {
		t.Fatalf("Start failed with valid schedules: %v", err)
	}
	scheduler.Stop()
}

func TestScheduler_InvalidSchedules(t *testing.T) {
	runner := &mockRunner{}

	scheduler := NewScheduler(runner, "not a cron spec", "0 9 * * 1")
	if err := scheduler.Start(); err == nil {
		t.Error("Expected error for invalid daily schedule")
	}

	scheduler = NewScheduler(runner, "0 8 * * *", "also broken")
	if err := scheduler.Start(); err == nil {
		t.Error("Expected error for invalid weekly schedule")
	}
}

func TestScheduler_JobsInvokeRunner(t *testing.T) {
	runner := &mockRunner{}
	scheduler := NewScheduler(runner, "0 8 * * *", "0 9 * * 1")

	scheduler.runDaily()
	scheduler.runWeekly()

	if runner.dailyRuns != 1 {
		t.Errorf("Expected 1 daily run, got %d", runner.dailyRuns)
	}
	if runner.weeklyRuns != 1 {
		t.Errorf("Expected 1 weekly run, got %d", runner.weeklyRuns)
	}
}

func TestScheduler_JobsSurviveRunnerErrors(t *testing.T) {
	runner := &mockRunner{err: errors.New("pipeline down")}
	scheduler := NewScheduler(runner, "0 8 * * *", "0 9 * * 1")

	// Errors are logged, not propagated; the job must not panic.
	scheduler.runDaily()
	scheduler.runWeekly()

	if runner.dailyRuns != 1 || runner.weeklyRuns != 1 {
		t.Error("Runner should have been invoked despite errors")
	}
}
