package api

import (
	"context"

	"github.com/lysyi3m/oss-radar/app/database"
	"github.com/lysyi3m/oss-radar/app/pipeline"
)

type RunnerInterface interface {
	RunDaily(ctx context.Context, opts pipeline.RunOptions) (*pipeline.RunResult, error)
	RunWeekly(ctx context.Context, opts pipeline.RunOptions) (*pipeline.RunResult, error)
}

type Handler struct {
	postRepo   database.PostRepository
	reportRepo database.ReportRepository
	runner     RunnerInterface
}
