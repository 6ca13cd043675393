package pipeline

import (
	"context"

	"github.com/lysyi3m/oss-radar/app/database"
	"github.com/lysyi3m/oss-radar/app/mailer"
	"github.com/lysyi3m/oss-radar/app/scraping"
	"github.com/lysyi3m/oss-radar/app/signal"
)

// Collector gathers posts from every configured platform.
type Collector interface {
	Collect(ctx context.Context) ([]*signal.Post, []scraping.SourceStatus)
}

// Backfiller fills a report selection up to its target.
type Backfiller interface {
	EnsureTarget(live []database.StoredPost) ([]database.StoredPost, error)
}

// Sender delivers a rendered report email.
type Sender interface {
	Enabled() bool
	Send(subject string, data mailer.EmailData) error
}
