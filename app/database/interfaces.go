package database

import (
	"time"

	"github.com/lysyi3m/oss-radar/app/signal"
)

// StoredPost pairs a post with its database row id and processing stage.
type StoredPost struct {
	ID    int64
	Stage string
	signal.Post
}

type PostRepository interface {
	UpsertPost(post *signal.Post, stage string) (int64, error)
	GetPost(id int64) (*StoredPost, error)
	GetUnreported(maxAgeDays, limit int) ([]StoredPost, error)
	GetPartialUnreported(limit int) ([]StoredPost, error)
	GetTopSince(since time.Time, limit int) ([]StoredPost, error)
	MarkReported(ids []int64, at time.Time) error
	GetPostCount() (int, error)
}

type ReportRepository interface {
	CreateReport(reportType, reportDate string) (*Report, bool, error)
	AddEntry(entry ReportEntry) error
	ClearEntries(reportID int64) error
	UpdateStatus(reportID int64, status string, sentAt *time.Time) error
	SetPartial(reportID int64, isPartial bool) error
	HasRecentSent(reportType string, window time.Duration) (bool, error)
	GetReport(id int64) (*Report, error)
	GetLatestReport(reportType string) (*Report, error)
	GetEntries(reportID int64) ([]ReportEntry, error)
	GetStats() (*Stats, error)
}
