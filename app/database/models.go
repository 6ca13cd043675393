package database

import (
	"time"
)

// Post processing stages. Scored posts passed every filter gate; partial
// posts passed the keyword gate only and are kept as backfill candidates.
const (
	StageScored  = "scored"
	StagePartial = "partial"
)

// Report lifecycle statuses.
const (
	ReportStatusPending = "pending"
	ReportStatusSent    = "sent"
	ReportStatusFailed  = "failed"
)

// Report types.
const (
	ReportTypeDaily  = "daily"
	ReportTypeWeekly = "weekly"
)

// Report represents a report record in the database
type Report struct {
	ID         int64
	ReportType string
	ReportDate string // YYYY-MM-DD
	Status     string
	// IsPartial marks a report that ended below its entry target even
	// after backfill.
	IsPartial bool
	SentAt    *time.Time
	CreatedAt time.Time
}

// ReportEntry represents a ranked post within a report
type ReportEntry struct {
	ReportID   int64
	PostID     int64
	Position   int
	FinalScore float64
	SourceTier string

	// Denormalized post columns, populated by entry queries.
	URL      string
	Title    string
	Platform string
	Author   string
}

// Stats aggregates catalog counts for the stats command and API endpoint.
type Stats struct {
	TotalPosts      int
	ScoredPosts     int
	PartialPosts    int
	ReportedPosts   int
	PostsByPlatform map[string]int
	TotalReports    int
	SentReports     int
}
