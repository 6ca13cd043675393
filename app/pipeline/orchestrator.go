package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/oss-radar/app/database"
	"github.com/lysyi3m/oss-radar/app/mailer"
	"github.com/lysyi3m/oss-radar/app/scraping"
	"github.com/lysyi3m/oss-radar/app/signal"
)

const weeklyDigestSize = 10

// RunOptions tune a single pipeline run.
type RunOptions struct {
	// Date overrides the report date; zero means today.
	Date time.Time
	// Force skips the duplicate-run guard.
	Force bool
	// DryRun collects, filters and scores but writes nothing and sends
	// nothing.
	DryRun bool
}

// RunResult summarizes a pipeline run.
type RunResult struct {
	Skipped    bool
	SkipReason string
	DryRun     bool
	Sent       bool

	ReportID   int64
	ReportDate string

	Collected int
	Passed    int
	Partial   int
	Selected  int

	Statuses []scraping.SourceStatus
	Entries  []database.ReportEntry
}

// Orchestrator wires the scrape, filter, score, backfill, persist and mail
// stages into the daily and weekly runs.
type Orchestrator struct {
	collector  Collector
	filters    *signal.Pipeline
	scorer     *signal.Scorer
	posts      database.PostRepository
	reports    database.ReportRepository
	backfiller Backfiller
	sender     Sender

	reportTarget    int
	duplicateWindow time.Duration
}

func NewOrchestrator(
	collector Collector,
	filters *signal.Pipeline,
	scorer *signal.Scorer,
	posts database.PostRepository,
	reports database.ReportRepository,
	backfiller Backfiller,
	sender Sender,
	reportTarget int,
	duplicateWindow time.Duration,
) *Orchestrator {
	return &Orchestrator{
		collector:       collector,
		filters:         filters,
		scorer:          scorer,
		posts:           posts,
		reports:         reports,
		backfiller:      backfiller,
		sender:          sender,
		reportTarget:    reportTarget,
		duplicateWindow: duplicateWindow,
	}
}

// RunDaily executes the full daily pipeline: scrape, filter, score, persist,
// backfill to the report target, record the report and send it. A run within
// the duplicate window of an already-sent daily report is skipped unless
// forced.
func (o *Orchestrator) RunDaily(ctx context.Context, opts RunOptions) (*RunResult, error) {
	date := opts.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}
	result := &RunResult{ReportDate: date.Format("2006-01-02"), DryRun: opts.DryRun}

	if !opts.Force {
		recent, err := o.reports.HasRecentSent(database.ReportTypeDaily, o.duplicateWindow)
		if err != nil {
			return nil, fmt.Errorf("failed to check duplicate window: %w", err)
		}
		if recent {
			result.Skipped = true
			result.SkipReason = "daily report already sent within the duplicate window"
			slog.Info("Daily run skipped", "reason", result.SkipReason)
			return result, nil
		}
	}

	collected, statuses := o.collector.Collect(ctx)
	result.Collected = len(collected)
	result.Statuses = statuses

	passed, partial := o.filters.RunPartial(collected)
	result.Passed = len(passed)
	result.Partial = len(partial)

	scored := o.scorer.ScoreBatch(passed)

	slog.Info("Pipeline stages complete",
		"collected", len(collected), "passed", len(passed),
		"partial", len(partial), "scored", len(scored))

	live, err := o.persistBatch(scored, partial, opts.DryRun)
	if err != nil {
		return nil, err
	}

	selected, err := o.backfiller.EnsureTarget(live)
	if err != nil {
		return nil, err
	}
	result.Selected = len(selected)

	if opts.DryRun {
		result.Entries = entriesFromSelection(0, selected)
		slog.Info("Dry run complete", "entries", len(result.Entries))
		return result, nil
	}

	report, created, err := o.reports.CreateReport(database.ReportTypeDaily, result.ReportDate)
	if err != nil {
		return nil, err
	}
	result.ReportID = report.ID

	if !created && report.Status == database.ReportStatusSent && !opts.Force {
		result.Skipped = true
		result.SkipReason = "daily report for this date was already sent"
		slog.Info("Daily run skipped", "reason", result.SkipReason)
		return result, nil
	}

	// A rerun of an unsent report replaces its selection wholesale; mixing
	// this run's entries with a failed run's would overshoot the target and
	// duplicate positions.
	if !created {
		if err := o.reports.ClearEntries(report.ID); err != nil {
			return nil, err
		}
	}

	for _, entry := range entriesFromSelection(report.ID, selected) {
		if err := o.reports.AddEntry(entry); err != nil {
			return nil, err
		}
	}
	if err := o.reports.SetPartial(report.ID, len(selected) < o.reportTarget); err != nil {
		return nil, err
	}

	entries, err := o.reports.GetEntries(report.ID)
	if err != nil {
		return nil, err
	}
	result.Entries = entries

	if err := o.deliver(report, "Daily Pain Report", entries); err != nil {
		return result, err
	}
	result.Sent = true

	ids := make([]int64, 0, len(selected))
	for _, s := range selected {
		ids = append(ids, s.ID)
	}
	if err := o.posts.MarkReported(ids, time.Now().UTC()); err != nil {
		return result, err
	}

	return result, nil
}

// RunWeekly builds the weekly digest from the highest-scoring posts of the
// last seven days, reported or not.
func (o *Orchestrator) RunWeekly(ctx context.Context, opts RunOptions) (*RunResult, error) {
	date := opts.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}
	result := &RunResult{ReportDate: date.Format("2006-01-02"), DryRun: opts.DryRun}

	if !opts.Force {
		recent, err := o.reports.HasRecentSent(database.ReportTypeWeekly, o.duplicateWindow)
		if err != nil {
			return nil, fmt.Errorf("failed to check duplicate window: %w", err)
		}
		if recent {
			result.Skipped = true
			result.SkipReason = "weekly digest already sent within the duplicate window"
			slog.Info("Weekly run skipped", "reason", result.SkipReason)
			return result, nil
		}
	}

	top, err := o.posts.GetTopSince(date.AddDate(0, 0, -7), weeklyDigestSize)
	if err != nil {
		return nil, err
	}
	result.Selected = len(top)

	if opts.DryRun {
		result.Entries = entriesFromSelection(0, top)
		return result, nil
	}

	report, created, err := o.reports.CreateReport(database.ReportTypeWeekly, result.ReportDate)
	if err != nil {
		return nil, err
	}
	result.ReportID = report.ID

	if !created && report.Status == database.ReportStatusSent && !opts.Force {
		result.Skipped = true
		result.SkipReason = "weekly digest for this date was already sent"
		return result, nil
	}

	if !created {
		if err := o.reports.ClearEntries(report.ID); err != nil {
			return nil, err
		}
	}

	for _, entry := range entriesFromSelection(report.ID, top) {
		if err := o.reports.AddEntry(entry); err != nil {
			return nil, err
		}
	}

	entries, err := o.reports.GetEntries(report.ID)
	if err != nil {
		return nil, err
	}
	result.Entries = entries

	if err := o.deliver(report, "Weekly Pain Digest", entries); err != nil {
		return result, err
	}
	result.Sent = true

	return result, nil
}

// persistBatch stores scored posts and partial keyword-only posts, returning
// the stored scored posts in score order for the backfill ladder. Dry runs
// skip the writes and fabricate the live batch in memory.
func (o *Orchestrator) persistBatch(scored []*signal.ScoredPost, partial []*signal.Post, dryRun bool) ([]database.StoredPost, error) {
	live := make([]database.StoredPost, 0, len(scored))

	for _, sp := range scored {
		stored := database.StoredPost{Stage: database.StageScored, Post: sp.Post}
		if !dryRun {
			id, err := o.posts.UpsertPost(&sp.Post, database.StageScored)
			if err != nil {
				return nil, err
			}
			stored.ID = id
		}
		live = append(live, stored)
	}

	if !dryRun {
		for _, post := range partial {
			if _, err := o.posts.UpsertPost(post, database.StagePartial); err != nil {
				return nil, err
			}
		}
	}

	return live, nil
}

// deliver sends the report email and advances the report status. A delivery
// failure marks the report failed so the next run retries it.
func (o *Orchestrator) deliver(report *database.Report, title string, entries []database.ReportEntry) error {
	data := mailer.EmailData{
		Title:   title,
		Date:    report.ReportDate,
		Entries: entries,
	}

	subject := fmt.Sprintf("%s - %s", title, report.ReportDate)
	if err := o.sender.Send(subject, data); err != nil {
		if statusErr := o.reports.UpdateStatus(report.ID, database.ReportStatusFailed, nil); statusErr != nil {
			slog.Error("Failed to mark report failed", "report_id", report.ID, "error", statusErr)
		}
		return fmt.Errorf("failed to deliver report: %w", err)
	}

	sentAt := time.Now().UTC()
	if err := o.reports.UpdateStatus(report.ID, database.ReportStatusSent, &sentAt); err != nil {
		return err
	}

	return nil
}

func entriesFromSelection(reportID int64, selection []database.StoredPost) []database.ReportEntry {
	entries := make([]database.ReportEntry, 0, len(selection))
	for i, s := range selection {
		entries = append(entries, database.ReportEntry{
			ReportID:   reportID,
			PostID:     s.ID,
			Position:   i + 1,
			FinalScore: s.FinalScore,
			SourceTier: s.SourceTier,
			URL:        s.URL,
			Title:      s.Title,
			Platform:   s.Platform,
			Author:     s.Author,
		})
	}
	return entries
}
