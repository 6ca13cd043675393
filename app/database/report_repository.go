package database

import (
	"database/sql"
	"fmt"
	"time"
)

// ReportRepo handles database operations for reports and their entries
type ReportRepo struct {
	db *DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *DB) *ReportRepo {
	return &ReportRepo{db: db}
}

// CreateReport inserts a report for the given type and date. When a report
// for that (type, date) pair already exists it is returned unchanged and the
// second result is false.
func (r *ReportRepo) CreateReport(reportType, reportDate string) (*Report, bool, error) {
	existing, err := r.getReportByKey(reportType, reportDate)
	if err != nil {
		return nil, false, fmt.Errorf("failed to check existing report: %w", err)
	}
	if existing != nil {
		return existing, false, nil
	}

	now := time.Now().UTC()
	var id int64
	err = r.db.QueryRow(`
		INSERT INTO reports (report_type, report_date, status, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`, reportType, reportDate, ReportStatusPending, now.Unix()).Scan(&id)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create report: %w", err)
	}

	return &Report{
		ID:         id,
		ReportType: reportType,
		ReportDate: reportDate,
		Status:     ReportStatusPending,
		CreatedAt:  now,
	}, true, nil
}

// AddEntry attaches a ranked post to a report. Adding the same post twice is
// a no-op thanks to the composite primary key.
func (r *ReportRepo) AddEntry(entry ReportEntry) error {
	_, err := r.db.Exec(`
		INSERT INTO report_entries (report_id, post_id, position, final_score, source_tier)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (report_id, post_id) DO NOTHING
	`, entry.ReportID, entry.PostID, entry.Position, entry.FinalScore, entry.SourceTier)
	if err != nil {
		return fmt.Errorf("failed to add report entry: %w", err)
	}
	return nil
}

// ClearEntries removes every entry of a report. Reruns of an unsent report
// call this before inserting their fresh selection so stale entries from a
// failed run never pad the report.
func (r *ReportRepo) ClearEntries(reportID int64) error {
	_, err := r.db.Exec(`DELETE FROM report_entries WHERE report_id = ?`, reportID)
	if err != nil {
		return fmt.Errorf("failed to clear report entries: %w", err)
	}
	return nil
}

// SetPartial records whether the report ended below its entry target.
func (r *ReportRepo) SetPartial(reportID int64, isPartial bool) error {
	_, err := r.db.Exec(`
		UPDATE reports SET is_partial = ? WHERE id = ?
	`, boolToInt(isPartial), reportID)
	if err != nil {
		return fmt.Errorf("failed to set partial flag: %w", err)
	}
	return nil
}

// UpdateStatus moves a report through its lifecycle. sentAt may be nil for
// non-sent statuses.
func (r *ReportRepo) UpdateStatus(reportID int64, status string, sentAt *time.Time) error {
	var sentUnix interface{}
	if sentAt != nil {
		sentUnix = sentAt.Unix()
	}

	_, err := r.db.Exec(`
		UPDATE reports SET status = ?, sent_at = ? WHERE id = ?
	`, status, sentUnix, reportID)
	if err != nil {
		return fmt.Errorf("failed to update report status: %w", err)
	}
	return nil
}

// HasRecentSent reports whether a report of the given type was sent within
// the window. Drives the duplicate-run guard.
func (r *ReportRepo) HasRecentSent(reportType string, window time.Duration) (bool, error) {
	cutoff := time.Now().Add(-window).Unix()

	var count int
	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM reports
		WHERE report_type = ?
		  AND status = ?
		  AND sent_at IS NOT NULL
		  AND sent_at >= ?
	`, reportType, ReportStatusSent, cutoff).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check recent reports: %w", err)
	}

	return count > 0, nil
}

// GetReport returns a report by id, or nil when absent.
func (r *ReportRepo) GetReport(id int64) (*Report, error) {
	report, err := r.scanReport(r.db.QueryRow(`
		SELECT id, report_type, report_date, status, is_partial, sent_at, created_at
		FROM reports WHERE id = ?
	`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return report, nil
}

// GetLatestReport returns the most recent report of the given type, or nil
// when none exists yet.
func (r *ReportRepo) GetLatestReport(reportType string) (*Report, error) {
	report, err := r.scanReport(r.db.QueryRow(`
		SELECT id, report_type, report_date, status, is_partial, sent_at, created_at
		FROM reports
		WHERE report_type = ?
		ORDER BY report_date DESC, id DESC
		LIMIT 1
	`, reportType))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest report: %w", err)
	}
	return report, nil
}

// GetEntries returns a report's entries in rank order, joined with the
// display columns of each post.
func (r *ReportRepo) GetEntries(reportID int64) ([]ReportEntry, error) {
	rows, err := r.db.Query(`
		SELECT e.report_id, e.post_id, e.position, e.final_score, e.source_tier,
		       p.url, p.title, p.platform, p.author
		FROM report_entries e
		JOIN posts p ON p.id = e.post_id
		WHERE e.report_id = ?
		ORDER BY e.position ASC
	`, reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to get report entries: %w", err)
	}
	defer rows.Close()

	var entries []ReportEntry
	for rows.Next() {
		var e ReportEntry
		err := rows.Scan(
			&e.ReportID, &e.PostID, &e.Position, &e.FinalScore, &e.SourceTier,
			&e.URL, &e.Title, &e.Platform, &e.Author,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry row: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entry rows: %w", err)
	}

	return entries, nil
}

// GetStats aggregates catalog counts across posts and reports.
func (r *ReportRepo) GetStats() (*Stats, error) {
	stats := &Stats{PostsByPlatform: make(map[string]int)}

	err := r.db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN stage = 'scored' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN stage = 'partial' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN reported_at IS NOT NULL THEN 1 ELSE 0 END), 0)
		FROM posts
	`).Scan(&stats.TotalPosts, &stats.ScoredPosts, &stats.PartialPosts, &stats.ReportedPosts)
	if err != nil {
		return nil, fmt.Errorf("failed to get post stats: %w", err)
	}

	rows, err := r.db.Query(`SELECT platform, COUNT(*) FROM posts GROUP BY platform`)
	if err != nil {
		return nil, fmt.Errorf("failed to get platform stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var platform string
		var count int
		if err := rows.Scan(&platform, &count); err != nil {
			return nil, fmt.Errorf("failed to scan platform row: %w", err)
		}
		stats.PostsByPlatform[platform] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating platform rows: %w", err)
	}

	err = r.db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN status = 'sent' THEN 1 ELSE 0 END), 0)
		FROM reports
	`).Scan(&stats.TotalReports, &stats.SentReports)
	if err != nil {
		return nil, fmt.Errorf("failed to get report stats: %w", err)
	}

	return stats, nil
}

func (r *ReportRepo) getReportByKey(reportType, reportDate string) (*Report, error) {
	report, err := r.scanReport(r.db.QueryRow(`
		SELECT id, report_type, report_date, status, is_partial, sent_at, created_at
		FROM reports
		WHERE report_type = ? AND report_date = ?
	`, reportType, reportDate))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return report, err
}

func (r *ReportRepo) scanReport(row rowScanner) (*Report, error) {
	var report Report
	var isPartial int
	var sentAt sql.NullInt64
	var createdAt int64

	err := row.Scan(&report.ID, &report.ReportType, &report.ReportDate,
		&report.Status, &isPartial, &sentAt, &createdAt)
	if err != nil {
		return nil, err
	}
	report.IsPartial = isPartial != 0

	if sentAt.Valid {
		t := time.Unix(sentAt.Int64, 0).UTC()
		report.SentAt = &t
	}
	report.CreatedAt = time.Unix(createdAt, 0).UTC()

	return &report, nil
}
