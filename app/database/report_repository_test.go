package database

import (
	"testing"
	"time"
)

func TestReportRepo_CreateReport_UniquePerTypeAndDate(t *testing.T) {
	repo := NewReportRepository(newTestDB(t))

	first, created, err := repo.CreateReport(ReportTypeDaily, "2025-06-01")
	if err != nil {
		t.Fatalf("Failed to create report: %v", err)
	}
	if !created {
		t.Error("First create should report a new row")
	}

	second, created, err := repo.CreateReport(ReportTypeDaily, "2025-06-01")
	if err != nil {
		t.Fatalf("Failed to create report again: %v", err)
	}
	if created {
		t.Error("Second create for the same (type, date) should return the existing row")
	}
	if first.ID != second.ID {
		t.Errorf("Expected same report id, got %d then %d", first.ID, second.ID)
	}

	// A different type on the same date is a separate report.
	weekly, created, err := repo.CreateReport(ReportTypeWeekly, "2025-06-01")
	if err != nil {
		t.Fatalf("Failed to create weekly report: %v", err)
	}
	if !created || weekly.ID == first.ID {
		t.Error("Weekly report on the same date should be a new row")
	}
}

func TestReportRepo_EntriesRoundTrip(t *testing.T) {
	db := newTestDB(t)
	posts := NewPostRepository(db)
	repo := NewReportRepository(db)

	postID, err := posts.UpsertPost(testPost("https://example.com/a", 0.7), StageScored)
	if err != nil {
		t.Fatalf("Failed to upsert post: %v", err)
	}

	report, _, err := repo.CreateReport(ReportTypeDaily, "2025-06-01")
	if err != nil {
		t.Fatalf("Failed to create report: %v", err)
	}

	entry := ReportEntry{
		ReportID:   report.ID,
		PostID:     postID,
		Position:   1,
		FinalScore: 0.7,
		SourceTier: "live",
	}
	if err := repo.AddEntry(entry); err != nil {
		t.Fatalf("Failed to add entry: %v", err)
	}
	// Duplicate entry is ignored.
	if err := repo.AddEntry(entry); err != nil {
		t.Fatalf("Duplicate entry should be a no-op: %v", err)
	}

	entries, err := repo.GetEntries(report.ID)
	if err != nil {
		t.Fatalf("Failed to get entries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	if entries[0].Title != "title" || entries[0].URL != "https://example.com/a" {
		t.Errorf("Entry should carry post display columns, got %+v", entries[0])
	}
	if entries[0].SourceTier != "live" {
		t.Errorf("Expected source tier live, got %s", entries[0].SourceTier)
	}
}

func TestReportRepo_ClearEntries(t *testing.T) {
	db := newTestDB(t)
	posts := NewPostRepository(db)
	repo := NewReportRepository(db)

	report, _, err := repo.CreateReport(ReportTypeDaily, "2025-06-01")
	if err != nil {
		t.Fatalf("Failed to create report: %v", err)
	}

	for i, url := range []string{"https://example.com/a", "https://example.com/b"} {
		postID, err := posts.UpsertPost(testPost(url, 0.5), StageScored)
		if err != nil {
			t.Fatalf("Failed to upsert post: %v", err)
		}
		entry := ReportEntry{ReportID: report.ID, PostID: postID, Position: i + 1}
		if err := repo.AddEntry(entry); err != nil {
			t.Fatalf("Failed to add entry: %v", err)
		}
	}

	if err := repo.ClearEntries(report.ID); err != nil {
		t.Fatalf("Failed to clear entries: %v", err)
	}

	entries, err := repo.GetEntries(report.ID)
	if err != nil {
		t.Fatalf("Failed to get entries: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected no entries after clearing, got %d", len(entries))
	}
}

func TestReportRepo_SetPartial(t *testing.T) {
	repo := NewReportRepository(newTestDB(t))

	report, _, err := repo.CreateReport(ReportTypeDaily, "2025-06-01")
	if err != nil {
		t.Fatalf("Failed to create report: %v", err)
	}
	if report.IsPartial {
		t.Error("New reports should not be flagged partial")
	}

	if err := repo.SetPartial(report.ID, true); err != nil {
		t.Fatalf("Failed to set partial flag: %v", err)
	}

	stored, err := repo.GetReport(report.ID)
	if err != nil {
		t.Fatalf("Failed to get report: %v", err)
	}
	if !stored.IsPartial {
		t.Error("Partial flag should persist")
	}

	if err := repo.SetPartial(report.ID, false); err != nil {
		t.Fatalf("Failed to reset partial flag: %v", err)
	}
	stored, err = repo.GetReport(report.ID)
	if err != nil {
		t.Fatalf("Failed to get report: %v", err)
	}
	if stored.IsPartial {
		t.Error("Partial flag should be cleared again")
	}
}

func TestReportRepo_StatusLifecycle(t *testing.T) {
	repo := NewReportRepository(newTestDB(t))

	report, _, err := repo.CreateReport(ReportTypeDaily, "2025-06-01")
	if err != nil {
		t.Fatalf("Failed to create report: %v", err)
	}
	if report.Status != ReportStatusPending {
		t.Errorf("New reports start pending, got %s", report.Status)
	}

	sentAt := time.Now().UTC()
	if err := repo.UpdateStatus(report.ID, ReportStatusSent, &sentAt); err != nil {
		t.Fatalf("Failed to update status: %v", err)
	}

	stored, err := repo.GetReport(report.ID)
	if err != nil {
		t.Fatalf("Failed to get report: %v", err)
	}
	if stored.Status != ReportStatusSent {
		t.Errorf("Expected sent status, got %s", stored.Status)
	}
	if stored.SentAt == nil {
		t.Error("Sent report should carry a sent timestamp")
	}
}

func TestReportRepo_HasRecentSent(t *testing.T) {
	repo := NewReportRepository(newTestDB(t))

	recent, err := repo.HasRecentSent(ReportTypeDaily, 20*time.Hour)
	if err != nil {
		t.Fatalf("Failed to check recent reports: %v", err)
	}
	if recent {
		t.Error("Empty catalog should report no recent sends")
	}

	report, _, err := repo.CreateReport(ReportTypeDaily, "2025-06-01")
	if err != nil {
		t.Fatalf("Failed to create report: %v", err)
	}

	// Pending reports do not trip the guard.
	recent, err = repo.HasRecentSent(ReportTypeDaily, 20*time.Hour)
	if err != nil {
		t.Fatalf("Failed to check recent reports: %v", err)
	}
	if recent {
		t.Error("Pending report should not count as a recent send")
	}

	sentAt := time.Now().UTC()
	if err := repo.UpdateStatus(report.ID, ReportStatusSent, &sentAt); err != nil {
		t.Fatalf("Failed to update status: %v", err)
	}

	recent, err = repo.HasRecentSent(ReportTypeDaily, 20*time.Hour)
	if err != nil {
		t.Fatalf("Failed to check recent reports: %v", err)
	}
	if !recent {
		t.Error("Freshly sent report should trip the duplicate-run guard")
	}

	// The weekly guard is independent of daily sends.
	recent, err = repo.HasRecentSent(ReportTypeWeekly, 20*time.Hour)
	if err != nil {
		t.Fatalf("Failed to check recent reports: %v", err)
	}
	if recent {
		t.Error("Daily send should not trip the weekly guard")
	}
}

func TestReportRepo_GetLatestReport(t *testing.T) {
	repo := NewReportRepository(newTestDB(t))

	latest, err := repo.GetLatestReport(ReportTypeDaily)
	if err != nil {
		t.Fatalf("Failed to get latest report: %v", err)
	}
	if latest != nil {
		t.Error("Expected nil when no reports exist")
	}

	if _, _, err := repo.CreateReport(ReportTypeDaily, "2025-06-01"); err != nil {
		t.Fatalf("Failed to create report: %v", err)
	}
	newer, _, err := repo.CreateReport(ReportTypeDaily, "2025-06-02")
	if err != nil {
		t.Fatalf("Failed to create report: %v", err)
	}

	latest, err = repo.GetLatestReport(ReportTypeDaily)
	if err != nil {
		t.Fatalf("Failed to get latest report: %v", err)
	}
	if latest == nil || latest.ID != newer.ID {
		t.Errorf("Expected latest report %d, got %+v", newer.ID, latest)
	}
}

func TestReportRepo_GetStats(t *testing.T) {
	db := newTestDB(t)
	posts := NewPostRepository(db)
	repo := NewReportRepository(db)

	stats, err := repo.GetStats()
	if err != nil {
		t.Fatalf("Failed to get stats on empty catalog: %v", err)
	}
	if stats.TotalPosts != 0 || stats.TotalReports != 0 {
		t.Errorf("Expected zeroed stats for empty catalog, got %+v", stats)
	}

	if _, err := posts.UpsertPost(testPost("https://example.com/a", 0.5), StageScored); err != nil {
		t.Fatalf("Failed to upsert post: %v", err)
	}
	if _, err := posts.UpsertPost(testPost("https://example.com/b", 0), StagePartial); err != nil {
		t.Fatalf("Failed to upsert post: %v", err)
	}

	stats, err = repo.GetStats()
	if err != nil {
		t.Fatalf("Failed to get stats: %v", err)
	}
	if stats.TotalPosts != 2 || stats.ScoredPosts != 1 || stats.PartialPosts != 1 {
		t.Errorf("Unexpected post stats: %+v", stats)
	}
	if stats.PostsByPlatform["hackernews"] != 2 {
		t.Errorf("Expected 2 hackernews posts, got %v", stats.PostsByPlatform)
	}
}
