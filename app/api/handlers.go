package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/oss-radar/app/database"
	"github.com/lysyi3m/oss-radar/app/pipeline"
)

func NewHandler(postRepo database.PostRepository, reportRepo database.ReportRepository,
	runner RunnerInterface) *Handler {
	return &Handler{
		postRepo:   postRepo,
		reportRepo: reportRepo,
		runner:     runner,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if postCount, err := h.postRepo.GetPostCount(); err == nil {
		health["posts"] = postCount
	}

	if latest, err := h.reportRepo.GetLatestReport(database.ReportTypeDaily); err == nil && latest != nil {
		health["last_daily_report"] = latest.ReportDate
		health["last_daily_status"] = latest.Status
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.reportRepo.GetStats()
	if err != nil {
		slog.Error("Database error", "operation", "get_stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"posts": map[string]interface{}{
			"total":       stats.TotalPosts,
			"scored":      stats.ScoredPosts,
			"partial":     stats.PartialPosts,
			"reported":    stats.ReportedPosts,
			"by_platform": stats.PostsByPlatform,
		},
		"reports": map[string]interface{}{
			"total": stats.TotalReports,
			"sent":  stats.SentReports,
		},
	})
}

func (h *Handler) GetLatestReport(c *gin.Context) {
	reportType := c.DefaultQuery("type", database.ReportTypeDaily)
	if reportType != database.ReportTypeDaily && reportType != database.ReportTypeWeekly {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid report type"})
		return
	}

	report, err := h.reportRepo.GetLatestReport(reportType)
	if err != nil {
		slog.Error("Database error", "operation", "get_latest_report", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if report == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No reports yet"})
		return
	}

	h.renderReport(c, report)
}

func (h *Handler) GetReport(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid report id"})
		return
	}

	report, err := h.reportRepo.GetReport(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_report", "report_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if report == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		return
	}

	h.renderReport(c, report)
}

func (h *Handler) renderReport(c *gin.Context, report *database.Report) {
	entries, err := h.reportRepo.GetEntries(report.ID)
	if err != nil {
		slog.Error("Database error", "operation", "get_entries", "report_id", report.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	entryList := make([]map[string]interface{}, 0, len(entries))
	for _, entry := range entries {
		entryList = append(entryList, map[string]interface{}{
			"position":    entry.Position,
			"title":       entry.Title,
			"url":         entry.URL,
			"platform":    entry.Platform,
			"author":      entry.Author,
			"final_score": entry.FinalScore,
			"source_tier": entry.SourceTier,
		})
	}

	response := map[string]interface{}{
		"id":          report.ID,
		"report_type": report.ReportType,
		"report_date": report.ReportDate,
		"status":      report.Status,
		"is_partial":  report.IsPartial,
		"entry_count": len(entryList),
		"created_at":  report.CreatedAt,
		"entries":     entryList,
	}
	if report.SentAt != nil {
		response["sent_at"] = report.SentAt
	}

	c.JSON(http.StatusOK, response)
}

func (h *Handler) APITriggerRun(c *gin.Context) {
	opts := pipeline.RunOptions{
		Force:  c.Query("force") == "true",
		DryRun: c.Query("dry_run") == "true",
	}

	var result *pipeline.RunResult
	var err error
	if c.DefaultQuery("type", database.ReportTypeDaily) == database.ReportTypeWeekly {
		result, err = h.runner.RunWeekly(c.Request.Context(), opts)
	} else {
		result, err = h.runner.RunDaily(c.Request.Context(), opts)
	}

	if err != nil {
		slog.Error("Triggered run failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Run failed",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"skipped":     result.Skipped,
		"skip_reason": result.SkipReason,
		"dry_run":     result.DryRun,
		"sent":        result.Sent,
		"report_date": result.ReportDate,
		"collected":   result.Collected,
		"passed":      result.Passed,
		"partial":     result.Partial,
		"selected":    result.Selected,
		"entries":     len(result.Entries),
	})
}
