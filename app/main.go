package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/oss-radar/app/api"
	"github.com/lysyi3m/oss-radar/app/cfg"
	"github.com/lysyi3m/oss-radar/app/database"
	"github.com/lysyi3m/oss-radar/app/mailer"
	"github.com/lysyi3m/oss-radar/app/pipeline"
	"github.com/lysyi3m/oss-radar/app/report"
	"github.com/lysyi3m/oss-radar/app/scheduler"
	"github.com/lysyi3m/oss-radar/app/scraping"
	"github.com/lysyi3m/oss-radar/app/signal"
)

// Exit codes for report runs: 0 when the report reached its entry target,
// 1 when it came up short, 2 on fatal errors.
const (
	exitFull    = 0
	exitPartial = 1
	exitFatal   = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	appCfg, rest, err := cfg.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitFatal
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return exitFull
	}

	setupLogger(appCfg.Debug)

	command := "serve"
	if len(rest) > 0 {
		command = rest[0]
	}

	switch command {
	case "daily", "weekly", "scrape", "stats", "serve", "schedule":
		return runCommand(command, appCfg)
	case "validate":
		return runValidate(appCfg)
	case "version":
		fmt.Printf("oss-radar %s\n", appCfg.Version)
		return exitFull
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		fmt.Fprintln(os.Stderr, "Commands: daily, weekly, scrape, stats, validate, serve, version")
		return exitFatal
	}
}

func runCommand(command string, appCfg *cfg.Cfg) int {
	slog.Info("Starting OSS Radar", "command", command, "version", appCfg.Version)

	db, err := database.NewDB(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", appCfg.DBPath, "error", err)
		return exitFatal
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return exitFatal
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	postRepo := database.NewPostRepository(db)
	reportRepo := database.NewReportRepository(db)

	orchestrator, err := buildOrchestrator(appCfg, postRepo, reportRepo)
	if err != nil {
		slog.Error("Failed to initialize pipeline", "error", err)
		return exitFatal
	}

	ctx, stop := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := pipeline.RunOptions{Force: appCfg.Force, DryRun: appCfg.DryRun}

	switch command {
	case "daily":
		result, err := orchestrator.RunDaily(ctx, opts)
		return reportRun(result, err, appCfg.ReportTarget)
	case "weekly":
		result, err := orchestrator.RunWeekly(ctx, opts)
		return reportRun(result, err, 0)
	case "scrape":
		// A scrape run is a forced dry daily run: everything happens in
		// memory and nothing is persisted or sent.
		opts.Force = true
		opts.DryRun = true
		result, err := orchestrator.RunDaily(ctx, opts)
		return reportRun(result, err, appCfg.ReportTarget)
	case "stats":
		return printStats(reportRepo)
	default:
		return serve(ctx, appCfg, orchestrator, postRepo, reportRepo)
	}
}

// serve starts the cron scheduler and the HTTP server and blocks until an
// interrupt or a server error.
func serve(ctx context.Context, appCfg *cfg.Cfg, orchestrator *pipeline.Orchestrator,
	postRepo database.PostRepository, reportRepo database.ReportRepository) int {

	sched := scheduler.NewScheduler(orchestrator, appCfg.DailySchedule, appCfg.WeeklySchedule)
	if err := sched.Start(); err != nil {
		slog.Error("Failed to start scheduler", "error", err)
		return exitFatal
	}
	defer sched.Stop()

	handler := api.NewHandler(postRepo, reportRepo, orchestrator)
	server := api.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	slog.Info("OSS Radar started",
		"daily_schedule", appCfg.DailySchedule,
		"weekly_schedule", appCfg.WeeklySchedule)

	exitCode := exitFull
	select {
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
		exitCode = exitFatal
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	return exitCode
}

func runValidate(appCfg *cfg.Cfg) int {
	loader := scraping.NewSourceLoader(appCfg.SourcesDir)
	configs, err := loader.LoadAll()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Source configuration invalid: %v\n", err)
		return exitFatal
	}

	if len(configs) == 0 {
		fmt.Printf("No source configurations found in %s\n", appCfg.SourcesDir)
		return exitFull
	}

	for file, config := range configs {
		state := "enabled"
		if !config.Enabled {
			state = "disabled"
		}
		fmt.Printf("%s: %s (%s, max %d posts, max age %dh)\n",
			file, config.Platform, state, config.MaxPosts, config.MaxAgeHours)
	}
	fmt.Printf("%d source configuration(s) valid\n", len(configs))

	return exitFull
}

func printStats(reportRepo database.ReportRepository) int {
	stats, err := reportRepo.GetStats()
	if err != nil {
		slog.Error("Failed to load statistics", "error", err)
		return exitFatal
	}

	fmt.Printf("Posts:    %d total, %d scored, %d partial, %d reported\n",
		stats.TotalPosts, stats.ScoredPosts, stats.PartialPosts, stats.ReportedPosts)
	for platform, count := range stats.PostsByPlatform {
		fmt.Printf("  %-12s %d\n", platform, count)
	}
	fmt.Printf("Reports:  %d total, %d sent\n", stats.TotalReports, stats.SentReports)

	return exitFull
}

// reportRun maps a pipeline run outcome to an exit code. A run that produced
// fewer entries than its target exits 1; a guard-skipped run counts as
// success since a full report was already sent.
func reportRun(result *pipeline.RunResult, err error, target int) int {
	if err != nil {
		slog.Error("Run failed", "error", err)
		return exitFatal
	}
	if result.Skipped {
		slog.Info("Run skipped", "reason", result.SkipReason)
		return exitFull
	}

	slog.Info("Run complete",
		"report_date", result.ReportDate,
		"collected", result.Collected,
		"passed", result.Passed,
		"partial", result.Partial,
		"selected", result.Selected,
		"sent", result.Sent,
		"dry_run", result.DryRun)

	for _, entry := range result.Entries {
		slog.Info("Report entry",
			"position", entry.Position,
			"score", fmt.Sprintf("%.3f", entry.FinalScore),
			"tier", entry.SourceTier,
			"platform", entry.Platform,
			"title", entry.Title)
	}

	if target > 0 && len(result.Entries) < target {
		slog.Warn("Report below entry target",
			"entries", len(result.Entries), "target", target)
		return exitPartial
	}

	return exitFull
}

func buildOrchestrator(appCfg *cfg.Cfg, postRepo database.PostRepository,
	reportRepo database.ReportRepository) (*pipeline.Orchestrator, error) {

	loader := scraping.NewSourceLoader(appCfg.SourcesDir)
	configs, err := loader.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load source configurations: %w", err)
	}

	client := scraping.NewClient(appCfg.UserAgent, time.Duration(appCfg.HTTPTimeout)*time.Second)
	scrapers := buildScrapers(appCfg, client, configs)
	collector := scraping.NewCollector(scrapers, scraping.NewContentExtractor(client))

	registry := signal.NewRegistry()
	filters := signal.NewPipeline(registry,
		signal.NewVaderBackend(), signal.NewLexiconBackend(),
		appCfg.VaderWeight, appCfg.LexiconWeight)
	scorer := signal.NewScorer(registry, appCfg.InfluenceWeight, appCfg.EngagementWeight)

	backfiller := report.NewBackfiller(postRepo, appCfg.ReportTarget, appCfg.PartialScanLimit)

	smtpHost := appCfg.SMTPHost
	if appCfg.NoEmail {
		// An empty host disables the mailer; the run otherwise proceeds.
		smtpHost = ""
		slog.Info("Email delivery disabled for this run")
	}
	sender, err := mailer.NewMailer(smtpHost, appCfg.SMTPPort,
		appCfg.SMTPUser, appCfg.SMTPPassword, appCfg.SMTPFrom, appCfg.Recipients)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize mailer: %w", err)
	}
	if !sender.Enabled() {
		slog.Warn("Mail delivery disabled, reports will only be stored",
			"reason", "RADAR_SMTP_HOST, RADAR_SMTP_FROM or RADAR_RECIPIENTS not set")
	}

	return pipeline.NewOrchestrator(collector, filters, scorer,
		postRepo, reportRepo, backfiller, sender, appCfg.ReportTarget,
		time.Duration(appCfg.DuplicateWindowHours)*time.Hour), nil
}

func buildScrapers(appCfg *cfg.Cfg, client *scraping.Client,
	configs map[string]*scraping.SourceConfig) []scraping.Scraper {

	var scrapers []scraping.Scraper
	for file, config := range configs {
		if !config.Enabled {
			slog.Debug("Source disabled", "file", file, "platform", config.Platform)
			continue
		}

		switch config.Platform {
		case scraping.PlatformHackerNews:
			scrapers = append(scrapers, scraping.NewHackerNewsScraper(client, config))
		case scraping.PlatformDevTo:
			scrapers = append(scrapers, scraping.NewDevToScraper(client, config))
		case scraping.PlatformLobsters:
			scrapers = append(scrapers, scraping.NewLobstersScraper(client, config))
		case scraping.PlatformReddit:
			if !appCfg.RedditEnabled {
				slog.Info("Reddit source configured but the Reddit scraper is disabled",
					"file", file, "hint", "set RADAR_REDDIT_ENABLED=true")
				continue
			}
			scrapers = append(scrapers, scraping.NewRedditScraper(client, config))
		}

		slog.Info("Source registered", "file", file, "platform", config.Platform)
	}

	return scrapers
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}
