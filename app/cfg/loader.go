package cfg

import (
	"cmp"
	"fmt"
	"math"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Database configuration
	DBPath string `long:"db-path" env:"RADAR_DB_PATH" default:"./data/radar.db" description:"Path to the SQLite database file"`

	// Application configuration
	SourcesDir   string `long:"sources-dir" env:"RADAR_SOURCES_DIR" default:"./sources" description:"Directory containing source configuration files"`
	Port         string `long:"port" env:"RADAR_PORT" default:"8080" description:"HTTP server port"`
	APIAccessKey string `long:"api-key" env:"RADAR_API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Scraping configuration
	HTTPTimeout   int  `long:"http-timeout" env:"RADAR_HTTP_TIMEOUT" default:"30" description:"HTTP request timeout in seconds"`
	RedditEnabled bool `long:"reddit-enabled" env:"RADAR_REDDIT_ENABLED" description:"Enable the Reddit scraper (off by default)"`

	// Pipeline configuration
	ReportTarget         int     `long:"report-target" env:"RADAR_REPORT_TARGET" default:"5" description:"Number of entries a daily report aims for"`
	PartialScanLimit     int     `long:"partial-scan-limit" env:"RADAR_PARTIAL_SCAN_LIMIT" default:"50" description:"Maximum partial posts scanned during backfill"`
	DuplicateWindowHours int     `long:"duplicate-window-hours" env:"RADAR_DUPLICATE_WINDOW_HOURS" default:"20" description:"Hours after a sent report during which a rerun is skipped"`
	InfluenceWeight      float64 `long:"influence-weight" env:"RADAR_INFLUENCE_WEIGHT" default:"0.4" description:"Weight of author influence in the base score"`
	EngagementWeight     float64 `long:"engagement-weight" env:"RADAR_ENGAGEMENT_WEIGHT" default:"0.6" description:"Weight of post engagement in the base score"`
	VaderWeight          float64 `long:"vader-weight" env:"RADAR_VADER_WEIGHT" default:"0.6" description:"Weight of the VADER backend in the combined sentiment"`
	LexiconWeight        float64 `long:"lexicon-weight" env:"RADAR_LEXICON_WEIGHT" default:"0.4" description:"Weight of the lexicon backend in the combined sentiment"`

	// Mailer configuration
	SMTPHost     string   `long:"smtp-host" env:"RADAR_SMTP_HOST" description:"SMTP server host (mail delivery disabled when empty)"`
	SMTPPort     string   `long:"smtp-port" env:"RADAR_SMTP_PORT" default:"587" description:"SMTP server port"`
	SMTPUser     string   `long:"smtp-user" env:"RADAR_SMTP_USER" description:"SMTP username"`
	SMTPPassword string   `long:"smtp-password" env:"RADAR_SMTP_PASSWORD" description:"SMTP password"`
	SMTPFrom     string   `long:"smtp-from" env:"RADAR_SMTP_FROM" description:"Sender address for report emails"`
	Recipients   []string `long:"recipient" env:"RADAR_RECIPIENTS" env-delim:"," description:"Report recipient address (repeatable)"`

	// Scheduler configuration
	DailySchedule  string `long:"daily-schedule" env:"RADAR_DAILY_SCHEDULE" default:"0 8 * * *" description:"Cron expression for the daily report run"`
	WeeklySchedule string `long:"weekly-schedule" env:"RADAR_WEEKLY_SCHEDULE" default:"0 9 * * 1" description:"Cron expression for the weekly digest run"`

	// Run modifiers for the report commands
	Force   bool `long:"force" description:"Run even if a report was already sent within the duplicate window"`
	DryRun  bool `long:"dry-run" description:"Collect, filter and score but persist and send nothing"`
	NoEmail bool `long:"no-email" description:"Skip email delivery for this run, reports are still recorded"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"RADAR_USER_AGENT" default:"OSS Radar/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"RADAR_DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load(args []string) (*Cfg, []string, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	rest, err := parser.ParseArgs(args)
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil, nil
			}
		}
		return nil, nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:               raw.DBPath,
		SourcesDir:           raw.SourcesDir,
		Port:                 raw.Port,
		APIAccessKey:         raw.APIAccessKey,
		HTTPTimeout:          raw.HTTPTimeout,
		RedditEnabled:        raw.RedditEnabled,
		ReportTarget:         raw.ReportTarget,
		PartialScanLimit:     raw.PartialScanLimit,
		DuplicateWindowHours: raw.DuplicateWindowHours,
		InfluenceWeight:      raw.InfluenceWeight,
		EngagementWeight:     raw.EngagementWeight,
		VaderWeight:          raw.VaderWeight,
		LexiconWeight:        raw.LexiconWeight,
		SMTPHost:             raw.SMTPHost,
		SMTPPort:             raw.SMTPPort,
		SMTPUser:             raw.SMTPUser,
		SMTPPassword:         raw.SMTPPassword,
		SMTPFrom:             raw.SMTPFrom,
		Recipients:           raw.Recipients,
		DailySchedule:        raw.DailySchedule,
		WeeklySchedule:       raw.WeeklySchedule,
		Force:                raw.Force,
		DryRun:               raw.DryRun,
		NoEmail:              raw.NoEmail,
		UserAgent:            raw.UserAgent,
		Timezone:             raw.Timezone,
		Debug:                raw.Debug,
		Version:              GetVersion(),
	}

	if err := validate(cfg); err != nil {
		return nil, nil, err
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, rest, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func validate(cfg *Cfg) error {
	if cfg.ReportTarget <= 0 {
		return fmt.Errorf("report target must be positive, got %d", cfg.ReportTarget)
	}
	if cfg.PartialScanLimit <= 0 {
		return fmt.Errorf("partial scan limit must be positive, got %d", cfg.PartialScanLimit)
	}
	if cfg.DuplicateWindowHours <= 0 {
		return fmt.Errorf("duplicate window must be positive, got %d", cfg.DuplicateWindowHours)
	}
	if err := validateWeightPair("score", cfg.InfluenceWeight, cfg.EngagementWeight); err != nil {
		return err
	}
	if err := validateWeightPair("sentiment", cfg.VaderWeight, cfg.LexiconWeight); err != nil {
		return err
	}
	return nil
}

func validateWeightPair(name string, a, b float64) error {
	if a < 0 || b < 0 {
		return fmt.Errorf("%s weights must be non-negative, got %v and %v", name, a, b)
	}
	if math.Abs(a+b-1.0) > 1e-9 {
		return fmt.Errorf("%s weights must sum to 1.0, got %v", name, a+b)
	}
	return nil
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
			fmt.Printf("Timezone configured: %s\n", timezone)
		}
	}
	return nil
}
