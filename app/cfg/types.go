package cfg

type Cfg struct {
	// Database configuration
	DBPath string

	// Application configuration
	SourcesDir   string
	Port         string
	APIAccessKey string

	// Scraping configuration
	HTTPTimeout   int
	RedditEnabled bool

	// Pipeline configuration
	ReportTarget         int
	PartialScanLimit     int
	DuplicateWindowHours int
	InfluenceWeight      float64
	EngagementWeight     float64
	VaderWeight          float64
	LexiconWeight        float64

	// Mailer configuration
	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string
	Recipients   []string

	// Scheduler configuration
	DailySchedule  string
	WeeklySchedule string

	// Run modifiers for the report commands
	Force   bool
	DryRun  bool
	NoEmail bool

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
