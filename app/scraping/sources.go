package scraping

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Known platforms.
const (
	PlatformHackerNews = "hackernews"
	PlatformDevTo      = "devto"
	PlatformLobsters   = "lobsters"
	PlatformReddit     = "reddit"
)

// SourceConfig describes one platform's scraping parameters, loaded from a
// YAML file in the sources directory.
type SourceConfig struct {
	Platform string `yaml:"platform"`
	Enabled  bool   `yaml:"enabled"`
	MaxPosts int    `yaml:"max_posts"`

	// Platform-specific selectors. Queries drive Hacker News searches,
	// tags drive Dev.to, feeds are Lobsters RSS URLs, subreddits drive
	// Reddit listings.
	Queries    []string `yaml:"queries"`
	Tags       []string `yaml:"tags"`
	Feeds      []string `yaml:"feeds"`
	Subreddits []string `yaml:"subreddits"`

	// MaxAgeHours limits how far back scraped posts may reach.
	MaxAgeHours int `yaml:"max_age_hours"`
}

// SourceLoader handles loading and validation of source configurations
type SourceLoader struct {
	sourcesDir string
}

// NewSourceLoader creates a new source configuration loader
func NewSourceLoader(sourcesDir string) *SourceLoader {
	return &SourceLoader{sourcesDir: sourcesDir}
}

// LoadAll loads all YAML configuration files from the sources directory
func (l *SourceLoader) LoadAll() (map[string]*SourceConfig, error) {
	configs := make(map[string]*SourceConfig)

	if _, err := os.Stat(l.sourcesDir); os.IsNotExist(err) {
		return configs, nil // Return empty map if directory doesn't exist
	}

	files, err := filepath.Glob(filepath.Join(l.sourcesDir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to find YAML files: %w", err)
	}

	ymlFiles, err := filepath.Glob(filepath.Join(l.sourcesDir, "*.yml"))
	if err != nil {
		return nil, fmt.Errorf("failed to find YML files: %w", err)
	}
	files = append(files, ymlFiles...)

	for _, file := range files {
		config, err := l.loadFile(file)
		if err != nil {
			return nil, fmt.Errorf("error loading %s: %w", file, err)
		}

		if err := l.validate(config); err != nil {
			return nil, fmt.Errorf("invalid config %s: %w", file, err)
		}

		configs[file] = config
	}

	return configs, nil
}

// loadFile loads a single YAML configuration file
func (l *SourceLoader) loadFile(path string) (*SourceConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var config SourceConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	l.setDefaults(&config)

	return &config, nil
}

// setDefaults applies default values to configuration
func (l *SourceLoader) setDefaults(config *SourceConfig) {
	if config.MaxPosts == 0 {
		config.MaxPosts = 50
	}
	if config.MaxAgeHours == 0 {
		config.MaxAgeHours = 48
	}
}

// validate validates the configuration
func (l *SourceLoader) validate(config *SourceConfig) error {
	switch config.Platform {
	case PlatformHackerNews:
		if len(config.Queries) == 0 {
			return fmt.Errorf("hackernews source requires at least one query")
		}
	case PlatformDevTo:
		if len(config.Tags) == 0 {
			return fmt.Errorf("devto source requires at least one tag")
		}
	case PlatformLobsters:
		if len(config.Feeds) == 0 {
			return fmt.Errorf("lobsters source requires at least one feed URL")
		}
	case PlatformReddit:
		if len(config.Subreddits) == 0 {
			return fmt.Errorf("reddit source requires at least one subreddit")
		}
	case "":
		return fmt.Errorf("platform is required")
	default:
		return fmt.Errorf("unknown platform: %s", config.Platform)
	}

	if config.MaxPosts < 0 {
		return fmt.Errorf("max posts must be non-negative")
	}
	if config.MaxAgeHours < 0 {
		return fmt.Errorf("max age must be non-negative")
	}

	return nil
}
