package cfg

import (
	"testing"
)

func TestGetVersion(t *testing.T) {
	// Test default version
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}

	version := GetVersion()
	if version != "dev" && version != "unknown" {
		// This is fine, version could be set at build time
		t.Logf("Version: %s", version)
	}
}

func validCfg() *Cfg {
	return &Cfg{
		DBPath:               "./data/radar.db",
		SourcesDir:           "./sources",
		Port:                 "8080",
		HTTPTimeout:          30,
		ReportTarget:         5,
		PartialScanLimit:     50,
		DuplicateWindowHours: 20,
		InfluenceWeight:      0.4,
		EngagementWeight:     0.6,
		VaderWeight:          0.6,
		LexiconWeight:        0.4,
		UserAgent:            "OSS Radar/1.0",
		Timezone:             "UTC",
	}
}

func TestValidate_Defaults(t *testing.T) {
	if err := validate(validCfg()); err != nil {
		t.Errorf("Default configuration should validate: %v", err)
	}
}

func TestValidate_WeightSums(t *testing.T) {
	cfg := validCfg()
	cfg.InfluenceWeight = 0.5
	cfg.EngagementWeight = 0.6
	if err := validate(cfg); err == nil {
		t.Error("Score weights not summing to 1.0 should fail validation")
	}

	cfg = validCfg()
	cfg.VaderWeight = 0.9
	cfg.LexiconWeight = 0.2
	if err := validate(cfg); err == nil {
		t.Error("Sentiment weights not summing to 1.0 should fail validation")
	}

	cfg = validCfg()
	cfg.VaderWeight = -0.1
	cfg.LexiconWeight = 1.1
	if err := validate(cfg); err == nil {
		t.Error("Negative weights should fail validation")
	}
}

func TestValidate_PositiveBounds(t *testing.T) {
	cfg := validCfg()
	cfg.ReportTarget = 0
	if err := validate(cfg); err == nil {
		t.Error("Zero report target should fail validation")
	}

	cfg = validCfg()
	cfg.PartialScanLimit = -1
	if err := validate(cfg); err == nil {
		t.Error("Negative partial scan limit should fail validation")
	}

	cfg = validCfg()
	cfg.DuplicateWindowHours = 0
	if err := validate(cfg); err == nil {
		t.Error("Zero duplicate window should fail validation")
	}
}

func TestConfigFields(t *testing.T) {
	cfg := &Cfg{
		Port:         "8080",
		UserAgent:    "Test Agent",
		APIAccessKey: "test-key",
		Version:      "test-version",
		SourcesDir:   "./sources",
		DBPath:       "./data/test.db",
		Recipients:   []string{"dev@example.com"},
		Timezone:     "UTC",
		Debug:        true,
	}

	// Test direct field access
	if cfg.Port != "8080" {
		t.Errorf("Expected port '8080', got '%s'", cfg.Port)
	}
	if cfg.UserAgent != "Test Agent" {
		t.Errorf("Expected user agent 'Test Agent', got '%s'", cfg.UserAgent)
	}
	if cfg.APIAccessKey != "test-key" {
		t.Errorf("Expected API key 'test-key', got '%s'", cfg.APIAccessKey)
	}
	if cfg.Version != "test-version" {
		t.Errorf("Expected version 'test-version', got '%s'", cfg.Version)
	}
	if cfg.SourcesDir != "./sources" {
		t.Errorf("Expected sources dir './sources', got '%s'", cfg.SourcesDir)
	}
	if cfg.DBPath != "./data/test.db" {
		t.Errorf("Expected DB path './data/test.db', got '%s'", cfg.DBPath)
	}
	if len(cfg.Recipients) != 1 || cfg.Recipients[0] != "dev@example.com" {
		t.Errorf("Expected one recipient, got %v", cfg.Recipients)
	}
	if cfg.Timezone != "UTC" {
		t.Errorf("Expected timezone 'UTC', got '%s'", cfg.Timezone)
	}
	if !cfg.Debug {
		t.Error("Expected debug to be enabled")
	}
}
