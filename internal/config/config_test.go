package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearScannerEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"GAME_SCANNER_CONFIG",
		"GAME_SCANNER_COOKIE",
		"GAME_SCANNER_ACTIVE_ROOT",
		"GAME_SCANNER_WAITING_ROOT",
		"GAME_SCANNER_CSV",
		"GAME_SCANNER_DB",
		"GAME_SCANNER_PRUNE_DAYS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearScannerEnv(t)

	cfg := Load()

	if cfg.Logging.Level != "info" {
		t.Errorf("default log level = %q, want info", cfg.Logging.Level)
	}
	if cfg.Recency.RecentDays != 21 || cfg.Recency.AbandonedDays != 365 {
		t.Errorf("default recency bands = %d/%d, want 21/365",
			cfg.Recency.RecentDays, cfg.Recency.AbandonedDays)
	}
	if cfg.Links.PruneDays != 10 {
		t.Errorf("default prune days = %d, want 10", cfg.Links.PruneDays)
	}
	if cfg.HTTP.TimeoutSeconds != 30 {
		t.Errorf("default http timeout = %d, want 30", cfg.HTTP.TimeoutSeconds)
	}
	if len(cfg.Sources.ExternalDomains) == 0 {
		t.Error("default external domains must not be empty")
	}
	if len(cfg.Sources.FilePatterns()) != len(cfg.Sources.FileURLPatterns) {
		t.Errorf("compiled %d file patterns from %d entries",
			len(cfg.Sources.FilePatterns()), len(cfg.Sources.FileURLPatterns))
	}
	if cfg.Scheduler.Location() == nil {
		t.Error("scheduler location must resolve")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearScannerEnv(t)
	t.Setenv("GAME_SCANNER_COOKIE", "cf_clearance=abc")
	t.Setenv("GAME_SCANNER_ACTIVE_ROOT", "/srv/games")
	t.Setenv("GAME_SCANNER_DB", "/srv/cache.db")
	t.Setenv("GAME_SCANNER_PRUNE_DAYS", "14")

	cfg := Load()

	if cfg.HTTP.Cookie != "cf_clearance=abc" {
		t.Errorf("cookie = %q", cfg.HTTP.Cookie)
	}
	if cfg.Library.ActiveRoot != "/srv/games" {
		t.Errorf("active root = %q", cfg.Library.ActiveRoot)
	}
	if cfg.Cache.SQLitePath != "/srv/cache.db" {
		t.Errorf("sqlite path = %q", cfg.Cache.SQLitePath)
	}
	if cfg.Links.PruneDays != 14 {
		t.Errorf("prune days = %d, want 14", cfg.Links.PruneDays)
	}
}

func TestLoadInvalidPruneDaysIgnored(t *testing.T) {
	clearScannerEnv(t)
	t.Setenv("GAME_SCANNER_PRUNE_DAYS", "not-a-number")

	cfg := Load()
	if cfg.Links.PruneDays != 10 {
		t.Errorf("prune days = %d, want default 10", cfg.Links.PruneDays)
	}

	t.Setenv("GAME_SCANNER_PRUNE_DAYS", "-3")
	cfg = Load()
	if cfg.Links.PruneDays != 10 {
		t.Errorf("negative prune days accepted: %d", cfg.Links.PruneDays)
	}
}

func TestLoadYAMLFileMerge(t *testing.T) {
	clearScannerEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
logging:
  level: debug
library:
  activeRoot: /data/library
recency:
  recentDays: 7
cache:
  sqlitePath: /data/cache.db
scheduler:
  cronExpression: "30 * * * *"
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("GAME_SCANNER_CONFIG", path)

	cfg := Load()

	if cfg.Logging.Level != "debug" {
		t.Errorf("log level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Library.ActiveRoot != "/data/library" {
		t.Errorf("active root = %q", cfg.Library.ActiveRoot)
	}
	if cfg.Recency.RecentDays != 7 {
		t.Errorf("recent days = %d, want 7", cfg.Recency.RecentDays)
	}
	if cfg.Recency.AbandonedDays != 365 {
		t.Errorf("abandoned days = %d, want default 365", cfg.Recency.AbandonedDays)
	}
	if cfg.Cache.SQLitePath != "/data/cache.db" {
		t.Errorf("sqlite path = %q", cfg.Cache.SQLitePath)
	}
	if cfg.Scheduler.CronExpression != "30 * * * *" {
		t.Errorf("cron = %q", cfg.Scheduler.CronExpression)
	}
	if cfg.Cache.CSVPath != "scan_results.csv" {
		t.Errorf("csv path = %q, want untouched default", cfg.Cache.CSVPath)
	}
}

func TestEnvOverridesWinOverFile(t *testing.T) {
	clearScannerEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := "http:\n  cookie: from-file\n"
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("GAME_SCANNER_CONFIG", path)
	t.Setenv("GAME_SCANNER_COOKIE", "from-env")

	cfg := Load()
	if cfg.HTTP.Cookie != "from-env" {
		t.Errorf("cookie = %q, want env override", cfg.HTTP.Cookie)
	}
}

func TestLoadMissingFileFallsBack(t *testing.T) {
	clearScannerEnv(t)
	t.Setenv("GAME_SCANNER_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg := Load()
	if cfg.Recency.RecentDays != 21 {
		t.Errorf("recent days = %d, want default 21", cfg.Recency.RecentDays)
	}
}
