package config

import (
	"log"
	"os"
	"regexp"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"GameScanner/internal/urlutil"
)

const (
	defaultTimezone = "UTC"
	configPathEnv   = "GAME_SCANNER_CONFIG"
	cookieEnv       = "GAME_SCANNER_COOKIE"
	activeRootEnv   = "GAME_SCANNER_ACTIVE_ROOT"
	waitingRootEnv  = "GAME_SCANNER_WAITING_ROOT"
	csvPathEnv      = "GAME_SCANNER_CSV"
	dbPathEnv       = "GAME_SCANNER_DB"
	pruneDaysEnv    = "GAME_SCANNER_PRUNE_DAYS"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Library   LibraryConfig   `yaml:"library"`
	Recency   RecencyConfig   `yaml:"recency"`
	Links     LinksConfig     `yaml:"links"`
	HTTP      HTTPConfig      `yaml:"http"`
	Sources   SourcesConfig   `yaml:"sources"`
	Cache     CacheConfig     `yaml:"cache"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// LoggingConfig controls console log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// LibraryConfig points at the folder trees containing tracked entries. The
// waiting root lives inside the active root; entries are classified by path.
type LibraryConfig struct {
	ActiveRoot  string `yaml:"activeRoot"`
	WaitingRoot string `yaml:"waitingRoot"`
}

// RecencyConfig defines the Recent/Abandoned age bands in whole days.
type RecencyConfig struct {
	RecentDays    int `yaml:"recentDays"`
	AbandonedDays int `yaml:"abandonedDays"`
}

// LinksConfig governs the discovered-link ledger.
type LinksConfig struct {
	PruneDays int `yaml:"pruneDays"`
}

// HTTPConfig describes the outbound fetch behavior.
type HTTPConfig struct {
	UserAgent      string `yaml:"userAgent"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
	Cookie         string `yaml:"cookie"`
}

// SourcesConfig lists the external domains worth keeping in the discovery
// ledger and the URL patterns that mark direct file downloads.
type SourcesConfig struct {
	ExternalDomains []string `yaml:"externalDomains"`
	FileURLPatterns []string `yaml:"fileUrlPatterns"`

	filePatterns []*regexp.Regexp
}

// FilePatterns returns the compiled file-download matchers.
func (s *SourcesConfig) FilePatterns() []*regexp.Regexp {
	if s.filePatterns == nil {
		s.filePatterns = urlutil.CompilePatterns(s.FileURLPatterns)
	}
	return s.filePatterns
}

// CacheConfig locates the tabular result exports. Empty paths disable the
// corresponding sink.
type CacheConfig struct {
	CSVPath    string `yaml:"csvPath"`
	SQLitePath string `yaml:"sqlitePath"`
}

// SchedulerConfig defines when watch mode rescans the library.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(cookieEnv); v != "" {
		c.HTTP.Cookie = v
	}
	if v := os.Getenv(activeRootEnv); v != "" {
		c.Library.ActiveRoot = v
	}
	if v := os.Getenv(waitingRootEnv); v != "" {
		c.Library.WaitingRoot = v
	}
	if v := os.Getenv(csvPathEnv); v != "" {
		c.Cache.CSVPath = v
	}
	if v := os.Getenv(dbPathEnv); v != "" {
		c.Cache.SQLitePath = v
	}
	if v := os.Getenv(pruneDaysEnv); v != "" {
		if days, err := strconv.Atoi(v); err == nil && days > 0 {
			c.Links.PruneDays = days
		}
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.Library.ActiveRoot != "" {
		base.Library.ActiveRoot = override.Library.ActiveRoot
	}
	if override.Library.WaitingRoot != "" {
		base.Library.WaitingRoot = override.Library.WaitingRoot
	}

	if override.Recency.RecentDays > 0 {
		base.Recency.RecentDays = override.Recency.RecentDays
	}
	if override.Recency.AbandonedDays > 0 {
		base.Recency.AbandonedDays = override.Recency.AbandonedDays
	}

	if override.Links.PruneDays > 0 {
		base.Links.PruneDays = override.Links.PruneDays
	}

	if override.HTTP.UserAgent != "" {
		base.HTTP.UserAgent = override.HTTP.UserAgent
	}
	if override.HTTP.TimeoutSeconds > 0 {
		base.HTTP.TimeoutSeconds = override.HTTP.TimeoutSeconds
	}
	if override.HTTP.Cookie != "" {
		base.HTTP.Cookie = override.HTTP.Cookie
	}

	if len(override.Sources.ExternalDomains) > 0 {
		base.Sources.ExternalDomains = override.Sources.ExternalDomains
	}
	if len(override.Sources.FileURLPatterns) > 0 {
		base.Sources.FileURLPatterns = override.Sources.FileURLPatterns
	}

	if override.Cache.CSVPath != "" {
		base.Cache.CSVPath = override.Cache.CSVPath
	}
	if override.Cache.SQLitePath != "" {
		base.Cache.SQLitePath = override.Cache.SQLitePath
	}

	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Library: LibraryConfig{
			ActiveRoot:  "~/games/fapnation",
			WaitingRoot: "~/games/fapnation/Waiting update",
		},
		Recency: RecencyConfig{RecentDays: 21, AbandonedDays: 365},
		Links:   LinksConfig{PruneDays: 10},
		HTTP: HTTPConfig{
			UserAgent: "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
				"(KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
			TimeoutSeconds: 30,
		},
		Sources: SourcesConfig{
			ExternalDomains: []string{
				"itch.io",
				"patreon.com",
				"store.steampowered.com",
				"steamcommunity.com",
				"lewdgames.to",
				"discord.com",
				"subscribestar.adult",
			},
			FileURLPatterns: []string{
				`patreon\.com/file\?`,
				`\.zip(\?|$)`,
				`\.rar(\?|$)`,
				`\.7z(\?|$)`,
				`\.exe(\?|$)`,
				`\.apk(\?|$)`,
				`\.dmg(\?|$)`,
				`\.pkg(\?|$)`,
				`\.tar(\.|$|\?)`,
				`\.gz(\.|$|\?)`,
				`\.pdf(\?|$)`,
				`\.mp4(\?|$)`,
				`\.mkv(\?|$)`,
			},
		},
		Cache: CacheConfig{CSVPath: "scan_results.csv"},
		Scheduler: SchedulerConfig{
			CronExpression: "0 */6 * * *",
			Timezone:       defaultTimezone,
			location:       tz,
		},
	}
}
