// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults, Load(ctx) to layer sources.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"time"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the admin HTTP listen address, e.g. ":9273".
	Addr string `koanf:"addr"`

	// Interval between pipeline runs in daemon mode. Zero means one-shot.
	Interval time.Duration `koanf:"interval"`

	// Sources lists the enabled ingest sources by name.
	Sources []string `koanf:"sources"`

	// SourceLimit caps how many records each source may return.
	SourceLimit int `koanf:"source_limit"`

	// MatchThreshold is the similarity score (0-100) at or above which
	// two records are considered the same person.
	MatchThreshold float64 `koanf:"match_threshold"`

	// CacheDir holds cached HTTP responses. Empty selects the user cache dir.
	CacheDir string `koanf:"cache_dir"`

	// CacheTTL bounds how long fetched leaderboard pages are reused.
	CacheTTL time.Duration `koanf:"cache_ttl"`

	// SnapshotDir holds daily rating snapshots and the first-seen ledger.
	SnapshotDir string `koanf:"snapshot_dir"`

	// ReportPath is where the markdown report is written. Empty disables it.
	ReportPath string `koanf:"report_path"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// KaggleUsersCSV points at a local Kaggle Users.csv export.
	KaggleUsersCSV string `koanf:"kaggle_users_csv"`

	// LeetCodeContest names the contest whose ranking is ingested.
	LeetCodeContest string `koanf:"leetcode_contest"`

	// RecordsFile points at a local JSON records fixture for the file source.
	RecordsFile string `koanf:"records_file"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9273",
		Interval:            0,
		Sources:             []string{"codeforces", "atcoder", "leetcode"},
		SourceLimit:         1000,
		MatchThreshold:      88,
		CacheDir:            "",
		CacheTTL:            24 * time.Hour,
		SnapshotDir:         "snapshots",
		ReportPath:          "talent_report.md",
		MaxLeaderboardLimit: 100,
	}
}
