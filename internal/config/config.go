// Package config assembles runtime settings from defaults, an optional JSON
// file, environment variables and command-line flags, in that order. Later
// sources take precedence.
package config

import "time"

// Config holds the runtime settings of the dashboard application.
type Config struct {
	// DatabasePath is the SQLite database file. ":memory:" is accepted
	// for throwaway runs.
	DatabasePath string

	// RefreshInterval is how often the dashboard recomputes its KPI batch
	// even without a preference change.
	RefreshInterval time.Duration

	// CacheTTL is the maximum age of a cached KPI or chart payload before
	// a read triggers recomputation.
	CacheTTL time.Duration

	// SweepSchedule is the cron expression of the stale-cache purge.
	SweepSchedule string

	// SweepRetention is how long swept cache rows are kept past their
	// creation time.
	SweepRetention time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DatabasePath = "cobradash.db"
	c.RefreshInterval = 5 * time.Minute
	c.CacheTTL = 5 * time.Minute
	c.SweepSchedule = "@hourly"
	c.SweepRetention = 24 * time.Hour
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if a -c/-config file is given), the environment, and finally
// command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
