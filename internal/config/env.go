package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays cfg with environment variables, loading a local .env
// file first if one exists. A missing .env file is not an error.
func parseEnv(cfg *Config) {
	_ = godotenv.Load()

	if v := os.Getenv("COBRADASH_DATABASE_PATH"); v != "" {
		cfg.DatabasePath = v
	}
	if d, ok := envDuration("COBRADASH_REFRESH_INTERVAL"); ok {
		cfg.RefreshInterval = d
	}
	if d, ok := envDuration("COBRADASH_CACHE_TTL"); ok {
		cfg.CacheTTL = d
	}
	if v := os.Getenv("COBRADASH_SWEEP_SCHEDULE"); v != "" {
		cfg.SweepSchedule = v
	}
	if d, ok := envDuration("COBRADASH_SWEEP_RETENTION"); ok {
		cfg.SweepRetention = d
	}
}

func envDuration(name string) (time.Duration, bool) {
	v := os.Getenv(name)
	if v == "" {
		return 0, false
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, false
	}
	return d, true
}
