package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/mxcollect/cobradash/internal/flagx"
	"github.com/mxcollect/cobradash/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so intervals can be written either as strings like "5m" or
// as integer nanoseconds.
type JsonConfig struct {
	DatabasePath    string         `json:"database_path"`
	RefreshInterval timex.Duration `json:"refresh_interval"`
	CacheTTL        timex.Duration `json:"cache_ttl"`
	SweepSchedule   string         `json:"sweep_schedule"`
	SweepRetention  timex.Duration `json:"sweep_retention"`
}

// parseJson overlays cfg with values from the JSON file named by the
// -c/-config flag. Absent flag means no JSON stage. Only fields present in
// the file override; zero values keep the current setting.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.RefreshInterval.Duration != 0 {
		cfg.RefreshInterval = time.Duration(jc.RefreshInterval.Duration)
	}
	if jc.CacheTTL.Duration != 0 {
		cfg.CacheTTL = time.Duration(jc.CacheTTL.Duration)
	}
	if jc.SweepSchedule != "" {
		cfg.SweepSchedule = jc.SweepSchedule
	}
	if jc.SweepRetention.Duration != 0 {
		cfg.SweepRetention = time.Duration(jc.SweepRetention.Duration)
	}
}
