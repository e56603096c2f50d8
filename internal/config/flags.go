package config

import (
	"flag"
	"os"
	"time"

	"github.com/mxcollect/cobradash/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-d string   path to the SQLite database file
//	-r int      dashboard refresh interval in seconds
//	-t int      cache TTL in seconds
//
// The function filters os.Args to only the flags it owns, using
// flagx.FilterArgs, so it does not interfere with the -c/-config stage.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-r", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path to the database file")
	refresh := fs.Int("r", int(cfg.RefreshInterval.Seconds()), "dashboard refresh interval (in seconds)")
	ttl := fs.Int("t", int(cfg.CacheTTL.Seconds()), "cache ttl (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RefreshInterval = time.Duration(*refresh) * time.Second
	cfg.CacheTTL = time.Duration(*ttl) * time.Second
}
