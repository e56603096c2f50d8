package services

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mxcollect/cobradash/internal/logging"
	"github.com/mxcollect/cobradash/internal/repositories/cache"
)

// Sweeper periodically purges cache rows older than the retention window.
// Reads already ignore stale entries; the sweep just keeps the cache tables
// from growing without bound.
type Sweeper struct {
	cache     cache.Repository
	log       logging.Logger
	schedule  string
	retention time.Duration
	cron      *cron.Cron
}

func NewSweeper(cacheRepo cache.Repository, log logging.Logger, schedule string, retention time.Duration) *Sweeper {
	return &Sweeper{cache: cacheRepo, log: log, schedule: schedule, retention: retention}
}

// Start schedules the sweep and stops it when ctx ends.
func (s *Sweeper) Start(ctx context.Context) error {
	s.cron = cron.New()
	_, err := s.cron.AddFunc(s.schedule, func() { s.SweepNow(ctx) })
	if err != nil {
		return err
	}
	s.cron.Start()

	go func() {
		<-ctx.Done()
		s.cron.Stop()
	}()
	return nil
}

// SweepNow runs a single sweep immediately.
func (s *Sweeper) SweepNow(ctx context.Context) {
	cutoff := time.Now().Add(-s.retention)
	n, err := s.cache.SweepOlderThan(ctx, cutoff)
	if err != nil {
		s.log.Warn(ctx, "cache sweep failed", "error", err)
		return
	}
	if n > 0 {
		s.log.Info(ctx, "purged stale cache entries", "removed", n)
	}
}
