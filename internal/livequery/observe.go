package livequery

import (
	"context"

	"github.com/mxcollect/cobradash/internal/logging"
)

// Observe runs fetch once immediately and again after every change to one of
// the given tables, emitting each result on the returned channel. Emissions
// are strictly ordered: a single goroutine fetches and sends sequentially.
//
// A failed fetch is logged and skipped; the query keeps running so consumers
// retain their last-known-good value. The channel is closed when ctx is
// cancelled, which also tears down the bus subscription.
func Observe[T any](ctx context.Context, bus *Bus, log logging.Logger, tables []string, fetch func(context.Context) (T, error)) <-chan T {
	out := make(chan T)
	signal, cancel := bus.Subscribe(tables...)

	go func() {
		defer close(out)
		defer cancel()

		emit := func() bool {
			v, err := fetch(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return false
				}
				log.Warn(ctx, "live query fetch failed, keeping previous value", "tables", tables, "error", err)
				return true
			}
			select {
			case out <- v:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !emit() {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case <-signal:
				if !emit() {
					return
				}
			}
		}
	}()

	return out
}
