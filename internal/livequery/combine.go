package livequery

import (
	"context"
	"time"
)

// SwitchLatest projects each value of outer into an inner stream and forwards
// the most recent inner stream only. Starting a new inner stream cancels the
// previous one before the new one is consumed, so a forwarded value can never
// originate from a superseded key: the select loop replaces the inner channel
// in the same step that delivers the new outer value.
func SwitchLatest[K, T any](ctx context.Context, outer <-chan K, project func(context.Context, K) <-chan T) <-chan T {
	out := make(chan T)

	go func() {
		defer close(out)

		var inner <-chan T
		var cancelInner context.CancelFunc
		defer func() {
			if cancelInner != nil {
				cancelInner()
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return

			case k, ok := <-outer:
				if !ok {
					// Outer finished; keep forwarding the current inner
					// stream until ctx ends.
					outer = nil
					continue
				}
				if cancelInner != nil {
					cancelInner()
				}
				ictx, cancel := context.WithCancel(ctx)
				cancelInner = cancel
				inner = project(ictx, k)

			case v, ok := <-inner:
				if !ok {
					inner = nil
					continue
				}
				select {
				case out <- v:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out
}

// Combine2 emits combine(a, b) built from the latest value of each input,
// starting once both inputs have produced at least one value and re-emitting
// whenever either changes. No cross-ordering between the inputs is assumed.
func Combine2[A, B, T any](ctx context.Context, a <-chan A, b <-chan B, combine func(A, B) T) <-chan T {
	out := make(chan T)

	go func() {
		defer close(out)

		var va A
		var vb B
		haveA, haveB := false, false

		for {
			select {
			case <-ctx.Done():
				return
			case v, ok := <-a:
				if !ok {
					a = nil
					continue
				}
				va, haveA = v, true
			case v, ok := <-b:
				if !ok {
					b = nil
					continue
				}
				vb, haveB = v, true
			}

			if haveA && haveB {
				select {
				case out <- combine(va, vb):
				case <-ctx.Done():
					return
				}
			}
			if a == nil && b == nil {
				return
			}
		}
	}()

	return out
}

// Map transforms each value of in with f.
func Map[A, B any](ctx context.Context, in <-chan A, f func(A) B) <-chan B {
	out := make(chan B)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case v, ok := <-in:
				if !ok {
					return
				}
				select {
				case out <- f(v):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// Just emits a single value and then stays open until ctx ends. It is the
// inner-stream counterpart of a constant: SwitchLatest keeps it as the
// active stream without receiving further values from it.
func Just[T any](ctx context.Context, v T) <-chan T {
	out := make(chan T, 1)
	out <- v
	go func() {
		<-ctx.Done()
		close(out)
	}()
	return out
}

// Interval emits the current time immediately and then once per period.
// The immediate emission lets periodic pipelines produce their first batch
// without waiting a full period.
func Interval(ctx context.Context, period time.Duration) <-chan time.Time {
	out := make(chan time.Time, 1)
	out <- time.Now()

	go func() {
		defer close(out)
		t := time.NewTicker(period)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-t.C:
				select {
				case out <- now:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out
}
