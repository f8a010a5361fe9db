package chanx

import (
	"context"
	"time"

	"github.com/ulugbekov/csp"
)

// WindowMode specifies whether [Window] groups values into tumbling or
// sliding windows.
type WindowMode int

const (
	// Tumbling windows are non-overlapping: each value belongs to
	// exactly one window.
	Tumbling WindowMode = iota
	// Sliding windows overlap: each emitted batch contains every value
	// received within the last duration.
	Sliding
)

// Window collects values from in into time-based windows of duration.
// In Tumbling mode, values are collected for duration then emitted as a
// batch. In Sliding mode, a batch containing everything received in the
// trailing duration is emitted at a tick. In either mode a tick with no
// values to report emits nothing.
//
// Window panics if duration is not positive.
func Window[T any](ctx context.Context, in *csp.Channel[T], duration time.Duration, mode WindowMode) *csp.Channel[[]T] {
	if duration <= 0 {
		panic("chanx: Window requires duration > 0")
	}

	out := csp.New[[]T](0)
	sig, stop := ctxSignal(ctx)
	ticks, stopTicker := tickerSignal(duration)

	go func() {
		defer stop()
		defer stopTicker()
		defer out.Close()

		type stamped struct {
			v    T
			when time.Time
		}
		var items []stamped

		emit := func(values []T) bool {
			if len(values) == 0 {
				return true
			}
			var outClosed bool
			var cancelled bool
			csp.Select(
				csp.Send(out, values, &outClosed, nil),
				csp.Recv(sig, nil, nil, func() { cancelled = true }),
			)
			return !cancelled && !outClosed
		}

		for {
			var v T
			var srcClosed bool
			var cancelled bool
			var ticked bool

			csp.Select(
				csp.Recv(in, &v, &srcClosed, func() {
					if srcClosed {
						return
					}
					items = append(items, stamped{v: v, when: time.Now()})
				}),
				csp.Recv(sig, nil, nil, func() { cancelled = true }),
				csp.Recv(ticks, nil, nil, func() { ticked = true }),
			)

			if cancelled {
				return
			}
			if srcClosed {
				values := make([]T, len(items))
				for i, it := range items {
					values[i] = it.v
				}
				emit(values)
				return
			}
			if !ticked {
				continue
			}

			switch mode {
			case Tumbling:
				values := make([]T, len(items))
				for i, it := range items {
					values[i] = it.v
				}
				if !emit(values) {
					return
				}
				items = nil
			case Sliding:
				cutoff := time.Now().Add(-duration)
				kept := items[:0]
				for _, it := range items {
					if !it.when.Before(cutoff) {
						kept = append(kept, it)
					}
				}
				items = kept

				values := make([]T, len(items))
				for i, it := range items {
					values[i] = it.v
				}
				if !emit(values) {
					return
				}
			}
		}
	}()

	return out
}
