package chanx

import (
	"context"
	"time"

	"github.com/ulugbekov/csp"
)

// Debounce forwards a value from in only after quiet has elapsed since
// the last value arrived, collapsing bursts into their final value. It
// panics if quiet is not positive.
func Debounce[T any](ctx context.Context, in *csp.Channel[T], quiet time.Duration) *csp.Channel[T] {
	if quiet <= 0 {
		panic("chanx: Debounce requires quiet > 0")
	}

	out := csp.New[T](0)
	sig, stop := ctxSignal(ctx)
	fire := csp.New[struct{}](1)

	go func() {
		defer stop()
		defer out.Close()

		var timer *time.Timer
		var pending T
		var havePending bool

		for {
			var v T
			var srcClosed bool
			var cancelled bool
			var fired bool

			cases := []csp.SelectCase{
				csp.Recv(in, &v, &srcClosed, func() {
					if srcClosed {
						return
					}
					pending = v
					havePending = true
					if timer == nil {
						timer = time.AfterFunc(quiet, func() { fire.TrySend(struct{}{}) })
					} else {
						timer.Reset(quiet)
					}
				}),
				csp.Recv(fire, nil, nil, func() { fired = true }),
				csp.Recv(sig, nil, nil, func() { cancelled = true }),
			}
			csp.Select(cases...)

			if cancelled {
				if timer != nil {
					timer.Stop()
				}
				return
			}
			if srcClosed {
				if havePending {
					var outClosed bool
					csp.Select(
						csp.Send(out, pending, &outClosed, nil),
						csp.Recv(sig, nil, nil, func() { cancelled = true }),
					)
				}
				if timer != nil {
					timer.Stop()
				}
				return
			}
			if fired && havePending {
				var outClosed bool
				csp.Select(
					csp.Send(out, pending, &outClosed, nil),
					csp.Recv(sig, nil, nil, func() { cancelled = true }),
				)
				if cancelled || outClosed {
					return
				}
				havePending = false
			}
		}
	}()

	return out
}
