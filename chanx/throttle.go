package chanx

import (
	"context"
	"time"

	"github.com/ulugbekov/csp"
)

// Throttle rate-limits values from in to at most n items per duration
// per. It uses a token-bucket approach: n tokens are available
// initially, and one token is replenished every per/n interval. The
// output channel is closed when in is closed or ctx is cancelled.
//
// Throttle panics if n is not positive or per is not positive.
func Throttle[T any](ctx context.Context, in *csp.Channel[T], n int, per time.Duration) *csp.Channel[T] {
	if n <= 0 {
		panic("chanx: Throttle requires n > 0")
	}
	if per <= 0 {
		panic("chanx: Throttle requires per > 0")
	}

	out := csp.New[T](0)
	sig, stop := ctxSignal(ctx)
	ticks, stopTicker := tickerSignal(per / time.Duration(n))

	go func() {
		defer stop()
		defer stopTicker()
		defer out.Close()

		tokens := n // start with a full bucket for an initial burst
		for {
			if tokens == 0 {
				var cancelled bool
				csp.Select(
					csp.Recv(ticks, nil, nil, func() { tokens++ }),
					csp.Recv(sig, nil, nil, func() { cancelled = true }),
				)
				if cancelled {
					return
				}
				continue
			}

			var v T
			var srcClosed bool
			var cancelled bool
			var tokenFilled bool
			csp.Select(
				csp.Recv(in, &v, &srcClosed, nil),
				csp.Recv(ticks, nil, nil, func() { tokenFilled = true }),
				csp.Recv(sig, nil, nil, func() { cancelled = true }),
			)

			if cancelled {
				return
			}
			if tokenFilled {
				if tokens < n {
					tokens++
				}
				continue
			}
			if srcClosed {
				return
			}

			tokens--
			var outClosed bool
			csp.Select(
				csp.Send(out, v, &outClosed, nil),
				csp.Recv(sig, nil, nil, func() { cancelled = true }),
			)
			if cancelled || outClosed {
				return
			}
		}
	}()

	return out
}
