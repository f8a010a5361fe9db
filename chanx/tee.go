package chanx

import (
	"context"

	"github.com/ulugbekov/csp"
)

// Tee broadcasts every value from in to n independent output channels.
// All outputs receive every value. The outputs are closed when in is
// closed or ctx is cancelled.
//
// Warning: if any consumer is slow, it blocks the broadcast to all
// others; Tee's outputs are unbuffered, so use [Broadcast], which gives
// each output its own buffer, to mitigate this. Tee panics if n is not
// positive.
func Tee[T any](ctx context.Context, in *csp.Channel[T], n int) []*csp.Channel[T] {
	if n <= 0 {
		panic("chanx: Tee requires n > 0")
	}

	outs := make([]*csp.Channel[T], n)
	for i := range outs {
		outs[i] = csp.New[T](0)
	}

	sig, stop := ctxSignal(ctx)

	go func() {
		defer stop()
		defer func() {
			for _, out := range outs {
				out.Close()
			}
		}()

		for {
			var v T
			var srcClosed bool
			var cancelled bool
			csp.Select(
				csp.Recv(in, &v, &srcClosed, nil),
				csp.Recv(sig, nil, nil, func() { cancelled = true }),
			)
			if cancelled || srcClosed {
				return
			}

			for _, out := range outs {
				var outClosed bool
				csp.Select(
					csp.Send(out, v, &outClosed, nil),
					csp.Recv(sig, nil, nil, func() { cancelled = true }),
				)
				if cancelled {
					return
				}
			}
		}
	}()

	return outs
}
