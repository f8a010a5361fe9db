package chanx

import (
	"context"

	"github.com/ulugbekov/csp"
)

// Broadcast is a buffered variant of [Tee] that reduces slow-consumer
// blocking: each output channel gets its own capacity of bufSize. It
// panics if n or bufSize is not positive.
func Broadcast[T any](ctx context.Context, in *csp.Channel[T], n int, bufSize int) []*csp.Channel[T] {
	if n <= 0 {
		panic("chanx: Broadcast requires n > 0")
	}
	if bufSize <= 0 {
		panic("chanx: Broadcast requires bufSize > 0")
	}

	outs := make([]*csp.Channel[T], n)
	for i := range outs {
		outs[i] = csp.New[T](bufSize)
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
