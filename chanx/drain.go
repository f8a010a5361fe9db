package chanx

import (
	"context"

	"github.com/ulugbekov/csp"
)

// Drain consumes and discards every value from in until it closes or
// ctx is cancelled. It is useful for unblocking a producer whose
// consumer has lost interest in the values themselves.
func Drain[T any](ctx context.Context, in *csp.Channel[T]) {
	for {
		_, ok, err := Recv(ctx, in)
		if err != nil || !ok {
			return
		}
	}
}

// OrDone wraps in so that receiving from the returned channel stops as
// soon as ctx is cancelled, in addition to stopping when in closes.
func OrDone[T any](ctx context.Context, in *csp.Channel[T]) *csp.Channel[T] {
	out := csp.New[T](0)
	sig, stop := ctxSignal(ctx)

	go func() {
		defer stop()
		defer out.Close()

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
