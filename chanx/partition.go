package chanx

import (
	"context"

	"github.com/ulugbekov/csp"
)

// Partition splits in into two channels based on pred: matching values
// go to the first channel, the rest to the second. Both are closed when
// in is closed or ctx is cancelled.
//
// Callers must consume both output channels concurrently — if only one
// is read, the dispatcher goroutine blocks on the other, the same
// constraint [Tee] carries.
//
// Partition panics if pred is nil.
func Partition[T any](ctx context.Context, in *csp.Channel[T], pred func(T) bool) (matched, rest *csp.Channel[T]) {
	if pred == nil {
		panic("chanx: Partition requires non-nil predicate")
	}
	matched = csp.New[T](0)
	rest = csp.New[T](0)
	sig, stop := ctxSignal(ctx)

	go func() {
		defer stop()
		defer matched.Close()
		defer rest.Close()

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

			out := rest
			if pred(v) {
				out = matched
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

	return matched, rest
}
