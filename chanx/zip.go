package chanx

import (
	"context"

	"github.com/ulugbekov/csp"
)

// Pair holds one value from each side of a [Zip].
type Pair[A, B any] struct {
	First  A
	Second B
}

// Zip pairs up values from a and b positionally. Each round receives
// from a, then from b; the output is closed when either receive finds
// its input closed or ctx is cancelled, so a closed b is noticed only
// after a delivers a value.
func Zip[A, B any](ctx context.Context, a *csp.Channel[A], b *csp.Channel[B]) *csp.Channel[Pair[A, B]] {
	out := csp.New[Pair[A, B]](0)
	sig, stop := ctxSignal(ctx)

	go func() {
		defer stop()
		defer out.Close()

		for {
			av, aOK, err := Recv(ctx, a)
			if err != nil || !aOK {
				return
			}
			bv, bOK, err := Recv(ctx, b)
			if err != nil || !bOK {
				return
			}

			var outClosed bool
			var cancelled bool
			csp.Select(
				csp.Send(out, Pair[A, B]{First: av, Second: bv}, &outClosed, nil),
				csp.Recv(sig, nil, nil, func() { cancelled = true }),
			)
			if cancelled || outClosed {
				return
			}
		}
	}()

	return out
}
