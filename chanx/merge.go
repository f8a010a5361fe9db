package chanx

import (
	"context"
	"sync"

	"github.com/ulugbekov/csp"
)

// Merge combines multiple input channels into a single output channel
// (fan-in). The output channel is closed when every input is closed or
// ctx is cancelled. The order of values across inputs is
// non-deterministic; each input's own order is preserved.
func Merge[T any](ctx context.Context, chs ...*csp.Channel[T]) *csp.Channel[T] {
	out := csp.New[T](0)

	sig, stop := ctxSignal(ctx)

	var wg sync.WaitGroup
	for _, ch := range chs {
		wg.Add(1)
		go func(ch *csp.Channel[T]) {
			defer wg.Done()
			for {
				var v T
				var srcClosed bool
				var cancelled bool
				csp.Select(
					csp.Recv(ch, &v, &srcClosed, nil),
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
		}(ch)
	}

	go func() {
		wg.Wait()
		stop()
		out.Close()
	}()

	return out
}

// FanOut distributes values from in across n output channels in
// round-robin order. Each output is closed when in is closed or ctx is
// cancelled. FanOut panics if n is not positive.
func FanOut[T any](ctx context.Context, in *csp.Channel[T], n int) []*csp.Channel[T] {
	if n <= 0 {
		panic("chanx: FanOut requires n > 0")
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

		idx := 0
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
				csp.Send(outs[idx%n], v, &outClosed, nil),
				csp.Recv(sig, nil, nil, func() { cancelled = true }),
			)
			if cancelled || outClosed {
				return
			}
			idx++
		}
	}()

	return outs
}
