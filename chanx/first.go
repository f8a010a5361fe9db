package chanx

import (
	"context"

	"github.com/ulugbekov/csp"
)

// First returns a channel that delivers the first value received from
// any of the input channels, then closes. If ctx is cancelled before
// any value arrives, the returned channel is closed with no value.
//
// Arbitrating over a dynamic slice of channels normally forces a choice
// between a fixed-arity select and reflect.Select; [csp.Select] accepts
// a built-up slice of cases natively, so First needs neither.
func First[T any](ctx context.Context, chs ...*csp.Channel[T]) *csp.Channel[T] {
	out := csp.New[T](1) // buffer 1 so the goroutine never blocks on send

	if len(chs) == 0 {
		out.Close()
		return out
	}

	go func() {
		defer out.Close()

		sig, stop := ctxSignal(ctx)
		defer stop()

		values := make([]T, len(chs))
		closed := make([]bool, len(chs))
		won := -1

		cases := make([]csp.SelectCase, 0, len(chs)+1)
		for i := range chs {
			i := i
			cases = append(cases, csp.Recv(chs[i], &values[i], &closed[i], func() { won = i }))
		}
		var cancelled bool
		cases = append(cases, csp.Recv(sig, nil, nil, func() { cancelled = true }))

		csp.Select(cases...)

		if cancelled || won == -1 || closed[won] {
			return
		}
		out.Send(values[won])
	}()

	return out
}
