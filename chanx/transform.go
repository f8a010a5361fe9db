package chanx

import (
	"context"

	"github.com/ulugbekov/csp"
)

// Map applies f to every value from in, forwarding the results to the
// returned channel. The output closes when in closes or ctx is
// cancelled.
func Map[T, U any](ctx context.Context, in *csp.Channel[T], f func(T) U) *csp.Channel[U] {
	out := csp.New[U](0)
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
				csp.Send(out, f(v), &outClosed, nil),
				csp.Recv(sig, nil, nil, func() { cancelled = true }),
			)
			if cancelled || outClosed {
				return
			}
		}
	}()

	return out
}

// Filter forwards only the values from in for which pred returns true.
// The output closes when in closes or ctx is cancelled.
func Filter[T any](ctx context.Context, in *csp.Channel[T], pred func(T) bool) *csp.Channel[T] {
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
			if !pred(v) {
				continue
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

// Take forwards at most n values from in, then closes the output and
// stops reading from in. Panics if n is negative.
func Take[T any](ctx context.Context, in *csp.Channel[T], n int) *csp.Channel[T] {
	if n < 0 {
		panic("chanx: Take requires n >= 0")
	}
	out := csp.New[T](0)
	sig, stop := ctxSignal(ctx)

	go func() {
		defer stop()
		defer out.Close()

		for i := 0; i < n; i++ {
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

// Skip discards the first n values from in and forwards the rest.
// Panics if n is negative.
func Skip[T any](ctx context.Context, in *csp.Channel[T], n int) *csp.Channel[T] {
	if n < 0 {
		panic("chanx: Skip requires n >= 0")
	}
	out := csp.New[T](0)
	sig, stop := ctxSignal(ctx)

	go func() {
		defer stop()
		defer out.Close()

		skipped := 0
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

			if skipped < n {
				skipped++
				continue
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

// Scan forwards the running accumulation of in's values through fold,
// seeded with initial. Each output value reflects every input value
// folded so far, the same way a running total would.
func Scan[T, A any](ctx context.Context, in *csp.Channel[T], initial A, fold func(acc A, v T) A) *csp.Channel[A] {
	out := csp.New[A](0)
	sig, stop := ctxSignal(ctx)

	go func() {
		defer stop()
		defer out.Close()

		acc := initial
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

			acc = fold(acc, v)

			var outClosed bool
			csp.Select(
				csp.Send(out, acc, &outClosed, nil),
				csp.Recv(sig, nil, nil, func() { cancelled = true }),
			)
			if cancelled || outClosed {
				return
			}
		}
	}()

	return out
}
