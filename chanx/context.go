package chanx

import (
	"context"
	"time"

	"github.com/ulugbekov/csp"
)

// ctxSignal returns a channel that closes when ctx is done, and a stop
// function that must be called once the caller is no longer interested
// so the watcher goroutine can exit even if ctx itself never fires. It
// is the "auxiliary signalling channel" the core library's design notes
// point to for expressing timeouts and cancellation: every context-aware
// helper in this package races its real work against a Recv case on one
// of these instead of teaching csp.Channel itself about context.
func ctxSignal(ctx context.Context) (sig *csp.Channel[struct{}], stop func()) {
	sig = csp.New[struct{}](0)
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			sig.Close()
		case <-done:
		}
	}()
	return sig, func() { close(done) }
}

// Send sends v to ch, unblocking early if ctx is cancelled. It returns
// nil on success, [csp.ErrSendOnClosed] if ch was closed, or ctx.Err()
// if cancelled first.
func Send[T any](ctx context.Context, ch *csp.Channel[T], v T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	sig, stop := ctxSignal(ctx)
	defer stop()

	var chanClosed bool
	var cancelled bool
	csp.Select(
		csp.Send(ch, v, &chanClosed, nil),
		csp.Recv(sig, nil, nil, func() { cancelled = true }),
	)

	switch {
	case cancelled:
		return ctx.Err()
	case chanClosed:
		return csp.ErrSendOnClosed
	default:
		return nil
	}
}

// Recv receives a value from ch, unblocking early if ctx is cancelled.
// It returns the value, a boolean indicating whether ch is still open
// (false means ch was drained and closed), and ctx.Err() if cancelled
// before either happened.
func Recv[T any](ctx context.Context, ch *csp.Channel[T]) (T, bool, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, false, err
	}

	sig, stop := ctxSignal(ctx)
	defer stop()

	var v T
	var chanClosed bool
	var cancelled bool
	csp.Select(
		csp.Recv(ch, &v, &chanClosed, nil),
		csp.Recv(sig, nil, nil, func() { cancelled = true }),
	)

	if cancelled {
		return zero, false, ctx.Err()
	}
	return v, !chanClosed, nil
}

// SendTimeout is a convenience wrapper around [Send] using
// context.WithTimeout.
func SendTimeout[T any](ctx context.Context, ch *csp.Channel[T], v T, d time.Duration) error {
	cctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	return Send(cctx, ch, v)
}

// RecvTimeout is a convenience wrapper around [Recv] using
// context.WithTimeout.
func RecvTimeout[T any](ctx context.Context, ch *csp.Channel[T], d time.Duration) (T, bool, error) {
	cctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	return Recv(cctx, ch)
}

// SendBatch sends each value in values to ch, stopping at the first
// error (closed channel or context cancellation).
func SendBatch[T any](ctx context.Context, ch *csp.Channel[T], values []T) error {
	for _, v := range values {
		if err := Send(ctx, ch, v); err != nil {
			return err
		}
	}
	return nil
}

// RecvBatch receives up to n values from ch. It returns the values
// collected so far and a nil error if ch closed or n values were
// received, or ctx.Err() if cancelled first.
func RecvBatch[T any](ctx context.Context, ch *csp.Channel[T], n int) ([]T, error) {
	if n <= 0 {
		panic("chanx: RecvBatch requires n > 0")
	}
	result := make([]T, 0, n)
	for i := 0; i < n; i++ {
		v, ok, err := Recv(ctx, ch)
		if err != nil {
			return result, err
		}
		if !ok {
			return result, nil
		}
		result = append(result, v)
	}
	return result, nil
}
