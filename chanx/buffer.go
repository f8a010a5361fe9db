package chanx

import (
	"context"
	"time"

	"github.com/ulugbekov/csp"
)

// FlushReason records why [BufferWithReason] emitted a given batch.
type FlushReason int

const (
	// FlushSize means the batch reached its configured size limit.
	FlushSize FlushReason = iota
	// FlushTimeout means timeout elapsed before the batch filled.
	FlushTimeout
	// FlushClose means in closed with a partial batch still pending.
	FlushClose
)

// BatchResult is one flushed group from [BufferWithReason], along with
// why it flushed.
type BatchResult[T any] struct {
	Items  []T
	Reason FlushReason
}

// Buffer collects values from in into slices of up to size elements. A
// batch is emitted when it reaches size elements or when timeout
// elapses since the first item in the current batch, whichever comes
// first. The output channel is closed when in is closed or ctx is
// cancelled. Any partial batch is flushed on close.
//
// Buffer panics if size is not positive or timeout is not positive.
func Buffer[T any](ctx context.Context, in *csp.Channel[T], size int, timeout time.Duration) *csp.Channel[[]T] {
	results := BufferWithReason(ctx, in, size, timeout)
	out := csp.New[[]T](0)
	go func() {
		defer out.Close()
		for {
			r, ok, err := Recv(ctx, results)
			if err != nil || !ok {
				return
			}
			if err := Send(ctx, out, r.Items); err != nil {
				return
			}
		}
	}()
	return out
}

// BufferWithReason is [Buffer] that additionally reports, for each
// emitted batch, which condition (size, timeout, or close) triggered
// the flush.
//
// BufferWithReason panics if size is not positive or timeout is not
// positive.
func BufferWithReason[T any](ctx context.Context, in *csp.Channel[T], size int, timeout time.Duration) *csp.Channel[BatchResult[T]] {
	if size <= 0 {
		panic("chanx: BufferWithReason requires size > 0")
	}
	if timeout <= 0 {
		panic("chanx: BufferWithReason requires timeout > 0")
	}

	out := csp.New[BatchResult[T]](0)
	sig, stop := ctxSignal(ctx)
	fire := csp.New[struct{}](1)

	go func() {
		defer stop()
		defer out.Close()

		batch := make([]T, 0, size)
		var timer *time.Timer

		flush := func(reason FlushReason) bool {
			if len(batch) == 0 {
				return true
			}
			result := BatchResult[T]{Items: batch, Reason: reason}
			batch = make([]T, 0, size)
			var outClosed bool
			var cancelled bool
			csp.Select(
				csp.Send(out, result, &outClosed, nil),
				csp.Recv(sig, nil, nil, func() { cancelled = true }),
			)
			return !cancelled && !outClosed
		}

		for {
			var v T
			var srcClosed bool
			var cancelled bool
			var fired bool

			csp.Select(
				csp.Recv(in, &v, &srcClosed, func() {
					if srcClosed {
						return
					}
					batch = append(batch, v)
					if len(batch) == 1 {
						timer = time.AfterFunc(timeout, func() { fire.TrySend(struct{}{}) })
					}
				}),
				csp.Recv(sig, nil, nil, func() { cancelled = true }),
				csp.Recv(fire, nil, nil, func() { fired = true }),
			)

			if cancelled {
				if timer != nil {
					timer.Stop()
				}
				return
			}
			if srcClosed {
				flush(FlushClose)
				if timer != nil {
					timer.Stop()
				}
				return
			}
			if fired {
				if !flush(FlushTimeout) {
					return
				}
				continue
			}
			if len(batch) >= size {
				if timer != nil {
					timer.Stop()
				}
				if !flush(FlushSize) {
					return
				}
			}
		}
	}()

	return out
}
