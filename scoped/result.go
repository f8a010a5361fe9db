package scoped

import (
	"context"

	"github.com/ulugbekov/csp"
)

// Result holds the outcome of an asynchronous task that produces a typed
// value. Create one via [SpawnResult].
type Result[T any] struct {
	ch *csp.Channel[taskResult[T]]
}

type taskResult[T any] struct {
	val T
	err error
}

// SpawnResult spawns a named task that returns a typed value and wraps
// the outcome in a [Result]. The task runs within the scope sp belongs
// to, inheriting its lifecycle and error policy.
//
//	r := scoped.SpawnResult(sp, "compute", func(ctx context.Context) (int, error) {
//		return expensiveCalc(ctx)
//	})
//	val, err := r.Wait()
func SpawnResult[T any](sp Spawner, name string, fn func(ctx context.Context) (T, error)) *Result[T] {
	r := &Result[T]{ch: csp.New[taskResult[T]](1)}

	sp.Spawn(name, func(ctx context.Context, _ Spawner) error {
		var zero T

		err := sp.(*spawner).s.exec(func(ctx context.Context) error {
			v, err := fn(ctx)
			r.ch.Send(taskResult[T]{v, err})
			return err
		})

		// If a panic occurred, exec converted it to err but the result
		// was never published.
		if err != nil {
			r.ch.TrySend(taskResult[T]{zero, err})
		}

		return err
	})

	return r
}

// Wait blocks until the task completes and returns its value and error.
// It does not return early on scope cancellation — since Spawner does
// not expose the scope's context, Wait only waits for the task itself.
func (r *Result[T]) Wait() (T, error) {
	res, _ := r.ch.Recv()
	return res.val, res.err
}

// WaitContext is [Result.Wait] that additionally unblocks early if ctx
// is cancelled, racing the task's completion against ctx.Done() through
// the package's csp.Select-based context bridge.
func (r *Result[T]) WaitContext(ctx context.Context) (T, error, error) {
	var zero T
	sig := csp.New[struct{}](0)
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			sig.Close()
		case <-done:
		}
	}()

	var res taskResult[T]
	var cancelled bool
	csp.Select(
		csp.Recv(r.ch, &res, nil, nil),
		csp.Recv(sig, nil, nil, func() { cancelled = true }),
	)
	if cancelled {
		return zero, nil, ctx.Err()
	}
	return res.val, res.err, nil
}
