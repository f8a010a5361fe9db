package scoped

import (
	"context"
	"fmt"
	"sync"

	"github.com/ulugbekov/csp"
)

// Race runs all tasks concurrently and returns the result of the first
// task to succeed (return a nil error). The contexts of remaining tasks
// are cancelled as soon as the first one succeeds.
//
// If all tasks fail, Race returns the zero value and the last error
// observed. If ctx is cancelled before any task succeeds, Race returns
// ctx.Err(). If tasks is empty, Race returns (zero, nil).
//
// Race panics if any element of tasks is nil.
func Race[T any](ctx context.Context, tasks ...func(context.Context) (T, error)) (T, error) {
	var zero T
	if len(tasks) == 0 {
		return zero, nil
	}
	for i, fn := range tasks {
		if fn == nil {
			panic(fmt.Sprintf("scoped: Race task[%d] must not be nil", i))
		}
	}

	raceCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	results := csp.New[raceResult[T]](len(tasks))

	var wg sync.WaitGroup
	wg.Add(len(tasks))
	for _, fn := range tasks {
		go func(fn func(context.Context) (T, error)) {
			defer wg.Done()
			val, err := fn(raceCtx)
			results.Send(raceResult[T]{val: val, err: err})
		}(fn)
	}
	go func() {
		wg.Wait()
		results.Close()
	}()

	var lastErr error
	for {
		res, ok := results.Recv()
		if !ok {
			break
		}
		if res.err == nil {
			cancel(nil)
			return res.val, nil
		}
		lastErr = res.err
	}

	if ctx.Err() != nil {
		return zero, ctx.Err()
	}
	return zero, lastErr
}

type raceResult[T any] struct {
	val T
	err error
}
