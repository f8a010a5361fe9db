package scoped

import (
	"context"
	"fmt"
	"time"
)

// ForEachSlice executes fn for each item in items concurrently, using
// the provided options to control concurrency and error policy. It is a
// convenience wrapper around [Run] and [Spawner.Spawn].
//
//	err := scoped.ForEachSlice(ctx, urls, func(ctx context.Context, u string) error {
//		return fetch(ctx, u)
//	}, scoped.WithLimit(10))
func ForEachSlice[T any](ctx context.Context, items []T, fn func(ctx context.Context, item T) error, opts ...Option) error {
	return Run(ctx, func(sp Spawner) {
		for i, item := range items {
			item := item
			sp.Spawn(fmt.Sprintf("foreach[%d]", i), func(ctx context.Context, _ Spawner) error {
				return fn(ctx, item)
			})
		}
	}, opts...)
}

// MapSlice executes fn for each item in items concurrently and collects
// the results in the same order as the input slice. It uses [FailFast]
// by default. Under any policy, if a task fails MapSlice returns nil
// results together with the scope's error; partial results are not
// returned.
//
//	prices, err := scoped.MapSlice(ctx, products, func(ctx context.Context, p Product) (float64, error) {
//		return fetchPrice(ctx, p)
//	}, scoped.WithLimit(5))
func MapSlice[T, R any](ctx context.Context, items []T, fn func(ctx context.Context, item T) (R, error), opts ...Option) ([]R, error) {
	results := make([]R, len(items))
	err := Run(ctx, func(sp Spawner) {
		for i, item := range items {
			i, item := i, item
			sp.Spawn(fmt.Sprintf("map[%d]", i), func(ctx context.Context, _ Spawner) error {
				r, err := fn(ctx, item)
				if err != nil {
					return err
				}
				results[i] = r // safe: each goroutine writes a unique index
				return nil
			})
		}
	}, opts...)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// SpawnTimeout spawns a named task whose context is cancelled after d
// elapses, independent of the parent scope's lifetime. The deadline only
// bounds this one task; siblings are unaffected unless the task's error
// triggers the scope's own policy (e.g. FailFast).
func SpawnTimeout(sp Spawner, name string, d time.Duration, fn TaskFunc) {
	sp.Spawn(name, func(ctx context.Context, child Spawner) error {
		tctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return fn(tctx, child)
	})
}

// SpawnRetry spawns a named task that retries fn up to maxAttempts times
// on failure, waiting backoff between attempts. It stops early if ctx is
// cancelled during the backoff wait. Panics if maxAttempts < 1 or backoff
// is not positive.
func SpawnRetry(sp Spawner, name string, maxAttempts int, backoff time.Duration, fn TaskFunc) {
	if maxAttempts < 1 {
		panic("scoped: SpawnRetry requires maxAttempts >= 1")
	}
	if backoff <= 0 {
		panic("scoped: SpawnRetry requires backoff > 0")
	}

	sp.Spawn(name, func(ctx context.Context, child Spawner) error {
		var lastErr error
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			lastErr = fn(ctx, child)
			if lastErr == nil {
				return nil
			}
			if attempt == maxAttempts {
				break
			}
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return lastErr
	})
}
