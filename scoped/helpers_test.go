package scoped

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForEachSliceRunsAllItems(t *testing.T) {
	var mu sync.Mutex
	seen := map[int]bool{}

	err := ForEachSlice(context.Background(), []int{1, 2, 3}, func(ctx context.Context, item int) error {
		mu.Lock()
		seen[item] = true
		mu.Unlock()
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, seen, 3)
}

func TestForEachSliceEmpty(t *testing.T) {
	err := ForEachSlice(context.Background(), []int{}, func(ctx context.Context, item int) error {
		t.Fatal("should not be called")
		return nil
	})
	require.NoError(t, err)
}

func TestMapSliceCollectsInOrder(t *testing.T) {
	results, err := MapSlice(context.Background(), []int{1, 2, 3}, func(ctx context.Context, item int) (int, error) {
		return item * item, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 4, 9}, results)
}

func TestMapSliceErrorReturnsNilResults(t *testing.T) {
	results, err := MapSlice(context.Background(), []int{1, 2, 3}, func(ctx context.Context, item int) (int, error) {
		if item == 2 {
			return 0, errors.New("bad item")
		}
		return item, nil
	})
	assert.Error(t, err)
	assert.Nil(t, results)
}

func TestSpawnTimeoutCancelsSlowTask(t *testing.T) {
	err := Run(context.Background(), func(sp Spawner) {
		SpawnTimeout(sp, "slow", 10*time.Millisecond, func(ctx context.Context, _ Spawner) error {
			<-ctx.Done()
			return ctx.Err()
		})
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSpawnTimeoutLeavesFastTaskUnaffected(t *testing.T) {
	err := Run(context.Background(), func(sp Spawner) {
		SpawnTimeout(sp, "fast", 100*time.Millisecond, func(ctx context.Context, _ Spawner) error {
			return nil
		})
	})
	require.NoError(t, err)
}

func TestSpawnRetrySucceedsAfterFailures(t *testing.T) {
	var attempts int
	err := Run(context.Background(), func(sp Spawner) {
		SpawnRetry(sp, "retry-then-ok", 5, 1*time.Millisecond, func(ctx context.Context, _ Spawner) error {
			attempts++
			if attempts < 3 {
				return errors.New("not yet")
			}
			return nil
		})
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestSpawnRetryExhaustsAttempts(t *testing.T) {
	var attempts int
	err := Run(context.Background(), func(sp Spawner) {
		SpawnRetry(sp, "always-fails", 2, 1*time.Millisecond, func(ctx context.Context, _ Spawner) error {
			attempts++
			return errors.New("still failing")
		})
	})
	assert.Error(t, err)
	assert.Equal(t, 2, attempts)
}

func TestSpawnRetryPanicsOnInvalidArgs(t *testing.T) {
	sc, sp := New(context.Background())
	defer sc.Wait()

	assert.Panics(t, func() {
		SpawnRetry(sp, "bad", 0, time.Millisecond, func(ctx context.Context, _ Spawner) error { return nil })
	})
	assert.Panics(t, func() {
		SpawnRetry(sp, "bad", 1, 0, func(ctx context.Context, _ Spawner) error { return nil })
	})
}
