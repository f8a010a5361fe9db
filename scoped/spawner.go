package scoped

import (
	"context"
	"sync/atomic"
	"time"
)

// Spawner allows spawning concurrent tasks into a scope.
type Spawner interface {
	// Spawn starts a new concurrent task with the given name.
	// The task function receives a child Spawner allowing it to create sub-tasks.
	Spawn(name string, fn TaskFunc)
}

// spawner implements the Spawner interface and manages the lifecycle of tasks.
type spawner struct {
	s    *scope
	open atomic.Bool
}

func (sp *spawner) Spawn(name string, fn TaskFunc) {
	// Check open BEFORE wg.Add to avoid a TOCTOU race with finalize()'s wg.Wait().
	if !sp.open.Load() {
		panic("scoped: Spawn called after scope shutdown")
	}

	sp.s.wg.Add(1)
	sp.s.totalSpawned.Add(1)
	sp.s.activeTasks.Add(1)

	info := TaskInfo{Name: name}

	go func() {
		defer sp.s.wg.Done()
		defer sp.s.activeTasks.Add(-1)

		if sp.s.sem != nil {
			if err := sp.s.sem.Acquire(sp.s.ctx); err != nil {
				// Context cancelled while waiting for a semaphore slot;
				// the real cause is already recorded elsewhere.
				return
			}
			defer sp.s.sem.Release()
		}

		if sp.s.ctx.Err() != nil {
			return
		}

		// child is valid only for the lifetime of this task; spawning
		// from it after the task function returns will panic.
		child := &spawner{s: sp.s}
		child.open.Store(true)

		start := time.Now()
		err := sp.s.exec(func(ctx context.Context) error {
			if sp.s.cfg.onStart != nil {
				sp.s.cfg.onStart(info)
			}
			return fn(ctx, child)
		})
		elapsed := time.Since(start)

		child.close()
		sp.s.completed.Add(1)

		if sp.s.cfg.onDone != nil {
			// A panic here is intentionally unrecovered: an observability
			// hook must not itself panic.
			sp.s.cfg.onDone(info, err, elapsed)
		}
		sp.s.emitCompletionEvent(info, err, elapsed)

		if err != nil {
			sp.s.recordError(info, err)
		}
	}()
}

// close marks the spawner as closed, preventing further Spawn calls.
func (sp *spawner) close() {
	sp.open.Store(false)
}
