// Package scoped's Scope provides structured concurrency: a group of
// goroutines with a coordinated lifecycle and error policy. A Scope is
// created via [New] (or [Run]) and finalized by calling [Scope.Wait].
// The [Spawner] interface is used to spawn tasks within the scope; every
// task receives a context cancelled when the scope ends, either because
// every task completed or because the scope was cancelled explicitly.
//
// Error handling is configurable:
//   - FailFast: the scope stops on the first error and cancels siblings.
//   - Collect: all errors are collected and joined together at the end.
//
// Panics in tasks are captured and either converted to errors
// (WithPanicAsError) or re-raised after the scope finalizes.
package scoped

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// TaskFunc is the signature for a task function running within a scope.
// It receives a context (cancelled when the scope ends) and a Spawner
// to spawn sub-tasks.
type TaskFunc func(ctx context.Context, sp Spawner) error

// scope holds the internal state of a structured concurrency scope.
type scope struct {
	ctx    context.Context
	cancel context.CancelCauseFunc
	cfg    config

	wg sync.WaitGroup

	firstErr atomicError // concurrent access from Spawn and Wait
	errOnce  sync.Once

	errMu         sync.Mutex
	errs          []*TaskError
	droppedErrors int

	panicMu sync.Mutex
	panics  []*PanicError

	sem *Semaphore

	finOnce  sync.Once
	finErr   error
	finPanic *PanicError

	totalSpawned atomic.Int64
	activeTasks  atomic.Int64
	completed    atomic.Int64
	errored      atomic.Int64
}

// Run creates a [Scope], invokes fn with its root [Spawner], then waits
// for every spawned task to complete. It returns the aggregated error
// according to the configured [Policy] (default [FailFast]).
//
// Run is the primary entry point for structured concurrency. The scope
// is automatically finalized when fn returns, so no explicit cleanup is
// needed.
func Run(parent context.Context, fn func(sp Spawner), opts ...Option) (err error) {
	sc, sp := New(parent, opts...)

	defer func() {
		runPanic := recover()

		sc.root.close()
		waitErr, waitPanic := sc.s.finalize()

		// User panics take priority over task panics.
		if runPanic != nil {
			panic(runPanic)
		}
		if waitPanic != nil {
			panic(waitPanic)
		}

		err = waitErr
	}()

	fn(sp)
	return nil
}

func (s *scope) finalize() (error, *PanicError) {
	s.finOnce.Do(func() {
		s.wg.Wait()

		ctxWasCancelled := s.ctx.Err() != nil

		select {
		case <-s.ctx.Done():
		default:
			s.cancel(nil)
		}

		if !s.cfg.panicAsErr {
			s.panicMu.Lock()
			if len(s.panics) > 0 {
				s.finPanic = s.panics[0]
			}
			s.panicMu.Unlock()
		}

		switch s.cfg.policy {
		case FailFast:
			if v := s.firstErr.Load(); v != nil {
				s.finErr = v
			}
		case Collect:
			s.errMu.Lock()
			if len(s.errs) > 0 {
				errs := make([]error, 0, len(s.errs))
				for _, te := range s.errs {
					errs = append(errs, te)
				}
				s.finErr = errors.Join(errs...)
			}
			s.errMu.Unlock()
		}

		// If no task errors were recorded but the context was cancelled
		// externally (before scope cleanup), surface the context error.
		if s.finErr == nil && ctxWasCancelled {
			s.finErr = s.ctx.Err()
		}
	})

	return s.finErr, s.finPanic
}

// exec runs fn with panic recovery according to the scope's policy.
func (s *scope) exec(fn func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			pe := newPanicError(r)
			if s.cfg.panicAsErr {
				err = pe
			} else {
				s.panicMu.Lock()
				s.panics = append(s.panics, pe)
				s.panicMu.Unlock()
				s.cancel(pe)
			}
		}
	}()
	return fn(s.ctx)
}

func (s *scope) emitCompletionEvent(info TaskInfo, err error, d time.Duration) {
	if s.cfg.onEvent == nil {
		return
	}

	var kind EventKind
	switch {
	case err == nil:
		kind = EventDone
	case errors.As(err, new(*PanicError)):
		kind = EventPanicked
	case s.ctx.Err() != nil:
		kind = EventCancelled
	default:
		kind = EventErrored
	}

	s.cfg.onEvent(TaskEvent{
		Kind:     kind,
		Task:     info,
		Err:      err,
		Duration: d,
	})
}

func (s *scope) recordError(taskInfo TaskInfo, err error) {
	s.errored.Add(1)

	te := &TaskError{Task: taskInfo, Err: err}

	switch s.cfg.policy {
	case FailFast:
		s.errOnce.Do(func() {
			s.firstErr.Store(te)
			s.cancel(err)
		})
	case Collect:
		s.errMu.Lock()
		if s.cfg.maxErrors > 0 && len(s.errs) >= s.cfg.maxErrors {
			s.droppedErrors++
		} else {
			s.errs = append(s.errs, te)
		}
		s.errMu.Unlock()
	}
}

func (s *scope) metricsSnapshot() Metrics {
	return Metrics{
		TotalSpawned: s.totalSpawned.Load(),
		ActiveTasks:  s.activeTasks.Load(),
		Completed:    s.completed.Load(),
		Errored:      s.errored.Load(),
	}
}

func (s *scope) runMetricsLoop() {
	ticker := time.NewTicker(s.cfg.metricsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.cfg.onMetrics(s.metricsSnapshot())
		case <-s.ctx.Done():
			return
		}
	}
}

// Scope wraps the internal scope state and exposes lifecycle and
// observability methods. Create one via [New]; finalize with [Scope.Wait].
type Scope struct {
	s        *scope
	root     *spawner
	once     sync.Once
	result   error
	panicVal *PanicError
}

// New creates a [Scope] and root [Spawner] for manual lifecycle control.
// The caller must call [Scope.Wait] to finalize the scope and collect
// errors.
//
// Prefer [Run] for most use cases; use New when the [Spawner] must cross
// function boundaries or integrate with existing lifecycle management.
func New(parent context.Context, opts ...Option) (*Scope, Spawner) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	ctx, cancel := context.WithCancelCause(parent)
	s := &scope{
		ctx:    ctx,
		cancel: cancel,
		cfg:    cfg,
	}

	if cfg.limit > 0 {
		s.sem = NewSemaphore(cfg.limit)
	}

	root := &spawner{s: s}
	root.open.Store(true)

	if cfg.onMetrics != nil {
		go s.runMetricsLoop()
	}

	return &Scope{s: s, root: root}, root
}

// Wait closes the root [Spawner], waits for all spawned tasks to
// complete, and returns the aggregated error. If a task panicked and
// [WithPanicAsError] was not set, Wait re-panics with the captured
// [*PanicError].
//
// Wait is idempotent; subsequent calls return the same result.
func (sc *Scope) Wait() error {
	sc.once.Do(func() {
		sc.root.close()
		sc.result, sc.panicVal = sc.s.finalize()
	})

	if sc.panicVal != nil {
		panic(sc.panicVal)
	}
	return sc.result
}

// WaitTimeout waits for the scope to finalize, but returns
// context.DeadlineExceeded if d elapses first. Unlike [Scope.Wait], a
// timeout does not cancel the scope — outstanding tasks keep running
// and a later [Scope.Wait] still waits for them.
func (sc *Scope) WaitTimeout(d time.Duration) error {
	done := make(chan struct{})
	var err error
	go func() {
		err = sc.Wait()
		close(done)
	}()

	select {
	case <-done:
		return err
	case <-time.After(d):
		return context.DeadlineExceeded
	}
}

// Cancel cancels the scope's context with the given cause, signaling
// all tasks to stop. Subsequent calls have no additional effect.
func (sc *Scope) Cancel(err error) {
	sc.s.cancel(err)
}

// Context returns the scope's context, cancelled when the scope
// finalizes or is explicitly cancelled via [Scope.Cancel].
func (sc *Scope) Context() context.Context {
	return sc.s.ctx
}

// ActiveTasks returns the number of tasks currently executing within the scope.
func (sc *Scope) ActiveTasks() int64 {
	return sc.s.activeTasks.Load()
}

// TotalSpawned returns the total number of tasks spawned within the
// scope, including those that have already completed.
func (sc *Scope) TotalSpawned() int64 {
	return sc.s.totalSpawned.Load()
}

// DroppedErrors returns the number of errors not stored because
// [WithMaxErrors] was reached. Only meaningful in [Collect] mode.
func (sc *Scope) DroppedErrors() int {
	sc.s.errMu.Lock()
	defer sc.s.errMu.Unlock()

	return sc.s.droppedErrors
}
