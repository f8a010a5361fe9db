package csp

import (
	"errors"
	"sync"
)

// ErrMultipleDefault is returned by [Select] when more than one [Default]
// case is supplied; at most one default is permitted per call.
var ErrMultipleDefault = errors.New("csp: select given more than one default case")

// coordinator is the select coordinator: a one-shot arbiter, created on
// entry to Select and torn down before it returns. completed guards the
// "at most one case fires" contract; selectedAction is the user action
// chosen once a case fires.
type coordinator struct {
	mu             sync.Mutex
	cond           sync.Cond
	completed      bool
	selectedAction func()
}

func newCoordinator() *coordinator {
	c := &coordinator{}
	c.cond.L = &c.mu
	return c
}

func (co *coordinator) isCompleted() bool {
	co.mu.Lock()
	defer co.mu.Unlock()
	return co.completed
}

// complete is the notifier-side commit protocol shared by every case
// kind: if another case has already won, refuse. Otherwise apply the
// case's result (copying delivered/sent values into caller-provided
// out-parameters), record the action to run, mark completed, and wake
// any goroutine parked in Select.
func (co *coordinator) complete(applyResult func(), action func()) bool {
	co.mu.Lock()
	if co.completed {
		co.mu.Unlock()
		return false
	}
	applyResult()
	co.selectedAction = action
	co.completed = true
	co.mu.Unlock()
	co.cond.Broadcast()
	return true
}

// SelectCase is one arm of a [Select] call, built with [Recv], [Send], or
// [Default].
type SelectCase struct {
	isDefault     bool
	defaultAction func()

	// register arms this case against the coordinator and returns the
	// wait-id Select must later unregister (0 if the case fired
	// synchronously during arming).
	register func(co *coordinator) uint64

	// teardown releases a non-zero wait-id returned by register.
	teardown func(id uint64)
}

// Recv builds a receive case. If out is non-nil, the delivered value is
// copied into it; if closedFlag is non-nil, it is set to whether the
// channel was closed. action, if non-nil, runs after the case wins,
// outside any library mutex.
func Recv[T any](ch *Channel[T], out *T, closedFlag *bool, action func()) SelectCase {
	return SelectCase{
		register: func(co *coordinator) uint64 {
			notifier := func(v T, closed bool) bool {
				return co.complete(func() {
					if out != nil {
						*out = v
					}
					if closedFlag != nil {
						*closedFlag = closed
					}
				}, action)
			}
			return ch.recvOrRegister(notifier)
		},
		teardown: func(id uint64) { ch.unregister(id) },
	}
}

// Send builds a send case. value is offered to ch; if closedFlag is
// non-nil, it is set to true iff the channel was already closed (in
// which case the value was not sent). action, if non-nil, runs after the
// case wins, outside any library mutex.
func Send[T any](ch *Channel[T], value T, closedFlag *bool, action func()) SelectCase {
	return SelectCase{
		register: func(co *coordinator) uint64 {
			notifier := func(closed bool) (T, bool) {
				if closed {
					co.complete(func() {
						if closedFlag != nil {
							*closedFlag = true
						}
					}, action)
					var zero T
					return zero, false
				}
				accepted := co.complete(func() {
					if closedFlag != nil {
						*closedFlag = false
					}
				}, action)
				return value, accepted
			}
			return ch.sendOrRegister(notifier)
		},
		teardown: func(id uint64) { ch.unregister(id) },
	}
}

// Default builds the default case. action runs immediately, without
// parking, if no other case is ready at arming time. At most one default
// case may be supplied per [Select] call.
func Default(action func()) SelectCase {
	return SelectCase{isDefault: true, defaultAction: action}
}

// Select arms every case in cases, in declaration order, and blocks until
// exactly one fires — or, if a [Default] case is present and nothing
// else is ready synchronously, runs the default immediately. Every
// registration made during arming is torn down before Select returns,
// even if the winning action panics.
//
// Select returns [ErrMultipleDefault] if more than one default case is
// supplied; it never returns any other error — the action's own errors
// are the caller's concern, delivered through whatever state its closure
// captures.
func Select(cases ...SelectCase) error {
	defaultIdx := -1
	for i, c := range cases {
		if !c.isDefault {
			continue
		}
		if defaultIdx != -1 {
			return ErrMultipleDefault
		}
		defaultIdx = i
	}

	co := newCoordinator()
	ids := make([]uint64, len(cases))

	for i, c := range cases {
		if c.isDefault {
			continue
		}
		if co.isCompleted() {
			break
		}
		ids[i] = c.register(co)
	}

	defer func() {
		for i, c := range cases {
			if c.isDefault || ids[i] == 0 {
				continue
			}
			c.teardown(ids[i])
		}
	}()

	if !co.isCompleted() && defaultIdx != -1 {
		co.mu.Lock()
		if !co.completed {
			co.selectedAction = cases[defaultIdx].defaultAction
			co.completed = true
		}
		co.mu.Unlock()
	} else if !co.isCompleted() {
		co.mu.Lock()
		for !co.completed {
			co.cond.Wait()
		}
		co.mu.Unlock()
	}

	co.mu.Lock()
	action := co.selectedAction
	co.mu.Unlock()

	if action != nil {
		action()
	}
	return nil
}
