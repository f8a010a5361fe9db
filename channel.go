package csp

import (
	"errors"
	"math"
	"sync"
)

// Sentinel errors documenting the false-return contracts of the blocking
// and non-blocking operations. None of these are ever returned directly —
// Send/Recv and their Try variants report failure via a plain bool, the
// same way Go's own chan/select report closure and readiness — but
// callers that want a name to wrap in their own errors can reference
// these (chanx.Send, for one, returns ErrSendOnClosed).
var (
	// ErrSendOnClosed documents Send/TrySend returning false because the
	// channel was already closed.
	ErrSendOnClosed = errors.New("csp: send on closed channel")

	// ErrRecvOnDrained documents Recv/TryRecv returning false because the
	// channel is closed and its buffer is empty.
	ErrRecvOnDrained = errors.New("csp: receive on drained channel")

	// ErrWouldBlock documents TrySend/TryRecv returning false because the
	// operation would have had to block.
	ErrWouldBlock = errors.New("csp: operation would block")
)

type recvNotifier[T any] func(v T, closed bool) bool

type sendNotifier[T any] func(closed bool) (T, bool)

// Channel is a bounded or unbounded, closable FIFO shared by any number
// of goroutines. The zero value is not usable; construct one with [New]
// or [NewUnbounded]. A Channel must never be copied — take its address
// and share the pointer.
type Channel[T any] struct {
	mu       sync.Mutex
	recvCond sync.Cond
	sendCond sync.Cond

	queue    *ring[T]
	capacity int
	closed   bool

	senders   int
	receivers int

	recvWaiters *waitlist[recvNotifier[T]]
	sendWaiters *waitlist[sendNotifier[T]]
	nextWaitID  uint64
}

// unbounded is used as the effective capacity of a channel created with
// [NewUnbounded]. A value just below math.MaxInt keeps the "capacity +
// receivers" fullness test in send/sendOrRegister true to its arithmetic
// without a separate branch and without overflowing.
const unbounded = math.MaxInt - 1<<20

// New creates a bounded channel with the given capacity. It panics if
// capacity is negative.
func New[T any](capacity int) *Channel[T] {
	if capacity < 0 {
		panic("csp: New requires capacity >= 0")
	}
	return newChannel[T](capacity)
}

// NewUnbounded creates a channel with an effectively infinite capacity:
// Send never blocks on a full buffer, only on an empty recvWaiters list
// being irrelevant — it always succeeds unless the channel is closed.
func NewUnbounded[T any]() *Channel[T] {
	return newChannel[T](unbounded)
}

func newChannel[T any](capacity int) *Channel[T] {
	hint := capacity
	if hint <= 0 || hint > 64 {
		hint = 8
	}
	c := &Channel[T]{
		queue:       newRing[T](hint),
		capacity:    capacity,
		recvWaiters: newWaitlist[recvNotifier[T]](),
		sendWaiters: newWaitlist[sendNotifier[T]](),
		nextWaitID:  1,
	}
	c.recvCond.L = &c.mu
	c.sendCond.L = &c.mu
	return c
}

// Send delivers value to the channel, blocking until it is accepted by a
// waiting receiver, placed in the buffer, or the channel is closed. It
// returns true on delivery, false iff the channel was closed before or
// during the operation.
func (c *Channel[T]) Send(value T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.send(value, true)
}

// TrySend is the non-blocking variant of Send: it never parks, returning
// false also when the channel is full.
func (c *Channel[T]) TrySend(value T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.send(value, false)
}

func (c *Channel[T]) send(value T, block bool) bool {
	for {
		if c.closed {
			return false
		}

		// Waiters get first priority over the buffer.
		for c.recvWaiters.Len() > 0 {
			entry, _ := c.recvWaiters.PopFront()
			if entry.notifier(value, false) {
				return true
			}
			// Refused: the select lost the race on another case. Try
			// the next waiter with the same value.
		}

		if c.queue.Len() < c.capacity+c.receivers {
			c.queue.PushBack(value)
			c.recvCond.Signal()
			return true
		}

		if !block {
			return false
		}

		c.senders++
		c.sendCond.Wait()
		c.senders--
	}
}

// Recv removes and returns the next value from the channel, blocking
// until one is available or the channel is drained and closed. The
// second return is false iff the channel is drained.
func (c *Channel[T]) Recv() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recv(true)
}

// TryRecv is the non-blocking variant of Recv: it never parks, returning
// false also when the channel is empty and open.
func (c *Channel[T]) TryRecv() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recv(false)
}

func (c *Channel[T]) recv(block bool) (T, bool) {
	var zero T
	c.receivers++
	defer func() { c.receivers-- }()

	for {
		for c.sendWaiters.Len() > 0 {
			entry, _ := c.sendWaiters.PopFront()
			v, accepted := entry.notifier(false)
			if accepted {
				return v, true
			}
		}

		if c.queue.Len() > 0 {
			v, _ := c.queue.PopFront()
			if c.closed && c.queue.Len() == 0 {
				c.recvCond.Broadcast()
				c.sendCond.Broadcast()
			}
			return v, true
		}

		if c.closed {
			return zero, false
		}

		if !block {
			return zero, false
		}

		// Rendezvous opening: a sender is parked with nothing in the
		// buffer. Wake it so it can hand its value directly to us on
		// the next loop iteration, rather than racing the buffer test.
		if c.senders > 0 {
			c.sendCond.Signal()
		}
		c.recvCond.Wait()
	}
}

// Close marks the channel closed. It is idempotent: calling it more than
// once has no additional effect. Every pending waiter is notified with
// the closed indication and both condition variables are broadcast.
func (c *Channel[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true

	for _, n := range c.recvWaiters.DrainAll() {
		var zero T
		n(zero, true)
	}
	for _, n := range c.sendWaiters.DrainAll() {
		n(true)
	}

	c.recvCond.Broadcast()
	c.sendCond.Broadcast()
}

// IsClosed reports whether the channel is both closed and drained —
// the point at which Recv starts returning false.
func (c *Channel[T]) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed && c.queue.Len() == 0
}

// Len returns the number of values currently buffered.
func (c *Channel[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queue.Len()
}

// Cap returns the channel's configured capacity. It is immutable after
// construction and safe to call without locking.
func (c *Channel[T]) Cap() int {
	return c.capacity
}

// recvOrRegister is the non-blocking probe used exclusively by Select.
// If a value is immediately available — from a parked select send-case
// first, as the blocking recv() does, then from the buffer — it is
// delivered synchronously to notifier and the returned wait-id is 0.
// Otherwise notifier is registered at the tail of recvWaiters, a
// blocking sender parked on sendCond is woken so it can hand its value
// to the new waiter, and the wait-id is returned so Select can
// unregister it later.
func (c *Channel[T]) recvOrRegister(notifier recvNotifier[T]) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	for c.sendWaiters.Len() > 0 {
		entry, _ := c.sendWaiters.PopFront()
		v, accepted := entry.notifier(false)
		if !accepted {
			continue
		}
		if !notifier(v, false) {
			// Refused, but the sender has already committed: keep the
			// value at the head of the buffer for the next receiver.
			c.queue.PushFront(v)
		}
		return 0
	}

	if c.queue.Len() > 0 {
		v, _ := c.queue.PopFront()
		if notifier(v, false) {
			if c.closed && c.queue.Len() == 0 {
				c.recvCond.Broadcast()
			}
			return 0
		}
		// Refused: push back to the head to preserve ordering.
		c.queue.PushFront(v)
		return 0
	}

	if c.closed {
		var zero T
		notifier(zero, true)
		return 0
	}

	id := c.nextWaitID
	c.nextWaitID++
	c.recvWaiters.PushBack(id, notifier)
	if c.senders > 0 {
		c.sendCond.Signal()
	}
	return id
}

// sendOrRegister is the non-blocking probe used exclusively by Select.
// Like the blocking send(), it serves parked select recv-cases before the
// buffer: the value is requested from notifier and handed to the first
// waiter that accepts it. If every waiter refuses (its select already won
// elsewhere), the committed value is pushed to the buffer even when that
// exceeds the capacity. With no recv-case waiting, the value goes to the
// buffer if there is room; otherwise notifier is registered at the tail
// of sendWaiters and its wait-id is returned.
func (c *Channel[T]) sendOrRegister(notifier sendNotifier[T]) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		notifier(true)
		return 0
	}

	if c.recvWaiters.Len() > 0 {
		v, accepted := notifier(false)
		if !accepted {
			return 0
		}
		for c.recvWaiters.Len() > 0 {
			entry, _ := c.recvWaiters.PopFront()
			if entry.notifier(v, false) {
				return 0
			}
		}
		c.queue.PushBack(v)
		c.recvCond.Signal()
		return 0
	}

	if c.queue.Len() < c.capacity+c.receivers {
		v, accepted := notifier(false)
		if accepted {
			c.queue.PushBack(v)
			c.recvCond.Signal()
		}
		return 0
	}

	id := c.nextWaitID
	c.nextWaitID++
	c.sendWaiters.PushBack(id, notifier)
	return id
}

// unregister removes the notifier named by id from whichever wait-list
// holds it. It reports whether it was found; a miss means the notifier
// already fired and removed itself. The id space is unified across both
// wait-lists (see nextWaitID), so an id names at most one entry and
// checking each list in turn finds it.
func (c *Channel[T]) unregister(id uint64) bool {
	if id == 0 {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.recvWaiters.Remove(id) {
		return true
	}
	return c.sendWaiters.Remove(id)
}
