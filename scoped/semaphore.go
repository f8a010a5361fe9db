package scoped

import (
	"context"
	"sync/atomic"

	"github.com/ulugbekov/csp"
	"github.com/ulugbekov/csp/chanx"
)

// Semaphore is a counting semaphore for bounding concurrency, built on
// a capacity-n [csp.Channel] used as a token bucket. It is context-aware:
// Acquire unblocks if the context is cancelled.
type Semaphore struct {
	tokens   *csp.Channel[struct{}]
	cap      int
	acquired atomic.Int64
}

// NewSemaphore creates a semaphore with the given capacity.
// Panics if n <= 0.
func NewSemaphore(n int) *Semaphore {
	if n <= 0 {
		panic("scoped: NewSemaphore requires n > 0")
	}
	return &Semaphore{
		tokens: csp.New[struct{}](n),
		cap:    n,
	}
}

// Acquire blocks until a slot is available or ctx is cancelled.
// Returns ctx.Err() on cancellation, nil on success.
func (s *Semaphore) Acquire(ctx context.Context) error {
	if err := chanx.Send(ctx, s.tokens, struct{}{}); err != nil {
		return err
	}
	s.acquired.Add(1)
	return nil
}

// TryAcquire attempts to acquire a slot without blocking.
// Returns true if acquired, false otherwise.
func (s *Semaphore) TryAcquire() bool {
	if s.tokens.TrySend(struct{}{}) {
		s.acquired.Add(1)
		return true
	}
	return false
}

// Release releases a slot. Panics if more slots are released than acquired.
func (s *Semaphore) Release() {
	if s.acquired.Add(-1) < 0 {
		s.acquired.Add(1) // undo
		panic("scoped: Semaphore.Release called without matching Acquire")
	}
	s.tokens.Recv()
}

// Available returns the number of available slots.
// The value may be stale in concurrent contexts.
func (s *Semaphore) Available() int {
	return s.cap - s.tokens.Len()
}
