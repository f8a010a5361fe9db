// Package csp provides a typed, thread-safe channel with first-class
// multi-way selection, modelled on the CSP-style channels popularised by
// Go itself — except this implementation is built entirely on
// [sync.Mutex] and [sync.Cond] rather than the built-in chan/select, so
// that application code which needs custom wait-list semantics (probing,
// cancellable registration, auxiliary signalling channels) has something
// to build on.
//
// # Channels
//
// Create a bounded or unbounded channel with [New] or [NewUnbounded]:
//
//	ch := csp.New[int](4)
//	ch.Send(1)
//	v, ok := ch.Recv()
//
// [Channel.Send] and [Channel.Recv] block; [Channel.TrySend] and
// [Channel.TryRecv] never block. [Channel.Close] is idempotent.
// [Channel.IsClosed] reports true only once the channel is both closed
// and drained — matching the point at which [Channel.Recv] starts
// returning false.
//
// # Select
//
// [Select] arms any number of cases built with [Recv], [Send], and
// [Default], blocks until exactly one case is ready (or the default
// fires immediately), runs that case's action, and tears down every
// other registration before returning:
//
//	var v int
//	err := csp.Select(
//	    csp.Recv(ch, &v, nil, func() { fmt.Println("got", v) }),
//	    csp.Default(func() { fmt.Println("nothing ready") }),
//	)
//
// At most one [Default] case may be supplied; a second one makes
// [Select] return [ErrMultipleDefault].
//
// # Companion packages
//
// [github.com/ulugbekov/csp/chanx] layers context-aware send/recv,
// fan-in/fan-out, rate limiting, batching, and zipping on top of
// [Channel]. [github.com/ulugbekov/csp/scoped] layers structured
// concurrency — scopes, a worker pool, a semaphore, typed results, and
// timeout/retry helpers — on top of both.
package csp
