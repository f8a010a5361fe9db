// Package scoped provides structured concurrency for pipelines built on
// [github.com/ulugbekov/csp.Channel]: a [Scope] bounds the lifetime of a
// group of goroutines to a single block of code, propagates cancellation
// to every task through a shared context, and aggregates task errors
// according to a configured [Policy].
//
// A Scope is created with [New] or [Run] and finalized by calling
// [Scope.Wait] (Run does this automatically). The [Spawner] interface is
// used to launch tasks; every task receives a context cancelled when the
// scope ends, and a child Spawner for spawning further sub-tasks.
//
//	err := scoped.Run(context.Background(), func(sp scoped.Spawner) {
//		in := csp.New[int](0)
//		out := csp.New[int](0)
//		sp.Spawn("producer", func(ctx context.Context, _ scoped.Spawner) error {
//			defer in.Close()
//			return produce(ctx, in)
//		})
//		sp.Spawn("consumer", func(ctx context.Context, _ scoped.Spawner) error {
//			defer out.Close()
//			return consume(ctx, in, out)
//		})
//	})
//
// [Pool], [Semaphore], and [Race] are worker-pool, concurrency-limiting,
// and first-to-succeed helpers built directly on csp.Channel and
// csp.Select rather than native channels, so they compose naturally with
// the rest of the module.
package scoped
