package chanx

import (
	"time"

	"github.com/ulugbekov/csp"
)

// tickerSignal bridges a time.Ticker into a csp.Channel so throttling
// and windowing logic can race it inside a single csp.Select call
// alongside ordinary channel cases, the same auxiliary-signalling-channel
// pattern ctxSignal uses for context cancellation.
func tickerSignal(d time.Duration) (ticks *csp.Channel[struct{}], stop func()) {
	t := time.NewTicker(d)
	ticks = csp.New[struct{}](1)
	done := make(chan struct{})

	go func() {
		defer t.Stop()
		for {
			select {
			case <-t.C:
				ticks.TrySend(struct{}{}) // drop the tick if one is already pending
			case <-done:
				return
			}
		}
	}()

	return ticks, func() { close(done) }
}
