package poller

import (
	"context"
	"log"
	"time"
)

// DefaultInterval is how often route statuses are refreshed while a
// management view is active. This is what makes one operator's
// start/finish visible on another operator's screen.
const DefaultInterval = 5 * time.Second

// Run polls immediately and then on every tick until ctx is cancelled.
// The poller is owned by its view's lifetime: cancelling the context is
// the teardown, and no poll fires after Run returns.
func Run(ctx context.Context, interval time.Duration, poll func(ctx context.Context) error) {
	if interval <= 0 {
		interval = DefaultInterval
	}

	tick := time.NewTicker(interval)
	defer tick.Stop()

	for {
		if err := poll(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			// A failed poll is retried on the next tick; the view keeps
			// showing the last good data.
			log.Printf("status poll failed: %v", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-tick.C:
		}
	}
}
