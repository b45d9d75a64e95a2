package scheduler

import (
	"context"
	"log"
	"time"
)

type Task func(ctx context.Context) error

// Every runs task once immediately, then on every tick until ctx is done.
// Runs never overlap: a tick that fires during a run is dropped by the ticker.
func Every(ctx context.Context, interval time.Duration, name string, task Task) {
	if interval <= 0 {
		return
	}
	run := func() {
		start := time.Now()
		if err := task(ctx); err != nil {
			log.Printf("[%s] error: %v", name, err)
			return
		}
		log.Printf("[%s] ok took=%s", name, time.Since(start).Round(time.Millisecond))
	}

	run()

	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			run()
		}
	}
}
