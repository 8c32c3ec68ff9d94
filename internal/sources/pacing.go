package sources

import (
	"context"
	"math/rand"
	"time"
)

// pacing enforces a minimum delay between a source's outbound requests,
// plus bounded random jitter. Each adapter instance owns its own pacing
// state, so one source backing off never blocks another.
type pacing struct {
	interval time.Duration
	jitter   time.Duration
}

func newPacing(interval, jitter time.Duration) *pacing {
	return &pacing{interval: interval, jitter: jitter}
}

// wait sleeps for the pacing interval plus jitter, or until ctx is done.
func (p *pacing) wait(ctx context.Context) {
	delay := p.interval
	if p.jitter > 0 {
		delay += time.Duration(rand.Int63n(int64(p.jitter)))
	}
	if delay <= 0 {
		return
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
