package source

import (
	"context"
	"time"

	"github.com/rpggio/geodash/internal/domain/record"
)

// DefaultLatency is the simulated fetch delay of the demo dataset.
const DefaultLatency = 200 * time.Millisecond

type latency struct {
	next  record.Provider
	delay time.Duration
}

// WithLatency delays every fetch from p by d. The wait ends early if ctx is
// done.
func WithLatency(p record.Provider, d time.Duration) record.Provider {
	if d <= 0 {
		return p
	}
	return &latency{next: p, delay: d}
}

func (l *latency) Fetch(ctx context.Context) ([]record.Record, error) {
	timer := time.NewTimer(l.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
	}
	return l.next.Fetch(ctx)
}
