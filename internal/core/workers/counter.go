package workers

import (
	"context"
	"time"
)

// Counter linearly interpolates a displayed value between two points, emitting
// intermediate values on a fixed tick. It backs the animated number roll-ups
// in the client without any persistence or correctness significance.
type Counter struct {
	from     float64
	to       float64
	duration time.Duration
	steps    int
}

func NewCounter(from, to float64, duration time.Duration, steps int) *Counter {
	if steps < 1 {
		steps = 1
	}
	return &Counter{
		from:     from,
		to:       to,
		duration: duration,
		steps:    steps,
	}
}

// Run emits interpolated values until the final value lands exactly on the
// target, then returns nil. On cancellation it stops immediately and never
// emits again; the last emitted value simply stands.
func (c *Counter) Run(ctx context.Context, emit func(value float64)) error {
	interval := c.duration / time.Duration(c.steps)
	if interval <= 0 {
		interval = time.Millisecond
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for step := 1; step <= c.steps; step++ {
		select {
		case <-ticker.C:
			progress := float64(step) / float64(c.steps)
			emit(c.from + (c.to-c.from)*progress)
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return nil
}
