package workers

import (
	"context"
	"log"
	"time"
)

// MidnightWorker fires once at each local midnight and reschedules itself for
// the following one. Registered callbacks re-evaluate streaks and invalidate
// calendar caches so the day rolls over without user input.
type MidnightWorker struct {
	loc       *time.Location
	clock     func() time.Time
	callbacks []func(ctx context.Context)
}

func NewMidnightWorker(loc *time.Location, callbacks ...func(ctx context.Context)) *MidnightWorker {
	if loc == nil {
		loc = time.UTC
	}
	return &MidnightWorker{
		loc:       loc,
		clock:     time.Now,
		callbacks: callbacks,
	}
}

// WithClock replaces the wall clock, for tests.
func (w *MidnightWorker) WithClock(clock func() time.Time) *MidnightWorker {
	w.clock = clock
	return w
}

// Start runs the worker in the background until the context is cancelled. A
// cancelled worker never fires again, so no callback can touch torn-down
// state.
func (w *MidnightWorker) Start(ctx context.Context) {
	go func() {
		log.Println("Midnight worker started in background...")

		timer := time.NewTimer(w.UntilNextMidnight())
		defer timer.Stop()

		for {
			select {
			case <-timer.C:
				log.Println("Midnight rollover: re-evaluating day-dependent state")
				for _, cb := range w.callbacks {
					cb(ctx)
				}
				timer.Reset(w.UntilNextMidnight())
			case <-ctx.Done():
				log.Println("Midnight worker shutting down...")
				return
			}
		}
	}()
}

// UntilNextMidnight returns the duration until the next local midnight, never
// zero or negative so the timer always makes progress.
func (w *MidnightWorker) UntilNextMidnight() time.Duration {
	now := w.clock().In(w.loc)
	next := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, w.loc)

	d := next.Sub(now)
	if d <= 0 {
		d = time.Second
	}
	return d
}
