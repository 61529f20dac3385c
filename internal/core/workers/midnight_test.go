package workers

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMidnightWorker_UntilNextMidnight(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	tests := []struct {
		name string
		loc  *time.Location
		now  time.Time
		want time.Duration
	}{
		{
			name: "Noon UTC",
			loc:  time.UTC,
			now:  time.Date(2025, 1, 9, 12, 0, 0, 0, time.UTC),
			want: 12 * time.Hour,
		},
		{
			name: "One second to go",
			loc:  time.UTC,
			now:  time.Date(2025, 1, 9, 23, 59, 59, 0, time.UTC),
			want: time.Second,
		},
		{
			name: "Exactly midnight schedules the following one",
			loc:  time.UTC,
			now:  time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
			want: 24 * time.Hour,
		},
		{
			name: "Local zone, not UTC",
			loc:  ny,
			now:  time.Date(2025, 1, 9, 23, 0, 0, 0, time.UTC), // 18:00 in New York
			want: 6 * time.Hour,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			worker := NewMidnightWorker(tt.loc).WithClock(func() time.Time { return tt.now })
			assert.Equal(t, tt.want, worker.UntilNextMidnight())
		})
	}
}

func TestMidnightWorker_NilLocationDefaultsToUTC(t *testing.T) {
	now := time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)
	worker := NewMidnightWorker(nil).WithClock(func() time.Time { return now })

	assert.Equal(t, 6*time.Hour, worker.UntilNextMidnight())
}

func TestMidnightWorker_FiresCallbacks(t *testing.T) {
	var fired atomic.Int32

	// Clock pinned just before midnight so the first fire happens within the
	// test's patience.
	now := time.Date(2025, 1, 9, 23, 59, 59, 950_000_000, time.UTC)
	worker := NewMidnightWorker(time.UTC, func(ctx context.Context) {
		fired.Add(1)
	}).WithClock(func() time.Time { return now })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	worker.Start(ctx)

	assert.Eventually(t, func() bool {
		return fired.Load() >= 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestMidnightWorker_CancelledWorkerNeverFires(t *testing.T) {
	var fired atomic.Int32

	// Midnight is hours away; cancellation must win.
	now := time.Date(2025, 1, 9, 12, 0, 0, 0, time.UTC)
	worker := NewMidnightWorker(time.UTC, func(ctx context.Context) {
		fired.Add(1)
	}).WithClock(func() time.Time { return now })

	ctx, cancel := context.WithCancel(context.Background())
	worker.Start(ctx)
	cancel()

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}
