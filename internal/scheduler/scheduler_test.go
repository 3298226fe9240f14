package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"jobradar-engine/internal/ingest"
)

func noCleanup(context.Context, int) (int64, error) { return 0, nil }

func TestTriggerSync_RunsAndReturnsSummary(t *testing.T) {
	var calls atomic.Int32
	s := New(zap.NewNop(), func(context.Context) ingest.Summary {
		calls.Add(1)
		return ingest.Summary{SuccessCount: 2}
	}, noCleanup, Options{CleanupChance: 1e-12})

	sum, err := s.TriggerSync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sum.SuccessCount)
	assert.EqualValues(t, 1, calls.Load())
}

func TestTriggerSync_RejectedWhileCycleInFlight(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var startedOnce sync.Once

	s := New(zap.NewNop(), func(context.Context) ingest.Summary {
		startedOnce.Do(func() { close(started) })
		<-release
		return ingest.Summary{}
	}, noCleanup, Options{CleanupChance: 1e-12})

	done := make(chan error, 1)
	go func() {
		_, err := s.TriggerSync(context.Background())
		done <- err
	}()

	<-started
	assert.True(t, s.GetStatus().Syncing)

	_, err := s.TriggerSync(context.Background())
	assert.ErrorIs(t, err, ErrSyncInProgress)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, s.GetStatus().Syncing)

	// once the first cycle settles, triggering works again
	_, err = s.TriggerSync(context.Background())
	assert.NoError(t, err)
}

func TestStart_FiresFirstCycleAfterDelay(t *testing.T) {
	fired := make(chan struct{}, 1)
	s := New(zap.NewNop(), func(context.Context) ingest.Summary {
		select {
		case fired <- struct{}{}:
		default:
		}
		return ingest.Summary{}
	}, noCleanup, Options{FirstDelay: 10 * time.Millisecond, Interval: time.Hour, CleanupChance: 1e-12})

	s.Start()
	defer s.Stop()

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("first cycle never fired")
	}
	assert.True(t, s.GetStatus().TimerActive)
}

func TestStart_IsIdempotent(t *testing.T) {
	s := New(zap.NewNop(), func(context.Context) ingest.Summary {
		return ingest.Summary{}
	}, noCleanup, Options{FirstDelay: time.Hour, Interval: time.Hour})

	s.Start()
	s.Start() // logged no-op, never a second timer
	assert.True(t, s.GetStatus().TimerActive)

	s.Stop()
	assert.False(t, s.GetStatus().TimerActive)

	s.Stop() // stop while stopped is a no-op
	assert.False(t, s.GetStatus().TimerActive)
}

func TestStop_PreventsFutureTicks(t *testing.T) {
	var calls atomic.Int32
	s := New(zap.NewNop(), func(context.Context) ingest.Summary {
		calls.Add(1)
		return ingest.Summary{}
	}, noCleanup, Options{FirstDelay: 50 * time.Millisecond, Interval: time.Hour})

	s.Start()
	s.Stop()

	time.Sleep(150 * time.Millisecond)
	assert.Zero(t, calls.Load(), "stopping before the first delay elapses cancels the cycle")
}

func TestGetStatus_NextTick(t *testing.T) {
	s := New(zap.NewNop(), func(context.Context) ingest.Summary {
		return ingest.Summary{}
	}, noCleanup, Options{FirstDelay: time.Hour, Interval: time.Hour})

	assert.Zero(t, s.GetStatus().NextTickSec)

	s.Start()
	defer s.Stop()

	st := s.GetStatus()
	assert.True(t, st.TimerActive)
	assert.Greater(t, st.NextTickSec, 3500.0)
}

func TestOptionsDefaults(t *testing.T) {
	var o Options
	o.defaults()
	assert.Equal(t, 30*time.Second, o.FirstDelay)
	assert.Equal(t, 60*time.Minute, o.Interval)
	assert.Equal(t, 30, o.CleanupDays)
	assert.InDelta(t, 0.1, o.CleanupChance, 1e-9)
}
