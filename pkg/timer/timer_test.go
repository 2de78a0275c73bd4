package timer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/freelanceos/freelanceos/internal/utils"
	"github.com/freelanceos/freelanceos/pkg/time_entry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedSpan struct {
	activityId int
	start      time.Time
	end        time.Time
}

type stubRecorder struct {
	recorded []recordedSpan
	err      error
}

func (s *stubRecorder) RecordSpan(ctx context.Context, activityId int, start time.Time, end *time.Time, notes *string) (time_entry.TimeSpan, error) {
	if s.err != nil {
		return time_entry.TimeSpan{}, s.err
	}
	s.recorded = append(s.recorded, recordedSpan{activityId: activityId, start: start, end: *end})
	return time_entry.NewSpan(activityId, start, end, notes)
}

var nineAm = time.Date(2025, time.June, 2, 9, 0, 0, 0, time.UTC)

func setupTimer(policies Policies) (*Timer, *utils.MockClock, *stubRecorder) {
	clock := &utils.MockClock{FixedNow: nineAm}
	recorder := &stubRecorder{}
	return New(clock, recorder, policies), clock, recorder
}

func TestTimer_Start(t *testing.T) {
	ctx := context.Background()

	t.Run("should keep exactly one session when another activity starts", func(t *testing.T) {
		// given
		timer, clock, recorder := setupTimer(DefaultPolicies())
		_, _ = timer.Start(ctx, 1)
		clock.Advance(20 * time.Minute)
		timer.Tick()

		// when
		snapshot, err := timer.Start(ctx, 2)

		// then
		require.NoError(t, err)
		assert.Equal(t, Running, snapshot.State)
		assert.Equal(t, 2, snapshot.ActivityId)
		assert.Zero(t, snapshot.Elapsed)
		assert.Empty(t, recorder.recorded)

		clock.Advance(5 * time.Minute)
		assert.Equal(t, 5*time.Minute, timer.Tick().Elapsed)
	})

	t.Run("should record superseded session with record policy", func(t *testing.T) {
		policies := DefaultPolicies()
		policies.Supersede = SupersedeRecord
		timer, clock, recorder := setupTimer(policies)
		_, _ = timer.Start(ctx, 1)
		clock.Advance(20 * time.Minute)

		_, err := timer.Start(ctx, 2)

		require.NoError(t, err)
		require.Len(t, recorder.recorded, 1)
		assert.Equal(t, 1, recorder.recorded[0].activityId)
		assert.Equal(t, 20*time.Minute, recorder.recorded[0].end.Sub(recorder.recorded[0].start))
		assert.Equal(t, 2, timer.Snapshot().ActivityId)
	})

	t.Run("should refuse to start when recording the superseded session fails", func(t *testing.T) {
		policies := DefaultPolicies()
		policies.Supersede = SupersedeRecord
		timer, clock, recorder := setupTimer(policies)
		_, _ = timer.Start(ctx, 1)
		clock.Advance(20 * time.Minute)
		recorder.err = errors.New("store unavailable")

		_, err := timer.Start(ctx, 2)

		assert.Error(t, err)
		assert.Equal(t, 1, timer.Snapshot().ActivityId)
	})

	t.Run("should ignore start of the running activity", func(t *testing.T) {
		timer, clock, _ := setupTimer(DefaultPolicies())
		_, _ = timer.Start(ctx, 1)
		clock.Advance(10 * time.Minute)

		snapshot, err := timer.Start(ctx, 1)

		require.NoError(t, err)
		assert.Equal(t, nineAm, snapshot.StartedAt)
		assert.Equal(t, 10*time.Minute, timer.Tick().Elapsed)
	})

	t.Run("should resume the paused activity when started again", func(t *testing.T) {
		timer, clock, _ := setupTimer(DefaultPolicies())
		_, _ = timer.Start(ctx, 1)
		clock.Advance(10 * time.Minute)
		_, _ = timer.Pause()
		clock.Advance(time.Hour)

		snapshot, _ := timer.Start(ctx, 1)
		clock.Advance(5 * time.Minute)

		assert.Equal(t, Running, snapshot.State)
		assert.Equal(t, 15*time.Minute, timer.Tick().Elapsed)
	})
}

func TestTimer_PauseResume(t *testing.T) {
	ctx := context.Background()

	t.Run("should freeze elapsed while paused and count only running time", func(t *testing.T) {
		// given
		timer, clock, recorder := setupTimer(DefaultPolicies())
		_, _ = timer.Start(ctx, 1)
		clock.Advance(30 * time.Minute)

		// when
		paused, err := timer.Pause()
		require.NoError(t, err)
		clock.Advance(2 * time.Hour)
		assert.Equal(t, 30*time.Minute, timer.Tick().Elapsed)
		timer.Resume()
		clock.Advance(15 * time.Minute)

		// then
		assert.Equal(t, Paused, paused.State)
		assert.Equal(t, 45*time.Minute, timer.Tick().Elapsed)
		outcome, err := timer.Stop(ctx)
		require.NoError(t, err)
		assert.Equal(t, StopRecorded, outcome.Result)
		assert.Equal(t, 45, *outcome.Span.DurationMinutes)
		assert.Equal(t, clock.Now().Add(-45*time.Minute), recorder.recorded[0].start)
	})

	t.Run("should jump to wall clock after resume in wall clock mode", func(t *testing.T) {
		policies := DefaultPolicies()
		policies.Elapsed = ElapsedWallClock
		timer, clock, recorder := setupTimer(policies)
		_, _ = timer.Start(ctx, 1)
		clock.Advance(30 * time.Minute)
		_, _ = timer.Pause()
		clock.Advance(time.Hour)
		assert.Equal(t, 30*time.Minute, timer.Tick().Elapsed)

		timer.Resume()
		clock.Advance(15 * time.Minute)

		assert.Equal(t, 105*time.Minute, timer.Tick().Elapsed)
		_, err := timer.Stop(ctx)
		require.NoError(t, err)
		assert.Equal(t, nineAm, recorder.recorded[0].start)
	})

	t.Run("should fail to pause an idle timer", func(t *testing.T) {
		timer, _, _ := setupTimer(DefaultPolicies())

		_, err := timer.Pause()

		assert.ErrorIs(t, err, ErrNotRunning)
	})

	t.Run("should ignore resume without a loaded activity", func(t *testing.T) {
		timer, _, _ := setupTimer(DefaultPolicies())

		snapshot := timer.Resume()

		assert.Equal(t, Idle, snapshot.State)
	})
}

func TestTimer_Stop(t *testing.T) {
	ctx := context.Background()

	t.Run("should do nothing without a loaded activity", func(t *testing.T) {
		timer, _, recorder := setupTimer(DefaultPolicies())

		outcome, err := timer.Stop(ctx)

		require.NoError(t, err)
		assert.Equal(t, StopNoop, outcome.Result)
		assert.Empty(t, recorder.recorded)
	})

	t.Run("should return to idle after recording", func(t *testing.T) {
		timer, clock, _ := setupTimer(DefaultPolicies())
		_, _ = timer.Start(ctx, 3)
		clock.Advance(90 * time.Minute)

		outcome, err := timer.Stop(ctx)

		require.NoError(t, err)
		assert.Equal(t, 3, outcome.ActivityId)
		assert.Equal(t, Idle, timer.Snapshot().State)
		second, _ := timer.Stop(ctx)
		assert.Equal(t, StopNoop, second.Result)
	})

	t.Run("should keep session loaded when recording fails", func(t *testing.T) {
		// given
		timer, clock, recorder := setupTimer(DefaultPolicies())
		_, _ = timer.Start(ctx, 3)
		clock.Advance(40 * time.Minute)
		recorder.err = errors.New("store unavailable")

		// when
		outcome, err := timer.Stop(ctx)

		// then
		assert.Error(t, err)
		assert.Equal(t, StopFailedKept, outcome.Result)
		assert.Equal(t, Running, timer.Snapshot().State)

		// and the retry records the whole session
		recorder.err = nil
		clock.Advance(time.Minute)
		retried, err := timer.Stop(ctx)
		require.NoError(t, err)
		assert.Equal(t, 41, *retried.Span.DurationMinutes)
	})

	t.Run("should drop session on failure with reset always policy", func(t *testing.T) {
		policies := DefaultPolicies()
		policies.Stop = StopResetAlways
		timer, clock, recorder := setupTimer(policies)
		_, _ = timer.Start(ctx, 3)
		clock.Advance(40 * time.Minute)
		recorder.err = errors.New("store unavailable")

		outcome, err := timer.Stop(ctx)

		assert.Error(t, err)
		assert.Equal(t, StopFailedReset, outcome.Result)
		assert.Equal(t, Idle, timer.Snapshot().State)
	})

	t.Run("should not record a session without elapsed time", func(t *testing.T) {
		timer, _, recorder := setupTimer(DefaultPolicies())
		_, _ = timer.Start(ctx, 3)

		outcome, err := timer.Stop(ctx)

		require.NoError(t, err)
		assert.Equal(t, StopEmpty, outcome.Result)
		assert.Empty(t, recorder.recorded)
		assert.Equal(t, Idle, timer.Snapshot().State)
	})
}

func TestTimer_Reset(t *testing.T) {
	ctx := context.Background()

	t.Run("should restart the clock of the loaded session", func(t *testing.T) {
		timer, clock, _ := setupTimer(DefaultPolicies())
		_, _ = timer.Start(ctx, 1)
		clock.Advance(25 * time.Minute)
		timer.Tick()

		snapshot := timer.Reset()

		assert.Equal(t, Running, snapshot.State)
		assert.Equal(t, 1, snapshot.ActivityId)
		assert.Zero(t, snapshot.Elapsed)
		assert.Equal(t, clock.Now(), snapshot.StartedAt)
		clock.Advance(time.Minute)
		assert.Equal(t, time.Minute, timer.Tick().Elapsed)
	})

	t.Run("should leave an idle timer without a start instant", func(t *testing.T) {
		timer, clock, _ := setupTimer(DefaultPolicies())
		clock.Advance(time.Hour)

		snapshot := timer.Reset()

		assert.Equal(t, Idle, snapshot.State)
		assert.Zero(t, snapshot.ActivityId)
		assert.True(t, snapshot.StartedAt.IsZero())
		assert.Zero(t, snapshot.Elapsed)
	})
}
