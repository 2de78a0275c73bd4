package timer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/freelanceos/freelanceos/internal/utils"
	"github.com/freelanceos/freelanceos/pkg/time_entry"
	log "github.com/sirupsen/logrus"
)

var ErrNotRunning = errors.New("timer is not running")

type State string

const (
	Idle    State = "idle"
	Running State = "running"
	Paused  State = "paused"
)

// SpanRecorder persists the span of a finished session.
type SpanRecorder interface {
	RecordSpan(ctx context.Context, activityId int, start time.Time, end *time.Time, notes *string) (time_entry.TimeSpan, error)
}

// Snapshot is a read-only view of a timer.
type Snapshot struct {
	State      State
	ActivityId int
	StartedAt  time.Time
	Elapsed    time.Duration
}

type StopResult string

const (
	// StopNoop means no activity was loaded.
	StopNoop StopResult = "noop"
	// StopRecorded means the span was handed to the ledger and the timer is idle.
	StopRecorded StopResult = "recorded"
	// StopEmpty means nothing was recorded because no time had elapsed.
	StopEmpty StopResult = "empty"
	// StopFailedKept means recording failed and the session is still loaded for a retry.
	StopFailedKept StopResult = "failed_kept"
	// StopFailedReset means recording failed and the session was dropped.
	StopFailedReset StopResult = "failed_reset"
)

type StopOutcome struct {
	Result     StopResult
	ActivityId int
	Start      time.Time
	End        time.Time
	Span       *time_entry.TimeSpan
}

// Timer is one stopwatch slot. At most one activity is loaded at a time.
// All methods are safe for concurrent use.
type Timer struct {
	mu       sync.Mutex
	clock    utils.Clock
	recorder SpanRecorder
	policies Policies

	state      State
	activityId int
	startedAt  time.Time
	resumedAt  time.Time
	// accumulated is the running time before the current running segment.
	accumulated time.Duration
	elapsed     time.Duration
}

func New(clock utils.Clock, recorder SpanRecorder, policies Policies) *Timer {
	return &Timer{clock: clock, recorder: recorder, policies: policies, state: Idle}
}

func (t *Timer) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshot()
}

// Start loads activityId and starts counting from zero. Starting the running
// activity again changes nothing and starting the paused one resumes it.
func (t *Timer) Start(ctx context.Context, activityId int) (Snapshot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != Idle && t.activityId == activityId {
		if t.state == Paused {
			t.resume()
		}
		return t.snapshot(), nil
	}

	if t.state != Idle {
		switch t.policies.Supersede {
		case SupersedeRecord:
			outcome, err := t.stop(ctx)
			if err != nil {
				return t.snapshot(), fmt.Errorf("could not record activity %d before starting %d: %w", outcome.ActivityId, activityId, err)
			}
		default:
			log.Warnf("discarding unsaved session of activity %d (elapsed %s)", t.activityId, t.elapsed)
		}
	}

	now := t.clock.Now()
	t.state = Running
	t.activityId = activityId
	t.startedAt = now
	t.resumedAt = now
	t.accumulated = 0
	t.elapsed = 0
	return t.snapshot(), nil
}

func (t *Timer) Pause() (Snapshot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != Running {
		return t.snapshot(), ErrNotRunning
	}
	t.refresh()
	t.accumulated += t.clock.Now().Sub(t.resumedAt)
	t.state = Paused
	return t.snapshot(), nil
}

// Resume continues a paused session. Without a loaded activity it does nothing.
func (t *Timer) Resume() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == Paused {
		t.resume()
	}
	return t.snapshot()
}

// Tick refreshes the elapsed time of a running session.
func (t *Timer) Tick() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == Running {
		t.refresh()
	}
	return t.snapshot()
}

// Stop hands the finished session to the recorder. The state afterwards
// depends on the outcome and the stop policy.
func (t *Timer) Stop(ctx context.Context) (StopOutcome, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stop(ctx)
}

// Reset restarts the clock of the loaded session without unloading it. An
// idle timer stays untouched.
func (t *Timer) Reset() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == Idle {
		return t.snapshot()
	}
	now := t.clock.Now()
	t.elapsed = 0
	t.accumulated = 0
	t.startedAt = now
	t.resumedAt = now
	return t.snapshot()
}

func (t *Timer) resume() {
	t.resumedAt = t.clock.Now()
	t.state = Running
}

func (t *Timer) refresh() {
	now := t.clock.Now()
	switch t.policies.Elapsed {
	case ElapsedWallClock:
		t.elapsed = now.Sub(t.startedAt)
	default:
		t.elapsed = t.accumulated + now.Sub(t.resumedAt)
	}
}

func (t *Timer) stop(ctx context.Context) (StopOutcome, error) {
	if t.state == Idle {
		return StopOutcome{Result: StopNoop}, nil
	}
	if t.state == Running {
		t.refresh()
	}

	end := t.clock.Now()
	start := end.Add(-t.elapsed)
	if t.policies.Elapsed == ElapsedWallClock {
		start = t.startedAt
	}
	outcome := StopOutcome{ActivityId: t.activityId, Start: start, End: end}

	if !end.After(start) {
		t.clear()
		outcome.Result = StopEmpty
		return outcome, nil
	}

	span, err := t.recorder.RecordSpan(ctx, t.activityId, start, &end, nil)
	if err != nil {
		if t.policies.Stop == StopResetAlways {
			log.Errorf("recording session of activity %d failed, session dropped: %v", t.activityId, err)
			t.clear()
			outcome.Result = StopFailedReset
		} else {
			log.Warnf("recording session of activity %d failed, session kept: %v", t.activityId, err)
			outcome.Result = StopFailedKept
		}
		return outcome, err
	}

	t.clear()
	outcome.Result = StopRecorded
	outcome.Span = &span
	return outcome, nil
}

func (t *Timer) clear() {
	t.state = Idle
	t.activityId = 0
	t.startedAt = time.Time{}
	t.resumedAt = time.Time{}
	t.accumulated = 0
	t.elapsed = 0
}

func (t *Timer) snapshot() Snapshot {
	return Snapshot{
		State:      t.state,
		ActivityId: t.activityId,
		StartedAt:  t.startedAt,
		Elapsed:    t.elapsed,
	}
}
