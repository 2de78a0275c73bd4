package timer

import (
	"context"
	"sync"
	"time"

	"github.com/freelanceos/freelanceos/internal/utils"
	log "github.com/sirupsen/logrus"
)

// Sessions holds one timer per user.
type Sessions struct {
	mu       sync.Mutex
	timers   map[int]*Timer
	clock    utils.Clock
	recorder SpanRecorder
	policies Policies
}

func NewSessions(clock utils.Clock, recorder SpanRecorder, policies Policies) *Sessions {
	return &Sessions{
		timers:   make(map[int]*Timer),
		clock:    clock,
		recorder: recorder,
		policies: policies,
	}
}

// For returns the timer of userId, creating an idle one on first use.
func (s *Sessions) For(userId int) *Timer {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.timers[userId]
	if !ok {
		t = New(s.clock, s.recorder, s.policies)
		s.timers[userId] = t
	}
	return t
}

func (s *Sessions) TickAll() {
	s.mu.Lock()
	timers := make([]*Timer, 0, len(s.timers))
	for _, t := range s.timers {
		timers = append(timers, t)
	}
	s.mu.Unlock()

	for _, t := range timers {
		t.Tick()
	}
}

// Ticker refreshes every running timer on a fixed interval.
type Ticker struct {
	sessions *Sessions
	interval time.Duration
}

func NewTicker(sessions *Sessions, interval time.Duration) *Ticker {
	if interval <= 0 {
		interval = time.Second
	}
	return &Ticker{sessions: sessions, interval: interval}
}

// Run blocks until ctx is cancelled.
func (t *Ticker) Run(ctx context.Context) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	log.Debugf("timer ticker started with interval %s", t.interval)
	for {
		select {
		case <-ctx.Done():
			log.Debug("timer ticker stopped")
			return
		case <-ticker.C:
			t.sessions.TickAll()
		}
	}
}
