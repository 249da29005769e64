// Package wizardtest provides a virtual clock and scripted randomness for
// driving wizard controllers deterministically in tests.
package wizardtest

import (
	"sort"
	"sync"
	"time"

	"alfredoptarigan/resumeai/internal/wizard"
)

// ManualScheduler fires callbacks only when Advance moves its clock past
// their deadline. Callbacks with equal deadlines fire in scheduling order.
type ManualScheduler struct {
	mu      sync.Mutex
	now     time.Duration
	seq     uint64
	pending []*manualTimer
}

type manualTimer struct {
	s       *ManualScheduler
	when    time.Duration
	seq     uint64
	fn      func()
	stopped bool
	fired   bool
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

func (s *ManualScheduler) AfterFunc(d time.Duration, f func()) wizard.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d < 0 {
		d = 0
	}
	s.seq++
	t := &manualTimer{s: s, when: s.now + d, seq: s.seq, fn: f}
	s.pending = append(s.pending, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	t.s.remove(t)
	return true
}

// Now is the virtual time elapsed since the scheduler was created.
func (s *ManualScheduler) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Pending counts callbacks that have neither fired nor been stopped.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Advance moves the clock forward by d, firing due callbacks one at a time
// on the calling goroutine. Callbacks scheduled while advancing fire too if
// their deadline falls inside the window.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()

	for {
		s.mu.Lock()
		next := s.nextDue(target)
		if next == nil {
			s.now = target
			s.mu.Unlock()
			return
		}
		s.now = next.when
		next.fired = true
		s.remove(next)
		s.mu.Unlock()

		next.fn()
	}
}

// RunUntilIdle fires callbacks until none are pending or limit callbacks
// have run. It returns the number of callbacks fired.
func (s *ManualScheduler) RunUntilIdle(limit int) int {
	fired := 0
	for fired < limit {
		s.mu.Lock()
		if len(s.pending) == 0 {
			s.mu.Unlock()
			return fired
		}
		next := s.earliest()
		s.now = next.when
		next.fired = true
		s.remove(next)
		s.mu.Unlock()

		next.fn()
		fired++
	}
	return fired
}

func (s *ManualScheduler) nextDue(target time.Duration) *manualTimer {
	if len(s.pending) == 0 {
		return nil
	}
	t := s.earliest()
	if t.when > target {
		return nil
	}
	return t
}

func (s *ManualScheduler) earliest() *manualTimer {
	sort.SliceStable(s.pending, func(i, j int) bool {
		if s.pending[i].when == s.pending[j].when {
			return s.pending[i].seq < s.pending[j].seq
		}
		return s.pending[i].when < s.pending[j].when
	})
	return s.pending[0]
}

func (s *ManualScheduler) remove(t *manualTimer) {
	for i, p := range s.pending {
		if p == t {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			return
		}
	}
}
