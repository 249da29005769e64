package wizard

import (
	"math/rand"
	"sync"
	"time"
)

// Timer is a pending one-shot callback.
type Timer interface {
	// Stop prevents the callback from running. It reports false when the
	// callback already ran or was stopped.
	Stop() bool
}

// Scheduler runs callbacks after a delay. Callbacks may run on any
// goroutine.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// RandomSource yields values in [0, 1).
type RandomSource interface {
	Float64() float64
}

// Timing holds every delay the controller uses.
type Timing struct {
	AcceptDelay     time.Duration
	TickInterval    time.Duration
	MaxIncrement    float64
	TransformDelay  time.Duration
	CompleteDelay   time.Duration
	SuccessDuration time.Duration
}

// DefaultTiming matches the pacing of the hosted demo.
func DefaultTiming() Timing {
	return Timing{
		AcceptDelay:     600 * time.Millisecond,
		TickInterval:    200 * time.Millisecond,
		MaxIncrement:    8,
		TransformDelay:  800 * time.Millisecond,
		CompleteDelay:   2000 * time.Millisecond,
		SuccessDuration: 3000 * time.Millisecond,
	}
}

func (t Timing) withDefaults() Timing {
	d := DefaultTiming()
	if t.AcceptDelay <= 0 {
		t.AcceptDelay = d.AcceptDelay
	}
	if t.TickInterval <= 0 {
		t.TickInterval = d.TickInterval
	}
	if t.MaxIncrement <= 0 {
		t.MaxIncrement = d.MaxIncrement
	}
	if t.TransformDelay <= 0 {
		t.TransformDelay = d.TransformDelay
	}
	if t.CompleteDelay <= 0 {
		t.CompleteDelay = d.CompleteDelay
	}
	if t.SuccessDuration <= 0 {
		t.SuccessDuration = d.SuccessDuration
	}
	return t
}

type realScheduler struct{}

// RealScheduler schedules on wall-clock timers.
func RealScheduler() Scheduler {
	return realScheduler{}
}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// lockedRand makes a *rand.Rand safe to share between controllers.
type lockedRand struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandomSource returns a goroutine-safe source seeded with seed.
func NewRandomSource(seed int64) RandomSource {
	return &lockedRand{rnd: rand.New(rand.NewSource(seed))}
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rnd.Float64()
}
