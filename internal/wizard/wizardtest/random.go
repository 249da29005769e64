package wizardtest

import "sync"

// FixedRandom always returns the same value.
type FixedRandom float64

func (f FixedRandom) Float64() float64 { return float64(f) }

// SequenceRandom replays values in order and repeats the last one once the
// sequence is exhausted.
type SequenceRandom struct {
	mu     sync.Mutex
	values []float64
	next   int
}

func NewSequenceRandom(values ...float64) *SequenceRandom {
	return &SequenceRandom{values: values}
}

func (r *SequenceRandom) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.values) == 0 {
		return 0
	}
	if r.next >= len(r.values) {
		return r.values[len(r.values)-1]
	}
	v := r.values[r.next]
	r.next++
	return v
}
