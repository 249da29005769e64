package wizardtest

import (
	"sync"

	"alfredoptarigan/resumeai/internal/wizard"
)

// EventRecorder collects controller events.
type EventRecorder struct {
	mu     sync.Mutex
	events []wizard.Event
}

func (r *EventRecorder) OnEvent(e wizard.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *EventRecorder) Events() []wizard.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]wizard.Event(nil), r.events...)
}

// StageTransitions returns the target stage of every stage change.
func (r *EventRecorder) StageTransitions() []wizard.Stage {
	var out []wizard.Stage
	for _, e := range r.Events() {
		if e.Kind == wizard.EventStageChanged {
			out = append(out, e.To)
		}
	}
	return out
}

// Progress returns every reported progress value in order.
func (r *EventRecorder) Progress() []float64 {
	var out []float64
	for _, e := range r.Events() {
		if e.Kind == wizard.EventProgress {
			out = append(out, e.Progress)
		}
	}
	return out
}
