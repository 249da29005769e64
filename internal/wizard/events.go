package wizard

// EventKind names what happened inside a controller.
type EventKind string

const (
	EventDocumentAccepted  EventKind = "document_accepted"
	EventJobTextUpdated    EventKind = "job_text_updated"
	EventStageChanged      EventKind = "stage_changed"
	EventProcessingStarted EventKind = "processing_started"
	EventProgress          EventKind = "progress"
	EventCompleted         EventKind = "completed"
	EventSuccessCleared    EventKind = "success_cleared"
	EventReset             EventKind = "reset"
)

// Event is delivered to observers after the controller lock is released.
// Fields that do not apply to a kind are zero.
type Event struct {
	Kind     EventKind
	From     Stage
	To       Stage
	Progress float64
	Document *Document
	Keywords int
	// Phase is the scheduler phase right after the event, or for a reset
	// the phase that was interrupted.
	Phase Phase
}

// Observer receives controller events in emission order. Observers must not
// call back into the controller that notifies them.
type Observer interface {
	OnEvent(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) OnEvent(e Event) { f(e) }
