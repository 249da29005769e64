package wizard

import (
	"github.com/cockroachdb/errors"
)

// Stage is one step of the demo flow.
type Stage int

const (
	StageUpload Stage = iota
	StageJobDescription
	StageProcessing
	StageTransforming
	StageComplete
)

var stageNames = [...]string{
	StageUpload:         "upload",
	StageJobDescription: "job_description",
	StageProcessing:     "processing",
	StageTransforming:   "transforming",
	StageComplete:       "complete",
}

// ErrUnknownStage is returned when a stage name cannot be parsed.
var ErrUnknownStage = errors.New("unknown wizard stage")

// Stages lists every stage in flow order.
func Stages() []Stage {
	return []Stage{StageUpload, StageJobDescription, StageProcessing, StageTransforming, StageComplete}
}

func (s Stage) Valid() bool {
	return s >= StageUpload && s <= StageComplete
}

func (s Stage) String() string {
	if !s.Valid() {
		return "unknown"
	}
	return stageNames[s]
}

func (s Stage) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, errors.Wrapf(ErrUnknownStage, "value %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Stage) UnmarshalText(b []byte) error {
	parsed, err := ParseStage(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseStage maps a wire name back to its Stage.
func ParseStage(name string) (Stage, error) {
	for i, n := range stageNames {
		if n == name {
			return Stage(i), nil
		}
	}
	return StageUpload, errors.Wrapf(ErrUnknownStage, "%q", name)
}

// Phase is the state of the simulated progress scheduler.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRunning
	PhaseSettling
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRunning:
		return "running"
	case PhaseSettling:
		return "settling"
	case PhaseDone:
		return "done"
	default:
		return "unknown"
	}
}
