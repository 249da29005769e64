package models

import (
	"alfredoptarigan/resumeai/internal/wizard"
)

type JobDescriptionRequest struct {
	Text string `json:"text" validate:"max=20000"`
}

type SelectStageRequest struct {
	Stage string `json:"stage" validate:"required,oneof=upload job_description processing transforming complete"`
}

type KeywordsRequest struct {
	Text string `json:"text" validate:"max=20000"`
}

type KeywordsResponse struct {
	Keywords []string         `json:"keywords"`
	Segments []wizard.Segment `json:"segments"`
}

type SessionResponse struct {
	ID    string      `json:"id"`
	State WizardState `json:"state"`
}

// OperationResponse answers every wizard operation. Applied is false when
// the operation's precondition was not met and nothing changed.
type OperationResponse struct {
	Applied bool        `json:"applied"`
	State   WizardState `json:"state"`
}

type WizardState struct {
	Stage        string                   `json:"stage"`
	HighestStage string                   `json:"highest_stage"`
	Phase        string                   `json:"phase"`
	Document     *wizard.Document         `json:"document,omitempty"`
	JobText      string                   `json:"job_text"`
	Keywords     []string                 `json:"keywords"`
	Progress     float64                  `json:"progress"`
	Milestones   []wizard.MilestoneStatus `json:"milestones"`
	Comparison   *wizard.Comparison       `json:"comparison,omitempty"`
	ShowSuccess  bool                     `json:"show_success"`
}

func NewWizardState(s wizard.Snapshot) WizardState {
	keywords := s.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	return WizardState{
		Stage:        s.Stage.String(),
		HighestStage: s.HighestStage.String(),
		Phase:        s.Phase.String(),
		Document:     s.Document,
		JobText:      s.JobText,
		Keywords:     keywords,
		Progress:     s.Progress,
		Milestones:   s.Milestones,
		Comparison:   s.Comparison,
		ShowSuccess:  s.ShowSuccess,
	}
}

type StatsResponse struct {
	Processing int64 `json:"processing"`
	Completed  int64 `json:"completed"`
	Abandoned  int64 `json:"abandoned"`
}
