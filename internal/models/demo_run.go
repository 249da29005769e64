package models

import (
	"time"

	"github.com/google/uuid"
)

type DemoRunStatus string

const (
	RunStatusProcessing DemoRunStatus = "processing"
	RunStatusCompleted  DemoRunStatus = "completed"
	RunStatusAbandoned  DemoRunStatus = "abandoned"
)

// DemoRun is one pass through the processing stage of a demo session. Only
// funnel data is kept; the uploaded resume itself is never stored.
type DemoRun struct {
	ID           uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID    uuid.UUID     `gorm:"type:uuid;index;not null" json:"session_id"`
	Status       DemoRunStatus `gorm:"type:text;not null;default:'processing'" json:"status"`
	DocumentKind string        `gorm:"type:text" json:"document_kind"`
	KeywordCount int           `json:"keyword_count"`
	StartedAt    time.Time     `gorm:"not null" json:"started_at"`
	FinishedAt   *time.Time    `json:"finished_at,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

func (DemoRun) TableName() string {
	return "demo_runs"
}
