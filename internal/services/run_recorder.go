package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/resumeai/internal/models"
	"alfredoptarigan/resumeai/internal/repositories"
	"alfredoptarigan/resumeai/internal/wizard"
)

const recordTimeout = 5 * time.Second

// RunRecorder logs the processing funnel of one session to the demo run
// repository. A run is opened when processing starts and closed as
// completed, or as abandoned when the user resets, navigates back or the
// session goes away first.
type RunRecorder struct {
	repo      repositories.DemoRunRepository
	sessionID uuid.UUID
	log       *zap.SugaredLogger

	mu     sync.Mutex
	active uuid.UUID
	kind   string
}

func NewRunRecorder(repo repositories.DemoRunRepository, sessionID uuid.UUID) *RunRecorder {
	return &RunRecorder{
		repo:      repo,
		sessionID: sessionID,
		log:       zap.S().Named("runs").With("session", sessionID),
	}
}

func (r *RunRecorder) OnEvent(e wizard.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch e.Kind {
	case wizard.EventDocumentAccepted:
		if e.Document != nil {
			r.kind = string(e.Document.Kind)
		}
	case wizard.EventProcessingStarted:
		r.abandonLocked()
		r.open(e.Keywords)
	case wizard.EventCompleted:
		r.completeLocked(e.Keywords)
	case wizard.EventReset:
		r.abandonLocked()
		r.kind = ""
	case wizard.EventStageChanged:
		if e.To < e.From {
			r.abandonLocked()
		}
	}
}

// Close abandons a run that is still open.
func (r *RunRecorder) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.abandonLocked()
}

func (r *RunRecorder) open(keywords int) {
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	run := &models.DemoRun{
		ID:           uuid.New(),
		SessionID:    r.sessionID,
		Status:       models.RunStatusProcessing,
		DocumentKind: r.kind,
		KeywordCount: keywords,
		StartedAt:    time.Now(),
	}
	if err := r.repo.Create(ctx, run); err != nil {
		r.log.Warnw("failed to record demo run", "error", err)
		return
	}
	r.active = run.ID
}

func (r *RunRecorder) completeLocked(keywords int) {
	if r.active == uuid.Nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	if err := r.repo.MarkCompleted(ctx, r.active, keywords); err != nil {
		r.log.Warnw("failed to complete demo run", "run", r.active, "error", err)
	}
	r.active = uuid.Nil
}

func (r *RunRecorder) abandonLocked() {
	if r.active == uuid.Nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	if err := r.repo.MarkAbandoned(ctx, r.active); err != nil {
		r.log.Warnw("failed to abandon demo run", "run", r.active, "error", err)
	}
	r.active = uuid.Nil
}
