package services

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/resumeai/internal/models"
	"alfredoptarigan/resumeai/internal/wizard"
)

// ==========================
// Mock Repository
// ==========================

type MockDemoRunRepository struct {
	mock.Mock
}

func (m *MockDemoRunRepository) Create(ctx context.Context, run *models.DemoRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockDemoRunRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.DemoRun, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DemoRun), args.Error(1)
}

func (m *MockDemoRunRepository) MarkCompleted(ctx context.Context, id uuid.UUID, keywordCount int) error {
	args := m.Called(ctx, id, keywordCount)
	return args.Error(0)
}

func (m *MockDemoRunRepository) MarkAbandoned(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDemoRunRepository) CountByStatus(ctx context.Context) (map[models.DemoRunStatus]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[models.DemoRunStatus]int64), args.Error(1)
}

// expectCreate records the id of the created run into *id.
func expectCreate(repo *MockDemoRunRepository, sessionID uuid.UUID, id *uuid.UUID) {
	repo.On("Create", mock.Anything, mock.MatchedBy(func(run *models.DemoRun) bool {
		return run.SessionID == sessionID && run.Status == models.RunStatusProcessing
	})).Run(func(args mock.Arguments) {
		*id = args.Get(1).(*models.DemoRun).ID
	}).Return(nil).Once()
}

// ==========================
// Tests
// ==========================

func TestRunRecorderCompletedRun(t *testing.T) {
	repo := new(MockDemoRunRepository)
	sessionID := uuid.New()
	var runID uuid.UUID
	expectCreate(repo, sessionID, &runID)

	rec := NewRunRecorder(repo, sessionID)
	rec.OnEvent(wizard.Event{Kind: wizard.EventDocumentAccepted, Document: &wizard.Document{Kind: wizard.KindDOCX}})
	rec.OnEvent(wizard.Event{Kind: wizard.EventProcessingStarted, Keywords: 3})

	repo.On("MarkCompleted", mock.Anything, mock.Anything, 3).Return(nil).Once()
	rec.OnEvent(wizard.Event{Kind: wizard.EventCompleted, Keywords: 3})

	// nothing left to abandon
	rec.Close()

	repo.AssertExpectations(t)
	require.NotEqual(t, uuid.Nil, runID)
	repo.AssertCalled(t, "MarkCompleted", mock.Anything, runID, 3)
	created := repo.Calls[0].Arguments.Get(1).(*models.DemoRun)
	assert.Equal(t, "docx", created.DocumentKind)
}

func TestRunRecorderAbandonsOnReset(t *testing.T) {
	repo := new(MockDemoRunRepository)
	sessionID := uuid.New()
	var runID uuid.UUID
	expectCreate(repo, sessionID, &runID)
	repo.On("MarkAbandoned", mock.Anything, mock.Anything).Return(nil).Once()

	rec := NewRunRecorder(repo, sessionID)
	rec.OnEvent(wizard.Event{Kind: wizard.EventProcessingStarted})
	rec.OnEvent(wizard.Event{Kind: wizard.EventReset, From: wizard.StageProcessing, Phase: wizard.PhaseRunning})
	rec.OnEvent(wizard.Event{Kind: wizard.EventReset})

	repo.AssertExpectations(t)
	repo.AssertCalled(t, "MarkAbandoned", mock.Anything, runID)
}

func TestRunRecorderAbandonsOnBackNavigation(t *testing.T) {
	repo := new(MockDemoRunRepository)
	sessionID := uuid.New()
	var runID uuid.UUID
	expectCreate(repo, sessionID, &runID)
	repo.On("MarkAbandoned", mock.Anything, mock.Anything).Return(nil).Once()

	rec := NewRunRecorder(repo, sessionID)
	rec.OnEvent(wizard.Event{Kind: wizard.EventProcessingStarted})
	rec.OnEvent(wizard.Event{Kind: wizard.EventStageChanged, From: wizard.StageProcessing, To: wizard.StageJobDescription})

	repo.AssertExpectations(t)
}

func TestRunRecorderSkipsUpdatesWhenCreateFails(t *testing.T) {
	repo := new(MockDemoRunRepository)
	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down")).Once()

	rec := NewRunRecorder(repo, uuid.New())
	rec.OnEvent(wizard.Event{Kind: wizard.EventProcessingStarted})
	rec.OnEvent(wizard.Event{Kind: wizard.EventCompleted})
	rec.Close()

	repo.AssertExpectations(t)
	repo.AssertNotCalled(t, "MarkCompleted", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "MarkAbandoned", mock.Anything, mock.Anything)
}
