package repositories

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/resumeai/internal/models"
)

// ErrRunNotFound is returned when no demo run has the given id.
var ErrRunNotFound = errors.New("demo run not found")

type DemoRunRepository interface {
	Create(ctx context.Context, run *models.DemoRun) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.DemoRun, error)
	MarkCompleted(ctx context.Context, id uuid.UUID, keywordCount int) error
	MarkAbandoned(ctx context.Context, id uuid.UUID) error
	CountByStatus(ctx context.Context) (map[models.DemoRunStatus]int64, error)
}

type demoRunRepository struct {
	db *gorm.DB
}

func NewDemoRunRepository(db *gorm.DB) DemoRunRepository {
	return &demoRunRepository{db: db}
}

func (r *demoRunRepository) Create(ctx context.Context, run *models.DemoRun) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	if run.Status == "" {
		run.Status = models.RunStatusProcessing
	}
	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		return errors.Wrap(err, "failed to create demo run")
	}
	return nil
}

func (r *demoRunRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.DemoRun, error) {
	var run models.DemoRun
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&run).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRunNotFound
		}
		return nil, errors.Wrap(err, "failed to find demo run")
	}
	return &run, nil
}

func (r *demoRunRepository) MarkCompleted(ctx context.Context, id uuid.UUID, keywordCount int) error {
	return r.finish(ctx, id, map[string]interface{}{
		"status":        models.RunStatusCompleted,
		"keyword_count": keywordCount,
	})
}

func (r *demoRunRepository) MarkAbandoned(ctx context.Context, id uuid.UUID) error {
	return r.finish(ctx, id, map[string]interface{}{
		"status": models.RunStatusAbandoned,
	})
}

// finish only touches runs that are still processing, so a late abandon
// never overwrites a completed run.
func (r *demoRunRepository) finish(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	now := time.Now()
	updates["finished_at"] = now
	updates["updated_at"] = now

	result := r.db.WithContext(ctx).Model(&models.DemoRun{}).
		Where("id = ? AND status = ?", id, models.RunStatusProcessing).
		Updates(updates)

	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to update demo run")
	}

	if result.RowsAffected == 0 {
		return ErrRunNotFound
	}

	return nil
}

func (r *demoRunRepository) CountByStatus(ctx context.Context) (map[models.DemoRunStatus]int64, error) {
	var rows []struct {
		Status models.DemoRunStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.DemoRun{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error

	if err != nil {
		return nil, errors.Wrap(err, "failed to count demo runs")
	}

	out := make(map[models.DemoRunStatus]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}
