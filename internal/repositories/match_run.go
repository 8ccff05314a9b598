package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"talentalign/jd-matcher/internal/models"
)

type MatchRunRepository interface {
	Create(run *models.MatchRun) error
	FindByID(id uuid.UUID) (*models.MatchRun, error)
	UpdateStatus(id uuid.UUID, status models.RunStatus) error
	UpdateResult(id uuid.UUID, data *MatchRunUpdateData) error
	UpdateError(id uuid.UUID, errorMsg string) error
	FindPendingJobs(limit int) ([]models.MatchRun, error)
}

type MatchRunUpdateData struct {
	JobProfile models.ExtractedProfile
	Results    []models.MatchResult
	Skipped    []models.SkippedItem
}

type matchRunRepository struct {
	db *gorm.DB
}

func NewMatchRunRepository(db *gorm.DB) MatchRunRepository {
	return &matchRunRepository{db: db}
}

func (r *matchRunRepository) Create(run *models.MatchRun) error {
	if err := r.db.Create(run).Error; err != nil {
		return fmt.Errorf("failed to create match run: %w", err)
	}
	return nil
}

func (r *matchRunRepository) FindByID(id uuid.UUID) (*models.MatchRun, error) {
	var run models.MatchRun
	if err := r.db.Where("id = ?", id).First(&run).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("match run %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find match run: %w", err)
	}
	return &run, nil
}

func (r *matchRunRepository) update(id uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	result := r.db.Model(&models.MatchRun{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update match run: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("match run %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *matchRunRepository) UpdateStatus(id uuid.UUID, status models.RunStatus) error {
	return r.update(id, map[string]interface{}{"status": status})
}

// UpdateResult stores the ranking and marks the run completed. The
// struct form of Updates is used so the json serializer applies.
func (r *matchRunRepository) UpdateResult(id uuid.UUID, data *MatchRunUpdateData) error {
	result := r.db.Model(&models.MatchRun{ID: id}).
		Select("status", "job_profile", "results", "skipped", "updated_at").
		Updates(&models.MatchRun{
			Status:     models.StatusCompleted,
			JobProfile: data.JobProfile,
			Results:    data.Results,
			Skipped:    data.Skipped,
			UpdatedAt:  time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update result: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("match run %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *matchRunRepository) UpdateError(id uuid.UUID, errorMsg string) error {
	return r.update(id, map[string]interface{}{
		"status":        models.StatusFailed,
		"error_message": errorMsg,
	})
}

// FindPendingJobs returns the oldest queued runs first.
func (r *matchRunRepository) FindPendingJobs(limit int) ([]models.MatchRun, error) {
	var runs []models.MatchRun
	err := r.db.
		Where("status = ?", models.StatusQueued).
		Order("created_at ASC").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find pending runs: %w", err)
	}
	return runs, nil
}
