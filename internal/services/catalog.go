package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"talentalign/jd-matcher/internal/logger"
	"talentalign/jd-matcher/internal/models"
)

var (
	ErrDuplicateJob = errors.New("job description already exists")
	ErrEmptyJobText = errors.New("job description has no text")
)

// DuplicateJobError names the stored posting a new one collides with.
type DuplicateJobError struct {
	ExistingID string
	FileName   string
	Score      float64
}

func (e *DuplicateJobError) Error() string {
	return fmt.Sprintf("%s: %s (%s, similarity %.4f)", ErrDuplicateJob, e.FileName, e.ExistingID, e.Score)
}

func (e *DuplicateJobError) Unwrap() error { return ErrDuplicateJob }

type JobCatalogService interface {
	AddJob(ctx context.Context, fileName, text string) (*models.JobPosting, error)
	ListJobs(ctx context.Context, limit int) ([]models.JobPosting, error)
	DeleteJobs(ctx context.Context, ids []string) error
}

type jobCatalogService struct {
	store              VectorStore
	similarity         *SimilarityService
	duplicateThreshold float64
	log                *zap.Logger
}

func NewJobCatalogService(store VectorStore, similarity *SimilarityService, duplicateThreshold float64, log *zap.Logger) JobCatalogService {
	return &jobCatalogService{
		store:              store,
		similarity:         similarity,
		duplicateThreshold: duplicateThreshold,
		log:                logger.OrNop(log),
	}
}

// AddJob stores a posting unless a near-identical one is already there.
func (c *jobCatalogService) AddJob(ctx context.Context, fileName, text string) (*models.JobPosting, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyJobText
	}

	vector, err := c.similarity.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding for the job description: %w", err)
	}

	nearest, err := c.store.Search(ctx, vector, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to check for duplicates: %w", err)
	}
	if len(nearest) > 0 && float64(nearest[0].Score) > c.duplicateThreshold {
		return nil, &DuplicateJobError{
			ExistingID: nearest[0].ID,
			FileName:   nearest[0].FileName(),
			Score:      float64(nearest[0].Score),
		}
	}

	id := uuid.NewString()
	if err := c.store.Upsert(ctx, id, vector, map[string]string{
		PayloadFileName: fileName,
		PayloadFullText: text,
	}); err != nil {
		return nil, err
	}

	c.log.Info("job description stored", zap.String("id", id), zap.String(logger.FieldDocument, fileName))
	return &models.JobPosting{ID: id, FileName: fileName, FullText: text}, nil
}

func (c *jobCatalogService) ListJobs(ctx context.Context, limit int) ([]models.JobPosting, error) {
	points, err := c.store.Scroll(ctx, limit)
	if err != nil {
		return nil, err
	}

	jobs := make([]models.JobPosting, 0, len(points))
	for _, p := range points {
		jobs = append(jobs, models.JobPosting{ID: p.ID, FileName: p.FileName(), FullText: p.JobText()})
	}
	return jobs, nil
}

func (c *jobCatalogService) DeleteJobs(ctx context.Context, ids []string) error {
	return c.store.Delete(ctx, ids)
}
