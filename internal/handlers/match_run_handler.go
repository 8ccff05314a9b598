package handlers

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"talentalign/jd-matcher/internal/logger"
	"talentalign/jd-matcher/internal/models"
	"talentalign/jd-matcher/internal/repositories"
	"talentalign/jd-matcher/internal/services"
)

type MatchRunHandler struct {
	runRepo   repositories.MatchRunRepository
	docRepo   repositories.DocumentRepository
	worker    services.Worker
	validator *validator.Validate
	log       *zap.Logger
}

func NewMatchRunHandler(
	runRepo repositories.MatchRunRepository,
	docRepo repositories.DocumentRepository,
	worker services.Worker,
	log *zap.Logger,
) *MatchRunHandler {
	return &MatchRunHandler{
		runRepo:   runRepo,
		docRepo:   docRepo,
		worker:    worker,
		validator: validator.New(),
		log:       logger.OrNop(log),
	}
}

// HandleBulkAnalyze handles POST /bulk-analyze
func (h *MatchRunHandler) HandleBulkAnalyze(c *fiber.Ctx) error {
	var req models.BulkAnalyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request payload")
	}
	if err := h.validator.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, extractValidationErrors(err))
	}

	jobID := uuid.MustParse(req.JobDocumentID)
	jobDoc, err := h.docRepo.FindByID(jobID)
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "Job description document not found")
	}
	if jobDoc.FileType != models.FileTypeJob {
		return fiber.NewError(fiber.StatusBadRequest, "job_document_id does not refer to a job description")
	}

	resumeIDs := make([]uuid.UUID, 0, len(req.ResumeDocumentIDs))
	seen := make(map[uuid.UUID]bool, len(req.ResumeDocumentIDs))
	for _, raw := range req.ResumeDocumentIDs {
		id := uuid.MustParse(raw)
		if seen[id] {
			continue
		}
		seen[id] = true
		resumeIDs = append(resumeIDs, id)
	}

	run := &models.MatchRun{
		ID:                uuid.New(),
		JobDocumentID:     jobID,
		ResumeDocumentIDs: resumeIDs,
		TopN:              req.TopN,
		Status:            models.StatusQueued,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}
	if err := h.runRepo.Create(run); err != nil {
		h.log.Error("failed to create match run", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to create match run")
	}

	h.worker.EnqueueJob(run.ID)

	return c.Status(fiber.StatusAccepted).JSON(models.BulkAnalyzeResponse{
		ID:     run.ID.String(),
		Status: string(models.StatusQueued),
	})
}

func extractValidationErrors(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		ve := validationErrors[0]
		return fmt.Sprintf("validation error: %s - %s", ve.Field(), ve.Tag())
	}
	return "validation error: invalid request"
}
