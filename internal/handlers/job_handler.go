package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"talentalign/jd-matcher/internal/logger"
	"talentalign/jd-matcher/internal/models"
	"talentalign/jd-matcher/internal/services"
)

const defaultListLimit = 100

type JobHandler struct {
	catalog       services.JobCatalogService
	pdfParser     services.PDFParserService
	maxFileSize   int64
	minTextLength int
	log           *zap.Logger
}

func NewJobHandler(
	catalog services.JobCatalogService,
	pdfParser services.PDFParserService,
	maxFileSize int64,
	minTextLength int,
	log *zap.Logger,
) *JobHandler {
	return &JobHandler{
		catalog:       catalog,
		pdfParser:     pdfParser,
		maxFileSize:   maxFileSize,
		minTextLength: minTextLength,
		log:           logger.OrNop(log),
	}
}

// HandleList handles GET /jds
func (h *JobHandler) HandleList(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultListLimit)
	if limit <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "limit must be positive")
	}

	jobs, err := h.catalog.ListJobs(c.UserContext(), limit)
	if err != nil {
		h.log.Error("failed to list job descriptions", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "failed to list job descriptions")
	}

	// the listing omits full text
	for i := range jobs {
		jobs[i].FullText = ""
	}
	return c.JSON(fiber.Map{
		"count": len(jobs),
		"jds":   jobs,
	})
}

// HandleCreate handles POST /jds
func (h *JobHandler) HandleCreate(c *fiber.Ctx) error {
	text, name, err := readUploadedPDF(c, "jd", h.pdfParser, h.maxFileSize)
	if err != nil {
		return err
	}
	if len(strings.TrimSpace(text)) < h.minTextLength {
		return fiber.NewError(fiber.StatusUnprocessableEntity,
			fmt.Sprintf("%s has too little text to index (minimum %d characters)", name, h.minTextLength))
	}

	job, err := h.catalog.AddJob(c.UserContext(), name, text)
	var dup *services.DuplicateJobError
	switch {
	case errors.As(err, &dup):
		return c.Status(fiber.StatusConflict).JSON(models.DuplicateJobResponse{
			Message:         "A near-identical job description is already stored",
			Status:          "duplicate",
			ExistingID:      dup.ExistingID,
			ExistingName:    dup.FileName,
			SimilarityScore: dup.Score,
		})
	case err != nil:
		h.log.Error("failed to store job description", zap.String(logger.FieldDocument, name), zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "failed to store job description")
	}

	job.FullText = ""
	return c.Status(fiber.StatusCreated).JSON(job)
}

// HandleDelete handles DELETE /jds/:id
func (h *JobHandler) HandleDelete(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid job description ID format")
	}

	if err := h.catalog.DeleteJobs(c.UserContext(), []string{id}); err != nil {
		h.log.Error("failed to delete job description", zap.String("id", id), zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "failed to delete job description")
	}
	return c.JSON(fiber.Map{
		"message": "Job description deleted",
		"id":      id,
	})
}
