package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"talentalign/jd-matcher/internal/models"
	"talentalign/jd-matcher/internal/repositories"
)

type ResultHandler struct {
	runRepo repositories.MatchRunRepository
}

func NewResultHandler(runRepo repositories.MatchRunRepository) *ResultHandler {
	return &ResultHandler{
		runRepo: runRepo,
	}
}

// HandleGetResult handles GET /result/:id
func (h *ResultHandler) HandleGetResult(c *fiber.Ctx) error {
	runID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid match run ID format")
	}

	run, err := h.runRepo.FindByID(runID)
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "Match run not found")
	}

	response := models.ResultResponse{
		ID:     run.ID.String(),
		Status: string(run.Status),
	}

	if run.Status == models.StatusCompleted {
		data := &models.MatchRunData{
			JobProfile: run.JobProfile,
			Matches:    run.Results,
			Skipped:    make([]string, 0, len(run.Skipped)),
		}
		if data.Matches == nil {
			data.Matches = []models.MatchResult{}
		}
		for _, s := range run.Skipped {
			data.Skipped = append(data.Skipped, s.String())
		}
		response.Result = data
	}

	if run.Status == models.StatusFailed && run.ErrorMessage != nil {
		response.ErrorMessage = run.ErrorMessage
	}

	return c.JSON(response)
}
