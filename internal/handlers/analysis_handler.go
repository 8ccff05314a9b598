package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"talentalign/jd-matcher/internal/logger"
	"talentalign/jd-matcher/internal/services"
)

type AnalysisHandler struct {
	analysis    services.AnalysisService
	pdfParser   services.PDFParserService
	maxFileSize int64
	log         *zap.Logger
}

func NewAnalysisHandler(
	analysis services.AnalysisService,
	pdfParser services.PDFParserService,
	maxFileSize int64,
	log *zap.Logger,
) *AnalysisHandler {
	return &AnalysisHandler{
		analysis:    analysis,
		pdfParser:   pdfParser,
		maxFileSize: maxFileSize,
		log:         logger.OrNop(log),
	}
}

// HandleAnalyzeResume handles POST /analyze-resume
func (h *AnalysisHandler) HandleAnalyzeResume(c *fiber.Ctx) error {
	text, name, err := readUploadedPDF(c, "resume", h.pdfParser, h.maxFileSize)
	if err != nil {
		return err
	}

	resp, err := h.analysis.AnalyzeResume(c.UserContext(), text)
	if err != nil {
		return h.analysisError(name, err)
	}
	return c.JSON(resp)
}

// HandleMissingSkills handles POST /missing-skills
func (h *AnalysisHandler) HandleMissingSkills(c *fiber.Ctx) error {
	jobText := strings.TrimSpace(c.FormValue("job_description"))
	if jobText == "" {
		return fiber.NewError(fiber.StatusBadRequest, "job_description is required")
	}

	text, name, err := readUploadedPDF(c, "resume", h.pdfParser, h.maxFileSize)
	if err != nil {
		return err
	}

	resp, err := h.analysis.SkillGap(c.UserContext(), text, jobText)
	if err != nil {
		return h.analysisError(name, err)
	}
	return c.JSON(resp)
}

func (h *AnalysisHandler) analysisError(name string, err error) error {
	if errors.Is(err, services.ErrEmptyExtraction) {
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}
	h.log.Error("resume analysis failed", zap.String(logger.FieldDocument, name), zap.Error(err))
	if errors.Is(err, services.ErrEmbeddingUnavailable) {
		return fiber.NewError(fiber.StatusServiceUnavailable, "embedding service unavailable")
	}
	return fiber.NewError(fiber.StatusInternalServerError, "failed to analyze resume")
}
