package services

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"talentalign/jd-matcher/internal/logger"
	"talentalign/jd-matcher/internal/models"
)

type SectionExtractor struct {
	llm     *LLMGateway
	prompts *PromptBuilder
	log     *zap.Logger
}

func NewSectionExtractor(llm *LLMGateway, prompts *PromptBuilder, log *zap.Logger) *SectionExtractor {
	return &SectionExtractor{llm: llm, prompts: prompts, log: logger.OrNop(log)}
}

// Extract pulls skills, experience and education out of text. Any failure
// yields the all-empty profile. Skills come back as a normalized list.
func (e *SectionExtractor) Extract(ctx context.Context, text string, docType models.DocType) models.ExtractedProfile {
	if strings.TrimSpace(text) == "" {
		return models.ExtractedProfile{}
	}

	raw := e.llm.Call(ctx, LLMRequest{
		Prompt: e.prompts.BuildSectionExtractionPrompt(text, docType),
		JSON:   true,
	})
	if raw == "" {
		return models.ExtractedProfile{}
	}

	var sections map[string]json.RawMessage
	if err := parseJSONResponse(raw, &sections); err != nil {
		e.log.Warn("section extraction returned malformed JSON",
			zap.String("doc_type", string(docType)),
			zap.String("response", logger.TruncateForLog(raw, 200)),
			zap.Error(err),
		)
		return models.ExtractedProfile{}
	}

	return models.ExtractedProfile{
		Skills:     NormalizeSkillList(flattenSection(sections["skills"])),
		Experience: flattenSection(sections["experience"]),
		Education:  flattenSection(sections["education"]),
	}
}
