package services

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"talentalign/jd-matcher/internal/logger"
	"talentalign/jd-matcher/internal/models"
)

// ScoreBlend weights the LLM judge against embedding similarity.
type ScoreBlend struct {
	JudgeWeight     float64
	EmbeddingWeight float64
	// MinScore is the floor applied to the judge's score.
	MinScore float64
}

func DefaultScoreBlend() ScoreBlend {
	return ScoreBlend{JudgeWeight: 0.7, EmbeddingWeight: 0.3, MinScore: 0.2}
}

type RequirementScorer struct {
	llm        *LLMGateway
	similarity *SimilarityService
	expander   *SkillExpander
	prompts    *PromptBuilder
	blend      ScoreBlend
	log        *zap.Logger
}

func NewRequirementScorer(
	llm *LLMGateway,
	similarity *SimilarityService,
	expander *SkillExpander,
	prompts *PromptBuilder,
	blend ScoreBlend,
	log *zap.Logger,
) *RequirementScorer {
	return &RequirementScorer{
		llm:        llm,
		similarity: similarity,
		expander:   expander,
		prompts:    prompts,
		blend:      blend,
		log:        logger.OrNop(log),
	}
}

// ScoreSection scores raw candidate text against raw job text for one section.
func (s *RequirementScorer) ScoreSection(ctx context.Context, candidateText, jobText string, section models.Section) models.SectionScore {
	if section == models.SectionEducation && strings.TrimSpace(jobText) == "" {
		return educationUnspecified()
	}

	if section == models.SectionSkills {
		return s.ScoreExpanded(ctx,
			s.expander.ExpandSkills(ctx, candidateText),
			s.expander.ExpandSkills(ctx, jobText),
			section,
		)
	}

	return s.ScoreExpanded(ctx,
		s.expander.ExpandAbbreviations(ctx, candidateText),
		s.expander.ExpandAbbreviations(ctx, jobText),
		section,
	)
}

// ScoreExpanded scores inputs that already went through skill or abbreviation expansion.
func (s *RequirementScorer) ScoreExpanded(ctx context.Context, candidate, job string, section models.Section) models.SectionScore {
	if section == models.SectionEducation && strings.TrimSpace(job) == "" {
		return educationUnspecified()
	}

	sim := s.similarity.Similarity(ctx, candidate, job)
	if section == models.SectionSkills {
		return models.SectionScore{Section: section, Value: sim}
	}

	judged, reason := s.judge(ctx, candidate, job, section)
	value := clamp01(s.blend.JudgeWeight*judged + s.blend.EmbeddingWeight*sim)

	s.log.Debug("section scored",
		zap.String(logger.FieldSection, string(section)),
		zap.Float64("judge", judged),
		zap.Float64("similarity", sim),
		zap.Float64("score", value),
	)

	return models.SectionScore{Section: section, Value: value, Reasoning: reason}
}

func educationUnspecified() models.SectionScore {
	return models.SectionScore{
		Section:   models.SectionEducation,
		Value:     1.0,
		Reasoning: "job does not specify education requirements",
	}
}

type judgeResponse struct {
	Score  json.RawMessage `json:"score"`
	Reason string          `json:"reason"`
}

// judge asks the LLM for a rubric score, floored at MinScore and capped at 1.
func (s *RequirementScorer) judge(ctx context.Context, candidate, job string, section models.Section) (float64, string) {
	floor := s.blend.MinScore

	raw := s.llm.Call(ctx, LLMRequest{
		Prompt: s.prompts.BuildRequirementPrompt(candidate, job, section),
		JSON:   true,
	})
	if raw == "" {
		return floor, ""
	}

	var resp judgeResponse
	if err := parseJSONResponse(raw, &resp); err != nil {
		s.log.Warn("judge returned malformed JSON, using floor",
			zap.String(logger.FieldSection, string(section)),
			zap.Float64("floor", floor),
			zap.Error(err),
		)
		return floor, ""
	}

	score, ok := coerceFloat(resp.Score)
	if !ok {
		s.log.Warn("judge response has no numeric score, using floor",
			zap.String(logger.FieldSection, string(section)),
			zap.String("response", logger.TruncateForLog(raw, 120)),
		)
		return floor, resp.Reason
	}

	if score < floor {
		score = floor
	}
	if score > 1 {
		score = 1
	}
	return score, resp.Reason
}
