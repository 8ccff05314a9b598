package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"talentalign/jd-matcher/internal/logger"
)

// SkillExpander canonicalizes and widens skill vocabularies through the LLM.
type SkillExpander struct {
	llm     *LLMGateway
	prompts *PromptBuilder
	log     *zap.Logger
}

func NewSkillExpander(llm *LLMGateway, prompts *PromptBuilder, log *zap.Logger) *SkillExpander {
	return &SkillExpander{llm: llm, prompts: prompts, log: logger.OrNop(log)}
}

// ExpandSkills returns skills plus related ones, canonicalized and normalized.
// Falls back to the normalized input when the LLM has nothing to say.
func (s *SkillExpander) ExpandSkills(ctx context.Context, skills string) string {
	if strings.TrimSpace(skills) == "" {
		return ""
	}

	out := s.llm.Call(ctx, LLMRequest{Prompt: s.prompts.BuildSkillExpansionPrompt(skills)})
	if expanded := NormalizeSkillList(stripFences(out)); expanded != "" {
		return expanded
	}

	s.log.Debug("skill expansion unavailable, using input")
	return NormalizeSkillList(skills)
}

// ExtractSkillKeywords pulls a technical skill list out of free job text.
func (s *SkillExpander) ExtractSkillKeywords(ctx context.Context, jobText string) string {
	if strings.TrimSpace(jobText) == "" {
		return ""
	}

	out := s.llm.Call(ctx, LLMRequest{Prompt: s.prompts.BuildSkillKeywordsPrompt(jobText)})
	if keywords := NormalizeSkillList(stripFences(out)); keywords != "" {
		return keywords
	}

	s.log.Debug("skill keyword extraction unavailable, using input")
	return NormalizeSkillList(jobText)
}

// ExpandAbbreviations spells out acronyms. Falls back to the trimmed input.
func (s *SkillExpander) ExpandAbbreviations(ctx context.Context, text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	out := strings.TrimSpace(s.llm.Call(ctx, LLMRequest{Prompt: s.prompts.BuildAbbreviationPrompt(text)}))
	if out == "" {
		return text
	}
	return out
}

func stripFences(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}
