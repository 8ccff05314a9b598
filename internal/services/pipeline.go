package services

import (
	"time"

	"go.uber.org/zap"
)

type PipelineConfig struct {
	Gateway          GatewayConfig
	EmbeddingModel   string
	EmbeddingTimeout time.Duration
	Blend            ScoreBlend
	Matcher          MatcherConfig
}

// Pipeline is the wired set of scoring components sharing one gateway
// and one embedding cache.
type Pipeline struct {
	LLM        *LLMGateway
	Similarity *SimilarityService
	Expander   *SkillExpander
	Extractor  *SectionExtractor
	Scorer     *RequirementScorer
	Missing    *MissingSkillFinder
	Matcher    *Matcher
}

func NewPipeline(generator ContentGenerator, embedder Embedder, cfg PipelineConfig, log *zap.Logger) *Pipeline {
	prompts := NewPromptBuilder()

	llm := NewLLMGateway(generator, cfg.Gateway, log)
	sim := NewSimilarityService(embedder, cfg.EmbeddingModel, cfg.EmbeddingTimeout, log)
	expander := NewSkillExpander(llm, prompts, log)
	extractor := NewSectionExtractor(llm, prompts, log)
	scorer := NewRequirementScorer(llm, sim, expander, prompts, cfg.Blend, log)
	missing := NewMissingSkillFinder(llm, prompts, log)

	return &Pipeline{
		LLM:        llm,
		Similarity: sim,
		Expander:   expander,
		Extractor:  extractor,
		Scorer:     scorer,
		Missing:    missing,
		Matcher:    NewMatcher(extractor, expander, scorer, missing, llm, prompts, cfg.Matcher, log),
	}
}
