package bootstrap

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"talentalign/jd-matcher/internal/config"
)

func TestPipelineConfigMapsScoringSettings(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("SCORE_WEIGHT_SKILLS", "0.6")
	t.Setenv("SCORE_WEIGHT_EXPERIENCE", "0.3")
	t.Setenv("SCORE_WEIGHT_EDUCATION", "0.1")
	t.Setenv("MATCH_CONCURRENCY", "2")

	cfg := config.Load()
	pc := PipelineConfig(cfg)

	assert.Equal(t, cfg.Gemini.Model, pc.Gateway.Model)
	assert.Equal(t, int32(42), pc.Gateway.Seed)
	assert.Equal(t, cfg.Gemini.EmbeddingModel, pc.EmbeddingModel)
	assert.InDelta(t, 0.6, pc.Matcher.Weights.Skills, 1e-9)
	assert.InDelta(t, 0.3, pc.Matcher.Weights.Experience, 1e-9)
	assert.InDelta(t, 0.1, pc.Matcher.Weights.Education, 1e-9)
	assert.Equal(t, 2, pc.Matcher.Concurrency)
	assert.InDelta(t, 0.7, pc.Blend.JudgeWeight, 1e-9)
	assert.InDelta(t, 0.2, pc.Blend.MinScore, 1e-9)
}
