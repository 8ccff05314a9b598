package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"talentalign/jd-matcher/internal/models"
)

func TestFindMissingEmptyJobSkills(t *testing.T) {
	p := newTestPipeline(simulatedLLM)
	ctx := context.Background()

	for _, cand := range []string{"", "python", "go, rust"} {
		got := p.missing.FindMissing(ctx, cand, "  ")
		assert.NotNil(t, got)
		assert.Empty(t, got)
	}
	assert.Equal(t, int32(0), p.gen.calls.Load())
}

func TestFindMissingEmptyCandidateSkills(t *testing.T) {
	p := newTestPipeline(simulatedLLM)

	got := p.missing.FindMissing(context.Background(), "", "Python, SQL, Docker")

	assert.Equal(t, []models.MissingSkill{
		{Skill: "Python", Importance: models.ImportanceHigh, Category: models.CategoryTechnical},
		{Skill: "SQL", Importance: models.ImportanceHigh, Category: models.CategoryTechnical},
		{Skill: "Docker", Importance: models.ImportanceHigh, Category: models.CategoryTechnical},
	}, got)
	assert.Equal(t, int32(0), p.gen.calls.Load())
}

func TestParseMissingSkillsResponseShapes(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		shape responseShape
		count int
	}{
		{"expected key", `{"missingSkills":[{"skill":"docker"},{"skill":"k8s"}]}`, shapeExpected, 2},
		{"snake case key", `{"missing_skills":[{"skill":"docker"}]}`, shapeExpected, 1},
		{"empty expected", `{"missingSkills":[]}`, shapeExpected, 0},
		{"bare array", `[{"skill":"docker","importance":"low"}]`, shapeArray, 1},
		{"fenced array", "```json\n[{\"skill\":\"aws\"}]\n```", shapeArray, 1},
		{"single object", `{"skill":"docker","importance":"high","category":"tool"}`, shapeSingleObject, 0},
		{"unknown object", `{"skills":"docker"}`, shapeUnparseable, 0},
		{"not json", `docker is missing`, shapeUnparseable, 0},
		{"wrong type under key", `{"missingSkills":"docker"}`, shapeUnparseable, 0},
		{"empty", ``, shapeUnparseable, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseMissingSkillsResponse(tt.raw)
			assert.Equal(t, tt.shape, got.shape, "shape %s", got.shape)
			assert.Len(t, got.skills, tt.count)
		})
	}
}

func TestFindMissingUsesArrayShape(t *testing.T) {
	p := newTestPipeline(func(req GenerateRequest) (string, error) {
		return `[{"skill":" Docker ","importance":"HIGH","category":"Tool"},{"skill":""},{"skill":"aws","importance":"urgent","category":"cloud"}]`, nil
	})

	got := p.missing.FindMissing(context.Background(), "python", "python, docker, aws")

	assert.Equal(t, []models.MissingSkill{
		{Skill: "Docker", Importance: models.ImportanceHigh, Category: models.CategoryTool},
		{Skill: "aws", Importance: models.ImportanceMedium, Category: models.CategoryTechnical},
	}, got)
}

func TestFindMissingSingleObjectRetriesOnce(t *testing.T) {
	p := newTestPipeline(func(req GenerateRequest) (string, error) {
		if strings.Contains(req.Prompt, "The previous response was incorrect") {
			return `{"missingSkills":[{"skill":"docker","importance":"high","category":"tool"},{"skill":"aws","importance":"low","category":"technical"}]}`, nil
		}
		return `{"skill":"docker","importance":"high","category":"tool"}`, nil
	})

	got := p.missing.FindMissing(context.Background(), "python", "python, docker, aws")

	assert.Equal(t, []string{"docker", "aws"}, skillNames(got))
	assert.Equal(t, int32(2), p.gen.calls.Load())
	assert.Equal(t, 1, p.gen.promptsContaining("The previous response was incorrect"))
}

func TestFindMissingSingleObjectRetryFailsWrapsOriginal(t *testing.T) {
	p := newTestPipeline(func(req GenerateRequest) (string, error) {
		return `{"skill":"docker","importance":"low","category":"tool"}`, nil
	})

	got := p.missing.FindMissing(context.Background(), "python", "python, docker")

	assert.Equal(t, []models.MissingSkill{
		{Skill: "docker", Importance: models.ImportanceLow, Category: models.CategoryTool},
	}, got)
	assert.Equal(t, int32(2), p.gen.calls.Load(), "exactly one retry")
}

func TestFindMissingRetryIgnoresSnakeCaseKey(t *testing.T) {
	p := newTestPipeline(func(req GenerateRequest) (string, error) {
		if strings.Contains(req.Prompt, "The previous response was incorrect") {
			return `{"missing_skills":[{"skill":"docker"},{"skill":"aws"}]}`, nil
		}
		return `{"skill":"docker","importance":"high","category":"tool"}`, nil
	})

	got := p.missing.FindMissing(context.Background(), "python", "python, docker, aws")

	assert.Equal(t, []models.MissingSkill{
		{Skill: "docker", Importance: models.ImportanceHigh, Category: models.CategoryTool},
	}, got)
	assert.Equal(t, int32(2), p.gen.calls.Load())
}

func TestFindMissingUnparseableReturnsEmpty(t *testing.T) {
	p := newTestPipeline(func(req GenerateRequest) (string, error) { return "no idea", nil })

	got := p.missing.FindMissing(context.Background(), "python", "docker")
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Equal(t, int32(1), p.gen.calls.Load())
}

func TestSummarizeMissingSkillsFirstOccurrenceWins(t *testing.T) {
	jobA := []models.MissingSkill{{Skill: "python", Importance: models.ImportanceHigh, Category: models.CategoryTechnical}}
	jobB := []models.MissingSkill{
		{Skill: "Python ", Importance: models.ImportanceMedium, Category: models.CategoryTool},
		{Skill: "Docker", Importance: models.ImportanceLow, Category: models.CategoryTool},
	}

	got := SummarizeMissingSkills(jobA, jobB)

	assert.Equal(t, []models.MissingSkill{
		{Skill: "python", Importance: models.ImportanceHigh, Category: models.CategoryTechnical},
		{Skill: "Docker", Importance: models.ImportanceLow, Category: models.CategoryTool},
	}, got)
	assert.Empty(t, SummarizeMissingSkills())
}
