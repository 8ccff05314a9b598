package services

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"talentalign/jd-matcher/internal/logger"
	"talentalign/jd-matcher/internal/models"
)

type responseShape int

const (
	shapeUnparseable responseShape = iota
	shapeExpected
	shapeArray
	shapeSingleObject
)

func (s responseShape) String() string {
	switch s {
	case shapeExpected:
		return "expected"
	case shapeArray:
		return "array"
	case shapeSingleObject:
		return "single_object"
	}
	return "unparseable"
}

type rawMissingSkill struct {
	Skill      string `json:"skill"`
	Importance string `json:"importance"`
	Category   string `json:"category"`
}

// missingSkillsResponse is the classified LLM answer. skills is set for
// shapeExpected and shapeArray, single for shapeSingleObject.
type missingSkillsResponse struct {
	shape  responseShape
	key    string
	skills []rawMissingSkill
	single rawMissingSkill
}

const missingSkillsKey = "missingSkills"

func parseMissingSkillsResponse(raw string) missingSkillsResponse {
	body := []byte(extractJSON(raw))
	if len(body) == 0 {
		return missingSkillsResponse{}
	}

	switch body[0] {
	case '[':
		var list []rawMissingSkill
		if err := json.Unmarshal(body, &list); err != nil {
			return missingSkillsResponse{}
		}
		return missingSkillsResponse{shape: shapeArray, skills: list}

	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(body, &obj); err != nil {
			return missingSkillsResponse{}
		}
		for _, key := range []string{missingSkillsKey, "missing_skills"} {
			field, ok := obj[key]
			if !ok {
				continue
			}
			var list []rawMissingSkill
			if string(field) != "null" {
				if err := json.Unmarshal(field, &list); err != nil {
					return missingSkillsResponse{}
				}
			}
			return missingSkillsResponse{shape: shapeExpected, key: key, skills: list}
		}
		if _, ok := obj["skill"]; ok {
			var single rawMissingSkill
			if err := json.Unmarshal(body, &single); err != nil {
				return missingSkillsResponse{}
			}
			return missingSkillsResponse{shape: shapeSingleObject, single: single}
		}
	}

	return missingSkillsResponse{}
}

type MissingSkillFinder struct {
	llm     *LLMGateway
	prompts *PromptBuilder
	log     *zap.Logger
}

func NewMissingSkillFinder(llm *LLMGateway, prompts *PromptBuilder, log *zap.Logger) *MissingSkillFinder {
	return &MissingSkillFinder{llm: llm, prompts: prompts, log: logger.OrNop(log)}
}

// FindMissing lists technical skills the job asks for that the candidate lacks.
func (f *MissingSkillFinder) FindMissing(ctx context.Context, candidateSkills, jobSkills string) []models.MissingSkill {
	if strings.TrimSpace(jobSkills) == "" {
		return []models.MissingSkill{}
	}

	if strings.TrimSpace(candidateSkills) == "" {
		required := SplitSkills(jobSkills)
		out := make([]models.MissingSkill, 0, len(required))
		for _, skill := range required {
			out = append(out, models.MissingSkill{
				Skill:      skill,
				Importance: models.ImportanceHigh,
				Category:   models.CategoryTechnical,
			})
		}
		return out
	}

	raw := f.llm.Call(ctx, LLMRequest{
		Prompt: f.prompts.BuildMissingSkillsPrompt(candidateSkills, jobSkills),
		JSON:   true,
	})
	resp := parseMissingSkillsResponse(raw)

	switch resp.shape {
	case shapeExpected, shapeArray:
		return toMissingSkills(resp.skills)

	case shapeSingleObject:
		f.log.Info("missing skills came back as a single object, retrying with directive prompt",
			zap.String("skill", resp.single.Skill))

		retryRaw := f.llm.Call(ctx, LLMRequest{
			Prompt: f.prompts.BuildMissingSkillsRetryPrompt(candidateSkills, jobSkills),
			JSON:   true,
		})
		// the directive prompt names missingSkills, so only that key counts
		if retry := parseMissingSkillsResponse(retryRaw); retry.shape == shapeExpected && retry.key == missingSkillsKey {
			return toMissingSkills(retry.skills)
		}

		f.log.Warn("retry did not produce missingSkills, keeping the single skill")
		return toMissingSkills([]rawMissingSkill{resp.single})
	}

	if raw != "" {
		f.log.Warn("missing skills response unparseable, returning none",
			zap.String("response", logger.TruncateForLog(raw, 200)))
	}
	return []models.MissingSkill{}
}

func toMissingSkills(raw []rawMissingSkill) []models.MissingSkill {
	out := make([]models.MissingSkill, 0, len(raw))
	for _, r := range raw {
		skill := strings.TrimSpace(r.Skill)
		if skill == "" {
			continue
		}
		out = append(out, models.MissingSkill{
			Skill:      skill,
			Importance: parseImportance(r.Importance),
			Category:   parseCategory(r.Category),
		})
	}
	return out
}

func parseImportance(s string) models.Importance {
	switch models.Importance(strings.ToLower(strings.TrimSpace(s))) {
	case models.ImportanceHigh:
		return models.ImportanceHigh
	case models.ImportanceLow:
		return models.ImportanceLow
	}
	return models.ImportanceMedium
}

func parseCategory(s string) models.SkillCategory {
	switch c := models.SkillCategory(strings.ToLower(strings.TrimSpace(s))); c {
	case models.CategorySoft, models.CategoryCertification, models.CategoryTool:
		return c
	}
	return models.CategoryTechnical
}

// SummarizeMissingSkills merges lists, keeping the first entry per
// case-insensitive trimmed skill name.
func SummarizeMissingSkills(lists ...[]models.MissingSkill) []models.MissingSkill {
	seen := make(map[string]struct{})
	out := []models.MissingSkill{}
	for _, list := range lists {
		for _, ms := range list {
			key := strings.ToLower(strings.TrimSpace(ms.Skill))
			if key == "" {
				continue
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, ms)
		}
	}
	return out
}
