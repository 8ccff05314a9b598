package services

import (
	"context"
	"math"

	"talentalign/jd-matcher/internal/models"
)

// SkillGap diffs one resume against one job posting.
func (m *Matcher) SkillGap(ctx context.Context, resumeText, jobText string) (*models.SkillGapResponse, error) {
	resume := m.ExtractProfile(ctx, resumeText, models.DocTypeResume)
	if resume.IsEmpty() {
		return nil, ErrEmptyExtraction
	}

	job := m.ExtractProfile(ctx, jobText, models.DocTypeJob)
	keywords := m.ExtractSkillKeywords(ctx, job.Skills)
	missing := m.FindMissingSkills(ctx, resume.Skills, keywords)

	return skillGapReport(resume.Skills, keywords, missing), nil
}

func skillGapReport(resumeSkills, jobSkills string, missing []models.MissingSkill) *models.SkillGapResponse {
	total := len(SplitSkills(jobSkills))
	missingCount := len(missing)

	matched := max(0, total-missingCount)

	var pct float64
	if total > 0 {
		pct = math.Round(float64(matched)/float64(total)*100*100) / 100
	}

	return &models.SkillGapResponse{
		ResumeSkills:         resumeSkills,
		JobSkills:            jobSkills,
		MissingSkills:        missing,
		SkillMatchPercentage: pct,
		TotalRequiredSkills:  total,
		MissingSkillsCount:   missingCount,
		MatchedSkillsCount:   matched,
	}
}
