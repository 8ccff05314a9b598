package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"talentalign/jd-matcher/internal/logger"
	"talentalign/jd-matcher/internal/models"
)

const (
	reasonEmptyText       = "empty text"
	reasonEmptyExtraction = "empty extraction"
	reasonCancelled       = "cancelled"
)

func DefaultWeights() models.WeightSet {
	return models.WeightSet{Skills: 0.8, Experience: 0.1, Education: 0.1}
}

// PreparedJob is a job posting extracted and expanded once for reuse across resumes.
type PreparedJob struct {
	Profile            models.ExtractedProfile
	SkillKeywords      string
	ExpandedSkills     string
	ExpandedExperience string
	ExpandedEducation  string
}

type preparedCandidate struct {
	Profile            models.ExtractedProfile
	ExpandedSkills     string
	ExpandedExperience string
	ExpandedEducation  string
}

func (c preparedCandidate) expanded() models.ExtractedProfile {
	return models.ExtractedProfile{Skills: c.ExpandedSkills, Experience: c.ExpandedExperience, Education: c.ExpandedEducation}
}

func (j PreparedJob) expanded() models.ExtractedProfile {
	return models.ExtractedProfile{Skills: j.ExpandedSkills, Experience: j.ExpandedExperience, Education: j.ExpandedEducation}
}

type MatcherConfig struct {
	Weights models.WeightSet
	// Concurrency bounds in-flight pairs of a batch; zero or less is unbounded.
	Concurrency int
}

// Matcher runs the scoring pipeline for resume and job pairings.
type Matcher struct {
	extractor *SectionExtractor
	expander  *SkillExpander
	scorer    *RequirementScorer
	missing   *MissingSkillFinder
	llm       *LLMGateway
	prompts   *PromptBuilder
	cfg       MatcherConfig
	log       *zap.Logger
}

func NewMatcher(
	extractor *SectionExtractor,
	expander *SkillExpander,
	scorer *RequirementScorer,
	missing *MissingSkillFinder,
	llm *LLMGateway,
	prompts *PromptBuilder,
	cfg MatcherConfig,
	log *zap.Logger,
) *Matcher {
	return &Matcher{
		extractor: extractor,
		expander:  expander,
		scorer:    scorer,
		missing:   missing,
		llm:       llm,
		prompts:   prompts,
		cfg:       cfg,
		log:       logger.OrNop(log),
	}
}

func (m *Matcher) ExtractProfile(ctx context.Context, text string, docType models.DocType) models.ExtractedProfile {
	return m.extractor.Extract(ctx, text, docType)
}

// PrepareJob extracts a job's sections and expands them for scoring.
func (m *Matcher) PrepareJob(ctx context.Context, jobText string) PreparedJob {
	return m.prepareJobProfile(ctx, m.extractor.Extract(ctx, jobText, models.DocTypeJob))
}

func (m *Matcher) prepareJobProfile(ctx context.Context, profile models.ExtractedProfile) PreparedJob {
	keywords := m.expander.ExtractSkillKeywords(ctx, profile.Skills)
	return PreparedJob{
		Profile:            profile,
		SkillKeywords:      keywords,
		ExpandedSkills:     m.expander.ExpandSkills(ctx, keywords),
		ExpandedExperience: m.expander.ExpandAbbreviations(ctx, profile.Experience),
		ExpandedEducation:  m.expander.ExpandAbbreviations(ctx, profile.Education),
	}
}

func (m *Matcher) prepareCandidate(ctx context.Context, profile models.ExtractedProfile) preparedCandidate {
	return preparedCandidate{
		Profile:            profile,
		ExpandedSkills:     m.expander.ExpandSkills(ctx, profile.Skills),
		ExpandedExperience: m.expander.ExpandAbbreviations(ctx, profile.Experience),
		ExpandedEducation:  m.expander.ExpandAbbreviations(ctx, profile.Education),
	}
}

// ComputeWeights moves the weight of any section the job leaves blank into skills.
func ComputeWeights(base models.WeightSet, job models.ExtractedProfile) models.WeightSet {
	w := base
	if strings.TrimSpace(job.Experience) == "" {
		w.Skills += w.Experience
		w.Experience = 0
	}
	if strings.TrimSpace(job.Education) == "" {
		w.Skills += w.Education
		w.Education = 0
	}
	return w
}

// FinalScore is the weighted sum of section scores, clamped to [0,1].
func FinalScore(weights models.WeightSet, scores []models.SectionScore) float64 {
	var total float64
	for _, s := range scores {
		total += weights.Get(s.Section) * s.Value
	}
	return clamp01(total)
}

func (m *Matcher) scorePrepared(ctx context.Context, cand preparedCandidate, job PreparedJob) models.MatchResult {
	candExpanded, jobExpanded := cand.expanded(), job.expanded()
	scores := make([]models.SectionScore, 0, len(models.Sections))
	for _, section := range models.Sections {
		scores = append(scores, m.scorer.ScoreExpanded(ctx, candExpanded.Get(section), jobExpanded.Get(section), section))
	}
	weights := ComputeWeights(m.cfg.Weights, job.Profile)
	final := FinalScore(weights, scores)

	return models.MatchResult{
		FinalScore:      final,
		ScorePercent:    math.Round(final*1000) / 10,
		SectionScores:   scores,
		Weights:         weights,
		MissingSkills:   m.missing.FindMissing(ctx, cand.Profile.Skills, job.SkillKeywords),
		JobSkills:       job.SkillKeywords,
		CandidateSkills: cand.Profile.Skills,
	}
}

// ScoreOne scores one candidate profile against one raw job posting.
func (m *Matcher) ScoreOne(ctx context.Context, candidate models.ExtractedProfile, jobText string) models.MatchResult {
	job := m.PrepareJob(ctx, jobText)
	result := m.scorePrepared(ctx, m.prepareCandidate(ctx, candidate), job)
	result.Profile = job.Profile
	return result
}

// ScoreBatch ranks many jobs for one resume profile.
func (m *Matcher) ScoreBatch(ctx context.Context, resume models.ExtractedProfile, jobs []models.JobInput, topN int) models.BatchOutcome {
	cand := m.prepareCandidate(ctx, resume)

	results := make([]*models.MatchResult, len(jobs))
	skipped := make([]*models.SkippedItem, len(jobs))

	g := m.newGroup()
	for i, job := range jobs {
		g.Go(func() error {
			skip := func(reason string) {
				skipped[i] = &models.SkippedItem{ID: job.ID, Name: job.Name, Reason: reason}
			}
			if ctx.Err() != nil {
				skip(reasonCancelled)
				return nil
			}
			if strings.TrimSpace(job.Text) == "" {
				skip(reasonEmptyText)
				return nil
			}

			prepared := m.PrepareJob(ctx, job.Text)
			if prepared.Profile.IsEmpty() {
				skip(reasonEmptyExtraction)
				return nil
			}

			r := m.scorePrepared(ctx, cand, prepared)
			r.ID, r.Name, r.Profile = job.ID, job.Name, prepared.Profile
			results[i] = &r
			return nil
		})
	}
	_ = g.Wait()

	return m.collect(results, skipped, topN)
}

// ScoreBatchResumes ranks many resumes for one job. The job is prepared once.
// A job with no extractable section fails with ErrEmptyJobExtraction before
// any resume is scored.
func (m *Matcher) ScoreBatchResumes(ctx context.Context, jobText string, resumes []models.ResumeInput, topN int) (models.BatchOutcome, PreparedJob, error) {
	job := m.PrepareJob(ctx, jobText)
	if job.Profile.IsEmpty() {
		return models.BatchOutcome{}, job, ErrEmptyJobExtraction
	}

	results := make([]*models.MatchResult, len(resumes))
	skipped := make([]*models.SkippedItem, len(resumes))

	g := m.newGroup()
	for i, resume := range resumes {
		g.Go(func() error {
			skip := func(reason string) {
				skipped[i] = &models.SkippedItem{ID: resume.ID, Name: resume.Name, Reason: reason}
			}
			if ctx.Err() != nil {
				skip(reasonCancelled)
				return nil
			}
			if strings.TrimSpace(resume.Text) == "" {
				skip(reasonEmptyText)
				return nil
			}

			profile := m.extractor.Extract(ctx, resume.Text, models.DocTypeResume)
			if profile.IsEmpty() {
				skip(reasonEmptyExtraction)
				return nil
			}

			r := m.scorePrepared(ctx, m.prepareCandidate(ctx, profile), job)
			r.ID, r.Name, r.Profile = resume.ID, resume.Name, profile
			results[i] = &r
			return nil
		})
	}
	_ = g.Wait()

	return m.collect(results, skipped, topN), job, nil
}

func (m *Matcher) newGroup() *errgroup.Group {
	g := &errgroup.Group{}
	if m.cfg.Concurrency > 0 {
		g.SetLimit(m.cfg.Concurrency)
	}
	return g
}

// collect keeps input order for skips and the missing-skill summary, then
// ranks results by score and truncates to topN when topN is positive.
func (m *Matcher) collect(results []*models.MatchResult, skipped []*models.SkippedItem, topN int) models.BatchOutcome {
	out := models.BatchOutcome{
		Results: []models.MatchResult{},
		Skipped: []models.SkippedItem{},
	}

	var missing [][]models.MissingSkill
	for i := range results {
		if s := skipped[i]; s != nil {
			m.log.Warn("batch item skipped", zap.String(logger.FieldDocument, s.Name), zap.String("reason", s.Reason))
			out.Skipped = append(out.Skipped, *s)
			continue
		}
		if r := results[i]; r != nil {
			out.Results = append(out.Results, *r)
			missing = append(missing, r.MissingSkills)
		}
	}
	out.MissingSkillsSummary = SummarizeMissingSkills(missing...)

	RankResults(out.Results)
	if topN > 0 && len(out.Results) > topN {
		out.Results = out.Results[:topN]
	}
	return out
}

// RankResults orders by final score, highest first, keeping input order on ties.
func RankResults(results []models.MatchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].FinalScore > results[j].FinalScore
	})
}

func (m *Matcher) FindMissingSkills(ctx context.Context, candidateSkills, jobSkills string) []models.MissingSkill {
	return m.missing.FindMissing(ctx, candidateSkills, jobSkills)
}

// ExtractSkillKeywords exposes the job-side keyword step for skill-gap reports.
func (m *Matcher) ExtractSkillKeywords(ctx context.Context, jobSkills string) string {
	return m.expander.ExtractSkillKeywords(ctx, jobSkills)
}

// BuildSearchQuery turns a resume profile into a job-board style query.
func (m *Matcher) BuildSearchQuery(ctx context.Context, profile models.ExtractedProfile) string {
	out := strings.TrimSpace(m.llm.Call(ctx, LLMRequest{
		Prompt: m.prompts.BuildSearchQueryPrompt(profile.Skills, profile.Experience),
	}))
	if out != "" {
		return out
	}
	return fmt.Sprintf("Skills: %s. Experience: %s", profile.Skills, profile.Experience)
}
