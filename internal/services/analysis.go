package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"talentalign/jd-matcher/internal/logger"
	"talentalign/jd-matcher/internal/models"
	"talentalign/jd-matcher/internal/repositories"
)

var (
	ErrEmptyExtraction = errors.New("failed to extract meaningful content from the resume")
	ErrNoResumes       = errors.New("no resumes to analyze")

	ErrEmptyJobExtraction = errors.New("failed to extract meaningful content from the job description")
)

type AnalysisService interface {
	AnalyzeResume(ctx context.Context, resumeText string) (*models.AnalyzeResumeResponse, error)
	SkillGap(ctx context.Context, resumeText, jobText string) (*models.SkillGapResponse, error)
	ProcessMatchRun(ctx context.Context, runID uuid.UUID) error
}

type AnalysisConfig struct {
	TopN        int
	SearchLimit int
}

type analysisService struct {
	matcher    *Matcher
	store      VectorStore
	similarity *SimilarityService
	runRepo    repositories.MatchRunRepository
	docRepo    repositories.DocumentRepository
	pdfParser  PDFParserService
	cfg        AnalysisConfig
	log        *zap.Logger
}

func NewAnalysisService(
	matcher *Matcher,
	store VectorStore,
	similarity *SimilarityService,
	runRepo repositories.MatchRunRepository,
	docRepo repositories.DocumentRepository,
	pdfParser PDFParserService,
	cfg AnalysisConfig,
	log *zap.Logger,
) AnalysisService {
	return &analysisService{
		matcher:    matcher,
		store:      store,
		similarity: similarity,
		runRepo:    runRepo,
		docRepo:    docRepo,
		pdfParser:  pdfParser,
		cfg:        cfg,
		log:        logger.OrNop(log),
	}
}

// AnalyzeResume finds the stored job postings closest to a resume and ranks them.
func (a *analysisService) AnalyzeResume(ctx context.Context, resumeText string) (*models.AnalyzeResumeResponse, error) {
	profile := a.matcher.ExtractProfile(ctx, resumeText, models.DocTypeResume)
	if profile.IsEmpty() {
		return nil, ErrEmptyExtraction
	}

	query := a.matcher.BuildSearchQuery(ctx, profile)
	a.log.Info("searching job postings", zap.String("query", logger.TruncateForLog(query, 120)))

	vector, err := a.similarity.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to create query vector: %w", err)
	}

	hits, err := a.store.Search(ctx, vector, a.cfg.SearchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to search job postings: %w", err)
	}

	resp := &models.AnalyzeResumeResponse{
		CandidateProfile:     profile,
		SearchQuery:          query,
		JobMatches:           []models.MatchResult{},
		MissingSkillsSummary: []models.MissingSkill{},
	}
	if len(hits) == 0 {
		return resp, nil
	}

	jobs := make([]models.JobInput, 0, len(hits))
	for _, hit := range hits {
		name := hit.FileName()
		if name == "" {
			name = "No Title"
		}
		jobs = append(jobs, models.JobInput{ID: hit.ID, Name: name, Text: hit.JobText()})
	}

	outcome := a.matcher.ScoreBatch(ctx, profile, jobs, a.cfg.TopN)
	resp.JobMatches = outcome.Results
	resp.MissingSkillsSummary = outcome.MissingSkillsSummary
	for _, s := range outcome.Skipped {
		resp.Skipped = append(resp.Skipped, s.String())
	}

	a.log.Info("resume analyzed",
		zap.Int("candidates", len(hits)),
		zap.Int("matches", len(resp.JobMatches)),
		zap.Int("skipped", len(outcome.Skipped)),
	)
	return resp, nil
}

func (a *analysisService) SkillGap(ctx context.Context, resumeText, jobText string) (*models.SkillGapResponse, error) {
	return a.matcher.SkillGap(ctx, resumeText, jobText)
}

// ProcessMatchRun ranks the run's uploaded resumes against its job posting
// and persists the outcome. Unreadable resumes are skipped, not fatal.
func (a *analysisService) ProcessMatchRun(ctx context.Context, runID uuid.UUID) error {
	if err := a.runRepo.UpdateStatus(runID, models.StatusProcessing); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	log := a.log.With(zap.String("run_id", runID.String()))
	log.Info("starting match run")

	fail := func(msg string, err error) error {
		if uerr := a.runRepo.UpdateError(runID, fmt.Sprintf("%s: %v", msg, err)); uerr != nil {
			log.Error("failed to record run error", zap.Error(uerr))
		}
		return fmt.Errorf("%s: %w", msg, err)
	}

	run, err := a.runRepo.FindByID(runID)
	if err != nil {
		return fail("failed to get match run", err)
	}

	jobDoc, err := a.docRepo.FindByID(run.JobDocumentID)
	if err != nil {
		return fail("job description document not found", err)
	}

	jobText, err := a.pdfParser.ExtractText(jobDoc.FilePath)
	if err != nil {
		return fail("failed to parse job description", err)
	}

	docs, err := a.docRepo.FindByIDs(run.ResumeDocumentIDs)
	if err != nil {
		return fail("failed to load resumes", err)
	}
	if len(docs) == 0 {
		return fail("failed to load resumes", ErrNoResumes)
	}

	found := make(map[uuid.UUID]bool, len(docs))
	var skipped []models.SkippedItem
	resumes := make([]models.ResumeInput, 0, len(docs))
	for _, doc := range docs {
		found[doc.ID] = true
		text, err := a.pdfParser.ExtractText(doc.FilePath)
		if err != nil {
			log.Warn("resume unreadable", zap.String(logger.FieldDocument, doc.OriginalFileName), zap.Error(err))
			skipped = append(skipped, models.SkippedItem{ID: doc.ID.String(), Name: doc.OriginalFileName, Reason: "unreadable pdf"})
			continue
		}
		resumes = append(resumes, models.ResumeInput{ID: doc.ID.String(), Name: doc.OriginalFileName, Text: text})
	}
	for _, id := range run.ResumeDocumentIDs {
		if !found[id] {
			skipped = append(skipped, models.SkippedItem{ID: id.String(), Name: id.String(), Reason: "document not found"})
		}
	}

	outcome, job, err := a.matcher.ScoreBatchResumes(ctx, jobText, resumes, run.TopN)
	if err != nil {
		return fail("failed to extract job description", err)
	}
	skipped = append(skipped, outcome.Skipped...)

	if err := a.runRepo.UpdateResult(runID, &repositories.MatchRunUpdateData{
		JobProfile: job.Profile,
		Results:    outcome.Results,
		Skipped:    skipped,
	}); err != nil {
		return fmt.Errorf("failed to save results: %w", err)
	}

	log.Info("match run completed", zap.Int("ranked", len(outcome.Results)), zap.Int("skipped", len(skipped)))
	return nil
}
