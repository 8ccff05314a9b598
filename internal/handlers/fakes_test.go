package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"talentalign/jd-matcher/internal/models"
	"talentalign/jd-matcher/internal/repositories"
	"talentalign/jd-matcher/internal/services"
)

// textParser treats the uploaded bytes as the PDF's text.
type textParser struct{}

func (textParser) ExtractText(filePath string) (string, error) { return "", services.ErrNoPDFText }

func (textParser) ExtractTextFromBytes(data []byte) (string, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return "", services.ErrNoPDFText
	}
	return string(data), nil
}

func (textParser) ExtractTextWithMetaData(filePath string) (*services.PDFContent, error) {
	return nil, services.ErrNoPDFText
}

type fakeAnalysis struct {
	analyze  func(text string) (*models.AnalyzeResumeResponse, error)
	skillGap func(resume, job string) (*models.SkillGapResponse, error)
}

func (f *fakeAnalysis) AnalyzeResume(ctx context.Context, resumeText string) (*models.AnalyzeResumeResponse, error) {
	return f.analyze(resumeText)
}

func (f *fakeAnalysis) SkillGap(ctx context.Context, resumeText, jobText string) (*models.SkillGapResponse, error) {
	return f.skillGap(resumeText, jobText)
}

func (f *fakeAnalysis) ProcessMatchRun(ctx context.Context, runID uuid.UUID) error { return nil }

type fakeCatalog struct {
	jobs    []models.JobPosting
	addErr  error
	deleted []string
}

func (f *fakeCatalog) AddJob(ctx context.Context, fileName, text string) (*models.JobPosting, error) {
	if f.addErr != nil {
		return nil, f.addErr
	}
	job := models.JobPosting{ID: uuid.NewString(), FileName: fileName, FullText: text}
	f.jobs = append(f.jobs, job)
	return &job, nil
}

func (f *fakeCatalog) ListJobs(ctx context.Context, limit int) ([]models.JobPosting, error) {
	out := append([]models.JobPosting(nil), f.jobs...)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeCatalog) DeleteJobs(ctx context.Context, ids []string) error {
	f.deleted = append(f.deleted, ids...)
	return nil
}

type memDocRepo struct {
	mu   sync.Mutex
	docs map[uuid.UUID]models.Document
}

func newMemDocRepo() *memDocRepo {
	return &memDocRepo{docs: make(map[uuid.UUID]models.Document)}
}

func (r *memDocRepo) Create(document *models.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[document.ID] = *document
	return nil
}

func (r *memDocRepo) FindByID(id uuid.UUID) (*models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.docs[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &d, nil
}

func (r *memDocRepo) FindByIDs(ids []uuid.UUID) ([]models.Document, error) {
	var out []models.Document
	for _, id := range ids {
		if d, err := r.FindByID(id); err == nil {
			out = append(out, *d)
		}
	}
	return out, nil
}

type memRunRepo struct {
	runs map[uuid.UUID]models.MatchRun
}

func newMemRunRepo() *memRunRepo {
	return &memRunRepo{runs: make(map[uuid.UUID]models.MatchRun)}
}

func (r *memRunRepo) Create(run *models.MatchRun) error {
	r.runs[run.ID] = *run
	return nil
}

func (r *memRunRepo) FindByID(id uuid.UUID) (*models.MatchRun, error) {
	run, ok := r.runs[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &run, nil
}

func (r *memRunRepo) UpdateStatus(id uuid.UUID, status models.RunStatus) error { return nil }

func (r *memRunRepo) UpdateResult(id uuid.UUID, data *repositories.MatchRunUpdateData) error {
	return nil
}

func (r *memRunRepo) UpdateError(id uuid.UUID, errorMsg string) error { return nil }

func (r *memRunRepo) FindPendingJobs(limit int) ([]models.MatchRun, error) { return nil, nil }

type fakeWorker struct {
	enqueued []uuid.UUID
}

func (w *fakeWorker) Start(ctx context.Context)  {}
func (w *fakeWorker) Stop()                      {}
func (w *fakeWorker) EnqueueJob(runID uuid.UUID) { w.enqueued = append(w.enqueued, runID) }

func newTestApp() *fiber.App {
	return fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
}

type fiberTestApp struct {
	t   *testing.T
	app *fiber.App
}

func (a *fiberTestApp) do(req *http.Request) *http.Response {
	a.t.Helper()
	resp, err := a.app.Test(req, -1)
	require.NoError(a.t, err)
	return resp
}

type formFile struct {
	field, name, content string
}

func multipartRequest(t *testing.T, method, target string, files []formFile, fields map[string]string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for _, f := range files {
		part, err := w.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = io.WriteString(part, f.content)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func decodeBody(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}
