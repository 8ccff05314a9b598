package services

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"talentalign/jd-matcher/internal/models"
	"talentalign/jd-matcher/internal/repositories"
)

type memoryPoint struct {
	id      string
	vector  []float32
	payload map[string]string
}

// memoryVectorStore ranks by cosine similarity, like the cosine-distance collection.
type memoryVectorStore struct {
	mu        sync.Mutex
	points    []memoryPoint
	searchErr error
}

func (s *memoryVectorStore) InitCollection(ctx context.Context) error { return nil }

func (s *memoryVectorStore) Search(ctx context.Context, vector []float32, limit int) ([]ScoredPoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.searchErr != nil {
		return nil, s.searchErr
	}

	out := make([]ScoredPoint, 0, len(s.points))
	for _, p := range s.points {
		out = append(out, ScoredPoint{
			StoredPoint: StoredPoint{ID: p.id, Payload: p.payload},
			Score:       float32(CosineSimilarity(vector, p.vector)),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memoryVectorStore) Upsert(ctx context.Context, id string, vector []float32, payload map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.points {
		if p.id == id {
			s.points[i] = memoryPoint{id: id, vector: vector, payload: payload}
			return nil
		}
	}
	s.points = append(s.points, memoryPoint{id: id, vector: vector, payload: payload})
	return nil
}

func (s *memoryVectorStore) Scroll(ctx context.Context, limit int) ([]StoredPoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]StoredPoint, 0, len(s.points))
	for _, p := range s.points {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, StoredPoint{ID: p.id, Payload: p.payload})
	}
	return out, nil
}

func (s *memoryVectorStore) Delete(ctx context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := s.points[:0]
	for _, p := range s.points {
		if !drop[p.id] {
			kept = append(kept, p)
		}
	}
	s.points = kept
	return nil
}

type fakeDocumentRepo struct {
	docs map[uuid.UUID]*models.Document
}

func newFakeDocumentRepo(docs ...models.Document) *fakeDocumentRepo {
	r := &fakeDocumentRepo{docs: make(map[uuid.UUID]*models.Document)}
	for i := range docs {
		d := docs[i]
		r.docs[d.ID] = &d
	}
	return r
}

func (r *fakeDocumentRepo) Create(document *models.Document) error {
	if document.ID == uuid.Nil {
		document.ID = uuid.New()
	}
	r.docs[document.ID] = document
	return nil
}

func (r *fakeDocumentRepo) FindByID(id uuid.UUID) (*models.Document, error) {
	d, ok := r.docs[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return d, nil
}

func (r *fakeDocumentRepo) FindByIDs(ids []uuid.UUID) ([]models.Document, error) {
	var out []models.Document
	for _, id := range ids {
		if d, ok := r.docs[id]; ok {
			out = append(out, *d)
		}
	}
	return out, nil
}

type fakeRunRepo struct {
	mu      sync.Mutex
	runs    map[uuid.UUID]*models.MatchRun
	history []models.RunStatus
}

func newFakeRunRepo(runs ...models.MatchRun) *fakeRunRepo {
	r := &fakeRunRepo{runs: make(map[uuid.UUID]*models.MatchRun)}
	for i := range runs {
		run := runs[i]
		r.runs[run.ID] = &run
	}
	return r
}

func (r *fakeRunRepo) Create(run *models.MatchRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	r.runs[run.ID] = run
	return nil
}

func (r *fakeRunRepo) FindByID(id uuid.UUID) (*models.MatchRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.runs[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *run
	return &cp, nil
}

func (r *fakeRunRepo) setStatus(id uuid.UUID, status models.RunStatus) (*models.MatchRun, error) {
	run, ok := r.runs[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	run.Status = status
	r.history = append(r.history, status)
	return run, nil
}

func (r *fakeRunRepo) UpdateStatus(id uuid.UUID, status models.RunStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := r.setStatus(id, status)
	return err
}

func (r *fakeRunRepo) UpdateResult(id uuid.UUID, data *repositories.MatchRunUpdateData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, err := r.setStatus(id, models.StatusCompleted)
	if err != nil {
		return err
	}
	run.JobProfile = data.JobProfile
	run.Results = data.Results
	run.Skipped = data.Skipped
	return nil
}

func (r *fakeRunRepo) UpdateError(id uuid.UUID, errorMsg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, err := r.setStatus(id, models.StatusFailed)
	if err != nil {
		return err
	}
	run.ErrorMessage = &errorMsg
	return nil
}

func (r *fakeRunRepo) FindPendingJobs(limit int) ([]models.MatchRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.MatchRun
	for _, run := range r.runs {
		if run.Status == models.StatusQueued && len(out) < limit {
			out = append(out, *run)
		}
	}
	return out, nil
}

// fakePDFParser serves canned text per file path.
type fakePDFParser struct {
	texts map[string]string
}

func (p *fakePDFParser) ExtractText(filePath string) (string, error) {
	t, ok := p.texts[filePath]
	if !ok {
		return "", ErrNoPDFText
	}
	return t, nil
}

func (p *fakePDFParser) ExtractTextFromBytes(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrNoPDFText
	}
	return string(data), nil
}

func (p *fakePDFParser) ExtractTextWithMetaData(filePath string) (*PDFContent, error) {
	t, err := p.ExtractText(filePath)
	if err != nil {
		return nil, err
	}
	return &PDFContent{Text: t, PageCount: 1, FilePath: filePath}, nil
}
