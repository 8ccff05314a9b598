package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talentalign/jd-matcher/internal/models"
	"talentalign/jd-matcher/internal/services"
)

func newUploadApp(t *testing.T, maxSize int64) (*memDocRepo, *fiberTestApp) {
	t.Helper()
	repo := newMemDocRepo()
	h := NewUploadHandler(repo, services.NewStorageService(t.TempDir()), maxSize, nil)
	app := newTestApp()
	app.Post("/upload", h.HandleUpload)
	return repo, &fiberTestApp{t: t, app: app}
}

func TestHandleUploadStoresResumesAndJobs(t *testing.T) {
	repo, app := newUploadApp(t, 1024)

	resp := app.do(multipartRequest(t, http.MethodPost, "/upload", []formFile{
		{"resume", "alice.pdf", "alice"},
		{"resume", "bob.pdf", "bob"},
		{"jd", "backend.pdf", "backend role"},
	}, nil))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body struct {
		Documents []models.UploadResponse `json:"documents"`
	}
	decodeBody(t, resp, &body)
	require.Len(t, body.Documents, 3)

	types := map[string]string{}
	for _, d := range body.Documents {
		types[d.OriginalName] = d.FileType
	}
	assert.Equal(t, map[string]string{
		"alice.pdf":   models.FileTypeResume,
		"bob.pdf":     models.FileTypeResume,
		"backend.pdf": models.FileTypeJob,
	}, types)
	assert.Len(t, repo.docs, 3)
}

func TestHandleUploadRejectsBadInput(t *testing.T) {
	tests := []struct {
		name  string
		files []formFile
	}{
		{"no files", nil},
		{"not a pdf", []formFile{{"resume", "alice.docx", "alice"}}},
		{"too large", []formFile{{"jd", "big.pdf", "0123456789abcdef"}}},
		{"unknown field", []formFile{{"cv", "alice.pdf", "alice"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, app := newUploadApp(t, 10)
			resp := app.do(multipartRequest(t, http.MethodPost, "/upload", tt.files, map[string]string{"note": "x"}))
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Empty(t, repo.docs)
		})
	}
}
