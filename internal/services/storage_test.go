package services

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multipartHeader(t *testing.T, field, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile(field, name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File[field][0]
}

func TestStorageSaveReadDelete(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	s := NewStorageService(dir)
	require.NoError(t, s.EnsureUploadDir())

	stored, err := s.SaveFile(multipartHeader(t, "resume", "CV.PDF", []byte("%PDF-1.4 fake")), "resume")
	require.NoError(t, err)
	assert.Equal(t, int64(13), stored.Size)
	assert.Equal(t, ".pdf", filepath.Ext(stored.Filename))
	assert.Equal(t, s.GetFilePath(stored.Filename), stored.Path)

	data, err := s.ReadFile(stored.Path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 fake", string(data))

	require.NoError(t, s.DeleteFile(stored.Filename))
	_, err = os.Stat(stored.Path)
	assert.True(t, os.IsNotExist(err))
}

func TestStorageRejectsNonPDF(t *testing.T) {
	s := NewStorageService(t.TempDir())
	_, err := s.SaveFile(multipartHeader(t, "resume", "cv.docx", []byte("x")), "resume")
	require.ErrorIs(t, err, ErrUnsupportedFile)
}

func TestGetFilePathStaysInUploadDir(t *testing.T) {
	s := NewStorageService("/srv/uploads")
	assert.Equal(t, "/srv/uploads/evil.pdf", s.GetFilePath("../../etc/evil.pdf"))
}
