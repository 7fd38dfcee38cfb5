package services

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/intelliapply/internal/document"
)

func multipartFile(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))

	return req.MultipartForm.File["file"][0]
}

func TestStorage_SaveAndDelete(t *testing.T) {
	dir := t.TempDir()
	s := NewStorageService(dir, 0)
	require.NoError(t, s.EnsureUploadDir())

	name, path, err := s.SaveFile("user-1", multipartFile(t, "CV.PDF", []byte("%PDF-1.4")), "resume")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(name, "resume_"))
	assert.Equal(t, ".pdf", filepath.Ext(name))
	assert.Equal(t, filepath.Join(dir, "user-1", name), path)

	got, err := s.GetFilePath("user-1", name)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	require.NoError(t, s.DeleteFile("user-1", name))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestStorage_RejectsUnsupportedAndOversized(t *testing.T) {
	s := NewStorageService(t.TempDir(), 16)

	_, _, err := s.SaveFile("u", multipartFile(t, "cv.txt", []byte("hi")), "resume")
	assert.ErrorIs(t, err, document.ErrUnsupportedType)

	_, _, err = s.SaveFile("u", multipartFile(t, "cv.docx", bytes.Repeat([]byte("x"), 64)), "resume")
	assert.ErrorIs(t, err, document.ErrFileTooLarge)
}

func TestStorage_RejectsTraversal(t *testing.T) {
	s := NewStorageService(t.TempDir(), 0)

	_, err := s.GetFilePath("u", "../other/secret.pdf")
	assert.ErrorIs(t, err, ErrInvalidFileName)

	_, err = s.GetFilePath("..", "x.pdf")
	assert.ErrorIs(t, err, ErrInvalidFileName)
}
