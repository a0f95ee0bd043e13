package services

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/placement/internal/pkg/apperrors"
	"github.com/yigit/placement/internal/pkg/filestorage"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func imageHeader(t *testing.T, filename, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["file"][0]
}

func storedFiles(t *testing.T, root string) []string {
	t.Helper()
	files, err := filepath.Glob(filepath.Join(root, "images", "*"))
	require.NoError(t, err)
	return files
}

func TestUploadImage(t *testing.T) {
	root := t.TempDir()
	storage, err := filestorage.NewLocalStorage(root, "")
	require.NoError(t, err)
	svc := NewUploadService(storage, zerolog.Nop())

	t.Run("png", func(t *testing.T) {
		url, err := svc.UploadImage(imageHeader(t, "logo.png", "image/png", pngHeader))
		require.NoError(t, err)
		assert.Contains(t, url, "/uploads/images/")

		data, err := os.ReadFile(storage.GetFullPath(url))
		require.NoError(t, err)
		assert.Equal(t, pngHeader, data)
	})

	t.Run("declared type not allowed", func(t *testing.T) {
		_, err := svc.UploadImage(imageHeader(t, "notes.pdf", "application/pdf", []byte("%PDF-1.4")))
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	})

	t.Run("content does not match declared type", func(t *testing.T) {
		before := len(storedFiles(t, root))
		_, err := svc.UploadImage(imageHeader(t, "fake.png", "image/png", []byte("<html>not an image</html>")))
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
		assert.Len(t, storedFiles(t, root), before)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := svc.UploadImage(nil)
		assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	})
}
