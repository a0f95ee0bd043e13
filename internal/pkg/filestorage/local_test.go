package filestorage

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multipartHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["file"][0]
}

func TestSaveAndDelete(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir(), "http://localhost:8080/")
	require.NoError(t, err)

	url, err := ls.SaveFileWithPath(multipartHeader(t, "Logo.PNG", []byte("png")), "images")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:8080/uploads/images/"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	full := ls.GetFullPath(url)
	data, err := os.ReadFile(full)
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))

	require.NoError(t, ls.DeleteFile(url))
	_, err = os.Stat(full)
	assert.True(t, os.IsNotExist(err))

	// deleting twice is fine
	assert.NoError(t, ls.DeleteFile(url))
}

func TestSubPathCannotEscapeRoot(t *testing.T) {
	root := t.TempDir()
	ls, err := NewLocalStorage(root, "")
	require.NoError(t, err)

	url, err := ls.SaveFileWithPath(multipartHeader(t, "a.jpg", []byte("x")), "../../etc")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ls.GetFullPath(url), root))
	assert.Equal(t, "", ls.GetFullPath("/uploads/../../secret"))
	assert.Equal(t, "", ls.GetFullPath("https://elsewhere.example/x.png"))
}
