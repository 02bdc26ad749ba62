package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multipartImageRequest(t *testing.T, contentType string, payload []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="photo.bin"`)
	header.Set("Content-Type", contentType)
	part, err := form.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/pets/1/photo", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	return req
}

func TestSaveUploadedImageRejectsOversized(t *testing.T) {
	dir := t.TempDir()
	payload := bytes.Repeat([]byte{0xAB}, 8196)
	req := multipartImageRequest(t, "image/jpeg", payload)

	_, err := saveUploadedImage(req, "file", dir, 1024)
	assert.ErrorIs(t, err, errFileTooLarge)

	// Nothing reaches disk, truncated or otherwise.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSaveUploadedImageStoresWithinLimit(t *testing.T) {
	dir := t.TempDir()
	payload := bytes.Repeat([]byte{0xCD}, 512)
	req := multipartImageRequest(t, "image/png", payload)

	path, err := saveUploadedImage(req, "file", dir, 1024)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, "/uploads/"))
	assert.True(t, strings.HasSuffix(path, ".png"))

	saved, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(path, "/uploads/")))
	require.NoError(t, err)
	assert.Len(t, saved, len(payload))
}

func TestSaveUploadedImageRejectsUnsupportedType(t *testing.T) {
	dir := t.TempDir()
	req := multipartImageRequest(t, "application/pdf", []byte("%PDF-1.4"))

	_, err := saveUploadedImage(req, "file", dir, 1024)
	assert.ErrorIs(t, err, errUnsupportedImage)
}
