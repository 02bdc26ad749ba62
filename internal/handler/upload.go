package handler

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	errUnsupportedImage = errors.New("format must be PNG, JPG, or WEBP")
	errFileTooLarge     = errors.New("file exceeds the upload size limit")
)

var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
}

// saveUploadedImage reads the multipart field, checks the MIME type, and
// writes the file under dir with a random name. Returns the public path
// served from /uploads.
func saveUploadedImage(r *http.Request, field, dir string, maxBytes int64) (string, error) {
	if maxBytes <= 0 {
		maxBytes = 2 << 20
	}
	if err := r.ParseMultipartForm(maxBytes + 1<<20); err != nil {
		return "", errors.New("invalid multipart form")
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", errors.New(field + " is required")
	}
	defer file.Close()

	// Read one byte past the ceiling so an oversized payload is rejected
	// rather than silently truncated.
	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil || len(data) == 0 {
		return "", errors.New("empty file")
	}
	if int64(len(data)) > maxBytes {
		return "", errFileTooLarge
	}

	mime := strings.ToLower(strings.TrimSpace(header.Header.Get("Content-Type")))
	if mime == "" || mime == "application/octet-stream" {
		mime = http.DetectContentType(data)
	}
	if mime == "image/jpg" {
		mime = "image/jpeg"
	}
	ext, ok := imageExtensions[mime]
	if !ok {
		return "", errUnsupportedImage
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	name := uuid.NewString() + ext
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", err
	}
	return "/uploads/" + name, nil
}
