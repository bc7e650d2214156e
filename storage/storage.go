// Package storage validates uploaded images and keeps them on local disk or
// in Cloudflare R2.
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
)

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
}

// Upload is an image received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// RejectedFileError reports why an upload was refused.
type RejectedFileError struct {
	Reason string
}

func (e *RejectedFileError) Error() string {
	return e.Reason
}

// Store saves validated uploads and opens them again by reference.
type Store interface {
	Save(ctx context.Context, upload Upload) (string, error)
	Open(ctx context.Context, ref string) (io.ReadCloser, error)
}

// Validator checks extension, content type and size of uploads.
type Validator struct {
	MaxSize int64
}

func (v Validator) Validate(upload Upload) error {
	ext := strings.ToLower(filepath.Ext(upload.Filename))
	if !allowedExtensions[ext] {
		return &RejectedFileError{Reason: fmt.Sprintf("File type '%s' not allowed. Accepted: %s",
			ext, strings.Join(AllowedExtensions(), ", "))}
	}
	if upload.ContentType != "" && !strings.HasPrefix(upload.ContentType, "image/") {
		return &RejectedFileError{Reason: "Only image files are accepted"}
	}
	if v.MaxSize > 0 && upload.Size > v.MaxSize {
		return v.tooLarge()
	}
	return nil
}

func (v Validator) tooLarge() error {
	return &RejectedFileError{Reason: fmt.Sprintf("File too large. Maximum size: %dMB", v.MaxSize/(1024*1024))}
}

// readLimited reads the whole upload body, failing once it exceeds max bytes.
// Declared sizes come from the client, so the body is checked as well.
func (v Validator) readLimited(r io.Reader) ([]byte, error) {
	if v.MaxSize <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, v.MaxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > v.MaxSize {
		return nil, v.tooLarge()
	}
	return data, nil
}

func AllowedExtensions() []string {
	exts := make([]string, 0, len(allowedExtensions))
	for ext := range allowedExtensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// objectName returns a random name that keeps the upload's extension.
func objectName(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = ".jpg"
	}
	return strings.ReplaceAll(uuid.NewString(), "-", "") + ext
}
