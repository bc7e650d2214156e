package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// LocalStore keeps uploads as files in a directory.
type LocalStore struct {
	Dir       string
	validator Validator
	logger    *zap.Logger
}

var _ Store = (*LocalStore)(nil)

func NewLocalStore(dir string, maxSize int64, logger *zap.Logger) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{
		Dir:       dir,
		validator: Validator{MaxSize: maxSize},
		logger:    logger.Named("local-store"),
	}, nil
}

func (s *LocalStore) Save(_ context.Context, upload Upload) (string, error) {
	if err := s.validator.Validate(upload); err != nil {
		return "", err
	}
	data, err := s.validator.readLimited(upload.Body)
	if err != nil {
		return "", err
	}

	name := objectName(upload.Filename)
	if err := os.WriteFile(filepath.Join(s.Dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}

	s.logger.Info("Saved upload", zap.String("name", name), zap.Int("bytes", len(data)))
	return name, nil
}

func (s *LocalStore) Open(_ context.Context, ref string) (io.ReadCloser, error) {
	clean := filepath.Clean("/" + ref)
	if strings.Contains(ref, "..") || clean == "/" {
		return nil, fmt.Errorf("invalid image reference %q", ref)
	}
	return os.Open(filepath.Join(s.Dir, clean))
}
