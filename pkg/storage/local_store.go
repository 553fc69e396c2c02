package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalStore persists images on disk under a base directory served at baseURL.
type LocalStore struct {
	baseDir string
	baseURL string
}

// NewLocalStore ensures the base directory exists and returns a handle.
func NewLocalStore(baseDir, baseURL string) (*LocalStore, error) {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	if baseURL == "" {
		baseURL = "/uploads"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads directory: %w", err)
	}
	return &LocalStore{baseDir: baseDir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Dir returns the directory files are written to.
func (s *LocalStore) Dir() string {
	return s.baseDir
}

// Upload writes data under a generated name and returns its public URL.
func (s *LocalStore) Upload(ctx context.Context, filename, contentType string, data []byte) (StoredImage, error) {
	if len(data) == 0 {
		return StoredImage{}, ErrEmptyImage
	}
	if err := ctx.Err(); err != nil {
		return StoredImage{}, err
	}
	name := uuid.NewString() + extensionFor(filename, contentType)
	if err := os.WriteFile(filepath.Join(s.baseDir, name), data, 0o644); err != nil {
		return StoredImage{}, fmt.Errorf("write image file: %w", err)
	}
	return StoredImage{URL: s.baseURL + "/" + name, PublicID: name}, nil
}

// Delete removes a stored file if present.
func (s *LocalStore) Delete(_ context.Context, publicID string) error {
	path, err := s.resolve(publicID)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete image file: %w", err)
	}
	return nil
}

func (s *LocalStore) resolve(publicID string) (string, error) {
	name := filepath.Base(publicID)
	if name != publicID || name == "." || name == ".." || name == string(filepath.Separator) {
		return "", fmt.Errorf("invalid image id %q", publicID)
	}
	return filepath.Join(s.baseDir, name), nil
}
