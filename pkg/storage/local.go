package storage

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Uploader is the object-storage collaborator. Implementations persist the
// bytes synchronously and return a URL the client can fetch later; a failed
// upload aborts the surrounding request.
type Uploader interface {
	Upload(data []byte, folder, filename string) (string, error)
	Delete(url string) error
}

// LocalStorage persists uploads on disk under a base directory and serves
// them under a public base URL (mounted as a static route).
type LocalStorage struct {
	baseDir string
	baseURL string
}

// NewLocalStorage ensures the base directory exists and returns a handle.
func NewLocalStorage(baseDir, baseURL string) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	if baseURL == "" {
		baseURL = "/uploads"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads directory: %w", err)
	}
	return &LocalStorage{baseDir: baseDir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Upload writes the bytes under folder with a collision-free name derived
// from the original filename and returns the public URL.
func (s *LocalStorage) Upload(data []byte, folder, filename string) (string, error) {
	name := s.objectName(filename)
	dir := filepath.Join(s.baseDir, filepath.Clean(folder))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("prepare upload directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return s.baseURL + "/" + path.Join(folder, name), nil
}

// Delete removes a previously uploaded object if present.
func (s *LocalStorage) Delete(url string) error {
	rel := strings.TrimPrefix(url, s.baseURL+"/")
	if rel == url || rel == "" {
		return nil
	}
	full := filepath.Join(s.baseDir, filepath.FromSlash(filepath.Clean(rel)))
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete upload: %w", err)
	}
	return nil
}

// BaseDir exposes the root directory for static-route mounting.
func (s *LocalStorage) BaseDir() string {
	return s.baseDir
}

func (s *LocalStorage) objectName(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return fmt.Sprintf("%d-%s%s", time.Now().UTC().Unix(), uuid.NewString()[:8], ext)
}
