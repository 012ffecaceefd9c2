// Package storage persists uploaded vehicle documents on local disk.
//
// The store assigns each upload a random filename under the configured
// directory and hands the resulting path back to the caller; it does not
// inspect file type or content.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// DocumentStore saves uploaded documents under a base directory.
type DocumentStore struct {
	baseDir string
}

// NewDocumentStore ensures the upload directory exists and returns a store.
func NewDocumentStore(baseDir string) (*DocumentStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DocumentStore{baseDir: baseDir}, nil
}

// Save writes the uploaded content to disk and returns the stored path.
// The original filename contributes only its extension; the stored name
// is random so uploads cannot collide or escape the base directory.
func (s *DocumentStore) Save(src io.Reader, originalName string) (string, error) {
	ext := filepath.Ext(originalName)
	name := uuid.New().String() + ext
	path := filepath.Join(s.baseDir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create document file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return "", fmt.Errorf("write document file: %w", err)
	}

	if err := dst.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close document file: %w", err)
	}

	return path, nil
}

// Remove deletes a stored document. Used to clean up when the database
// write fails after an upload succeeded.
func (s *DocumentStore) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove document file: %w", err)
	}
	return nil
}
