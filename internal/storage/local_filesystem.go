package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// LocalStorage writes blobs below Root; they are served by the API under BaseURL.
type LocalStorage struct {
	Root    string
	BaseURL string
}

func NewLocalStorage(root, baseURL string) *LocalStorage {
	return &LocalStorage{Root: root, BaseURL: baseURL}
}

func (s *LocalStorage) Save(ctx context.Context, key string, content []byte, contentType string) error {
	filePath := s.path(key)
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	if _, err := file.Write(content); err != nil {
		return err
	}
	return file.Sync()
}

// Delete removes the file. A file that is already gone is not an error.
func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *LocalStorage) URL(key string) string {
	return joinURL(s.BaseURL, key)
}

func (s *LocalStorage) path(key string) string {
	return filepath.Join(s.Root, filepath.FromSlash(filepath.Clean("/"+key)))
}
