// Package storage keeps uploaded images outside the database and resolves
// their public URLs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var (
	ErrEmptyFile  = errors.New("the submitted file is empty")
	ErrNotAnImage = errors.New("upload a valid image. The file you uploaded was either not an image or a corrupted image")
	ErrTooLarge   = errors.New("the submitted file is too large")
)

// Storage is a blob store addressed by slash-separated keys.
type Storage interface {
	Save(ctx context.Context, key string, content []byte, contentType string) error
	Delete(ctx context.Context, key string) error
	// URL returns either an absolute URL or a host-relative path for key.
	URL(key string) string
}

// Upload is a file received from a client.
type Upload struct {
	Filename string
	Content  io.Reader
}

var imageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp", "image/bmp", "image/heic", "image/heif"}

// ReadImage reads the whole upload, refusing anything above maxBytes or whose
// content is not a known image format.
func ReadImage(up Upload, maxBytes int64) ([]byte, *mimetype.MIME, error) {
	data, err := io.ReadAll(io.LimitReader(up.Content, maxBytes+1))
	if err != nil {
		return nil, nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, nil, ErrEmptyFile
	}
	if int64(len(data)) > maxBytes {
		return nil, nil, ErrTooLarge
	}

	mime := mimetype.Detect(data)
	if !mimetype.EqualsAny(mime.String(), imageTypes...) {
		return nil, nil, ErrNotAnImage
	}
	return data, mime, nil
}

// SaveImage validates an upload and stores it under dir with a random name.
// It returns the key the blob was saved under.
func SaveImage(ctx context.Context, s Storage, dir string, up Upload, maxBytes int64) (string, error) {
	data, mime, err := ReadImage(up, maxBytes)
	if err != nil {
		return "", err
	}

	key := path.Join(dir, uuid.NewString()+mime.Extension())
	if err := s.Save(ctx, key, data, mime.String()); err != nil {
		return "", fmt.Errorf("save %s: %w", key, err)
	}
	return key, nil
}

// IsUploadError reports whether err was caused by the client's file rather than the store.
func IsUploadError(err error) bool {
	return errors.Is(err, ErrEmptyFile) || errors.Is(err, ErrNotAnImage) || errors.Is(err, ErrTooLarge)
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}

var (
	_ Storage = (*LocalStorage)(nil)
	_ Storage = (*MinioStorage)(nil)
	_ Storage = (*FirebaseStorage)(nil)
)
