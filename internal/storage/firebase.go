package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go"
	"google.golang.org/api/option"
)

// FirebaseStorage stores blobs in the Cloud Storage bucket of a Firebase project.
type FirebaseStorage struct {
	bucket     *gcs.BucketHandle
	bucketName string
}

func NewFirebaseStorage(ctx context.Context, credentialsFile, bucketName string) (*FirebaseStorage, error) {
	opt := option.WithCredentialsFile(credentialsFile)
	app, err := firebase.NewApp(ctx, &firebase.Config{StorageBucket: bucketName}, opt)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}

	client, err := app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase storage client: %w", err)
	}

	bucket, err := client.DefaultBucket()
	if err != nil {
		return nil, fmt.Errorf("firebase bucket: %w", err)
	}
	return &FirebaseStorage{bucket: bucket, bucketName: bucketName}, nil
}

func (s *FirebaseStorage) Save(ctx context.Context, key string, content []byte, contentType string) error {
	w := s.bucket.Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(content); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func (s *FirebaseStorage) Delete(ctx context.Context, key string) error {
	err := s.bucket.Object(key).Delete(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil
	}
	return err
}

func (s *FirebaseStorage) URL(key string) string {
	return "https://firebasestorage.googleapis.com/v0/b/" + s.bucketName + "/o/" + strings.ReplaceAll(url.PathEscape(key), "/", "%2F") + "?alt=media"
}
