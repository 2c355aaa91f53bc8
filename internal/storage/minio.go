package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type MinioConfig struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	Bucket     string
	UseSSL     bool
	PublicBase string // public domain in front of the bucket, optional
}

// MinioStorage stores blobs in an S3 compatible bucket.
type MinioStorage struct {
	client *minio.Client
	cfg    MinioConfig
}

// NewMinioStorage connects and creates the bucket if it does not exist yet.
func NewMinioStorage(ctx context.Context, cfg MinioConfig) (*MinioStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
	}
	return &MinioStorage{client: client, cfg: cfg}, nil
}

func (m *MinioStorage) Save(ctx context.Context, key string, content []byte, contentType string) error {
	_, err := m.client.PutObject(ctx, m.cfg.Bucket, key, bytes.NewReader(content), int64(len(content)),
		minio.PutObjectOptions{ContentType: contentType})
	return err
}

func (m *MinioStorage) Delete(ctx context.Context, key string) error {
	return m.client.RemoveObject(ctx, m.cfg.Bucket, key, minio.RemoveObjectOptions{})
}

func (m *MinioStorage) URL(key string) string {
	if m.cfg.PublicBase != "" {
		return joinURL(m.cfg.PublicBase, key)
	}
	scheme := "http://"
	if m.cfg.UseSSL {
		scheme = "https://"
	}
	return joinURL(scheme+m.cfg.Endpoint+"/"+m.cfg.Bucket, key)
}
