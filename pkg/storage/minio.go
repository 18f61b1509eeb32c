package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"etala-reporting-system/pkg/config"
)

// AttachmentStore keeps report attachments in a MinIO/S3 bucket. Objects are
// keyed by ticket number so everything belonging to one report lives under
// one prefix.
type AttachmentStore struct {
	client   *minio.Client
	bucket   string
	initOnce sync.Once
	initErr  error
}

type StoreConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// ConfigFromEnv reads MINIO_* variables with local-development fallbacks.
func ConfigFromEnv() StoreConfig {
	return StoreConfig{
		Endpoint:  config.Getenv("MINIO_ENDPOINT", "localhost:9000"),
		AccessKey: config.Getenv("MINIO_ACCESS_KEY", "minioadmin"),
		SecretKey: config.Getenv("MINIO_SECRET_KEY", "minioadmin"),
		Bucket:    config.Getenv("MINIO_BUCKET", "gad-attachments"),
		Region:    config.Getenv("MINIO_REGION", "us-east-1"),
		UseSSL:    strings.EqualFold(config.Getenv("MINIO_USE_SSL", "false"), "true"),
	}
}

func NewAttachmentStore(cfg StoreConfig) (*AttachmentStore, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("minio access key and secret key are required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("minio bucket is required")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Region: cfg.Region,
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}

	return &AttachmentStore{client: client, bucket: cfg.Bucket}, nil
}

func (s *AttachmentStore) ensureBucket(ctx context.Context) error {
	s.initOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucket)
		if err != nil {
			s.initErr = err
			return
		}
		if exists {
			return
		}
		s.initErr = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
	})
	return s.initErr
}

// Put uploads one attachment and returns the stored object URL.
func (s *AttachmentStore) Put(ctx context.Context, ticket, fileName, contentType string, r io.Reader, size int64) (string, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return "", fmt.Errorf("ensure bucket: %w", err)
	}

	objectName := fmt.Sprintf("%s/%d-%s", ticket, time.Now().UnixNano(), sanitizeName(fileName))
	_, err := s.client.PutObject(ctx, s.bucket, objectName, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", objectName, err)
	}

	return fmt.Sprintf("/%s/%s", s.bucket, objectName), nil
}

// PresignGet returns a short-lived download URL for a stored object path as
// produced by Put.
func (s *AttachmentStore) PresignGet(ctx context.Context, storedURL string, expiry time.Duration) (string, error) {
	objectName := strings.TrimPrefix(storedURL, "/"+s.bucket+"/")
	u, err := s.client.PresignedGetObject(ctx, s.bucket, objectName, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", objectName, err)
	}
	return u.String(), nil
}

func sanitizeName(name string) string {
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	if name == "" {
		name = "attachment"
	}
	return name
}
