package storage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"time"

	"github.com/collegenews/collegenews/backend/go-services/internal/config"
	"github.com/collegenews/collegenews/backend/go-services/internal/models"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOStore keeps attachments as objects in one bucket. Object keys are the
// generated names, so references stay /uploads/<name> regardless of backend.
type MinIOStore struct {
	client *minio.Client
	bucket string
}

// NewMinIOStore creates a MinIO client and ensures the bucket exists.
func NewMinIOStore(ctx context.Context, cfg config.MinIOConfig) (*MinIOStore, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio config missing")
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio new: %w", err)
	}
	s := &MinIOStore{client: mc, bucket: cfg.Bucket}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mc.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		exist, xerr := mc.BucketExists(ctx, s.bucket)
		if xerr != nil || !exist {
			return nil, fmt.Errorf("minio bucket ensure: %w", err)
		}
	}
	return s, nil
}

func (s *MinIOStore) Accept(ctx context.Context, fh *multipart.FileHeader) (*models.Attachment, error) {
	mimeType, err := inspect(fh)
	if err != nil {
		return nil, err
	}
	name, err := generateName(fh.Filename)
	if err != nil {
		return nil, err
	}
	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	if _, err := s.client.PutObject(ctx, s.bucket, name, src, fh.Size, minio.PutObjectOptions{ContentType: mimeType}); err != nil {
		return nil, fmt.Errorf("minio put %s: %w", name, err)
	}
	return &models.Attachment{Path: URLPrefix + name, MIMEType: mimeType}, nil
}

// Remove is idempotent: S3 semantics report success for missing keys.
func (s *MinIOStore) Remove(ctx context.Context, refPath string) error {
	name, ok := nameFromRef(refPath)
	if !ok {
		return nil
	}
	if err := s.client.RemoveObject(ctx, s.bucket, name, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("minio remove %s: %w", name, err)
	}
	return nil
}

func (s *MinIOStore) Open(ctx context.Context, name string) (io.ReadCloser, Info, error) {
	name, ok := nameFromRef(name)
	if !ok {
		return nil, Info{}, models.ErrNotFound
	}
	obj, err := s.client.GetObject(ctx, s.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, Info{}, fmt.Errorf("minio get %s: %w", name, err)
	}
	st, err := obj.Stat()
	if err != nil {
		obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, Info{}, models.ErrNotFound
		}
		return nil, Info{}, fmt.Errorf("minio stat %s: %w", name, err)
	}
	return obj, Info{Size: st.Size, ContentType: st.ContentType}, nil
}

// Ping reports whether the bucket is reachable; used by the readiness probe.
func (s *MinIOStore) Ping(ctx context.Context) error {
	ok, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("bucket %s missing", s.bucket)
	}
	return nil
}
