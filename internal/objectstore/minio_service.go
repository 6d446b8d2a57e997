package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"harrys-team/backend/internal/config"
)

var ErrObjectNotFound = errors.New("object not found")

// MinioStore keeps uploads in a MinIO bucket. Object keys mirror the local
// layout ("images/team/<name>"), so both backends produce the same paths.
type MinioStore struct {
	client     *minio.Client
	bucketName string
	publicURL  string
	logger     *zap.Logger
	now        func() time.Time
}

// NewMinioStore connects to MinIO and creates the bucket when it is missing.
func NewMinioStore(ctx context.Context, cfg config.MinioConfig, logger *zap.Logger) (*MinioStore, error) {
	if cfg.Endpoint == "" || cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" || cfg.BucketName == "" {
		return nil, fmt.Errorf("MINIO_ENDPOINT, MINIO_ACCESS_KEY_ID, MINIO_SECRET_ACCESS_KEY, and MINIO_BUCKET_NAME must be set")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MinIO client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check if MinIO bucket '%s' exists: %w", cfg.BucketName, err)
	}
	if !exists {
		logger.Info("MinIO bucket does not exist, creating it", zap.String("bucket", cfg.BucketName))
		if err := client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create MinIO bucket '%s': %w", cfg.BucketName, err)
		}
	}

	return &MinioStore{
		client:     client,
		bucketName: cfg.BucketName,
		publicURL:  strings.TrimSuffix(cfg.PublicURL, "/"),
		logger:     logger,
		now:        time.Now,
	}, nil
}

func (s *MinioStore) Save(ctx context.Context, folder Folder, fh *multipart.FileHeader) (string, error) {
	img, err := validate(folder, fh, s.now())
	if err != nil {
		return "", err
	}

	objectName := folder.Name + "/" + img.name
	info, err := s.client.PutObject(ctx, s.bucketName, objectName, bytes.NewReader(img.data), int64(len(img.data)), minio.PutObjectOptions{
		ContentType: img.contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file to MinIO (bucket: %s, object: %s): %w", s.bucketName, objectName, err)
	}

	s.logger.Info("uploaded object", zap.String("object", objectName), zap.Int64("size", info.Size), zap.String("etag", info.ETag))
	return s.url(objectName), nil
}

func (s *MinioStore) Delete(ctx context.Context, url string) error {
	objectName := s.objectName(url)
	if objectName == "" {
		return fmt.Errorf("no object key in url %q", url)
	}
	if err := s.client.RemoveObject(ctx, s.bucketName, objectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object '%s' from MinIO bucket '%s': %w", objectName, s.bucketName, err)
	}
	return nil
}

// Open streams an object back. It serves /images/* when no public bucket
// URL is configured. The caller closes the reader.
func (s *MinioStore) Open(ctx context.Context, objectName string) (io.ReadCloser, minio.ObjectInfo, error) {
	object, err := s.client.GetObject(ctx, s.bucketName, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, minio.ObjectInfo{}, fmt.Errorf("failed to get object '%s' from bucket '%s': %w", objectName, s.bucketName, err)
	}
	stat, err := object.Stat()
	if err != nil {
		object.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, minio.ObjectInfo{}, fmt.Errorf("%w: %s", ErrObjectNotFound, objectName)
		}
		return nil, minio.ObjectInfo{}, fmt.Errorf("failed to get object stats for '%s': %w", objectName, err)
	}
	return object, stat, nil
}

func (s *MinioStore) url(objectName string) string {
	if s.publicURL != "" {
		return s.publicURL + "/" + objectName
	}
	return "/" + objectName
}

// objectName reverses url.
func (s *MinioStore) objectName(url string) string {
	if s.publicURL != "" {
		url = strings.TrimPrefix(url, s.publicURL)
	}
	return strings.TrimPrefix(url, "/")
}
