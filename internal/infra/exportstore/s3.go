package exportstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/heliowatt/heliowatt/internal/domain/export"
)

// S3Storage archives export artifacts in any S3-compatible object store. The
// adapter speaks the archive's key scheme: content type and object metadata
// derive from the key's kind and owner, and malformed keys are rejected
// before any network call.
type S3Storage struct {
	client *minio.Client
	bucket string
	ready  atomic.Bool
	logger *slog.Logger
}

// NewS3Storage constructs the storage adapter.
func NewS3Storage(endpoint, accessKey, secretKey, bucket, region string, logger *slog.Logger) (*S3Storage, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cleanEndpoint := sanitizeEndpoint(endpoint)
	useSSL := strings.HasPrefix(strings.ToLower(endpoint), "https")
	client, err := minio.New(cleanEndpoint, &minio.Options{
		Creds:        credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure:       useSSL,
		Region:       region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}
	return &S3Storage{client: client, bucket: bucket, logger: logger.With("component", "export.storage.s3")}, nil
}

// Put uploads an artifact under its archive key. The object's content type
// and owner/kind metadata come from the key itself.
func (s *S3Storage) Put(ctx context.Context, key export.Key, data []byte) (export.StoredObject, error) {
	if err := key.Validate(); err != nil {
		return export.StoredObject{}, err
	}
	if err := s.ensureBucket(ctx); err != nil {
		return export.StoredObject{}, err
	}
	kind := key.Kind()
	info, err := s.client.PutObject(ctx, s.bucket, key.String(), bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: kind.ContentType(),
		UserMetadata: map[string]string{
			"artifact-kind":  string(kind),
			"artifact-owner": strconv.FormatInt(key.UserID(), 10),
		},
		DisableMultipart: len(data) < 5*1024*1024, // small uploads as single part
	})
	if err != nil {
		return export.StoredObject{}, err
	}
	return export.StoredObject{
		Key:  key,
		Size: info.Size,
		ETag: info.ETag,
	}, nil
}

// Get fetches an artifact for reading.
func (s *S3Storage) Get(ctx context.Context, key export.Key) (io.ReadCloser, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	obj, err := s.client.GetObject(ctx, s.bucket, key.String(), minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	// Ensure object exists before returning reader.
	if _, statErr := obj.Stat(); statErr != nil {
		return nil, statErr
	}
	return obj, nil
}

// Delete removes an artifact.
func (s *S3Storage) Delete(ctx context.Context, key export.Key) error {
	if err := key.Validate(); err != nil {
		return err
	}
	return s.client.RemoveObject(ctx, s.bucket, key.String(), minio.RemoveObjectOptions{})
}

// ensureBucket creates the bucket on first use. Once a check has succeeded
// the ready flag skips the round trip for later uploads.
func (s *S3Storage) ensureBucket(ctx context.Context) error {
	if s.ready.Load() {
		return nil
	}
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err == nil && exists {
		s.ready.Store(true)
		return nil
	}
	err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
	if err != nil && minio.ToErrorResponse(err).Code != "BucketAlreadyOwnedByYou" {
		return err
	}
	s.ready.Store(true)
	return nil
}

var _ export.ObjectStorage = (*S3Storage)(nil)

// sanitizeEndpoint removes schemes and paths to satisfy minio.New expectations.
func sanitizeEndpoint(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "https://"), "http://")
	if strings.Contains(raw, "/") {
		parts := strings.Split(raw, "/")
		raw = parts[0]
	}
	return raw
}
