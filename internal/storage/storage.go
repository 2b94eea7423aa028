package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/coedit/coedit/internal/config"
	"github.com/coedit/coedit/internal/document"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// SnapshotStore archives document snapshots in an object store. Snapshots
// are written on explicit export, never by the realtime relay.
type SnapshotStore struct {
	client *minio.Client
	bucket string
}

// NewSnapshotStore creates a MinIO-backed snapshot store and ensures the
// bucket exists.
func NewSnapshotStore(cfg *config.MinIOConfig) (*SnapshotStore, error) {
	if cfg == nil || cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio config missing")
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio new: %w", err)
	}
	s := &SnapshotStore{client: mc, bucket: cfg.Bucket}
	// ensure bucket exists (idempotent)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := mc.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		exist, xerr := mc.BucketExists(ctx, s.bucket)
		if xerr != nil || !exist {
			return nil, fmt.Errorf("minio bucket ensure: %w", err)
		}
	}
	return s, nil
}

// SnapshotKey returns the object key for a document at a given version.
func SnapshotKey(docID string, version int) string {
	return fmt.Sprintf("snapshots/%s/v%d.txt", docID, version)
}

// PutSnapshot uploads the document's current content and returns the object key.
func (s *SnapshotStore) PutSnapshot(ctx context.Context, d *document.Document) (string, error) {
	key := SnapshotKey(d.ID, d.Version)
	r := strings.NewReader(d.Content)
	_, err := s.client.PutObject(ctx, s.bucket, key, r, int64(r.Len()), minio.PutObjectOptions{
		ContentType: "text/plain; charset=utf-8",
	})
	if err != nil {
		return "", fmt.Errorf("minio put: %w", err)
	}
	return key, nil
}

// PresignedURL returns a presigned GET URL for a snapshot object.
func (s *SnapshotStore) PresignedURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	reqParams := make(url.Values)
	presigned, err := s.client.PresignedGetObject(ctx, s.bucket, key, expires, reqParams)
	if err != nil {
		return "", err
	}
	return presigned.String(), nil
}
