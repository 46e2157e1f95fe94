// Package storage keeps doctor avatars in an S3-compatible bucket.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sirupsen/logrus"

	"github.com/harentsoaR/medicore-api/internal/models"
)

const avatarFolder = "doctor_avatars"

// AvatarStore uploads and removes avatar images.
type AvatarStore interface {
	Upload(ctx context.Context, contentType string, r io.Reader, size int64) (*models.Avatar, error)
	Remove(ctx context.Context, publicID string) error
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	// PublicURL is the base of retrieval URLs. Defaults to the endpoint.
	PublicURL string
}

type MinioStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
	log       logrus.FieldLogger
}

func NewMinioStore(cfg MinioConfig, log logrus.FieldLogger) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return &MinioStore{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: PublicBaseURL(cfg),
		log:       log,
	}, nil
}

// EnsureBucket creates the avatar bucket if needed and makes its objects
// anonymously readable so avatar URLs can be used directly by clients.
func (s *MinioStore) EnsureBucket(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket %s: %w", s.bucket, err)
		}
		s.log.WithField("bucket", s.bucket).Info("Created avatar bucket")
	}

	if err := s.client.SetBucketPolicy(ctx, s.bucket, readOnlyPolicy(s.bucket)); err != nil {
		return fmt.Errorf("set bucket policy: %w", err)
	}
	return nil
}

func (s *MinioStore) Upload(ctx context.Context, contentType string, r io.Reader, size int64) (*models.Avatar, error) {
	objectName := ObjectName(contentType)
	_, err := s.client.PutObject(ctx, s.bucket, objectName, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("put object %s: %w", objectName, err)
	}
	return &models.Avatar{
		PublicID: objectName,
		URL:      ObjectURL(s.publicURL, s.bucket, objectName),
	}, nil
}

func (s *MinioStore) Remove(ctx context.Context, publicID string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, publicID, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %s: %w", publicID, err)
	}
	return nil
}

var extensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
}

// ObjectName builds a collision-free key under the avatar folder.
func ObjectName(contentType string) string {
	return avatarFolder + "/" + uuid.NewString() + extensions[contentType]
}

func PublicBaseURL(cfg MinioConfig) string {
	if cfg.PublicURL != "" {
		return strings.TrimRight(cfg.PublicURL, "/")
	}
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return scheme + "://" + cfg.Endpoint
}

func ObjectURL(base, bucket, objectName string) string {
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(base, "/"), bucket, objectName)
}

func readOnlyPolicy(bucket string) string {
	return fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`, bucket)
}

var _ AvatarStore = (*MinioStore)(nil)
