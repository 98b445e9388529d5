// Package s3 implements the object storage port on Amazon S3 with
// pre-signed PUT URLs.
package s3

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
)

// Config holds S3 adapter configuration.
type Config struct {
	Bucket        string
	PresignExpiry time.Duration
}

// Storage mints object keys and pre-signed upload URLs for one bucket.
type Storage struct {
	presigner *awss3.PresignClient
	bucket    string
	expiry    time.Duration
	logger    *slog.Logger
}

// NewStorage creates an S3-backed object storage.
func NewStorage(awsCfg aws.Config, cfg *Config, logger *slog.Logger) *Storage {
	client := awss3.NewFromConfig(awsCfg)

	expiry := cfg.PresignExpiry
	if expiry <= 0 {
		expiry = 5 * time.Minute
	}

	return &Storage{
		presigner: awss3.NewPresignClient(client),
		bucket:    cfg.Bucket,
		expiry:    expiry,
		logger:    logger,
	}
}

// ObjectKey returns a deterministic key under a per-document prefix, using
// the same sanitization as the in-memory adapter so both backends produce
// identical layouts.
func (s *Storage) ObjectKey(documentID, filename string) string {
	safe := strings.ReplaceAll(strings.TrimSpace(filename), "/", "_")
	return fmt.Sprintf("documents/%s/%s", documentID, safe)
}

// UploadURL generates a time-limited pre-signed PUT URL for the object key.
// S3 validates the content type on upload against what was signed here.
func (s *Storage) UploadURL(ctx context.Context, objectKey, contentType string) (string, error) {
	req, err := s.presigner.PresignPutObject(ctx, &awss3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(objectKey),
		ContentType: aws.String(contentType),
	}, awss3.WithPresignExpires(s.expiry))
	if err != nil {
		return "", fmt.Errorf("failed to presign upload URL: %w", err)
	}

	s.logger.Debug("Pre-signed upload URL created",
		slog.String("bucket", s.bucket),
		slog.String("object_key", objectKey),
		slog.Duration("expiry", s.expiry),
	)

	return req.URL, nil
}
