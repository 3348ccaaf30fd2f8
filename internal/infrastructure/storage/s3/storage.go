// Package s3 stores generated recipe images in an S3-compatible bucket
package s3

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"go.uber.org/zap"
)

// Config holds bucket settings
type Config struct {
	Bucket        string
	Region        string
	Endpoint      string
	Prefix        string
	PublicBaseURL string
}

// Storage implements outbound.ObjectStorage on top of s3manager
type Storage struct {
	uploader s3manageriface.UploaderAPI
	cfg      Config
	logger   *zap.Logger
}

// NewStorage creates a session and uploader for the configured bucket
func NewStorage(cfg Config, logger *zap.Logger) (*Storage, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3: bucket is required")
	}

	awsCfg := &aws.Config{Region: aws.String(cfg.Region)}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return NewStorageWithUploader(s3manager.NewUploader(sess), cfg, logger), nil
}

// NewStorageWithUploader creates storage around an existing uploader
func NewStorageWithUploader(uploader s3manageriface.UploaderAPI, cfg Config, logger *zap.Logger) *Storage {
	return &Storage{
		uploader: uploader,
		cfg:      cfg,
		logger:   logger.Named("s3-storage"),
	}
}

// Upload writes data under the configured prefix and returns its public URL
func (s *Storage) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	fullKey := s.cfg.Prefix + strings.TrimPrefix(key, "/")

	out, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:       aws.String(s.cfg.Bucket),
		Key:          aws.String(fullKey),
		Body:         bytes.NewReader(data),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", fullKey, err)
	}

	s.logger.Debug("Object uploaded",
		zap.String("key", fullKey),
		zap.Int("bytes", len(data)))

	if s.cfg.PublicBaseURL != "" {
		return strings.TrimRight(s.cfg.PublicBaseURL, "/") + "/" + fullKey, nil
	}
	return out.Location, nil
}
