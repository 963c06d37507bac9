// Package storage serves product images from S3-compatible object storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
	infraconfig "github.com/storefront/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// DefaultPresignExpiration is used when the config leaves it unset.
const DefaultPresignExpiration = time.Hour

// ErrBucketMissing is returned by CheckBucket when the image bucket does not
// exist. Images are uploaded by the catalog tooling, so the bucket is never
// created from here.
var ErrBucketMissing = errors.New("image bucket does not exist")

var _ catalogapp.ObjectStorageService = (*S3ImageStorage)(nil)

// S3ImageStorage presigns product image downloads against AWS S3, MinIO or
// any other S3-compatible endpoint.
type S3ImageStorage struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	ttl     time.Duration
	logger  *zap.Logger
}

// NewS3ImageStorage validates the storage section and builds the S3 client.
// All missing settings are reported at once.
func NewS3ImageStorage(cfg *infraconfig.StorageConfig, logger *zap.Logger) (*S3ImageStorage, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	var errs []error
	if cfg.Bucket == "" {
		errs = append(errs, errors.New("storage bucket is required"))
	}
	if cfg.AccessKey == "" {
		errs = append(errs, errors.New("storage access key is required"))
	}
	if cfg.SecretKey == "" {
		errs = append(errs, errors.New("storage secret key is required"))
	}
	endpoint, err := normalizeEndpoint(cfg.Endpoint, cfg.UseSSL)
	if err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		o.BaseEndpoint = aws.String(endpoint)
	})

	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := cfg.PresignExpiration
	if ttl <= 0 {
		ttl = DefaultPresignExpiration
	}
	return &S3ImageStorage{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
		ttl:     ttl,
		logger:  logger.Named("images"),
	}, nil
}

// CheckBucket verifies the bucket is reachable.
func (s *S3ImageStorage) CheckBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return nil
	}
	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if errors.As(err, &notFound) || errors.As(err, &noSuchBucket) {
		return fmt.Errorf("%w: %s", ErrBucketMissing, s.bucket)
	}
	return fmt.Errorf("head bucket %s: %w", s.bucket, err)
}

// GenerateDownloadURL presigns a GET for key. A non-positive expiresIn uses
// the configured TTL.
func (s *S3ImageStorage) GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	key = strings.TrimLeft(key, "/")
	if key == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}
	if expiresIn <= 0 {
		expiresIn = s.ttl
	}

	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiresIn))
	if err != nil {
		s.logger.Debug("presign failed", zap.String("key", key), zap.Error(err))
		return "", time.Time{}, fmt.Errorf("presign %s: %w", key, err)
	}
	return req.URL, time.Now().Add(expiresIn), nil
}

// Bucket returns the bucket name
func (s *S3ImageStorage) Bucket() string {
	return s.bucket
}

// normalizeEndpoint adds a scheme when missing and validates the result.
func normalizeEndpoint(endpoint string, useSSL bool) (string, error) {
	if endpoint == "" {
		endpoint = "http://localhost:9000"
	}
	if !strings.Contains(endpoint, "://") {
		scheme := "http://"
		if useSSL {
			scheme = "https://"
		}
		endpoint = scheme + endpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", fmt.Errorf("invalid storage endpoint %q", endpoint)
	}
	return strings.TrimRight(endpoint, "/"), nil
}
