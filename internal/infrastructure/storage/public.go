package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	catalogapp "github.com/storefront/backend/internal/application/catalog"
	infraconfig "github.com/storefront/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Storage providers accepted in StorageConfig.Provider.
const (
	ProviderNone   = ""
	ProviderLocal  = "local"
	ProviderS3     = "s3"
	ProviderPublic = "public"
)

// PublicBucketStorage builds unsigned URLs for a public-read bucket or a CDN
// placed in front of one.
type PublicBucketStorage struct {
	baseURL string
}

// NewPublicBucketStorage serves keys under endpoint/bucket.
func NewPublicBucketStorage(cfg *infraconfig.StorageConfig) (*PublicBucketStorage, error) {
	if cfg == nil || cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	endpoint, err := normalizeEndpoint(cfg.Endpoint, cfg.UseSSL)
	if err != nil {
		return nil, err
	}
	return &PublicBucketStorage{baseURL: endpoint + "/" + url.PathEscape(cfg.Bucket)}, nil
}

// GenerateDownloadURL returns the permanent object URL. The expiry is only
// advisory since the URL is not signed.
func (s *PublicBucketStorage) GenerateDownloadURL(_ context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}
	segments := strings.Split(strings.TrimLeft(storageKey, "/"), "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return s.baseURL + "/" + strings.Join(segments, "/"), time.Now().Add(expiresIn), nil
}

var _ catalogapp.ObjectStorageService = (*PublicBucketStorage)(nil)

// NewImageStorage picks the image backend for the configured provider. It
// returns nil for the local provider, meaning images are served from the
// static path.
func NewImageStorage(ctx context.Context, cfg *infraconfig.StorageConfig, logger *zap.Logger) (catalogapp.ObjectStorageService, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	switch provider {
	case ProviderNone, ProviderLocal:
		return nil, nil
	case ProviderPublic:
		return NewPublicBucketStorage(cfg)
	case ProviderS3:
		s3Storage, err := NewS3ImageStorage(cfg, logger)
		if err != nil {
			return nil, err
		}
		if err := s3Storage.CheckBucket(ctx); err != nil {
			logger.Warn("image bucket not ready, presigned URLs may 404", zap.Error(err))
		}
		return s3Storage, nil
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
	}
}
