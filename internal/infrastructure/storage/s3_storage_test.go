package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func baseS3Config() *config.StorageConfig {
	return &config.StorageConfig{
		Provider:     ProviderS3,
		Bucket:       "product-images",
		AccessKey:    "test-key",
		SecretKey:    "test-secret",
		Endpoint:     "http://localhost:9000",
		UsePathStyle: true,
	}
}

func TestNewS3ImageStorage_Validation(t *testing.T) {
	_, err := NewS3ImageStorage(nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration is required")

	t.Run("reports every missing setting", func(t *testing.T) {
		cfg := baseS3Config()
		cfg.Bucket, cfg.AccessKey, cfg.SecretKey = "", "", ""
		_, err := NewS3ImageStorage(cfg, nil)
		require.Error(t, err)
		for _, msg := range []string{"bucket is required", "access key is required", "secret key is required"} {
			assert.Contains(t, err.Error(), msg)
		}
	})

	t.Run("bad endpoint", func(t *testing.T) {
		cfg := baseS3Config()
		cfg.Endpoint = "ftp://files"
		_, err := NewS3ImageStorage(cfg, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid storage endpoint")
	})

	t.Run("presign ttl from config", func(t *testing.T) {
		cfg := baseS3Config()
		cfg.PresignExpiration = 15 * time.Minute
		storage, err := NewS3ImageStorage(cfg, zaptest.NewLogger(t))
		require.NoError(t, err)
		assert.Equal(t, "product-images", storage.Bucket())
		assert.Equal(t, 15*time.Minute, storage.ttl)
	})

	t.Run("default presign ttl", func(t *testing.T) {
		storage, err := NewS3ImageStorage(baseS3Config(), nil)
		require.NoError(t, err)
		assert.Equal(t, DefaultPresignExpiration, storage.ttl)
	})
}

func TestNormalizeEndpoint(t *testing.T) {
	tests := []struct {
		in     string
		ssl    bool
		expect string
	}{
		{"", false, "http://localhost:9000"},
		{"minio:9000", false, "http://minio:9000"},
		{"s3.amazonaws.com", true, "https://s3.amazonaws.com"},
		{"https://cdn.example.com/", false, "https://cdn.example.com"},
	}
	for _, tt := range tests {
		got, err := normalizeEndpoint(tt.in, tt.ssl)
		require.NoError(t, err)
		assert.Equal(t, tt.expect, got)
	}

	for _, bad := range []string{"http://", "ftp://files"} {
		_, err := normalizeEndpoint(bad, false)
		assert.Error(t, err, bad)
	}
}

func TestS3ImageStorage_GenerateDownloadURL(t *testing.T) {
	storage, err := NewS3ImageStorage(baseS3Config(), nil)
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("empty key", func(t *testing.T) {
		url, _, err := storage.GenerateDownloadURL(ctx, "/", time.Minute)
		require.Error(t, err)
		assert.Empty(t, url)
	})

	t.Run("presigns a path-style GET", func(t *testing.T) {
		url, expiresAt, err := storage.GenerateDownloadURL(ctx, "/products/shoe.webp", 10*time.Minute)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(url, "http://localhost:9000/product-images/products/shoe.webp?"), url)
		assert.Contains(t, url, "X-Amz-Signature=")
		assert.Contains(t, url, "X-Amz-Expires=600")
		assert.WithinDuration(t, time.Now().Add(10*time.Minute), expiresAt, 5*time.Second)
	})

	t.Run("falls back to configured ttl", func(t *testing.T) {
		url, expiresAt, err := storage.GenerateDownloadURL(ctx, "products/shoe.webp", 0)
		require.NoError(t, err)
		assert.Contains(t, url, "X-Amz-Expires=3600")
		assert.True(t, expiresAt.After(time.Now().Add(59*time.Minute)))
	})
}

func TestPublicBucketStorage(t *testing.T) {
	cfg := &config.StorageConfig{Provider: ProviderPublic, Bucket: "imgs", Endpoint: "cdn.example.com", UseSSL: true}
	storage, err := NewPublicBucketStorage(cfg)
	require.NoError(t, err)

	url, _, err := storage.GenerateDownloadURL(context.Background(), "products/red shoe.webp", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/imgs/products/red%20shoe.webp", url)

	_, _, err = storage.GenerateDownloadURL(context.Background(), "", time.Hour)
	assert.Error(t, err)

	_, err = NewPublicBucketStorage(&config.StorageConfig{})
	assert.Error(t, err)
}

func TestNewImageStorage(t *testing.T) {
	ctx := context.Background()

	local, err := NewImageStorage(ctx, &config.StorageConfig{Provider: "local"}, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, local)

	none, err := NewImageStorage(ctx, &config.StorageConfig{}, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, none)

	public, err := NewImageStorage(ctx, &config.StorageConfig{Provider: "PUBLIC", Bucket: "b", Endpoint: "http://cdn"}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &PublicBucketStorage{}, public)

	_, err = NewImageStorage(ctx, &config.StorageConfig{Provider: "ftp"}, zap.NewNop())
	assert.Error(t, err)
}
