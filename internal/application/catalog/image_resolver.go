package catalog

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultImage is served when a product has no usable image.
const DefaultImage = "default.webp"

const productImagePath = "/static/images/products/"

// ObjectStorageService is the slice of object storage needed to serve images.
type ObjectStorageService interface {
	// GenerateDownloadURL returns a presigned GET URL and its expiry.
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
}

// ImageResolver turns the raw product image field into a URL.
type ImageResolver struct {
	storage       ObjectStorageService
	publicBaseURL string
	urlTTL        time.Duration
	logger        *zap.Logger
}

// ImageResolverOption configures an ImageResolver
type ImageResolverOption func(*ImageResolver)

// WithObjectStorage serves filenames as presigned object storage URLs.
func WithObjectStorage(storage ObjectStorageService, ttl time.Duration) ImageResolverOption {
	return func(r *ImageResolver) {
		r.storage = storage
		if ttl > 0 {
			r.urlTTL = ttl
		}
	}
}

// WithImageLogger sets the logger
func WithImageLogger(logger *zap.Logger) ImageResolverOption {
	return func(r *ImageResolver) {
		r.logger = logger
	}
}

// NewImageResolver creates a resolver that serves files under publicBaseURL.
func NewImageResolver(publicBaseURL string, opts ...ImageResolverOption) *ImageResolver {
	r := &ImageResolver{
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		urlTTL:        time.Hour,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the URL of the product's principal image.
func (r *ImageResolver) Resolve(ctx context.Context, raw string) string {
	name := PrincipalImage(raw)
	if isAbsoluteURL(name) {
		return name
	}

	if r.storage != nil && name != DefaultImage {
		url, _, err := r.storage.GenerateDownloadURL(ctx, "products/"+name, r.urlTTL)
		if err == nil {
			return url
		}
		r.logger.Warn("failed to presign product image, serving static path",
			zap.String("image", name), zap.Error(err))
	}
	return r.publicBaseURL + productImagePath + name
}

type imageSet struct {
	Principal string   `json:"principal"`
	Gallery   []string `json:"galeria"`
}

// PrincipalImage extracts the main image name from the stored field. The
// field may hold a JSON object with principal/galeria keys, a comma or pipe
// separated list, a bare filename or an absolute URL.
func PrincipalImage(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultImage
	}

	if strings.HasPrefix(raw, "{") {
		var set imageSet
		if err := json.Unmarshal([]byte(raw), &set); err != nil {
			return DefaultImage
		}
		if name := strings.TrimSpace(set.Principal); name != "" {
			return name
		}
		for _, g := range set.Gallery {
			if name := strings.TrimSpace(g); name != "" {
				return name
			}
		}
		return DefaultImage
	}

	if isAbsoluteURL(raw) {
		return raw
	}
	if idx := strings.IndexAny(raw, ",|"); idx >= 0 {
		raw = strings.TrimSpace(raw[:idx])
	}
	if raw == "" {
		return DefaultImage
	}
	return raw
}

func isAbsoluteURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
