// Package storage persists raw uploaded bytes and hands back durable URLs.
package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"rentalmarket/internal/config"
)

// Storage is the blob backend used for condition evidence photos.
type Storage interface {
	// Put stores r under key and returns the public URL of the object.
	Put(ctx context.Context, key, contentType string, r io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
}

// New builds the backend selected by cfg.Driver.
func New(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	switch cfg.Driver {
	case "local", "":
		return NewLocalStorage(cfg.LocalDir, cfg.PublicBaseURL)
	case "gcs":
		return NewGCSStorage(ctx, cfg.GCSBucket, cfg.GCSCredentialsFile, cfg.PublicBaseURL)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// AllowedImageTypes lists content types accepted for condition photos.
var AllowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// DetectContentType sniffs the first bytes of data, dropping parameters.
func DetectContentType(data []byte) string {
	ct := http.DetectContentType(data)
	return strings.TrimSpace(strings.Split(ct, ";")[0])
}

// ExtensionFor returns the canonical file extension for an allowed image type.
func ExtensionFor(contentType string) string {
	return AllowedImageTypes[contentType]
}

func joinURL(base, key string) string {
	if base == "" {
		return "/" + key
	}
	if strings.Contains(base, "://") {
		return strings.TrimRight(base, "/") + "/" + key
	}
	return path.Join(base, key)
}

func cleanKey(key string) (string, error) {
	cleaned := path.Clean("/" + strings.ReplaceAll(key, "\\", "/"))
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "" || cleaned == "." {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return cleaned, nil
}
