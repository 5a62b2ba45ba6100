package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSStorage stores objects in a Google Cloud Storage bucket.
type GCSStorage struct {
	client     *gcs.Client
	bucket     string
	publicBase string
}

// NewGCSStorage uses credentialsFile when set, application default credentials otherwise.
func NewGCSStorage(ctx context.Context, bucket, credentialsFile, publicBase string) (*GCSStorage, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}

	if publicBase == "" || publicBase == "/static/uploads" {
		publicBase = fmt.Sprintf("https://storage.googleapis.com/%s", bucket)
	}
	return &GCSStorage{client: client, bucket: bucket, publicBase: publicBase}, nil
}

func (s *GCSStorage) Put(ctx context.Context, key, contentType string, r io.Reader) (string, error) {
	key, err := cleanKey(key)
	if err != nil {
		return "", err
	}

	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize %s: %w", key, err)
	}

	return joinURL(s.publicBase, key), nil
}

func (s *GCSStorage) Delete(ctx context.Context, key string) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}
	err = s.client.Bucket(s.bucket).Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *GCSStorage) Close() error {
	return s.client.Close()
}
