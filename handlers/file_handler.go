package handlers

import (
	"context"
	"fmt"
	"io"
	"log"

	"cloud.google.com/go/storage"
	"p9e.in/aquaentry/config"
)

// ImageStore persists uploaded sample photos.
type ImageStore interface {
	Save(ctx context.Context, name, contentType string, r io.Reader) (string, error)
}

// GCSImageStore writes uploads to a Cloud Storage bucket.
type GCSImageStore struct {
	Bucket     *storage.BucketHandle
	BucketName string
}

// Save writes the object only if it does not exist yet.
func (s GCSImageStore) Save(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	objectName := "uploads/" + name
	writer := s.Bucket.Object(objectName).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	writer.ContentType = contentType

	if _, err := io.Copy(writer, r); err != nil {
		_ = writer.Close()
		return "", fmt.Errorf("failed to write to GCS: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize GCS write: %w", err)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.BucketName, objectName), nil
}

// NewImageStore picks Cloud Storage in production and the local upload
// directory otherwise. The returned func releases the storage client.
func NewImageStore(ctx context.Context, s config.Settings) (ImageStore, func(), error) {
	if !s.UseGCS {
		log.Printf("[UPLOAD] storing images in %s", s.UploadDir)
		return LocalImageStore{Dir: s.UploadDir, URLPrefix: "/uploads"}, func() {}, nil
	}
	if s.GCSBucket == "" {
		return nil, nil, fmt.Errorf("USE_GCS is set but GCS_BUCKET is empty")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("storage client: %w", err)
	}
	log.Printf("[UPLOAD] storing images in gs://%s", s.GCSBucket)
	return GCSImageStore{Bucket: client.Bucket(s.GCSBucket), BucketName: s.GCSBucket}, func() { client.Close() }, nil
}
