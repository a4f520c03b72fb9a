package storage

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

// FileStorage defines the interface for object storage operations.
type FileStorage interface {
	// PutObject uploads body under objectKey.
	PutObject(ctx context.Context, objectKey string, contentType string, body []byte) error

	// GeneratePresignedDownloadURL creates a temporary URL that allows GET requests
	// for downloading an object directly from the storage provider.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	// DeleteObject removes an object from the storage provider.
	DeleteObject(ctx context.Context, objectKey string) error
}

// ExportObjectKey builds a collision-free key for a rendered export, e.g.
// "exports/<athlete>/<uuid>/spartan-plan-week-2025-01-06.json".
func ExportObjectKey(athleteID, fileName string) string {
	return path.Join("exports", athleteID, uuid.NewString(), path.Base(fileName))
}

// attachmentDisposition is the Content-Disposition served with an export.
func attachmentDisposition(objectKey string) string {
	return fmt.Sprintf("attachment; filename=%q", path.Base(objectKey))
}

// wrapKeyErr adds the object key to storage errors.
func wrapKeyErr(op, objectKey string, err error) error {
	return fmt.Errorf("%s %q: %w", op, objectKey, err)
}
