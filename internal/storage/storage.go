// Package storage uploads evidence files to blob storage.
package storage

import (
	"context"
	"io"

	"github.com/aimd54/rocase/internal/models"
)

// Object is a stored blob reference.
type Object struct {
	URL string
	Key string
}

// BlobStore persists evidence files and returns their public reference.
type BlobStore interface {
	Put(ctx context.Context, name, contentType string, r io.Reader) (*Object, error)
	Delete(ctx context.Context, key string, kind models.EvidenceType) error
}
