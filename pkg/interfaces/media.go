package interfaces

import (
	"context"
	"io"
	"time"
)

// ImageUpload describes a binary handed to an ImageStorage.
type ImageUpload struct {
	// Name is the original file name; only its extension is kept in the object key.
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// StoredObject is the result of a successful upload.
type StoredObject struct {
	Bucket      string
	Key         string
	URL         string
	ContentType string
	Size        int64
	CreatedAt   time.Time
}

// ImageStorage abstracts the blob storage collaborator that holds blog and news
// images. Buckets are logical names resolved by the implementation.
type ImageStorage interface {
	Upload(ctx context.Context, bucket string, upload ImageUpload) (*StoredObject, error)
	Delete(ctx context.Context, bucket string, key string) error
	PublicURL(bucket string, key string) string
}
