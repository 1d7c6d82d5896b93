package media

import (
	"context"

	"github.com/pharmaweb/sitecms/internal/blocks"
	"github.com/pharmaweb/sitecms/pkg/interfaces"
)

// BlockUploader stores editor image uploads in a fixed bucket.
type BlockUploader struct {
	Storage interfaces.ImageStorage
	Bucket  string
}

// NewBlockUploader binds storage to bucket.
func NewBlockUploader(storage interfaces.ImageStorage, bucket string) *BlockUploader {
	return &BlockUploader{Storage: storage, Bucket: bucket}
}

// UploadImage stores upload and returns its public URL.
func (u *BlockUploader) UploadImage(ctx context.Context, upload interfaces.ImageUpload) (string, error) {
	if u == nil || u.Storage == nil {
		return "", ErrStorageNotConfigured
	}
	obj, err := u.Storage.Upload(ctx, u.Bucket, upload)
	if err != nil {
		return "", err
	}
	return obj.URL, nil
}

var _ blocks.ImageUploader = (*BlockUploader)(nil)
