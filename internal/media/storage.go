package media

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pharmaweb/sitecms/pkg/interfaces"
)

var (
	ErrBucketRequired       = errors.New("media: bucket required")
	ErrKeyRequired          = errors.New("media: object key required")
	ErrUploadEmpty          = errors.New("media: upload is empty")
	ErrUploadTooLarge       = errors.New("media: upload exceeds size limit")
	ErrUnsupportedType      = errors.New("media: only image uploads are accepted")
	ErrObjectNotFound       = errors.New("media: object not found")
	ErrStorageNotConfigured = errors.New("media: storage not configured")
)

// DefaultMaxUploadBytes bounds uploads when no limit is configured.
const DefaultMaxUploadBytes int64 = 10 << 20

// ObjectKey builds "<unix-ms>-<uuid><ext>" keeping the lower-cased
// extension of name.
func ObjectKey(now time.Time, name string) string {
	ext := strings.ToLower(path.Ext(strings.TrimSpace(name)))
	if len(ext) > 8 || strings.ContainsAny(ext, "/\\?#") {
		ext = ""
	}
	return strconv.FormatInt(now.UnixMilli(), 10) + "-" + uuid.NewString() + ext
}

type payload struct {
	data        []byte
	contentType string
}

// readUpload buffers the upload, enforcing maxBytes and sniffing the content
// type when the caller did not supply one.
func readUpload(upload interfaces.ImageUpload, maxBytes int64) (payload, error) {
	if upload.Body == nil {
		return payload{}, ErrUploadEmpty
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	if upload.Size > maxBytes {
		return payload{}, fmt.Errorf("%w: %d bytes", ErrUploadTooLarge, upload.Size)
	}
	data, err := io.ReadAll(io.LimitReader(upload.Body, maxBytes+1))
	if err != nil {
		return payload{}, fmt.Errorf("media: read upload: %w", err)
	}
	if len(data) == 0 {
		return payload{}, ErrUploadEmpty
	}
	if int64(len(data)) > maxBytes {
		return payload{}, fmt.Errorf("%w: more than %d bytes", ErrUploadTooLarge, maxBytes)
	}

	contentType := strings.TrimSpace(upload.ContentType)
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = detectContentType(upload.Name, data)
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "image/") {
		return payload{}, fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}
	return payload{data: data, contentType: contentType}, nil
}

func detectContentType(name string, data []byte) string {
	if byExt := mime.TypeByExtension(strings.ToLower(path.Ext(name))); byExt != "" {
		return byExt
	}
	return http.DetectContentType(data)
}

func (p payload) reader() io.Reader {
	return bytes.NewReader(p.data)
}

func validateBucket(bucket string) (string, error) {
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return "", ErrBucketRequired
	}
	return bucket, nil
}
