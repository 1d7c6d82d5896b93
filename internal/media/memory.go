package media

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pharmaweb/sitecms/pkg/interfaces"
)

// MemoryStorage keeps uploaded images in process memory. It backs tests and
// the default development configuration.
type MemoryStorage struct {
	mu       sync.RWMutex
	objects  map[string]map[string]memoryObject
	baseURL  string
	maxBytes int64
	now      func() time.Time
}

type memoryObject struct {
	data        []byte
	contentType string
	createdAt   time.Time
}

// MemoryOption configures a MemoryStorage.
type MemoryOption func(*MemoryStorage)

// WithMemoryBaseURL sets the prefix of public URLs.
func WithMemoryBaseURL(base string) MemoryOption {
	return func(m *MemoryStorage) {
		if trimmed := strings.TrimRight(strings.TrimSpace(base), "/"); trimmed != "" {
			m.baseURL = trimmed
		}
	}
}

// WithMemoryMaxBytes bounds upload sizes.
func WithMemoryMaxBytes(limit int64) MemoryOption {
	return func(m *MemoryStorage) {
		m.maxBytes = limit
	}
}

// WithMemoryClock overrides the clock used for object keys.
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(m *MemoryStorage) {
		if now != nil {
			m.now = now
		}
	}
}

// NewMemoryStorage returns an empty store.
func NewMemoryStorage(opts ...MemoryOption) *MemoryStorage {
	m := &MemoryStorage{
		objects:  make(map[string]map[string]memoryObject),
		baseURL:  "/media",
		maxBytes: DefaultMaxUploadBytes,
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// Upload stores upload under a fresh key in bucket.
func (m *MemoryStorage) Upload(ctx context.Context, bucket string, upload interfaces.ImageUpload) (*interfaces.StoredObject, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	bucket, err := validateBucket(bucket)
	if err != nil {
		return nil, err
	}
	body, err := readUpload(upload, m.maxBytes)
	if err != nil {
		return nil, err
	}

	now := m.now()
	key := ObjectKey(now, upload.Name)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.objects[bucket] == nil {
		m.objects[bucket] = make(map[string]memoryObject)
	}
	m.objects[bucket][key] = memoryObject{data: body.data, contentType: body.contentType, createdAt: now}

	return &interfaces.StoredObject{
		Bucket:      bucket,
		Key:         key,
		URL:         m.PublicURL(bucket, key),
		ContentType: body.contentType,
		Size:        int64(len(body.data)),
		CreatedAt:   now,
	}, nil
}

// Delete removes an object. Missing objects report ErrObjectNotFound.
func (m *MemoryStorage) Delete(ctx context.Context, bucket, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(key) == "" {
		return ErrKeyRequired
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	objects := m.objects[bucket]
	if _, ok := objects[key]; !ok {
		return fmt.Errorf("%w: %s/%s", ErrObjectNotFound, bucket, key)
	}
	delete(objects, key)
	return nil
}

// PublicURL returns "<base>/<bucket>/<key>".
func (m *MemoryStorage) PublicURL(bucket, key string) string {
	return m.baseURL + "/" + strings.Trim(bucket, "/") + "/" + strings.TrimLeft(key, "/")
}

// Open returns the stored bytes and content type.
func (m *MemoryStorage) Open(bucket, key string) ([]byte, string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[bucket][key]
	if !ok {
		return nil, "", false
	}
	out := make([]byte, len(obj.data))
	copy(out, obj.data)
	return out, obj.contentType, true
}

// Keys lists the keys stored in bucket.
func (m *MemoryStorage) Keys(bucket string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.objects[bucket]))
	for key := range m.objects[bucket] {
		out = append(out, key)
	}
	return out
}

var _ interfaces.ImageStorage = (*MemoryStorage)(nil)
