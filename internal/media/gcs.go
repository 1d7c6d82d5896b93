package media

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/pharmaweb/sitecms/internal/logging"
	"github.com/pharmaweb/sitecms/pkg/interfaces"
)

// GCSConfig configures Google Cloud Storage backed image storage.
type GCSConfig struct {
	ProjectID       string
	CredentialsFile string
	// EmulatorHost points the client at a fake-gcs-server style emulator.
	EmulatorHost string
	// PublicBaseURL replaces https://storage.googleapis.com when building URLs,
	// for example a CDN domain in front of the buckets.
	PublicBaseURL  string
	MaxUploadBytes int64
	UploadTimeout  time.Duration
	DeleteTimeout  time.Duration
}

// GCSStorage stores images in GCS buckets.
type GCSStorage struct {
	client   *storage.Client
	cfg      GCSConfig
	logger   interfaces.Logger
	now      func() time.Time
	emulator bool
}

// NewGCSStorage creates a client for cfg. With an emulator host the client
// runs unauthenticated.
func NewGCSStorage(ctx context.Context, cfg GCSConfig, logger interfaces.Logger) (*GCSStorage, error) {
	var opts []option.ClientOption
	emulator := strings.TrimRight(strings.TrimSpace(cfg.EmulatorHost), "/")
	if emulator != "" {
		if err := os.Setenv("STORAGE_EMULATOR_HOST", emulator); err != nil {
			return nil, fmt.Errorf("media: configure gcs emulator: %w", err)
		}
		opts = append(opts, option.WithoutAuthentication())
	} else {
		if file := strings.TrimSpace(cfg.CredentialsFile); file != "" {
			opts = append(opts, option.WithCredentialsFile(file))
		}
		opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
	}
	if project := strings.TrimSpace(cfg.ProjectID); project != "" {
		opts = append(opts, option.WithQuotaProject(project))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("media: create gcs client: %w", err)
	}
	s := newGCSStorage(client, cfg, logger)
	s.logger.Info("media.gcs.initialized", "emulator_host", emulator, "public_base_url", s.cfg.PublicBaseURL)
	return s, nil
}

func newGCSStorage(client *storage.Client, cfg GCSConfig, logger interfaces.Logger) *GCSStorage {
	if logger == nil {
		logger = logging.NoOp()
	}
	cfg.EmulatorHost = strings.TrimRight(strings.TrimSpace(cfg.EmulatorHost), "/")
	cfg.PublicBaseURL = strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/")
	if cfg.UploadTimeout <= 0 {
		cfg.UploadTimeout = 2 * time.Minute
	}
	if cfg.DeleteTimeout <= 0 {
		cfg.DeleteTimeout = 30 * time.Second
	}
	return &GCSStorage{
		client:   client,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
		emulator: cfg.EmulatorHost != "",
	}
}

// Close releases the underlying client.
func (g *GCSStorage) Close() error {
	if g == nil || g.client == nil {
		return nil
	}
	return g.client.Close()
}

// Upload writes upload to bucket under a fresh key.
func (g *GCSStorage) Upload(ctx context.Context, bucket string, upload interfaces.ImageUpload) (*interfaces.StoredObject, error) {
	if g == nil || g.client == nil {
		return nil, ErrStorageNotConfigured
	}
	bucket, err := validateBucket(bucket)
	if err != nil {
		return nil, err
	}
	body, err := readUpload(upload, g.cfg.MaxUploadBytes)
	if err != nil {
		return nil, err
	}

	now := g.now()
	key := ObjectKey(now, upload.Name)

	ctx, cancel := context.WithTimeout(ctx, g.cfg.UploadTimeout)
	defer cancel()

	w := g.client.Bucket(bucket).Object(key).NewWriter(ctx)
	w.ContentType = body.contentType
	w.CacheControl = "public, max-age=31536000"
	if _, err := w.Write(body.data); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("media: write gcs object %s/%s: %w", bucket, key, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("media: close gcs writer %s/%s: %w", bucket, key, err)
	}

	g.logger.Debug("media.upload.stored", "bucket", bucket, "key", key, "bytes", len(body.data))
	return &interfaces.StoredObject{
		Bucket:      bucket,
		Key:         key,
		URL:         g.PublicURL(bucket, key),
		ContentType: body.contentType,
		Size:        int64(len(body.data)),
		CreatedAt:   now,
	}, nil
}

// Delete removes an object from bucket.
func (g *GCSStorage) Delete(ctx context.Context, bucket, key string) error {
	if g == nil || g.client == nil {
		return ErrStorageNotConfigured
	}
	bucket, err := validateBucket(bucket)
	if err != nil {
		return err
	}
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if key == "" {
		return ErrKeyRequired
	}

	ctx, cancel := context.WithTimeout(ctx, g.cfg.DeleteTimeout)
	defer cancel()
	if err := g.client.Bucket(bucket).Object(key).Delete(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return fmt.Errorf("%w: %s/%s", ErrObjectNotFound, bucket, key)
		}
		return fmt.Errorf("media: delete gcs object %s/%s: %w", bucket, key, err)
	}
	return nil
}

// PublicURL builds the browser URL of an object.
func (g *GCSStorage) PublicURL(bucket, key string) string {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	bucket = strings.TrimSpace(bucket)
	if g.cfg.PublicBaseURL != "" {
		return fmt.Sprintf("%s/%s/%s", g.cfg.PublicBaseURL, bucket, key)
	}
	if g.emulator {
		return fmt.Sprintf("%s/storage/v1/b/%s/o/%s?alt=media",
			g.cfg.EmulatorHost,
			url.PathEscape(bucket),
			url.PathEscape(key),
		)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, key)
}

var _ interfaces.ImageStorage = (*GCSStorage)(nil)
