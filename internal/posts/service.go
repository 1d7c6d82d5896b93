package posts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-slug"
	"github.com/google/uuid"

	"github.com/pharmaweb/sitecms/internal/blocks"
	"github.com/pharmaweb/sitecms/internal/i18n"
	"github.com/pharmaweb/sitecms/internal/logging"
	"github.com/pharmaweb/sitecms/pkg/interfaces"
)

// Service is the admin API of one post collection.
type Service interface {
	Schema() Schema
	Create(ctx context.Context, input SaveInput) (*Record, error)
	Update(ctx context.Context, id uuid.UUID, input SaveInput) (*Record, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*Record, error)
	GetBySlug(ctx context.Context, slug string) (*Record, error)
	List(ctx context.Context, opts ListOptions) ([]*Record, error)
	SetPublished(ctx context.Context, id uuid.UUID, published bool) (*Record, error)
}

// SaveInput is the admin form payload. Localized maps take precedence over
// the legacy single-language fields for English.
type SaveInput struct {
	// ID fixes the identifier of a new record; importers use deterministic ids.
	ID            uuid.UUID
	Slug          string
	Title         string
	Summary       string
	Content       string
	TitleI18N     i18n.LocalizedText
	SummaryI18N   i18n.LocalizedText
	ContentI18N   i18n.LocalizedText
	ContentBlocks blocks.List
	Category      string
	Published     bool
	VideoURL      string
	// ImageURL points the cover at an existing URL. Ignored when Image is set.
	ImageURL string
	// Image is uploaded to the schema bucket and becomes the cover.
	Image *interfaces.ImageUpload
	// RemoveImage clears the cover on update.
	RemoveImage bool
}

// ServiceOption configures the service at construction time.
type ServiceOption func(*service)

// WithClock overrides the clock used to stamp records.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

// IDGenerator mints identifiers for new records.
type IDGenerator func() uuid.UUID

// WithIDGenerator replaces uuid.New as the source of record IDs.
func WithIDGenerator(generator IDGenerator) ServiceOption {
	return func(s *service) {
		if generator != nil {
			s.id = generator
		}
	}
}

// WithImageStorage enables cover image uploads.
func WithImageStorage(storage interfaces.ImageStorage) ServiceOption {
	return func(s *service) {
		s.storage = storage
	}
}

// WithLogger sets the module logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

type service struct {
	schema  Schema
	repo    Repository
	storage interfaces.ImageStorage
	logger  interfaces.Logger
	now     func() time.Time
	id      IDGenerator
}

// NewService builds the service for schema over repo.
func NewService(schema Schema, repo Repository, opts ...ServiceOption) Service {
	s := &service{
		schema: schema,
		repo:   repo,
		logger: logging.NoOp(),
		now:    time.Now,
		id:     uuid.New,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *service) Schema() Schema {
	return s.schema
}

// Create validates input, uploads the cover image and inserts the record. The
// slug check and the insert are not atomic; the unique index is the backstop.
// A failed insert deletes the image uploaded for it.
func (s *service) Create(ctx context.Context, input SaveInput) (*Record, error) {
	now := s.now()
	record := &Record{CreatedAt: now, UpdatedAt: now}
	if err := s.apply(record, input); err != nil {
		return nil, err
	}
	if err := s.ensureSlugAvailable(ctx, record.Slug, uuid.Nil); err != nil {
		return nil, err
	}
	record.ID = input.ID
	if record.ID == uuid.Nil {
		record.ID = s.id()
	}

	uploaded, err := s.uploadCover(ctx, input.Image)
	if err != nil {
		return nil, err
	}
	if uploaded != nil {
		record.ImageURL = uploaded.URL
		record.ImageKey = uploaded.Key
	} else {
		record.ImageURL = strings.TrimSpace(input.ImageURL)
	}

	created, err := s.repo.Create(ctx, record)
	if err != nil {
		s.discardUpload(ctx, uploaded)
		s.log(ctx, record).Error("post.create.failed", "error", err)
		return nil, err
	}
	s.log(ctx, created).Info("post.created", "published", created.Published, "blocks", len(created.ContentBlocks))
	return created, nil
}

// Update replaces the editable fields of an existing record. The cover image
// is kept unless the input uploads, points at or removes one.
func (s *service) Update(ctx context.Context, id uuid.UUID, input SaveInput) (*Record, error) {
	if id == uuid.Nil {
		return nil, ErrIDRequired
	}
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	record := existing.Clone()
	if err := s.apply(record, input); err != nil {
		return nil, err
	}
	if err := s.ensureSlugAvailable(ctx, record.Slug, id); err != nil {
		return nil, err
	}
	record.UpdatedAt = s.now()

	uploaded, err := s.uploadCover(ctx, input.Image)
	if err != nil {
		return nil, err
	}
	switch {
	case uploaded != nil:
		record.ImageURL = uploaded.URL
		record.ImageKey = uploaded.Key
	case input.RemoveImage:
		record.ImageURL = ""
		record.ImageKey = ""
	case strings.TrimSpace(input.ImageURL) != "" && strings.TrimSpace(input.ImageURL) != existing.ImageURL:
		record.ImageURL = strings.TrimSpace(input.ImageURL)
		record.ImageKey = ""
	}

	updated, err := s.repo.Update(ctx, record)
	if err != nil {
		s.discardUpload(ctx, uploaded)
		s.log(ctx, record).Error("post.update.failed", "error", err)
		return nil, err
	}
	if existing.ImageKey != "" && existing.ImageKey != updated.ImageKey {
		s.deleteObject(ctx, existing.ImageKey)
	}
	s.log(ctx, updated).Info("post.updated", "published", updated.Published, "blocks", len(updated.ContentBlocks))
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return ErrIDRequired
	}
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if existing.ImageKey != "" {
		s.deleteObject(ctx, existing.ImageKey)
	}
	s.log(ctx, existing).Info("post.deleted")
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Record, error) {
	if id == uuid.Nil {
		return nil, ErrIDRequired
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetBySlug(ctx context.Context, value string) (*Record, error) {
	normalized, err := normalizeSlug(value)
	if err != nil {
		return nil, &NotFoundError{Resource: string(s.schema.Kind), Key: value}
	}
	return s.repo.GetBySlug(ctx, normalized)
}

func (s *service) List(ctx context.Context, opts ListOptions) ([]*Record, error) {
	return s.repo.List(ctx, opts)
}

func (s *service) SetPublished(ctx context.Context, id uuid.UUID, published bool) (*Record, error) {
	if id == uuid.Nil {
		return nil, ErrIDRequired
	}
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.Published == published {
		return record, nil
	}
	record.Published = published
	record.UpdatedAt = s.now()
	updated, err := s.repo.Update(ctx, record)
	if err != nil {
		return nil, err
	}
	s.log(ctx, updated).Info("post.published", "published", published)
	return updated, nil
}

// apply validates input and copies it onto record, deriving the flattened
// content columns from blocks when any are present.
func (s *service) apply(record *Record, input SaveInput) error {
	titleEN := firstNonBlank(lookup(input.TitleI18N, i18n.English), input.Title)
	if titleEN == "" {
		return ErrTitleRequired
	}

	list := input.ContentBlocks
	if len(list) > 0 {
		if !s.schema.Blocks {
			return ErrBlocksUnsupported
		}
		if err := list.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrBlocksInvalid, err)
		}
	}

	var contentEN string
	if len(list) > 0 {
		contentEN = blocks.Compile(list, "")
	} else {
		contentEN = firstNonBlank(lookup(input.ContentI18N, i18n.English), input.Content)
	}
	if strings.TrimSpace(contentEN) == "" {
		return ErrContentRequired
	}

	category, ok := s.schema.canonicalCategory(input.Category)
	if !ok {
		return fmt.Errorf("%w: %s", ErrCategoryInvalid, strings.TrimSpace(input.Category))
	}

	slugValue, err := normalizeSlug(firstNonBlank(input.Slug, titleEN))
	if err != nil {
		return err
	}

	summaryEN := firstNonBlank(lookup(input.SummaryI18N, i18n.English), input.Summary)

	record.Slug = slugValue
	record.Title = titleEN
	record.TitleI18N = input.TitleI18N.Compact().With(i18n.English, titleEN)
	record.Summary = summaryEN
	record.SummaryI18N = input.SummaryI18N.Compact().With(i18n.English, summaryEN).Compact()
	record.Content = contentEN
	record.ContentI18N = input.ContentI18N.Compact().With(i18n.English, contentEN)
	record.ContentBlocks = nil
	if len(list) > 0 {
		record.ContentBlocks = list.Clone()
	}
	record.Category = category
	record.Published = input.Published
	record.VideoURL = strings.TrimSpace(input.VideoURL)
	return nil
}

func (s *service) ensureSlugAvailable(ctx context.Context, value string, owner uuid.UUID) error {
	existing, err := s.repo.GetBySlug(ctx, value)
	if err != nil {
		if IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing != nil && existing.ID != owner {
		return fmt.Errorf("%w: %s", ErrSlugExists, value)
	}
	return nil
}

func (s *service) uploadCover(ctx context.Context, upload *interfaces.ImageUpload) (*interfaces.StoredObject, error) {
	if upload == nil {
		return nil, nil
	}
	if s.storage == nil {
		return nil, ErrStorageUnavailable
	}
	obj, err := s.storage.Upload(ctx, s.schema.Bucket, *upload)
	if err != nil {
		s.logger.Warn("post.upload.failed", "bucket", s.schema.Bucket, "file", upload.Name, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}
	return obj, nil
}

func (s *service) discardUpload(ctx context.Context, obj *interfaces.StoredObject) {
	if obj == nil {
		return
	}
	s.deleteObject(ctx, obj.Key)
}

func (s *service) deleteObject(ctx context.Context, key string) {
	if s.storage == nil || key == "" {
		return
	}
	if err := s.storage.Delete(context.WithoutCancel(ctx), s.schema.Bucket, key); err != nil {
		s.logger.Warn("post.upload.cleanup_failed", "bucket", s.schema.Bucket, "key", key, "error", err)
		return
	}
	s.logger.Debug("post.upload.removed", "bucket", s.schema.Bucket, "key", key)
}

func (s *service) log(ctx context.Context, record *Record) interfaces.Logger {
	logger := s.logger.WithContext(ctx)
	if record == nil {
		return logger
	}
	return logging.WithPostContext(logger, string(s.schema.Kind), record.Slug, record.ID.String())
}

func normalizeSlug(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", ErrSlugInvalid
	}
	normalized, err := slug.Normalize(value)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSlugInvalid, err)
	}
	if normalized == "" {
		return "", ErrSlugInvalid
	}
	return normalized, nil
}

func lookup(text i18n.LocalizedText, lang string) string {
	value, _ := text.Get(lang)
	return value
}

func firstNonBlank(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
