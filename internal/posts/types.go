package posts

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/pharmaweb/sitecms/internal/blocks"
	"github.com/pharmaweb/sitecms/internal/i18n"
)

// Kind names a post collection.
type Kind string

const (
	KindBlog Kind = "blog"
	KindNews Kind = "news"
)

// ParseKind maps a route segment to a Kind.
func ParseKind(value string) (Kind, bool) {
	switch Kind(strings.ToLower(strings.TrimSpace(value))) {
	case KindBlog:
		return KindBlog, true
	case KindNews:
		return KindNews, true
	default:
		return "", false
	}
}

// Record holds the columns shared by blog posts and company news.
//
// When ContentBlocks is non-empty it is the source of Content and
// ContentI18N["en"]; otherwise both are authored HTML.
type Record struct {
	ID            uuid.UUID          `bun:",pk,type:uuid" json:"id"`
	Slug          string             `bun:"slug,notnull,unique" json:"slug"`
	Title         string             `bun:"title,notnull" json:"title"`
	Summary       string             `bun:"summary" json:"summary"`
	Content       string             `bun:"content" json:"content"`
	TitleI18N     i18n.LocalizedText `bun:"title_i18n,type:jsonb" json:"title_i18n,omitempty"`
	SummaryI18N   i18n.LocalizedText `bun:"summary_i18n,type:jsonb" json:"summary_i18n,omitempty"`
	ContentI18N   i18n.LocalizedText `bun:"content_i18n,type:jsonb" json:"content_i18n,omitempty"`
	ContentBlocks blocks.List        `bun:"content_blocks,type:jsonb" json:"content_blocks"`
	Category      string             `bun:"category" json:"category"`
	Published     bool               `bun:"published,notnull,default:false" json:"published"`
	ImageURL      string             `bun:"image_url" json:"image_url,omitempty"`
	ImageKey      string             `bun:"image_key" json:"-"`
	VideoURL      string             `bun:"video_url" json:"video_url,omitempty"`
	CreatedAt     time.Time          `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time          `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// Clone returns a deep copy.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	out := *r
	out.TitleI18N = r.TitleI18N.Clone()
	out.SummaryI18N = r.SummaryI18N.Clone()
	out.ContentI18N = r.ContentI18N.Clone()
	out.ContentBlocks = r.ContentBlocks.Clone()
	return &out
}

// Body returns the HTML body for lang. An authored translation for a
// non-default language wins; otherwise non-empty blocks are compiled, and
// finally the localized content falls back to the legacy column.
func (r *Record) Body(resolver i18n.Resolver, lang string) string {
	lang = resolver.Lang(lang)
	if lang != resolver.Lang("") {
		if translated, ok := r.ContentI18N.Get(lang); ok {
			return translated
		}
	}
	if len(r.ContentBlocks) > 0 {
		return blocks.Compile(r.ContentBlocks, r.Content)
	}
	return resolver.TextOr(r.ContentI18N, lang, r.Content)
}

// BlogPost is a row of the posts table.
type BlogPost struct {
	bun.BaseModel `bun:"table:posts,alias:p"`
	Record
}

// Base exposes the shared columns.
func (p *BlogPost) Base() *Record { return &p.Record }

// NewsPost is a row of the company_news table.
type NewsPost struct {
	bun.BaseModel `bun:"table:company_news,alias:n"`
	Record
}

// Base exposes the shared columns.
func (p *NewsPost) Base() *Record { return &p.Record }

// Entry is satisfied by the two table models.
type Entry interface {
	*BlogPost | *NewsPost
	Base() *Record
}

// ListOptions narrows List results. Zero values mean "no filter".
type ListOptions struct {
	PublishedOnly bool
	Category      string
	Limit         int
	Offset        int
}

var (
	ErrIDRequired         = errors.New("posts: id required")
	ErrTitleRequired      = errors.New("posts: english title is required")
	ErrContentRequired    = errors.New("posts: english content is required")
	ErrSlugInvalid        = errors.New("posts: slug is invalid")
	ErrSlugExists         = errors.New("posts: slug already exists")
	ErrBlocksUnsupported  = errors.New("posts: content blocks are not supported for this content type")
	ErrBlocksInvalid      = errors.New("posts: content blocks are invalid")
	ErrCategoryInvalid    = errors.New("posts: category is not allowed")
	ErrUploadFailed       = errors.New("posts: image upload failed")
	ErrStorageUnavailable = errors.New("posts: image storage not configured")
)

// IsValidation reports whether err is a save-time validation failure.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrIDRequired,
		ErrTitleRequired,
		ErrContentRequired,
		ErrSlugInvalid,
		ErrBlocksUnsupported,
		ErrBlocksInvalid,
		ErrCategoryInvalid,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// NotFoundError is returned when a post lookup misses.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
