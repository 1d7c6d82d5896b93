package posts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	cache "github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
)

// Repository persists posts of one kind.
type Repository interface {
	Create(ctx context.Context, record *Record) (*Record, error)
	Update(ctx context.Context, record *Record) (*Record, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*Record, error)
	GetBySlug(ctx context.Context, slug string) (*Record, error)
	List(ctx context.Context, opts ListOptions) ([]*Record, error)
}

// NewBlogRepository returns the go-repository-bun repository for the posts table.
func NewBlogRepository(db *bun.DB) repository.Repository[*BlogPost] {
	return newEntryRepository(db, func() *BlogPost { return &BlogPost{} })
}

// NewNewsRepository returns the go-repository-bun repository for company_news.
func NewNewsRepository(db *bun.DB) repository.Repository[*NewsPost] {
	return newEntryRepository(db, func() *NewsPost { return &NewsPost{} })
}

func newEntryRepository[E Entry](db *bun.DB, newRecord func() E) repository.Repository[E] {
	return repository.MustNewRepository(db, repository.ModelHandlers[E]{
		NewRecord: newRecord,
		GetID: func(e E) uuid.UUID {
			return e.Base().ID
		},
		SetID: func(e E, id uuid.UUID) {
			e.Base().ID = id
		},
		GetIdentifier: func() string {
			return "slug"
		},
		GetIdentifierValue: func(e E) string {
			return e.Base().Slug
		},
	})
}

// BunRepository adapts a table model repository to Repository, with an
// optional read-through cache for single-record reads.
type BunRepository[E Entry] struct {
	repo repository.Repository[E]
	// base bypasses the cache. List criteria are closures the cache key
	// serializer cannot tell apart.
	base         repository.Repository[E]
	wrap         func(*Record) E
	resource     string
	cacheService cache.CacheService
	cachePrefix  string
}

// NewBunBlogRepository creates the blog repository without caching.
func NewBunBlogRepository(db *bun.DB) *BunRepository[*BlogPost] {
	return NewBunBlogRepositoryWithCache(db, nil, nil)
}

// NewBunBlogRepositoryWithCache creates the blog repository with caching services.
func NewBunBlogRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunRepository[*BlogPost] {
	return newBunRepository(NewBlogRepository(db), "blog_post", func(rec *Record) *BlogPost {
		return &BlogPost{Record: *rec}
	}, cacheService, serializer)
}

// NewBunNewsRepository creates the news repository without caching.
func NewBunNewsRepository(db *bun.DB) *BunRepository[*NewsPost] {
	return NewBunNewsRepositoryWithCache(db, nil, nil)
}

// NewBunNewsRepositoryWithCache creates the news repository with caching services.
func NewBunNewsRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunRepository[*NewsPost] {
	return newBunRepository(NewNewsRepository(db), "news_post", func(rec *Record) *NewsPost {
		return &NewsPost{Record: *rec}
	}, cacheService, serializer)
}

func newBunRepository[E Entry](base repository.Repository[E], resource string, wrap func(*Record) E, cacheService cache.CacheService, serializer cache.KeySerializer) *BunRepository[E] {
	r := &BunRepository[E]{
		repo:     base,
		base:     base,
		wrap:     wrap,
		resource: resource,
	}
	if cacheService != nil && serializer != nil {
		r.repo = repositorycache.New(base, cacheService, serializer)
		r.cacheService = cacheService
		r.cachePrefix = resource + cache.KeySeparator
	}
	return r
}

func (r *BunRepository[E]) Create(ctx context.Context, record *Record) (*Record, error) {
	created, err := r.repo.Create(ctx, r.wrap(record))
	if err != nil {
		return nil, mapRepositoryError(err, r.resource, record.Slug)
	}
	if err := r.InvalidateCache(ctx); err != nil {
		return nil, err
	}
	return created.Base().Clone(), nil
}

func (r *BunRepository[E]) Update(ctx context.Context, record *Record) (*Record, error) {
	updated, err := r.repo.Update(ctx, r.wrap(record))
	if err != nil {
		return nil, mapRepositoryError(err, r.resource, record.ID.String())
	}
	if err := r.InvalidateCache(ctx); err != nil {
		return nil, err
	}
	return updated.Base().Clone(), nil
}

func (r *BunRepository[E]) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.repo.Delete(ctx, r.wrap(&Record{ID: id})); err != nil {
		return mapRepositoryError(err, r.resource, id.String())
	}
	return r.InvalidateCache(ctx)
}

func (r *BunRepository[E]) GetByID(ctx context.Context, id uuid.UUID) (*Record, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, r.resource, id.String())
	}
	return record.Base().Clone(), nil
}

func (r *BunRepository[E]) GetBySlug(ctx context.Context, slug string) (*Record, error) {
	record, err := r.repo.GetByIdentifier(ctx, slug)
	if err != nil {
		return nil, mapRepositoryError(err, r.resource, slug)
	}
	return record.Base().Clone(), nil
}

// List pushes the published and category predicates down to SQL and orders
// newest first. Lists always read through to the database.
func (r *BunRepository[E]) List(ctx context.Context, opts ListOptions) ([]*Record, error) {
	category := strings.TrimSpace(opts.Category)
	records, _, err := r.base.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			if opts.PublishedOnly {
				q = q.Where("?TableAlias.published = ?", true)
			}
			if category != "" {
				q = q.Where("LOWER(?TableAlias.category) = LOWER(?)", category)
			}
			q = q.OrderExpr("?TableAlias.created_at DESC")
			if opts.Limit > 0 {
				q = q.Limit(opts.Limit).Offset(max(opts.Offset, 0))
			}
			return q
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("%s repository error: %w", r.resource, err)
	}
	out := make([]*Record, 0, len(records))
	for _, record := range records {
		out = append(out, record.Base().Clone())
	}
	return out, nil
}

// InvalidateCache drops cached reads after a mutation.
func (r *BunRepository[E]) InvalidateCache(ctx context.Context) error {
	if r.cacheService == nil || r.cachePrefix == "" {
		return nil
	}
	return r.cacheService.DeleteByPrefix(ctx, r.cachePrefix)
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{
			Resource: resource,
			Key:      key,
		}
	}
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", ErrSlugExists, key)
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}

// isUniqueViolation recognises the slug index rejecting a concurrent insert.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint failed")
}

var (
	_ Repository = (*BunRepository[*BlogPost])(nil)
	_ Repository = (*BunRepository[*NewsPost])(nil)
)
