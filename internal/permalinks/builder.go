// Package permalinks builds public URLs for posts and products with go-urlkit.
package permalinks

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	urlkit "github.com/goliatone/go-urlkit"

	"github.com/pharmaweb/sitecms/internal/i18n"
)

// Route names registered in the public group.
const (
	GroupPublic = "public"

	RouteBlogIndex = "blog_index"
	RouteBlogPost  = "blog_post"
	RouteNewsIndex = "news_index"
	RouteNewsPost  = "news_post"
	RouteProduct   = "product"
)

var (
	ErrKindUnknown   = errors.New("permalinks: unknown post kind")
	ErrSlugRequired  = errors.New("permalinks: slug is required")
	ErrIDRequired    = errors.New("permalinks: product id is required")
	ErrGroupNotFound = errors.New("permalinks: route group not found")
)

// Options configures the route table.
type Options struct {
	BaseURL       string
	DefaultLocale string
	// Locales lists every served locale. Non-default locales are mounted
	// under /<locale>.
	Locales []string
}

// Builder resolves permalinks per locale. Safe for concurrent use.
type Builder struct {
	manager       *urlkit.RouteManager
	defaultLocale string
	locales       map[string]struct{}

	mu     sync.RWMutex
	groups map[string]*urlkit.Group
}

// NewBuilder registers the public routes for every locale.
func NewBuilder(opts Options) *Builder {
	def := i18n.NormalizeLocale(opts.DefaultLocale)
	if def == "" {
		def = i18n.DefaultLocale
	}
	locales := make(map[string]struct{}, len(opts.Locales))
	children := make([]urlkit.GroupConfig, 0, len(opts.Locales))
	for _, raw := range opts.Locales {
		code := i18n.NormalizeLocale(raw)
		if code == "" || code == def {
			continue
		}
		if _, dup := locales[code]; dup {
			continue
		}
		locales[code] = struct{}{}
		children = append(children, urlkit.GroupConfig{
			Name:  code,
			Path:  "/" + code,
			Paths: publicPaths(),
		})
	}

	manager := urlkit.NewRouteManager(&urlkit.Config{
		Groups: []urlkit.GroupConfig{
			{
				Name:    GroupPublic,
				BaseURL: strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"),
				Paths:   publicPaths(),
				Groups:  children,
			},
		},
	})

	return &Builder{
		manager:       manager,
		defaultLocale: def,
		locales:       locales,
		groups:        make(map[string]*urlkit.Group),
	}
}

func publicPaths() map[string]string {
	return map[string]string{
		RouteBlogIndex: "/blog",
		RouteBlogPost:  "/blog/:slug",
		RouteNewsIndex: "/news",
		RouteNewsPost:  "/news/:slug",
		RouteProduct:   "/products/:id",
	}
}

// Manager exposes the underlying route manager.
func (b *Builder) Manager() *urlkit.RouteManager {
	return b.manager
}

// Post returns the permalink of a blog or news post.
func (b *Builder) Post(kind, slug, lang string) (string, error) {
	route, err := postRoute(kind)
	if err != nil {
		return "", err
	}
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return "", ErrSlugRequired
	}
	return b.build(lang, route, map[string]any{"slug": slug}, nil)
}

// Index returns the list page URL of kind. page values below 2 are omitted.
func (b *Builder) Index(kind, lang string, page int) (string, error) {
	var route string
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "blog":
		route = RouteBlogIndex
	case "news":
		route = RouteNewsIndex
	default:
		return "", fmt.Errorf("%w: %q", ErrKindUnknown, kind)
	}
	var query map[string]string
	if page > 1 {
		query = map[string]string{"page": strconv.Itoa(page)}
	}
	return b.build(lang, route, nil, query)
}

// Product returns the product detail URL.
func (b *Builder) Product(id, lang string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", ErrIDRequired
	}
	return b.build(lang, RouteProduct, map[string]any{"id": id}, nil)
}

func (b *Builder) build(lang, route string, params map[string]any, query map[string]string) (url string, err error) {
	group, err := b.group(lang)
	if err != nil {
		return "", err
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("permalinks: route %q: %v", route, rec)
		}
	}()
	builder := group.Builder(route)
	for key, value := range params {
		builder.WithParam(key, value)
	}
	for key, value := range query {
		builder.WithQuery(key, value)
	}
	return builder.Build()
}

// group returns the locale group, falling back to the default locale for
// unknown languages.
func (b *Builder) group(lang string) (*urlkit.Group, error) {
	code := i18n.NormalizeLocale(lang)
	if _, ok := b.locales[code]; !ok {
		code = b.defaultLocale
	}

	b.mu.RLock()
	group, ok := b.groups[code]
	b.mu.RUnlock()
	if ok {
		return group, nil
	}

	group, err := lookupGroup(b.manager, GroupPublic)
	if err != nil {
		return nil, err
	}
	if code != b.defaultLocale {
		if group, err = lookupChildGroup(group, code); err != nil {
			return nil, err
		}
	}

	b.mu.Lock()
	b.groups[code] = group
	b.mu.Unlock()
	return group, nil
}

func postRoute(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "blog":
		return RouteBlogPost, nil
	case "news":
		return RouteNewsPost, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrKindUnknown, kind)
	}
}

func lookupGroup(manager *urlkit.RouteManager, name string) (group *urlkit.Group, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %s", ErrGroupNotFound, name)
		}
	}()
	return manager.Group(name), nil
}

func lookupChildGroup(parent *urlkit.Group, name string) (group *urlkit.Group, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %s", ErrGroupNotFound, name)
		}
	}()
	return parent.Group(name), nil
}
