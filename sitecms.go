package sitecms

import (
	"context"
	"net/http"
	"time"

	"github.com/uptrace/bun"

	"github.com/pharmaweb/sitecms/internal/commands"
	"github.com/pharmaweb/sitecms/internal/di"
	"github.com/pharmaweb/sitecms/internal/importer"
	"github.com/pharmaweb/sitecms/internal/posts"
	"github.com/pharmaweb/sitecms/pkg/interfaces"
)

// Kind names a post collection.
type Kind = posts.Kind

const (
	KindBlog = posts.KindBlog
	KindNews = posts.KindNews
)

// PostService exports the post service contract.
type PostService = posts.Service

// ListOptions filters post listings.
type ListOptions = posts.ListOptions

// Presenter exports the localized view builder.
type Presenter = posts.Presenter

// Importer exports the markdown importer.
type Importer = importer.Importer

// ImportRequest describes one markdown import run.
type ImportRequest = commands.ImportPostsCommand

// ImportResult summarises an import run.
type ImportResult = importer.Result

// Option customises the module at construction time.
type Option func(*options)

type options struct {
	di []di.Option
}

// WithDB reuses an existing bun database instead of opening one from config.
func WithDB(db *bun.DB) Option {
	return func(o *options) { o.di = append(o.di, di.WithBunDB(db)) }
}

func WithImageStorage(storage interfaces.ImageStorage) Option {
	return func(o *options) { o.di = append(o.di, di.WithImageStorage(storage)) }
}

func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(o *options) { o.di = append(o.di, di.WithLoggerProvider(provider)) }
}

func WithPreferenceStore(store interfaces.PreferenceStore) Option {
	return func(o *options) { o.di = append(o.di, di.WithPreferenceStore(store)) }
}

// WithClock overrides the time source used for post timestamps.
func WithClock(clock func() time.Time) Option {
	return func(o *options) { o.di = append(o.di, di.WithClock(clock)) }
}

// Module is the top level runtime of the site content module.
type Module struct {
	container *di.Container
}

// New constructs a module from cfg. The embedded migrations are always
// available so Storage.Migrate works without extra wiring.
func New(cfg Config, opts ...Option) (*Module, error) {
	migrations, err := Migrations()
	if err != nil {
		return nil, err
	}
	o := &options{di: []di.Option{di.WithMigrationsFS(migrations)}}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	container, err := di.NewContainer(cfg, o.di...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for in-module integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Posts returns the service of one collection, nil for unknown kinds.
func (m *Module) Posts(kind Kind) PostService {
	return m.container.PostService(kind)
}

func (m *Module) Blog() PostService { return m.Posts(KindBlog) }

func (m *Module) News() PostService { return m.Posts(KindNews) }

func (m *Module) Presenter() *Presenter { return m.container.Presenter() }

func (m *Module) Importer() *Importer { return m.container.Importer() }

// Import runs the markdown import command for one collection.
// The result is returned alongside per-file failures.
func (m *Module) Import(ctx context.Context, req ImportRequest) (*ImportResult, error) {
	report := &commands.ImportReport{}
	req.Result = report
	err := m.container.ImportCommand().Execute(ctx, req)
	return report.Result, err
}

// Handler serves the public site and the admin API.
func (m *Module) Handler() http.Handler { return m.container.Handler() }

// Logger returns the root module logger.
func (m *Module) Logger() interfaces.Logger { return m.container.Logger() }

// Close releases the database and storage clients the module opened.
func (m *Module) Close() error {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Close()
}
