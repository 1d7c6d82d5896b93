package di

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/pharmaweb/sitecms/internal/blocks"
	"github.com/pharmaweb/sitecms/internal/commands"
	"github.com/pharmaweb/sitecms/internal/disclaimer"
	sitehttp "github.com/pharmaweb/sitecms/internal/http"
	"github.com/pharmaweb/sitecms/internal/i18n"
	"github.com/pharmaweb/sitecms/internal/importer"
	"github.com/pharmaweb/sitecms/internal/logging"
	"github.com/pharmaweb/sitecms/internal/logging/console"
	"github.com/pharmaweb/sitecms/internal/logging/gologger"
	"github.com/pharmaweb/sitecms/internal/media"
	"github.com/pharmaweb/sitecms/internal/migrations"
	"github.com/pharmaweb/sitecms/internal/permalinks"
	"github.com/pharmaweb/sitecms/internal/posts"
	"github.com/pharmaweb/sitecms/internal/preferences"
	"github.com/pharmaweb/sitecms/internal/runtimeconfig"
	"github.com/pharmaweb/sitecms/pkg/interfaces"
)

var ErrMigrationsFSRequired = errors.New("di: migrations filesystem is required to migrate")

// Container wires module dependencies from a runtime configuration.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	logger         interfaces.Logger
	clock          func() time.Time

	bunDB         *bun.DB
	ownsDB        bool
	migrationsFS  fs.FS
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	imageStorage interfaces.ImageStorage
	preferences  interfaces.PreferenceStore
	closers      []func() error

	services   commands.PostServices
	presenter  *posts.Presenter
	permalinks *permalinks.Builder
	disclaimer *disclaimer.Service
	importer   *importer.Importer

	saveCmd    *commands.Handler[commands.SavePostCommand]
	deleteCmd  *commands.Handler[commands.DeletePostCommand]
	publishCmd *commands.Handler[commands.PublishPostCommand]
	importCmd  *commands.Handler[commands.ImportPostsCommand]

	handler http.Handler
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the provider selected by the logging config.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithBunDB supplies an open database. The container never closes it.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithMigrationsFS sets the SQL migrations applied when Storage.Migrate is on.
func WithMigrationsFS(fsys fs.FS) Option {
	return func(c *Container) {
		c.migrationsFS = fsys
	}
}

// WithCache overrides the repository cache service.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithImageStorage overrides the media provider selected by config.
func WithImageStorage(storage interfaces.ImageStorage) Option {
	return func(c *Container) {
		c.imageStorage = storage
	}
}

// WithPreferenceStore overrides the preference store.
func WithPreferenceStore(store interfaces.PreferenceStore) Option {
	return func(c *Container) {
		c.preferences = store
	}
}

// WithClock overrides the clock used by services.
func WithClock(clock func() time.Time) Option {
	return func(c *Container) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// NewContainer validates cfg and builds every service.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Container{Config: cfg, clock: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	ctx := context.Background()
	steps := []func(context.Context) error{
		c.configureLogger,
		c.configureDatabase,
		c.configureCache,
		c.configureMedia,
		c.configurePreferences,
		c.configureServices,
		c.configureCommands,
		c.configureHTTP,
	}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			_ = c.Close()
			return nil, err
		}
	}
	c.logger.Info("container.configured",
		"storage", c.storageProvider(),
		"media", strings.ToLower(cfg.Media.Provider),
		"cache", c.cacheService != nil,
	)
	return c, nil
}

func (c *Container) configureLogger(context.Context) error {
	if c.loggerProvider == nil && c.Config.Features.Logger {
		provider, err := newLoggerProvider(c.Config.Logging)
		if err != nil {
			return err
		}
		c.loggerProvider = provider
	}
	c.logger = logging.ModuleLogger(c.loggerProvider, "sitecms")
	return nil
}

func newLoggerProvider(cfg runtimeconfig.LoggingConfig) (interfaces.LoggerProvider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "gologger":
		return gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
			Focus:     cfg.Focus,
		})
	default:
		level, _ := console.ParseLevel(cfg.Level)
		return console.NewProvider(console.Options{MinLevel: &level}), nil
	}
}

func (c *Container) storageProvider() string {
	if c.bunDB != nil && !c.ownsDB {
		return "external"
	}
	return strings.ToLower(strings.TrimSpace(c.Config.Storage.Provider))
}

func (c *Container) configureDatabase(ctx context.Context) error {
	if c.bunDB == nil {
		db, err := openDatabase(c.Config.Storage)
		if err != nil {
			return err
		}
		if db == nil {
			return nil
		}
		c.bunDB = db
		c.ownsDB = true
		c.closers = append(c.closers, db.Close)
	}
	if !c.Config.Storage.Migrate {
		return nil
	}
	if c.migrationsFS == nil {
		return ErrMigrationsFSRequired
	}
	runner, err := migrations.NewRunner(c.bunDB, c.migrationsFS, logging.ModuleLogger(c.loggerProvider, "sitecms.migrations"))
	if err != nil {
		return err
	}
	_, err = runner.Up(ctx)
	return err
}

// openDatabase returns nil for the memory provider.
func openDatabase(cfg runtimeconfig.StorageConfig) (*bun.DB, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "sqlite":
		sqlDB, err := sql.Open("sqlite3", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("di: open sqlite: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
		return bun.NewDB(sqlDB, sqlitedialect.New()), nil
	case "postgres":
		sqlDB, err := sql.Open("pgx", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("di: open postgres: %w", err)
		}
		return bun.NewDB(sqlDB, pgdialect.New()), nil
	default:
		return nil, nil
	}
}

func (c *Container) configureCache(context.Context) error {
	if c.bunDB == nil || (!c.Config.Cache.Enabled && c.cacheService == nil) {
		return nil
	}
	if c.cacheService == nil {
		cacheCfg := repocache.DefaultConfig()
		cacheCfg.TTL = c.Config.Cache.TTL
		service, err := repocache.NewCacheService(cacheCfg)
		if err != nil {
			return fmt.Errorf("di: cache service: %w", err)
		}
		c.cacheService = service
	}
	if c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
	return nil
}

func (c *Container) configureMedia(ctx context.Context) error {
	if c.imageStorage != nil {
		return nil
	}
	cfg := c.Config.Media
	if strings.EqualFold(strings.TrimSpace(cfg.Provider), "gcs") {
		storage, err := media.NewGCSStorage(ctx, media.GCSConfig{
			ProjectID:       cfg.ProjectID,
			CredentialsFile: cfg.CredentialsFile,
			EmulatorHost:    cfg.EmulatorHost,
			PublicBaseURL:   cfg.PublicBaseURL,
			MaxUploadBytes:  cfg.MaxUploadBytes,
		}, logging.MediaLogger(c.loggerProvider))
		if err != nil {
			return err
		}
		c.imageStorage = storage
		c.closers = append(c.closers, storage.Close)
		return nil
	}
	memoryOpts := []media.MemoryOption{media.WithMemoryMaxBytes(cfg.MaxUploadBytes), media.WithMemoryClock(c.clock)}
	if base := strings.TrimSpace(cfg.PublicBaseURL); base != "" {
		memoryOpts = append(memoryOpts, media.WithMemoryBaseURL(base))
	}
	c.imageStorage = media.NewMemoryStorage(memoryOpts...)
	return nil
}

func (c *Container) configurePreferences(context.Context) error {
	if c.preferences != nil {
		return nil
	}
	if c.bunDB != nil {
		c.preferences = preferences.NewBunStore(c.bunDB, preferences.WithStoreClock(c.clock))
		return nil
	}
	c.preferences = preferences.NewMemoryStore()
	return nil
}

func (c *Container) configureServices(context.Context) error {
	cfg := c.Config
	postsLogger := logging.PostsLogger(c.loggerProvider)
	serviceOpts := []posts.ServiceOption{
		posts.WithClock(c.clock),
		posts.WithImageStorage(c.imageStorage),
		posts.WithLogger(postsLogger),
	}

	var blogRepo, newsRepo posts.Repository
	switch {
	case c.bunDB != nil && c.cacheService != nil:
		blogRepo = posts.NewBunBlogRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		newsRepo = posts.NewBunNewsRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
	case c.bunDB != nil:
		blogRepo = posts.NewBunBlogRepository(c.bunDB)
		newsRepo = posts.NewBunNewsRepository(c.bunDB)
	default:
		blogRepo = posts.NewMemoryRepository("post")
		newsRepo = posts.NewMemoryRepository("news_post")
	}

	c.services = commands.PostServices{
		posts.KindBlog: posts.NewService(posts.BlogSchema(cfg.Media.BlogBucket), blogRepo, serviceOpts...),
		posts.KindNews: posts.NewService(posts.NewsSchema(cfg.Media.NewsBucket), newsRepo, serviceOpts...),
	}

	c.permalinks = permalinks.NewBuilder(permalinks.Options{
		BaseURL:       cfg.Routes.BaseURL,
		DefaultLocale: cfg.DefaultLocale,
		Locales:       cfg.Locales,
	})
	c.presenter = posts.NewPresenter(
		i18n.NewResolver(cfg.DefaultLocale),
		blocks.NewRenderer(postsLogger),
		c.permalinks,
	)

	disclaimerOpts := []disclaimer.Option{
		disclaimer.WithClock(c.clock),
		disclaimer.WithLogger(logging.ModuleLogger(c.loggerProvider, "sitecms.disclaimer")),
	}
	if text := strings.TrimSpace(cfg.Disclaimer.RequiredText); text != "" {
		disclaimerOpts = append(disclaimerOpts, disclaimer.WithRequiredText(text))
	}
	c.disclaimer = disclaimer.NewService(c.preferences, disclaimerOpts...)

	c.importer = importer.New(importer.Config{
		Services:      c.services,
		DefaultLocale: cfg.DefaultLocale,
		Locales:       cfg.Locales,
		Logger:        logging.ImporterLogger(c.loggerProvider),
	})
	return nil
}

func (c *Container) configureCommands(context.Context) error {
	logger := logging.CommandsLogger(c.loggerProvider)
	timeout := c.Config.HTTP.RequestTimeout
	c.saveCmd = commands.NewSavePostHandler(c.services, logger, commands.WithTimeout[commands.SavePostCommand](timeout))
	c.deleteCmd = commands.NewDeletePostHandler(c.services, logger, commands.WithTimeout[commands.DeletePostCommand](timeout))
	c.publishCmd = commands.NewPublishPostHandler(c.services, logger, commands.WithTimeout[commands.PublishPostCommand](timeout))
	// imports walk whole directories and run without a deadline
	c.importCmd = commands.NewImportPostsHandler(c.importer, logger, commands.WithTimeout[commands.ImportPostsCommand](0))
	return nil
}

func (c *Container) configureHTTP(context.Context) error {
	cfg := c.Config
	httpLogger := logging.HTTPLogger(c.loggerProvider)
	mux := http.NewServeMux()

	admin := sitehttp.NewAdminAPI(
		sitehttp.WithPostServices(c.services),
		sitehttp.WithSaveCommand(c.saveCmd),
		sitehttp.WithDeleteCommand(c.deleteCmd),
		sitehttp.WithPublishCommand(c.publishCmd),
		sitehttp.WithImageStorage(c.imageStorage),
		sitehttp.WithMaxUploadBytes(cfg.Media.MaxUploadBytes),
		sitehttp.WithAdminPageSize(cfg.Listing.AdminPageSize, cfg.Listing.StrictCategory),
		sitehttp.WithAdminLogger(httpLogger),
		sitehttp.WithEditorSessionLogger(logging.EditorLogger(c.loggerProvider)),
	)
	if err := admin.Register(mux); err != nil {
		return err
	}

	site := sitehttp.NewPublicSite(
		sitehttp.WithPublicServices(c.services),
		sitehttp.WithPresenter(c.presenter),
		sitehttp.WithPageSize(posts.KindBlog, cfg.Listing.BlogPageSize),
		sitehttp.WithPageSize(posts.KindNews, cfg.Listing.NewsPageSize),
		sitehttp.WithStrictCategory(cfg.Listing.StrictCategory),
		sitehttp.WithDisclaimer(c.disclaimer, cfg.Disclaimer.GateBlog),
		sitehttp.WithPreferences(c.preferences),
		sitehttp.WithLocales(cfg.DefaultLocale, cfg.Locales),
		sitehttp.WithSessionCookie(cfg.Disclaimer.CookieName),
		sitehttp.WithPublicLogger(httpLogger),
	)
	if err := site.Register(mux); err != nil {
		return err
	}

	var handler http.Handler = mux
	if timeout := cfg.HTTP.RequestTimeout; timeout > 0 {
		handler = http.TimeoutHandler(handler, timeout, `{"error":"timeout","status":"Error: request timed out"}`)
	}
	c.handler = sitehttp.WithRequestLogging(handler, httpLogger)
	return nil
}

// Close releases resources the container opened itself.
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

// LoggerProvider returns the configured provider, nil when logging is off.
func (c *Container) LoggerProvider() interfaces.LoggerProvider { return c.loggerProvider }

// Logger returns the root module logger.
func (c *Container) Logger() interfaces.Logger { return c.logger }

// DB returns the bun database, nil for in-memory storage.
func (c *Container) DB() *bun.DB { return c.bunDB }

// Services returns the post service of each collection.
func (c *Container) Services() commands.PostServices { return c.services }

// PostService returns the service of one collection.
func (c *Container) PostService(kind posts.Kind) posts.Service { return c.services[kind] }

func (c *Container) ImageStorage() interfaces.ImageStorage { return c.imageStorage }

func (c *Container) PreferenceStore() interfaces.PreferenceStore { return c.preferences }

func (c *Container) Presenter() *posts.Presenter { return c.presenter }

func (c *Container) Permalinks() *permalinks.Builder { return c.permalinks }

func (c *Container) Disclaimer() *disclaimer.Service { return c.disclaimer }

func (c *Container) Importer() *importer.Importer { return c.importer }

// SaveCommand returns the create/update command handler.
func (c *Container) SaveCommand() *commands.Handler[commands.SavePostCommand] { return c.saveCmd }

// DeleteCommand returns the delete command handler.
func (c *Container) DeleteCommand() *commands.Handler[commands.DeletePostCommand] { return c.deleteCmd }

// PublishCommand returns the publish toggle command handler.
func (c *Container) PublishCommand() *commands.Handler[commands.PublishPostCommand] {
	return c.publishCmd
}

// ImportCommand returns the markdown import command handler.
func (c *Container) ImportCommand() *commands.Handler[commands.ImportPostsCommand] {
	return c.importCmd
}

// Handler returns the HTTP handler serving the public site and admin API.
func (c *Container) Handler() http.Handler { return c.handler }
