package runtimeconfig

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	ErrDefaultLocaleRequired      = errors.New("sitecms config: default locale is required")
	ErrDefaultLocaleUnsupported   = errors.New("sitecms config: default locale must be listed in locales")
	ErrStorageProviderUnknown     = errors.New("sitecms config: storage provider is invalid")
	ErrStorageDSNRequired         = errors.New("sitecms config: storage dsn is required for sql providers")
	ErrCacheTTLInvalid            = errors.New("sitecms config: cache ttl must be positive when cache is enabled")
	ErrMediaProviderUnknown       = errors.New("sitecms config: media provider is invalid")
	ErrMediaBucketRequired        = errors.New("sitecms config: media bucket names are required")
	ErrMediaUploadLimitInvalid    = errors.New("sitecms config: media upload limit must be positive")
	ErrPageSizeInvalid            = errors.New("sitecms config: listing page size must be positive")
	ErrHTTPAddressRequired        = errors.New("sitecms config: http address is required")
	ErrLoggingProviderRequired    = errors.New("sitecms config: logging provider is required when logging feature is enabled")
	ErrLoggingProviderUnknown     = errors.New("sitecms config: logging provider is invalid")
	ErrLoggingLevelInvalid        = errors.New("sitecms config: logging level is invalid")
	ErrLoggingFormatInvalid       = errors.New("sitecms config: logging format is invalid")
	ErrImporterContentDirRequired = errors.New("sitecms config: importer content directory is required")
)

// Config aggregates the settings of the site content module.
type Config struct {
	DefaultLocale string           `yaml:"default_locale"`
	Locales       []string         `yaml:"locales"`
	Storage       StorageConfig    `yaml:"storage"`
	Cache         CacheConfig      `yaml:"cache"`
	Media         MediaConfig      `yaml:"media"`
	Listing       ListingConfig    `yaml:"listing"`
	Disclaimer    DisclaimerConfig `yaml:"disclaimer"`
	Routes        RoutesConfig     `yaml:"routes"`
	HTTP          HTTPConfig       `yaml:"http"`
	Importer      ImporterConfig   `yaml:"importer"`
	Logging       LoggingConfig    `yaml:"logging"`
	Features      Features         `yaml:"features"`
}

// StorageConfig selects the persistence backend for posts and preferences.
// Provider is one of memory, sqlite or postgres.
type StorageConfig struct {
	Provider string `yaml:"provider"`
	DSN      string `yaml:"dsn"`
	Migrate  bool   `yaml:"migrate"`
}

// CacheConfig wraps the bun post repositories with go-repository-cache.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl"`
}

// MediaConfig configures image storage for post covers and block uploads.
type MediaConfig struct {
	Provider        string `yaml:"provider"`
	BlogBucket      string `yaml:"blog_bucket"`
	NewsBucket      string `yaml:"news_bucket"`
	PublicBaseURL   string `yaml:"public_base_url"`
	ProjectID       string `yaml:"project_id"`
	CredentialsFile string `yaml:"credentials_file"`
	EmulatorHost    string `yaml:"emulator_host"`
	MaxUploadBytes  int64  `yaml:"max_upload_bytes"`
}

// ListingConfig holds the page sizes of each list screen.
type ListingConfig struct {
	BlogPageSize   int  `yaml:"blog_page_size"`
	NewsPageSize   int  `yaml:"news_page_size"`
	AdminPageSize  int  `yaml:"admin_page_size"`
	StrictCategory bool `yaml:"strict_category"`
}

// DisclaimerConfig controls the medical professional confirmation gate.
type DisclaimerConfig struct {
	GateBlog     bool   `yaml:"gate_blog"`
	RequiredText string `yaml:"required_text"`
	CookieName   string `yaml:"cookie_name"`
}

// RoutesConfig feeds the permalink builder.
type RoutesConfig struct {
	BaseURL string `yaml:"base_url"`
}

// HTTPConfig configures the bundled server.
type HTTPConfig struct {
	Addr              string        `yaml:"addr"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	RequestTimeout    time.Duration `yaml:"request_timeout"`
}

// ImporterConfig configures markdown ingestion.
type ImporterConfig struct {
	ContentDir string `yaml:"content_dir"`
	Pattern    string `yaml:"pattern"`
	Recursive  bool   `yaml:"recursive"`
}

// Features toggles optional functionality.
type Features struct {
	Logger   bool `yaml:"logger"`
	Commands bool `yaml:"commands"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `yaml:"provider"`
	Level     string   `yaml:"level"`
	Format    string   `yaml:"format"`
	AddSource bool     `yaml:"add_source"`
	Focus     []string `yaml:"focus"`
}

// DefaultConfig returns defaults suitable for local development.
func DefaultConfig() Config {
	return Config{
		DefaultLocale: "en",
		Locales:       []string{"en", "uz", "ru", "de"},
		Storage: StorageConfig{
			Provider: "memory",
		},
		Cache: CacheConfig{
			Enabled: false,
			TTL:     time.Minute,
		},
		Media: MediaConfig{
			Provider:       "memory",
			BlogBucket:     "blog-images",
			NewsBucket:     "news-images",
			MaxUploadBytes: 10 << 20,
		},
		Listing: ListingConfig{
			BlogPageSize:  12,
			NewsPageSize:  9,
			AdminPageSize: 30,
		},
		Disclaimer: DisclaimerConfig{
			CookieName: "sitecms_session",
		},
		HTTP: HTTPConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: 10 * time.Second,
			RequestTimeout:    30 * time.Second,
		},
		Importer: ImporterConfig{
			ContentDir: "content",
			Pattern:    "*.md",
			Recursive:  true,
		},
		Features: Features{
			Logger:   true,
			Commands: true,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// LoadFile decodes the YAML document at path over DefaultConfig and validates it.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("sitecms config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("sitecms config: decode %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	def := normalize(cfg.DefaultLocale)
	if def == "" {
		return ErrDefaultLocaleRequired
	}
	if len(cfg.Locales) > 0 && !contains(cfg.Locales, def) {
		return fmt.Errorf("%w: %s", ErrDefaultLocaleUnsupported, def)
	}

	switch provider := normalize(cfg.Storage.Provider); provider {
	case "memory":
	case "sqlite", "postgres":
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return fmt.Errorf("%w: %s", ErrStorageDSNRequired, provider)
		}
	default:
		return fmt.Errorf("%w: %s", ErrStorageProviderUnknown, provider)
	}
	if cfg.Cache.Enabled && cfg.Cache.TTL <= 0 {
		return ErrCacheTTLInvalid
	}

	switch provider := normalize(cfg.Media.Provider); provider {
	case "memory", "gcs":
	default:
		return fmt.Errorf("%w: %s", ErrMediaProviderUnknown, provider)
	}
	if strings.TrimSpace(cfg.Media.BlogBucket) == "" || strings.TrimSpace(cfg.Media.NewsBucket) == "" {
		return ErrMediaBucketRequired
	}
	if cfg.Media.MaxUploadBytes <= 0 {
		return ErrMediaUploadLimitInvalid
	}

	if cfg.Listing.BlogPageSize <= 0 {
		return fmt.Errorf("%w: blog", ErrPageSizeInvalid)
	}
	if cfg.Listing.NewsPageSize <= 0 {
		return fmt.Errorf("%w: news", ErrPageSizeInvalid)
	}
	if cfg.Listing.AdminPageSize <= 0 {
		return fmt.Errorf("%w: admin", ErrPageSizeInvalid)
	}
	if strings.TrimSpace(cfg.HTTP.Addr) == "" {
		return ErrHTTPAddressRequired
	}
	if strings.TrimSpace(cfg.Importer.ContentDir) == "" {
		return ErrImporterContentDirRequired
	}

	if cfg.Features.Logger {
		provider := normalize(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if provider == "gologger" {
			if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}
	return nil
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func contains(values []string, target string) bool {
	for _, value := range values {
		if normalize(value) == target {
			return true
		}
	}
	return false
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch normalize(level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch normalize(format) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
