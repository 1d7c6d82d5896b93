package sitecms

import "github.com/pharmaweb/sitecms/internal/runtimeconfig"

var (
	ErrDefaultLocaleRequired      = runtimeconfig.ErrDefaultLocaleRequired
	ErrDefaultLocaleUnsupported   = runtimeconfig.ErrDefaultLocaleUnsupported
	ErrStorageProviderUnknown     = runtimeconfig.ErrStorageProviderUnknown
	ErrStorageDSNRequired         = runtimeconfig.ErrStorageDSNRequired
	ErrCacheTTLInvalid            = runtimeconfig.ErrCacheTTLInvalid
	ErrMediaProviderUnknown       = runtimeconfig.ErrMediaProviderUnknown
	ErrMediaBucketRequired        = runtimeconfig.ErrMediaBucketRequired
	ErrMediaUploadLimitInvalid    = runtimeconfig.ErrMediaUploadLimitInvalid
	ErrPageSizeInvalid            = runtimeconfig.ErrPageSizeInvalid
	ErrHTTPAddressRequired        = runtimeconfig.ErrHTTPAddressRequired
	ErrLoggingProviderRequired    = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown     = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid        = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid       = runtimeconfig.ErrLoggingFormatInvalid
	ErrImporterContentDirRequired = runtimeconfig.ErrImporterContentDirRequired
)

type (
	Config           = runtimeconfig.Config
	StorageConfig    = runtimeconfig.StorageConfig
	CacheConfig      = runtimeconfig.CacheConfig
	MediaConfig      = runtimeconfig.MediaConfig
	ListingConfig    = runtimeconfig.ListingConfig
	DisclaimerConfig = runtimeconfig.DisclaimerConfig
	RoutesConfig     = runtimeconfig.RoutesConfig
	HTTPConfig       = runtimeconfig.HTTPConfig
	ImporterConfig   = runtimeconfig.ImporterConfig
	Features         = runtimeconfig.Features
	LoggingConfig    = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads a YAML configuration file over the defaults.
func LoadConfig(path string) (Config, error) {
	return runtimeconfig.LoadFile(path)
}
