package config

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/spf13/viper"
)

// AppConfig holds the configuration for the application.
// Tags used:
// - mapstructure: used by viper to unmarshal
// - default: default value to set if missing
// - required: if "true", error if missing
type AppConfig struct {
	// Environment specifies the runtime environment (e.g., development, production).
	Environment string `mapstructure:"APP_ENV" default:"development"`
	// LogLevel defines the logging verbosity (e.g., debug, info, error).
	LogLevel string `mapstructure:"LOG_LEVEL" default:"info"`

	// Server holds the HTTP shell configuration.
	Server ServerConfig `mapstructure:",squash"`

	// Scrape holds the extraction pipeline timings and target.
	Scrape ScrapeConfig `mapstructure:",squash"`

	// Browser holds the browser launch configuration.
	Browser BrowserConfig `mapstructure:",squash"`

	// Proxy holds the optional upstream proxy used by the browser.
	Proxy ProxyConfig `mapstructure:",squash"`

	// Cache holds the result cache configuration.
	Cache CacheConfig `mapstructure:",squash"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	// Port is the port where the server will listen.
	Port int `mapstructure:"SERVER_PORT" default:"8080"`
	// CORSAllowOrigins is the comma separated list of allowed origins.
	CORSAllowOrigins string `mapstructure:"CORS_ALLOW_ORIGINS" default:"*"`
	// StaticDir is an optional directory served at "/".
	StaticDir string `mapstructure:"STATIC_DIR"`
	// RateLimitRPS is the per-client request rate. 0 disables limiting.
	RateLimitRPS float64 `mapstructure:"RATE_LIMIT_RPS" default:"0"`
	// RateLimitBurst is the per-client burst size.
	RateLimitBurst int `mapstructure:"RATE_LIMIT_BURST" default:"5"`
	// TargetCheckOnStart probes the target URL once at startup.
	TargetCheckOnStart bool `mapstructure:"TARGET_CHECK_ON_START" default:"false"`
}

// ScrapeConfig holds the target page and the bounds of every pipeline wait.
type ScrapeConfig struct {
	// TargetURL is the carrier page hosting the search form.
	TargetURL string `mapstructure:"SCRAPE_TARGET_URL" default:"https://globalexpresslog.com/paquetes-noidentificados/" required:"true"`
	// PageTimeout is the default bound for a single page operation.
	PageTimeout time.Duration `mapstructure:"SCRAPE_PAGE_TIMEOUT" default:"60s"`
	// NavigationTimeout bounds the initial page load.
	NavigationTimeout time.Duration `mapstructure:"SCRAPE_NAVIGATION_TIMEOUT" default:"60s"`
	// LocatorTimeout bounds the wait for a visible search input.
	LocatorTimeout time.Duration `mapstructure:"SCRAPE_LOCATOR_TIMEOUT" default:"30s"`
	// LocatorPoll is the interval between search input lookups.
	LocatorPoll time.Duration `mapstructure:"SCRAPE_LOCATOR_POLL" default:"250ms"`
	// TypeDelay is the pause between typed characters.
	TypeDelay time.Duration `mapstructure:"SCRAPE_TYPE_DELAY" default:"25ms"`
	// SettleDelay is waited after submission before polling for results.
	SettleDelay time.Duration `mapstructure:"SCRAPE_SETTLE_DELAY" default:"1500ms"`
	// ResultTimeout bounds the wait for a terminal result state.
	ResultTimeout time.Duration `mapstructure:"SCRAPE_RESULT_TIMEOUT" default:"25s"`
	// ResultPoll is the interval between result text checks.
	ResultPoll time.Duration `mapstructure:"SCRAPE_RESULT_POLL" default:"300ms"`
	// SnippetLength is the number of characters kept for diagnostics.
	SnippetLength int `mapstructure:"SCRAPE_SNIPPET_LENGTH" default:"1200"`
	// IncludeSnippet adds the text snippet to successful responses.
	IncludeSnippet bool `mapstructure:"SCRAPE_INCLUDE_SNIPPET" default:"false"`
	// BannerAuthoritative makes the "no results" banner override extracted fields.
	BannerAuthoritative bool `mapstructure:"SCRAPE_BANNER_AUTHORITATIVE" default:"false"`
	// UserAgent is sent with every page request.
	UserAgent string `mapstructure:"SCRAPE_USER_AGENT" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"`
	// AcceptLanguage selects the localized labels the extractor expects.
	AcceptLanguage string `mapstructure:"SCRAPE_ACCEPT_LANGUAGE" default:"es-ES,es;q=0.9,en;q=0.8"`
}

// BrowserConfig holds the browser executable and launch settings.
type BrowserConfig struct {
	// Bin is an explicit browser executable path.
	Bin string `mapstructure:"BROWSER_BIN"`
	// CacheDir is where a managed browser is downloaded to.
	CacheDir string `mapstructure:"BROWSER_CACHE_DIR"`
	// Download allows fetching a browser when none is installed.
	Download bool `mapstructure:"BROWSER_DOWNLOAD" default:"false"`
	// Headless runs the browser without a window.
	Headless bool `mapstructure:"BROWSER_HEADLESS" default:"true"`
	// Stealth injects the anti-automation-detection script on each page.
	Stealth bool `mapstructure:"BROWSER_STEALTH" default:"true"`
	// BlockResources drops image, font and media requests.
	BlockResources bool `mapstructure:"BROWSER_BLOCK_RESOURCES" default:"true"`
}

// ProxyConfig holds the upstream proxy credentials.
type ProxyConfig struct {
	Enabled  bool   `mapstructure:"PROXY_ENABLED" default:"false"`
	Hostname string `mapstructure:"PROXY_HOSTNAME"`
	Port     int    `mapstructure:"PROXY_PORT"`
	Username string `mapstructure:"PROXY_USERNAME"`
	Password string `mapstructure:"PROXY_PASSWORD"`
}

// CacheConfig holds the result cache settings.
type CacheConfig struct {
	// RedisURL enables the cache when set, e.g. redis://localhost:6379/0.
	RedisURL string `mapstructure:"REDIS_URL"`
	// TTL is how long a completed result is reused.
	TTL time.Duration `mapstructure:"CACHE_TTL" default:"10m"`
	// Timeout bounds every cache call so a slow Redis cannot stall a lookup.
	Timeout time.Duration `mapstructure:"CACHE_TIMEOUT" default:"500ms"`
}

// Load loads configuration from .env files and environment variables.
func Load(path string) (*AppConfig, error) {
	v := viper.New()

	v.AutomaticEnv()

	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config AppConfig

	if err := processTags(v, &config); err != nil {
		return nil, err
	}

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := validateRequired(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// processTags iterates over the struct fields and sets default values in Viper.
func processTags(v *viper.Viper, config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := processTags(v, val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		key := field.Tag.Get("mapstructure")
		defaultValue := field.Tag.Get("default")

		if key == "" {
			continue
		}

		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("failed to bind env %s: %w", key, err)
		}

		if defaultValue != "" {
			v.SetDefault(key, defaultValue)
		}
	}
	return nil
}

// validateRequired checks if fields marked as required have non-zero values.
func validateRequired(config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := validateRequired(val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		if field.Tag.Get("required") == "true" && isZero(val.Field(i)) {
			return fmt.Errorf("missing required configuration: %s", field.Tag.Get("mapstructure"))
		}
	}
	return nil
}

// isZero checks if a reflect.Value is the zero value for its type.
func isZero(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return v.String() == ""
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	default:
		return v.IsZero()
	}
}
