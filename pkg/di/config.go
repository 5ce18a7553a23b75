package di

import (
	"os"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/goliatone/go-lide-client/cache"
	"github.com/goliatone/go-lide-client/internal/cacheinfra"
	"github.com/goliatone/go-lide-client/search"
	"github.com/goliatone/go-lide-client/transport"
)

// Environment variables read by ConfigFromEnv.
const (
	EnvAPIURL      = "LIDE_API_URL"
	EnvHTTPTimeout = "LIDE_HTTP_TIMEOUT"
	EnvPageSize    = "LIDE_PAGE_SIZE"
	EnvDebounce    = "LIDE_DEBOUNCE"
	EnvLogLevel    = "LIDE_LOG_LEVEL"
	EnvCacheTTL    = "LIDE_CACHE_TTL"
)

// MaxPageSize bounds the page size sent to the API.
const MaxPageSize = 500

// Config holds everything needed to wire a client.
type Config struct {
	BaseURL       string        `json:"baseUrl"`
	HTTPTimeout   time.Duration `json:"httpTimeout"`
	Cache         cache.Config  `json:"cache"`
	DebounceDelay time.Duration `json:"debounceDelay"`
	PageSize      int           `json:"pageSize"`
	LogLevel      string        `json:"logLevel"`
}

// DefaultConfig targets a backend on localhost:8080.
func DefaultConfig() Config {
	return Config{
		BaseURL:       "http://localhost:8080",
		HTTPTimeout:   transport.DefaultTimeout,
		Cache:         cache.DefaultConfig(),
		DebounceDelay: search.DefaultQuiet,
		PageSize:      transport.DefaultPageSize,
		LogLevel:      "info",
	}
}

// Validate checks the configuration, the cache settings included.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.BaseURL, validation.Required, is.RequestURL),
		validation.Field(&c.HTTPTimeout, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.Cache),
		validation.Field(&c.DebounceDelay, validation.Min(time.Duration(0))),
		validation.Field(&c.PageSize, validation.Required, validation.Min(1), validation.Max(MaxPageSize)),
		validation.Field(&c.LogLevel, validation.In("trace", "debug", "info", "warn", "warning", "error", "off", "disabled")),
	)
}

// ConfigFromEnv starts from DefaultConfig and applies the LIDE_* variables
// that are set.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv(EnvAPIURL); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}

	var err error
	if cfg.HTTPTimeout, err = envDuration(EnvHTTPTimeout, cfg.HTTPTimeout); err != nil {
		return cfg, err
	}
	if cfg.DebounceDelay, err = envDuration(EnvDebounce, cfg.DebounceDelay); err != nil {
		return cfg, err
	}
	if cfg.Cache.TTL, err = envDuration(EnvCacheTTL, cfg.Cache.TTL); err != nil {
		return cfg, err
	}

	if v := os.Getenv(EnvPageSize); v != "" {
		size, perr := strconv.Atoi(v)
		if perr != nil {
			return cfg, &cacheinfra.ConfigError{Field: EnvPageSize, Message: "must be an integer"}
		}
		cfg.PageSize = size
	}

	return cfg, nil
}

func envDuration(name string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(name)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback, &cacheinfra.ConfigError{Field: name, Message: "must be a duration such as 30s"}
	}
	return d, nil
}
