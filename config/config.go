package config

import (
	"time"

	"github.com/viniciuslks7/API-Starwars/auth"
	"github.com/viniciuslks7/API-Starwars/cache"
	"github.com/viniciuslks7/API-Starwars/images"
	"github.com/viniciuslks7/API-Starwars/observe"
	"github.com/viniciuslks7/API-Starwars/swapi"
)

// Config is the complete service configuration.
type Config struct {
	Service     ServiceConfig     `yaml:"service"`
	Server      ServerConfig      `yaml:"server"`
	Upstream    swapi.Config      `yaml:"upstream"`
	Cache       CacheConfig       `yaml:"cache"`
	Auth        AuthConfig        `yaml:"auth"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
	Compression CompressionConfig `yaml:"compression"`
	Observe     ObserveConfig     `yaml:"observe"`
	Images      ImagesConfig      `yaml:"images"`
}

// ServiceConfig identifies the running service.
type ServiceConfig struct {
	Name        string `yaml:"name" validate:"required"`
	Version     string `yaml:"version" validate:"required"`
	Environment string `yaml:"environment" validate:"oneof=development staging production"`
	Debug       bool   `yaml:"debug"`
}

// IsProduction reports whether the service runs in production.
func (s ServiceConfig) IsProduction() bool { return s.Environment == "production" }

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	// Addr is the listen address. Ignored when TLS is enabled, which
	// always listens on :443 (and :80 for ACME challenges).
	// Default: ":8000"
	Addr string `yaml:"addr" validate:"required"`

	// Default: 15s
	ReadTimeout time.Duration `yaml:"read_timeout" validate:"gte=0"`
	// Default: 60s
	WriteTimeout time.Duration `yaml:"write_timeout" validate:"gte=0"`
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout" validate:"gte=0"`

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 15s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gte=0"`

	// APIPrefix is mounted in front of every resource route.
	// Default: "/api/v1"
	APIPrefix string `yaml:"api_prefix" validate:"required,startswith=/"`

	// CORSOrigins lists allowed origins; "*" allows any.
	// Default: ["*"]
	CORSOrigins []string `yaml:"cors_origins"`

	TLS TLSConfig `yaml:"tls"`
}

// TLSConfig enables automatic certificates from Let's Encrypt.
type TLSConfig struct {
	// AutocertDomains turns TLS on for the listed host names.
	AutocertDomains []string `yaml:"autocert_domains" validate:"dive,hostname_rfc1123"`

	// CacheDir stores issued certificates.
	// Default: "./certs"
	CacheDir string `yaml:"cache_dir"`

	// Email is the ACME account contact.
	Email string `yaml:"email" validate:"omitempty,email"`
}

// Enabled reports whether TLS is configured.
func (t TLSConfig) Enabled() bool { return len(t.AutocertDomains) > 0 }

// CacheConfig configures the shared response cache.
type CacheConfig struct {
	Enabled bool `yaml:"enabled"`

	// Default: 1h
	DefaultTTL time.Duration `yaml:"default_ttl" validate:"gte=0"`

	// MaxTTL clamps every stored TTL. Zero disables the clamp.
	// Default: 24h
	MaxTTL time.Duration `yaml:"max_ttl" validate:"gte=0"`

	// CleanupSchedule is the cron spec of the expiry sweep.
	// Default: cache.DefaultCleanupSchedule
	CleanupSchedule string `yaml:"cleanup_schedule" validate:"omitempty,cron"`
}

// Policy converts the section into a cache policy.
func (c CacheConfig) Policy() cache.Policy {
	return cache.Policy{
		Enabled:    c.Enabled,
		DefaultTTL: c.DefaultTTL,
		MaxTTL:     c.MaxTTL,
	}
}

// AuthConfig configures authentication.
type AuthConfig struct {
	// Enabled installs the auth middleware. When false every request is
	// anonymous and admin routes are not mounted.
	Enabled bool `yaml:"enabled"`

	JWT JWTConfig `yaml:"jwt"`

	// APIKeys maps a key (or a secretref to one) to a key name.
	APIKeys map[string]string `yaml:"api_keys"`

	// APIKeyHeader carries API keys.
	// Default: auth.DefaultAPIKeyHeader
	APIKeyHeader string `yaml:"api_key_header"`

	// AdminClaim is the boolean JWT claim granting admin access.
	// Default: auth.DefaultAdminClaim
	AdminClaim string `yaml:"admin_claim"`

	// AdminPrincipals lists API key names that are administrators.
	AdminPrincipals []string `yaml:"admin_principals"`
}

// JWTConfig configures bearer token validation.
type JWTConfig struct {
	// Secret is the HS256 key, usually a secretref.
	Secret   string        `yaml:"secret"`
	Issuer   string        `yaml:"issuer"`
	Audience string        `yaml:"audience"`
	Leeway   time.Duration `yaml:"leeway" validate:"gte=0"`
}

// Authenticator converts the JWT section into an auth configuration.
func (j JWTConfig) Authenticator() auth.JWTConfig {
	return auth.JWTConfig{
		Secret:   j.Secret,
		Issuer:   j.Issuer,
		Audience: j.Audience,
		Leeway:   j.Leeway,
	}
}

// RateLimitConfig configures per-client request limiting.
type RateLimitConfig struct {
	Enabled bool `yaml:"enabled"`

	// Requests allowed per Period for one client.
	// Default: 100
	Requests int `yaml:"requests" validate:"gt=0"`

	// Default: 1m
	Period time.Duration `yaml:"period" validate:"gt=0"`

	// ExemptPaths are never limited. A trailing "*" matches a prefix.
	// Default: ["/health*", "/metrics"]
	ExemptPaths []string `yaml:"exempt_paths"`
}

// CompressionConfig configures response compression.
type CompressionConfig struct {
	Enabled bool `yaml:"enabled"`

	// Threshold is the smallest body, in bytes, that is compressed.
	// Default: 1024
	Threshold int `yaml:"threshold" validate:"gte=0"`

	// Level is the brotli quality, 0 to 11.
	// Default: 5
	Level int `yaml:"level" validate:"gte=0,lte=11"`
}

// ObserveConfig configures logging, tracing and metrics.
type ObserveConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Tracing TracingConfig `yaml:"tracing"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig configures the service logger.
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=json console"`
}

// TracingConfig configures span export.
type TracingConfig struct {
	Enabled   bool    `yaml:"enabled"`
	Exporter  string  `yaml:"exporter" validate:"oneof=otlp stdout none"`
	SamplePct float64 `yaml:"sample_pct" validate:"gte=0,lte=1"`
}

// MetricsConfig configures metric export.
type MetricsConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter" validate:"oneof=otlp prometheus stdout none"`
}

// ImagesConfig configures the image proxy.
type ImagesConfig struct {
	Enabled       bool `yaml:"enabled"`
	images.Config `yaml:",inline"`
}

// Observer builds the telemetry configuration for the service.
func (c *Config) Observer() observe.Config {
	return observe.Config{
		ServiceName: c.Service.Name,
		Version:     c.Service.Version,
		Environment: c.Service.Environment,
		Tracing: observe.TracingConfig{
			Enabled:   c.Observe.Tracing.Enabled,
			Exporter:  c.Observe.Tracing.Exporter,
			SamplePct: c.Observe.Tracing.SamplePct,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  c.Observe.Metrics.Enabled,
			Exporter: c.Observe.Metrics.Exporter,
		},
		Logging: observe.LoggingConfig{
			Enabled: true,
			Level:   c.Observe.Logging.Level,
			Format:  c.Observe.Logging.Format,
		},
	}
}

// Defaults returns the configuration used when a field is not set.
func Defaults() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:        "starwars-api",
			Version:     "1.0.0",
			Environment: "development",
			Debug:       true,
		},
		Server: ServerConfig{
			Addr:            ":8000",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			APIPrefix:       "/api/v1",
			CORSOrigins:     []string{"*"},
			TLS: TLSConfig{
				CacheDir: "./certs",
			},
		},
		Upstream: swapi.DefaultConfig(),
		Cache: CacheConfig{
			Enabled:         true,
			DefaultTTL:      cache.TTLMedium,
			MaxTTL:          cache.TTLLong,
			CleanupSchedule: cache.DefaultCleanupSchedule,
		},
		Auth: AuthConfig{
			APIKeyHeader: auth.DefaultAPIKeyHeader,
			AdminClaim:   auth.DefaultAdminClaim,
		},
		RateLimit: RateLimitConfig{
			Enabled:     true,
			Requests:    100,
			Period:      time.Minute,
			ExemptPaths: []string{"/health*", "/metrics"},
		},
		Compression: CompressionConfig{
			Enabled:   true,
			Threshold: 1024,
			Level:     5,
		},
		Observe: ObserveConfig{
			Logging: LoggingConfig{Level: "info", Format: "console"},
			Tracing: TracingConfig{Exporter: "none", SamplePct: 1},
			Metrics: MetricsConfig{Enabled: true, Exporter: "prometheus"},
		},
		Images: ImagesConfig{
			Enabled: true,
			Config: images.Config{
				CharacterIndexURL: images.DefaultCharacterIndexURL,
				CacheTTL:          cache.TTLLong,
				Timeout:           15 * time.Second,
			},
		},
	}
}
