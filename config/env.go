package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "STARWARS_"

type envOverride struct {
	name  string
	apply func(c *Config, v string) error
}

// envOverrides lists the supported variables, without EnvPrefix.
var envOverrides = []envOverride{
	{"ENVIRONMENT", func(c *Config, v string) error { c.Service.Environment = v; return nil }},
	{"DEBUG", boolVar(func(c *Config) *bool { return &c.Service.Debug })},
	{"VERSION", func(c *Config, v string) error { c.Service.Version = v; return nil }},
	{"SERVER_ADDR", func(c *Config, v string) error { c.Server.Addr = v; return nil }},
	{"API_PREFIX", func(c *Config, v string) error { c.Server.APIPrefix = v; return nil }},
	{"SWAPI_BASE_URL", func(c *Config, v string) error { c.Upstream.BaseURL = v; return nil }},
	{"SWAPI_TIMEOUT", durationVar(func(c *Config) *time.Duration { return &c.Upstream.Timeout })},
	{"CACHE_ENABLED", boolVar(func(c *Config) *bool { return &c.Cache.Enabled })},
	{"CACHE_TTL", durationVar(func(c *Config) *time.Duration { return &c.Cache.DefaultTTL })},
	{"RATE_LIMIT_ENABLED", boolVar(func(c *Config) *bool { return &c.RateLimit.Enabled })},
	{"RATE_LIMIT_REQUESTS", intVar(func(c *Config) *int { return &c.RateLimit.Requests })},
	{"RATE_LIMIT_PERIOD", durationVar(func(c *Config) *time.Duration { return &c.RateLimit.Period })},
	{"AUTH_ENABLED", boolVar(func(c *Config) *bool { return &c.Auth.Enabled })},
	{"JWT_SECRET", func(c *Config, v string) error { c.Auth.JWT.Secret = v; return nil }},
	{"LOG_LEVEL", func(c *Config, v string) error { c.Observe.Logging.Level = strings.ToLower(v); return nil }},
	{"LOG_FORMAT", func(c *Config, v string) error { c.Observe.Logging.Format = strings.ToLower(v); return nil }},
	{"TRACING_EXPORTER", func(c *Config, v string) error {
		c.Observe.Tracing.Exporter = v
		c.Observe.Tracing.Enabled = v != "none"
		return nil
	}},
	{"METRICS_EXPORTER", func(c *Config, v string) error {
		c.Observe.Metrics.Exporter = v
		c.Observe.Metrics.Enabled = v != "none"
		return nil
	}},
	{"IMAGES_ENABLED", boolVar(func(c *Config) *bool { return &c.Images.Enabled })},
}

// EnvNames returns the full names of the supported overrides.
func EnvNames() []string {
	names := make([]string, len(envOverrides))
	for i, o := range envOverrides {
		names[i] = EnvPrefix + o.name
	}
	return names
}

func (l *Loader) applyEnv(cfg *Config) error {
	for _, o := range envOverrides {
		v, ok := l.lookupEnv(EnvPrefix + o.name)
		if !ok {
			continue
		}
		if err := o.apply(cfg, strings.TrimSpace(v)); err != nil {
			return fmt.Errorf("%w: %s%s: %w", ErrInvalidConfig, EnvPrefix, o.name, err)
		}
	}
	return nil
}

func boolVar(field func(*Config) *bool) func(*Config, string) error {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*field(c) = b
		return nil
	}
}

func intVar(field func(*Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*field(c) = n
		return nil
	}
}

// durationVar accepts Go durations and bare integers as seconds.
func durationVar(field func(*Config) *time.Duration) func(*Config, string) error {
	return func(c *Config, v string) error {
		d, err := parseDuration(v)
		if err != nil {
			return err
		}
		*field(c) = d
		return nil
	}
}

func parseDuration(v string) (time.Duration, error) {
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(v)
}
