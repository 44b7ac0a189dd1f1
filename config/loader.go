package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/viniciuslks7/API-Starwars/secret"
)

// Errors returned by the loader.
var (
	// ErrConfigNotFound is returned when the config file does not exist.
	ErrConfigNotFound = errors.New("config: file not found")

	// ErrInvalidConfig wraps every validation failure.
	ErrInvalidConfig = errors.New("config: invalid configuration")
)

// Loader reads, resolves and validates configuration.
//
// Load applies, in order: defaults, the YAML file with ${VAR} expanded,
// secretref resolution for secret fields, STARWARS_* environment
// overrides and validation.
type Loader struct {
	validator *validator.Validate
	lookupEnv func(string) (string, bool)
}

// NewLoader creates a Loader reading overrides from the process
// environment.
func NewLoader() *Loader {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("cron", validateCron)
	return &Loader{validator: v, lookupEnv: os.LookupEnv}
}

// Load reads the file at path. An empty path loads defaults, still
// applying environment overrides.
func Load(ctx context.Context, path string) (*Config, error) {
	return NewLoader().Load(ctx, path)
}

// Load reads the file at path. An empty path loads defaults.
func (l *Loader) Load(ctx context.Context, path string) (*Config, error) {
	cfg := Defaults()
	dir := "."

	if path != "" {
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := Decode(bytes.NewReader(data), cfg); err != nil {
			return nil, fmt.Errorf("config: %s: %w", path, err)
		}
		dir = filepath.Dir(path)
	}

	if err := l.applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := resolveSecrets(ctx, secret.DefaultResolver(dir), cfg); err != nil {
		return nil, err
	}
	if err := l.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Decode expands ${VAR} references in r and decodes the YAML document
// over cfg. Unknown fields are rejected.
func Decode(r io.Reader, cfg *Config) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	expanded, err := secret.ExpandEnvStrict(string(raw))
	if err != nil {
		return err
	}

	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse yaml: %w", err)
	}
	return nil
}

// Validate checks struct constraints and the rules spanning sections.
func (l *Loader) Validate(cfg *Config) error {
	if err := l.validator.Struct(cfg); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if cfg.Auth.Enabled && cfg.Auth.JWT.Secret == "" && len(cfg.Auth.APIKeys) == 0 {
		return fmt.Errorf("%w: auth enabled without a jwt secret or api keys", ErrInvalidConfig)
	}
	if cfg.Cache.MaxTTL > 0 && cfg.Cache.DefaultTTL > cfg.Cache.MaxTTL {
		return fmt.Errorf("%w: cache default_ttl %s exceeds max_ttl %s",
			ErrInvalidConfig, cfg.Cache.DefaultTTL, cfg.Cache.MaxTTL)
	}
	obs := cfg.Observer()
	if err := obs.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// resolveSecrets replaces secretref values in the auth section.
func resolveSecrets(ctx context.Context, r *secret.Resolver, cfg *Config) error {
	if secret.IsRef(cfg.Auth.JWT.Secret) {
		v, err := r.Resolve(ctx, cfg.Auth.JWT.Secret)
		if err != nil {
			return fmt.Errorf("config: auth.jwt.secret: %w", err)
		}
		cfg.Auth.JWT.Secret = v
	}
	keys, err := r.ResolveKeys(ctx, cfg.Auth.APIKeys)
	if err != nil {
		return fmt.Errorf("config: auth.api_keys: %w", err)
	}
	cfg.Auth.APIKeys = keys
	return nil
}

func validateCron(fl validator.FieldLevel) bool {
	_, err := cron.ParseStandard(fl.Field().String())
	return err == nil
}
