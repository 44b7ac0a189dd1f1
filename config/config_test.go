package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/viniciuslks7/API-Starwars/secret"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func newTestLoader(env map[string]string) *Loader {
	l := NewLoader()
	l.lookupEnv = func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
	return l
}

func TestDefaults_Valid(t *testing.T) {
	cfg := Defaults()
	if err := newTestLoader(nil).Validate(cfg); err != nil {
		t.Fatalf("Validate(Defaults()) error = %v", err)
	}
	if cfg.Server.APIPrefix != "/api/v1" {
		t.Errorf("APIPrefix = %q, want /api/v1", cfg.Server.APIPrefix)
	}
	if cfg.RateLimit.Requests != 100 || cfg.RateLimit.Period != time.Minute {
		t.Errorf("RateLimit = %+v, want 100 per minute", cfg.RateLimit)
	}
	if !cfg.Cache.Policy().Enabled || cfg.Cache.Policy().DefaultTTL != time.Hour {
		t.Errorf("Policy() = %+v", cfg.Cache.Policy())
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "admin.key", "k-123\n")
	t.Setenv("SW_TEST_BASE", "http://swapi.test/api")
	t.Setenv("SW_TEST_JWT", "jwt-secret")

	path := writeFile(t, dir, "config.yaml", `
service:
  environment: staging
upstream:
  base_url: ${SW_TEST_BASE}
  timeout: 10s
  retry:
    max_attempts: 5
cache:
  default_ttl: 30m
  cleanup_schedule: "*/10 * * * *"
auth:
  enabled: true
  jwt:
    secret: secretref:env:SW_TEST_JWT
    issuer: starwars
  api_keys:
    secretref:file:admin.key: ops
  admin_principals: [ops]
images:
  enabled: false
  timeout: 5s
`)

	cfg, err := newTestLoader(nil).Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Service.Environment != "staging" {
		t.Errorf("Environment = %q, want staging", cfg.Service.Environment)
	}
	if cfg.Service.Name != "starwars-api" {
		t.Errorf("Name = %q, want default", cfg.Service.Name)
	}
	if cfg.Upstream.BaseURL != "http://swapi.test/api" || cfg.Upstream.Timeout != 10*time.Second {
		t.Errorf("Upstream = %s %s", cfg.Upstream.BaseURL, cfg.Upstream.Timeout)
	}
	if cfg.Upstream.Retry.MaxAttempts != 5 || cfg.Upstream.Breaker.MaxFailures != 5 {
		t.Errorf("Retry/Breaker = %+v %+v", cfg.Upstream.Retry, cfg.Upstream.Breaker)
	}
	if cfg.Cache.DefaultTTL != 30*time.Minute || cfg.Cache.MaxTTL != 24*time.Hour {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Auth.JWT.Secret != "jwt-secret" {
		t.Errorf("JWT.Secret = %q, want jwt-secret", cfg.Auth.JWT.Secret)
	}
	if got := cfg.Auth.APIKeys["k-123"]; got != "ops" {
		t.Errorf("APIKeys = %v, want k-123: ops", cfg.Auth.APIKeys)
	}
	if cfg.Images.Enabled || cfg.Images.Timeout != 5*time.Second {
		t.Errorf("Images = %+v", cfg.Images)
	}
	if cfg.Images.CharacterIndexURL == "" {
		t.Error("Images.CharacterIndexURL lost its default")
	}
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := newTestLoader(map[string]string{"STARWARS_SERVER_ADDR": ":9090"}).Load(context.Background(), "")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("Addr = %q, want :9090", cfg.Server.Addr)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	env := map[string]string{
		"STARWARS_ENVIRONMENT":         "production",
		"STARWARS_DEBUG":               "false",
		"STARWARS_CACHE_TTL":           "120",
		"STARWARS_RATE_LIMIT_PERIOD":   "30s",
		"STARWARS_RATE_LIMIT_REQUESTS": "10",
		"STARWARS_LOG_LEVEL":           "DEBUG",
		"STARWARS_METRICS_EXPORTER":    "none",
		"STARWARS_AUTH_ENABLED":        "true",
		"STARWARS_JWT_SECRET":          "from-env",
	}
	cfg, err := newTestLoader(env).Load(context.Background(), "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !cfg.Service.IsProduction() || cfg.Service.Debug {
		t.Errorf("Service = %+v", cfg.Service)
	}
	if cfg.Cache.DefaultTTL != 2*time.Minute {
		t.Errorf("DefaultTTL = %s, want 2m", cfg.Cache.DefaultTTL)
	}
	if cfg.RateLimit.Period != 30*time.Second || cfg.RateLimit.Requests != 10 {
		t.Errorf("RateLimit = %+v", cfg.RateLimit)
	}
	if cfg.Observe.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Observe.Logging.Level)
	}
	if cfg.Observe.Metrics.Enabled {
		t.Error("Metrics.Enabled = true, want false")
	}
	if !cfg.Auth.Enabled || cfg.Auth.JWT.Secret != "from-env" {
		t.Errorf("Auth = %+v", cfg.Auth)
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		yaml    string
		env     map[string]string
		wantErr error
	}{
		{
			name:    "unknown field",
			yaml:    "server:\n  port: 80\n",
			wantErr: nil,
		},
		{
			name:    "bad environment",
			yaml:    "service:\n  environment: qa\n",
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "auth without credentials",
			yaml:    "auth:\n  enabled: true\n",
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "bad cron",
			yaml:    "cache:\n  cleanup_schedule: every minute\n",
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "default ttl above max",
			yaml:    "cache:\n  default_ttl: 48h\n",
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "bad api prefix",
			yaml:    "server:\n  api_prefix: api\n",
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "sample pct out of range",
			yaml:    "observe:\n  tracing:\n    enabled: true\n    exporter: stdout\n    sample_pct: 2\n",
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "missing env var",
			yaml:    "upstream:\n  base_url: ${SW_TEST_UNSET_VAR}\n",
			wantErr: secret.ErrMissingEnv,
		},
		{
			name:    "missing secret env",
			yaml:    "auth:\n  jwt:\n    secret: secretref:env:SW_TEST_UNSET_VAR\n",
			wantErr: secret.ErrMissingEnv,
		},
		{
			name:    "bad env override",
			yaml:    "",
			env:     map[string]string{"STARWARS_RATE_LIMIT_REQUESTS": "many"},
			wantErr: ErrInvalidConfig,
		},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, "case"+string(rune('a'+i))+".yaml", tt.yaml)
			_, err := newTestLoader(tt.env).Load(context.Background(), path)
			if err == nil {
				t.Fatal("Load() error = nil, want error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Load() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("Load() error = %v, want ErrConfigNotFound", err)
	}
}

func TestDecode_UnknownField(t *testing.T) {
	err := Decode(strings.NewReader("server:\n  port: 80\n"), Defaults())
	if err == nil || !strings.Contains(err.Error(), "port") {
		t.Errorf("Decode() error = %v, want unknown field port", err)
	}
}

func TestConfig_Observer(t *testing.T) {
	cfg := Defaults()
	cfg.Service.Name = "svc"
	cfg.Observe.Tracing = TracingConfig{Enabled: true, Exporter: "stdout", SamplePct: 0.5}

	obs := cfg.Observer()
	if obs.ServiceName != "svc" || obs.Version != cfg.Service.Version {
		t.Errorf("Observer() service = %q %q", obs.ServiceName, obs.Version)
	}
	if !obs.Tracing.Enabled || obs.Tracing.Exporter != "stdout" || obs.Tracing.SamplePct != 0.5 {
		t.Errorf("Observer().Tracing = %+v", obs.Tracing)
	}
	if !obs.Logging.Enabled || obs.Logging.Format != "console" {
		t.Errorf("Observer().Logging = %+v", obs.Logging)
	}
	if err := obs.Validate(); err != nil {
		t.Errorf("Observer().Validate() error = %v", err)
	}
}

func TestEnvNames(t *testing.T) {
	for _, name := range EnvNames() {
		if !strings.HasPrefix(name, EnvPrefix) {
			t.Errorf("EnvNames() contains %q without prefix", name)
		}
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"3600", time.Hour},
		{"90s", 90 * time.Second},
		{"1h30m", 90 * time.Minute},
	}
	for _, tt := range tests {
		got, err := parseDuration(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("parseDuration(%q) = %v, %v, want %v", tt.in, got, err, tt.want)
		}
	}
	if _, err := parseDuration("soon"); err == nil {
		t.Error("parseDuration(soon) error = nil")
	}
}
