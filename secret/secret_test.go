package secret

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExpandEnvStrict(t *testing.T) {
	t.Setenv("SW_PRESENT", "ok")
	t.Setenv("SW_EMPTY", "")

	tests := []struct {
		in      string
		want    string
		missing string
	}{
		{in: "a=${SW_PRESENT}", want: "a=ok"},
		{in: "${SW_EMPTY}x", want: "x"},
		{in: "$$${SW_PRESENT}", want: "$ok"},
		{in: "$SW_PRESENT stays", want: "$SW_PRESENT stays"},
		{in: "${SW_MISSING_B} ${SW_MISSING_A} ${SW_MISSING_B}", missing: "SW_MISSING_A, SW_MISSING_B"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ExpandEnvStrict(tt.in)
			if tt.missing != "" {
				if !errors.Is(err, ErrMissingEnv) || !strings.HasSuffix(err.Error(), tt.missing) {
					t.Errorf("ExpandEnvStrict(%q) error = %v, want missing %s", tt.in, err, tt.missing)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ExpandEnvStrict(%q) = %q, %v, want %q", tt.in, got, err, tt.want)
			}
		})
	}
}

func TestParseRef(t *testing.T) {
	tests := []struct {
		in       string
		provider string
		ref      string
		ok       bool
	}{
		{"secretref:env:JWT", "env", "JWT", true},
		{"secretref:file:/run/secrets/a:b", "file", "/run/secrets/a:b", true},
		{"secretref:env:", "", "", false},
		{"secretref::x", "", "", false},
		{"plain", "", "", false},
	}
	for _, tt := range tests {
		p, r, ok := ParseRef(tt.in)
		if p != tt.provider || r != tt.ref || ok != tt.ok {
			t.Errorf("ParseRef(%q) = %q, %q, %v", tt.in, p, r, ok)
		}
	}
}

func TestResolver(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "jwt"), []byte("from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "empty"), nil, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SW_SECRET", "from-env")

	r := DefaultResolver(dir)
	ctx := context.Background()

	tests := []struct {
		in      string
		want    string
		wantErr error
	}{
		{in: "literal", want: "literal"},
		{in: "${SW_SECRET}-x", want: "from-env-x"},
		{in: "secretref:env:SW_SECRET", want: "from-env"},
		{in: "secretref:file:jwt", want: "from-file"},
		{in: "secretref:file:" + filepath.Join(dir, "jwt"), want: "from-file"},
		{in: "secretref:env:SW_NOPE", wantErr: ErrMissingEnv},
		{in: "secretref:file:empty", wantErr: ErrEmptySecret},
		{in: "secretref:vault:x", wantErr: ErrUnknownProvider},
		{in: "secretref:bad", wantErr: ErrInvalidReference},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := r.Resolve(ctx, tt.in)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Resolve(%q) error = %v, want %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestResolver_ResolveKeys(t *testing.T) {
	t.Setenv("SW_OPS_KEY", "k-ops")
	r := NewResolver(true, EnvProvider{})

	got, err := r.ResolveKeys(context.Background(), map[string]string{
		"secretref:env:SW_OPS_KEY": "ops",
		"dev-key":                  "dev",
	})
	if err != nil {
		t.Fatal(err)
	}
	if got["k-ops"] != "ops" || got["dev-key"] != "dev" || len(got) != 2 {
		t.Errorf("ResolveKeys() = %v", got)
	}

	if _, err := r.ResolveKeys(context.Background(), map[string]string{"secretref:env:SW_UNSET": "x"}); !errors.Is(err, ErrMissingEnv) {
		t.Errorf("ResolveKeys() error = %v, want ErrMissingEnv", err)
	}
}
