package secret

import (
	"context"
	"fmt"
	"strings"
)

const refPrefix = "secretref:"

// Resolver turns configuration values into secrets.
//
// A value of the form secretref:<provider>:<ref> is resolved through the
// named provider. Any other value is expanded with ExpandEnvStrict.
type Resolver struct {
	providers map[string]Provider
	// strict rejects providers returning an empty value.
	strict bool
}

// NewResolver creates a resolver over providers. A later provider
// replaces an earlier one with the same name.
func NewResolver(strict bool, providers ...Provider) *Resolver {
	r := &Resolver{providers: make(map[string]Provider, len(providers)), strict: strict}
	for _, p := range providers {
		if p != nil {
			r.providers[p.Name()] = p
		}
	}
	return r
}

// DefaultResolver resolves env and file references strictly.
func DefaultResolver(dir string) *Resolver {
	return NewResolver(true, EnvProvider{}, FileProvider{Dir: dir})
}

// IsRef reports whether value is a secret reference.
func IsRef(value string) bool {
	return strings.HasPrefix(value, refPrefix)
}

// ParseRef splits secretref:<provider>:<ref>.
func ParseRef(value string) (provider, ref string, ok bool) {
	rest, found := strings.CutPrefix(value, refPrefix)
	if !found {
		return "", "", false
	}
	provider, ref, ok = strings.Cut(rest, ":")
	if !ok || provider == "" || ref == "" {
		return "", "", false
	}
	return provider, ref, true
}

// Resolve resolves a single value.
func (r *Resolver) Resolve(ctx context.Context, value string) (string, error) {
	if !IsRef(value) {
		return ExpandEnvStrict(value)
	}
	name, ref, ok := ParseRef(value)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidReference, value)
	}
	p, ok := r.providers[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	v, err := p.Resolve(ctx, ref)
	if err != nil {
		return "", err
	}
	if r.strict && v == "" {
		return "", fmt.Errorf("%w: %s", ErrEmptySecret, value)
	}
	return v, nil
}

// ResolveKeys resolves the keys of m, keeping its values. It suits maps
// whose keys are the secrets, such as API key to principal.
func (r *Resolver) ResolveKeys(ctx context.Context, m map[string]string) (map[string]string, error) {
	if m == nil {
		return nil, nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		key, err := r.Resolve(ctx, k)
		if err != nil {
			return nil, fmt.Errorf("resolve key for %q: %w", v, err)
		}
		out[key] = v
	}
	return out, nil
}
