package auth

import "context"

type identityCtxKey struct{}

// NewContext returns a copy of ctx carrying id.
func NewContext(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey{}, id)
}

// FromContext returns the identity attached by the Middleware, or nil.
func FromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityCtxKey{}).(*Identity)
	return id
}

// PrincipalFrom returns the caller's principal, or "" for anonymous requests.
func PrincipalFrom(ctx context.Context) string {
	if id := FromContext(ctx); id != nil {
		return id.Principal
	}
	return ""
}
