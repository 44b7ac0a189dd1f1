package auth

import (
	"context"
	"net/http"
)

// Authenticator turns request credentials into an Identity.
//
// Contract:
//   - Concurrency: safe for concurrent use.
//   - Supports is cheap and only inspects headers.
//   - A credential that does not check out is a rejected Result with a nil
//     error. The error return is for failures of the authenticator itself
//     (a missing secret, an unreachable key store).
type Authenticator interface {
	Name() string
	Supports(ctx context.Context, req *Request) bool
	Authenticate(ctx context.Context, req *Request) (*Result, error)
}

// Request is the part of an HTTP request authenticators may look at.
type Request struct {
	Headers http.Header
	Path    string
}

// Header returns the first value of key; the lookup is case-insensitive.
func (r *Request) Header(key string) string {
	if r == nil || r.Headers == nil {
		return ""
	}
	return r.Headers.Get(key)
}

// HasCredentials reports whether an API key or a bearer token is present.
// Authorization headers with any other scheme do not count.
func (r *Request) HasCredentials(apiKeyHeader string) bool {
	return r.Header(apiKeyHeader) != "" || bearerToken(r.Header("Authorization")) != ""
}

// Result is the verdict of one authentication attempt. Identity is set
// when Authenticated is true, Error otherwise. By names the authenticator
// that produced it.
type Result struct {
	Authenticated bool
	Identity      *Identity
	Error         error
	By            string
}

// Accepted wraps a verified identity.
func Accepted(id *Identity) *Result {
	return &Result{Authenticated: true, Identity: id, By: string(id.Method)}
}

// Rejected records why by refused the credentials.
func Rejected(err error, by string) *Result {
	return &Result{Error: err, By: by}
}
