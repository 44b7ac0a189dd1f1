package auth

import (
	"errors"
	"net/http"

	"github.com/bytedance/sonic"

	"github.com/viniciuslks7/API-Starwars/observe"
)

// ErrorWriter renders an authentication or authorization failure.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, status int, err error)

// Middleware attaches identities to requests and guards routes.
//
// Contract:
//   - Optional never rejects a request without credentials; presented but
//     invalid credentials are rejected with 401.
//   - Require rejects anonymous requests with 401 and
//     "WWW-Authenticate: Bearer".
//   - RequireAdmin additionally rejects non-admin identities with 403.
type Middleware struct {
	auth         Authenticator
	apiKeyHeader string
	adminClaim   string
	logger       observe.Logger
	writeError   ErrorWriter
}

// MiddlewareOption configures a Middleware.
type MiddlewareOption func(*Middleware)

// WithAdminClaim sets the boolean claim that marks an admin.
func WithAdminClaim(claim string) MiddlewareOption {
	return func(m *Middleware) {
		if claim != "" {
			m.adminClaim = claim
		}
	}
}

// WithAPIKeyHeader sets the header inspected for API keys.
func WithAPIKeyHeader(name string) MiddlewareOption {
	return func(m *Middleware) {
		if name != "" {
			m.apiKeyHeader = name
		}
	}
}

// WithErrorWriter replaces the default JSON error renderer.
func WithErrorWriter(fn ErrorWriter) MiddlewareOption {
	return func(m *Middleware) {
		if fn != nil {
			m.writeError = fn
		}
	}
}

// WithMiddlewareLogger sets the logger for rejected requests.
func WithMiddlewareLogger(l observe.Logger) MiddlewareOption {
	return func(m *Middleware) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewMiddleware creates a Middleware. A nil authenticator treats every
// request as anonymous.
func NewMiddleware(a Authenticator, opts ...MiddlewareOption) *Middleware {
	m := &Middleware{
		auth:         a,
		apiKeyHeader: DefaultAPIKeyHeader,
		adminClaim:   DefaultAdminClaim,
		logger:       observe.NewNopLogger(),
		writeError:   writeJSONError,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// resolve authenticates r. It returns (nil, nil) when r has no credentials.
func (m *Middleware) resolve(r *http.Request) (*Identity, error) {
	if id := FromContext(r.Context()); id != nil {
		return id, nil
	}
	req := &Request{Headers: r.Header, Path: r.URL.Path}
	if m.auth == nil || !req.HasCredentials(m.apiKeyHeader) {
		return nil, nil
	}
	if !m.auth.Supports(r.Context(), req) {
		return nil, ErrInvalidCredentials
	}
	result, err := m.auth.Authenticate(r.Context(), req)
	if err != nil {
		return nil, err
	}
	if !result.Authenticated {
		return nil, result.Error
	}
	return result.Identity, nil
}

func (m *Middleware) reject(w http.ResponseWriter, r *http.Request, status int, err error) {
	m.logger.Warn(r.Context(), "request rejected",
		observe.String("path", r.URL.Path),
		observe.Int("status", status),
		observe.Err(err),
	)
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	m.writeError(w, r, status, err)
}

func (m *Middleware) authenticate(w http.ResponseWriter, r *http.Request) (*Identity, *http.Request, bool) {
	id, err := m.resolve(r)
	if err != nil {
		status := http.StatusUnauthorized
		if errors.Is(err, ErrNoSecret) {
			status = http.StatusServiceUnavailable
		}
		m.reject(w, r, status, err)
		return nil, r, false
	}
	if id != nil {
		r = r.WithContext(NewContext(r.Context(), id))
	}
	return id, r, true
}

// Optional attaches the caller's identity to the request context when
// credentials are present.
func (m *Middleware) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, r, ok := m.authenticate(w, r)
		if !ok {
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Require rejects requests without a valid identity.
func (m *Middleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, r, ok := m.authenticate(w, r)
		if !ok {
			return
		}
		if id.IsAnonymous() {
			m.reject(w, r, http.StatusUnauthorized, errors.New("authentication required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects requests whose identity is not an admin.
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return m.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !FromContext(r.Context()).IsAdmin(m.adminClaim) {
			m.reject(w, r, http.StatusForbidden, ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	}))
}

type errorBody struct {
	Error     string `json:"error"`
	Detail    string `json:"detail,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSONError(w http.ResponseWriter, r *http.Request, status int, err error) {
	body, _ := sonic.Marshal(errorBody{
		Error:     http.StatusText(status),
		Detail:    err.Error(),
		RequestID: observe.RequestIDFromContext(r.Context()),
	})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
