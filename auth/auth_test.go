package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func headers(kv ...string) http.Header {
	h := http.Header{}
	for i := 0; i+1 < len(kv); i += 2 {
		h.Set(kv[i], kv[i+1])
	}
	return h
}

func TestAPIKeyAuthenticator(t *testing.T) {
	store := StaticAPIKeys(map[string]string{
		"dev-api-key-12345": "development",
		"ops-key":           "ops",
		"  ":                "blank",
	}, []string{"ops"})
	if store.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", store.Len())
	}
	a := NewAPIKeyAuthenticator("", store)

	tests := []struct {
		name          string
		key           string
		wantErr       error
		wantPrincipal string
		wantAdmin     bool
	}{
		{name: "valid key", key: "dev-api-key-12345", wantPrincipal: "api-key-development"},
		{name: "surrounding space", key: " dev-api-key-12345 ", wantPrincipal: "api-key-development"},
		{name: "admin key", key: "ops-key", wantPrincipal: "api-key-ops", wantAdmin: true},
		{name: "unknown key", key: "nope", wantErr: ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &Request{Headers: headers("x-api-key", tt.key)}
			if !a.Supports(context.Background(), req) {
				t.Fatal("Supports() = false, want true")
			}
			res, err := a.Authenticate(context.Background(), req)
			if err != nil {
				t.Fatalf("Authenticate() error = %v", err)
			}
			if tt.wantErr != nil {
				if res.Authenticated || !errors.Is(res.Error, tt.wantErr) {
					t.Errorf("Authenticate() = %+v, want error %v", res, tt.wantErr)
				}
				return
			}
			if !res.Authenticated {
				t.Fatalf("Authenticate() failed: %v", res.Error)
			}
			id := res.Identity
			if id.Principal != tt.wantPrincipal {
				t.Errorf("Principal = %q, want %q", id.Principal, tt.wantPrincipal)
			}
			if id.IsAdmin("") != tt.wantAdmin {
				t.Errorf("IsAdmin() = %v, want %v", id.IsAdmin(""), tt.wantAdmin)
			}
			if id.Method != MethodAPIKey || id.Claims["auth_type"] != "api_key" {
				t.Errorf("identity = %+v", id)
			}
		})
	}
}

func TestKeyring(t *testing.T) {
	keys := NewKeyring()
	keys.Put("old-key", &KeyRecord{Principal: "old"})
	a := NewAPIKeyAuthenticator("X-Key", keys)

	req := &Request{Headers: headers("X-Key", "old-key")}
	if a.Supports(context.Background(), &Request{Headers: headers("X-API-Key", "old-key")}) {
		t.Error("Supports() with the default header = true, want false")
	}
	res, err := a.Authenticate(context.Background(), req)
	if err != nil || !res.Authenticated {
		t.Fatalf("Authenticate() = %+v, %v", res, err)
	}
	if got := res.Identity.Claims["key_id"]; got != HashAPIKey("old-key")[:12] {
		t.Errorf("key_id = %v", got)
	}

	if !keys.Revoke("old-key") || keys.Revoke("old-key") {
		t.Error("Revoke() should succeed once")
	}
	res, err = a.Authenticate(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if !errors.Is(res.Error, ErrInvalidCredentials) {
		t.Errorf("Error after Revoke = %v, want ErrInvalidCredentials", res.Error)
	}
}

func TestHashAPIKey(t *testing.T) {
	// sha256("abc")
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got := HashAPIKey("abc"); got != want {
		t.Errorf("HashAPIKey(abc) = %s, want %s", got, want)
	}
}

func signed(t *testing.T, method jwt.SigningMethod, secret string, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestJWTAuthenticator(t *testing.T) {
	cfg := JWTConfig{Secret: testSecret, Issuer: "starwars", Audience: "api"}
	a := NewJWTAuthenticator(cfg)
	now := time.Now()

	good, err := SignToken(cfg, TokenOptions{Subject: "luke", Roles: []string{"reader"}, TTL: time.Hour})
	if err != nil {
		t.Fatal(err)
	}
	admin, err := SignToken(cfg, TokenOptions{Subject: "leia", Admin: true})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name          string
		token         string
		wantErr       error
		wantPrincipal string
		wantAdmin     bool
	}{
		{name: "valid", token: good, wantPrincipal: "luke"},
		{name: "admin claim", token: admin, wantPrincipal: "leia", wantAdmin: true},
		{name: "malformed", token: "not-a-jwt", wantErr: ErrTokenMalformed},
		{
			name: "expired",
			token: signed(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{
				"sub": "han", "iss": "starwars", "aud": "api", "exp": now.Add(-time.Hour).Unix(),
			}),
			wantErr: ErrTokenExpired,
		},
		{
			name: "wrong secret",
			token: signed(t, jwt.SigningMethodHS256, "other", jwt.MapClaims{
				"sub": "han", "iss": "starwars", "aud": "api",
			}),
			wantErr: ErrInvalidCredentials,
		},
		{
			name: "wrong issuer",
			token: signed(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{
				"sub": "han", "iss": "empire", "aud": "api",
			}),
			wantErr: ErrInvalidCredentials,
		},
		{
			name: "wrong audience",
			token: signed(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{
				"sub": "han", "iss": "starwars", "aud": "other",
			}),
			wantErr: ErrInvalidCredentials,
		},
		{
			name: "wrong algorithm",
			token: signed(t, jwt.SigningMethodHS512, testSecret, jwt.MapClaims{
				"sub": "han", "iss": "starwars", "aud": "api",
			}),
			wantErr: ErrInvalidCredentials,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &Request{Headers: headers("Authorization", "Bearer "+tt.token)}
			res, err := a.Authenticate(context.Background(), req)
			if err != nil {
				t.Fatalf("Authenticate() error = %v", err)
			}
			if tt.wantErr != nil {
				if res.Authenticated || !errors.Is(res.Error, tt.wantErr) {
					t.Errorf("Authenticate() = %+v, want error %v", res, tt.wantErr)
				}
				return
			}
			if !res.Authenticated {
				t.Fatalf("Authenticate() failed: %v", res.Error)
			}
			if res.Identity.Principal != tt.wantPrincipal {
				t.Errorf("Principal = %q, want %q", res.Identity.Principal, tt.wantPrincipal)
			}
			if got := res.Identity.IsAdmin(""); got != tt.wantAdmin {
				t.Errorf("IsAdmin() = %v, want %v", got, tt.wantAdmin)
			}
		})
	}
}

func TestJWTAuthenticator_Identity(t *testing.T) {
	cfg := JWTConfig{Secret: testSecret}
	token, err := SignToken(cfg, TokenOptions{Subject: "rey", Roles: []string{"admin", "pilot"}, TTL: time.Minute})
	if err != nil {
		t.Fatal(err)
	}
	res, err := NewJWTAuthenticator(cfg).Authenticate(context.Background(),
		&Request{Headers: headers("Authorization", "bearer "+token)})
	if err != nil || !res.Authenticated {
		t.Fatalf("Authenticate() = %+v, %v", res, err)
	}
	id := res.Identity
	if !id.HasRole("pilot") || !id.IsAdmin("") {
		t.Errorf("Roles = %v, want admin and pilot", id.Roles)
	}
	if id.ExpiresAt.IsZero() || id.IssuedAt.IsZero() || id.Expired(time.Now()) {
		t.Errorf("ExpiresAt = %v, IssuedAt = %v", id.ExpiresAt, id.IssuedAt)
	}
}

func TestJWTAuthenticator_NoSecret(t *testing.T) {
	a := NewJWTAuthenticator(JWTConfig{})
	_, err := a.Authenticate(context.Background(), &Request{Headers: headers("Authorization", "Bearer x")})
	if !errors.Is(err, ErrNoSecret) {
		t.Errorf("Authenticate() error = %v, want ErrNoSecret", err)
	}
	if _, err := SignToken(JWTConfig{}, TokenOptions{Subject: "x"}); !errors.Is(err, ErrNoSecret) {
		t.Errorf("SignToken() error = %v, want ErrNoSecret", err)
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc", "abc"},
		{"BEARER abc", "abc"},
		{"Basic abc", ""},
		{"Bearer", ""},
		{"Bearer a b", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := bearerToken(tt.header); got != tt.want {
			t.Errorf("bearerToken(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}

type stubAuthenticator struct {
	name     string
	supports bool
	result   *Result
	err      error
	calls    int
}

func (s *stubAuthenticator) Name() string { return s.name }

func (s *stubAuthenticator) Supports(context.Context, *Request) bool { return s.supports }

func (s *stubAuthenticator) Authenticate(context.Context, *Request) (*Result, error) {
	s.calls++
	return s.result, s.err
}

func TestChain(t *testing.T) {
	ok := Accepted(&Identity{Principal: "p", Method: MethodJWT})
	fail := Rejected(ErrInvalidCredentials, "stub")
	internal := errors.New("store down")

	tests := []struct {
		name      string
		auths     []*stubAuthenticator
		wantAuth  bool
		wantErr   error
		wantCalls []int
	}{
		{
			name:      "first success wins",
			auths:     []*stubAuthenticator{{supports: true, result: ok}, {supports: true, result: ok}},
			wantAuth:  true,
			wantCalls: []int{1, 0},
		},
		{
			name:      "falls through failure",
			auths:     []*stubAuthenticator{{supports: true, result: fail}, {supports: true, result: ok}},
			wantAuth:  true,
			wantCalls: []int{1, 1},
		},
		{
			name:      "skips unsupported",
			auths:     []*stubAuthenticator{{supports: false, result: ok}, {supports: true, result: fail}},
			wantCalls: []int{0, 1},
		},
		{
			name:      "internal error stops",
			auths:     []*stubAuthenticator{{supports: true, err: internal}, {supports: true, result: ok}},
			wantErr:   internal,
			wantCalls: []int{1, 0},
		},
		{
			name:      "nothing supported",
			auths:     []*stubAuthenticator{{supports: false}},
			wantCalls: []int{0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auths := make([]Authenticator, len(tt.auths))
			for i, a := range tt.auths {
				auths[i] = a
			}
			res, err := NewChain(auths...).Authenticate(context.Background(), &Request{})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Authenticate() error = %v, want %v", err, tt.wantErr)
			}
			if err == nil && res.Authenticated != tt.wantAuth {
				t.Errorf("Authenticated = %v, want %v", res.Authenticated, tt.wantAuth)
			}
			for i, a := range tt.auths {
				if a.calls != tt.wantCalls[i] {
					t.Errorf("authenticator %d calls = %d, want %d", i, a.calls, tt.wantCalls[i])
				}
			}
		})
	}
}

func TestIdentity(t *testing.T) {
	var nilID *Identity
	if !nilID.IsAnonymous() || nilID.IsAdmin("") {
		t.Error("nil identity should be anonymous and not admin")
	}
	if !(&Identity{Principal: "anonymous", Method: MethodAnonymous}).IsAnonymous() {
		t.Error("anonymous method should be anonymous")
	}

	id := &Identity{Principal: "x", Claims: map[string]any{"staff": true, "admin": "yes"}}
	if id.IsAdmin("") {
		t.Error("non-bool admin claim should not grant admin")
	}
	if !id.IsAdmin("staff") {
		t.Error("IsAdmin(staff) = false, want true")
	}

	ctx := NewContext(context.Background(), id)
	if got := PrincipalFrom(ctx); got != "x" {
		t.Errorf("PrincipalFrom() = %q, want x", got)
	}
	if got := PrincipalFrom(context.Background()); got != "" {
		t.Errorf("PrincipalFrom(empty) = %q", got)
	}
}
