package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTConfig configures the JWT authenticator. Tokens are HS256 signed with
// a shared secret.
type JWTConfig struct {
	// Secret is the HMAC signing key.
	Secret string

	// Issuer is the expected token issuer (iss claim). Empty skips the check.
	Issuer string

	// Audience is the expected token audience (aud claim). Empty skips the check.
	Audience string

	// PrincipalClaim is the claim containing the user principal.
	// Default: "sub"
	PrincipalClaim string

	// RolesClaim is the claim containing user roles.
	// Default: "roles"
	RolesClaim string

	// Leeway tolerates clock skew on exp/nbf/iat.
	// Default: 0
	Leeway time.Duration
}

func (c JWTConfig) withDefaults() JWTConfig {
	if c.PrincipalClaim == "" {
		c.PrincipalClaim = "sub"
	}
	if c.RolesClaim == "" {
		c.RolesClaim = "roles"
	}
	return c
}

// JWTAuthenticator validates bearer tokens.
type JWTAuthenticator struct {
	config JWTConfig
	parser *jwt.Parser
}

// NewJWTAuthenticator accepts only HS256 tokens and rejects an iat in the future.
func NewJWTAuthenticator(config JWTConfig) *JWTAuthenticator {
	config = config.withDefaults()

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuedAt(),
	}
	if config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(config.Issuer))
	}
	if config.Audience != "" {
		opts = append(opts, jwt.WithAudience(config.Audience))
	}
	if config.Leeway > 0 {
		opts = append(opts, jwt.WithLeeway(config.Leeway))
	}

	return &JWTAuthenticator{
		config: config,
		parser: jwt.NewParser(opts...),
	}
}

func (a *JWTAuthenticator) Name() string { return string(MethodJWT) }

// Supports reports whether Authorization carries a bearer token.
func (a *JWTAuthenticator) Supports(_ context.Context, req *Request) bool {
	return bearerToken(req.Header("Authorization")) != ""
}

// bearerToken extracts the token from "Bearer <token>"; the scheme is
// case-insensitive.
func bearerToken(header string) string {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

// Authenticate verifies the token signature and the registered claims.
// It fails with ErrNoSecret when no secret is configured.
func (a *JWTAuthenticator) Authenticate(_ context.Context, req *Request) (*Result, error) {
	if a.config.Secret == "" {
		return nil, ErrNoSecret
	}
	tokenString := bearerToken(req.Header("Authorization"))
	if tokenString == "" {
		return Rejected(ErrMissingCredentials, a.Name()), nil
	}

	claims := jwt.MapClaims{}
	token, err := a.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return []byte(a.config.Secret), nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return Rejected(ErrTokenExpired, a.Name()), nil
	case errors.Is(err, jwt.ErrTokenMalformed):
		return Rejected(ErrTokenMalformed, a.Name()), nil
	case err != nil:
		return Rejected(fmt.Errorf("%w: %v", ErrInvalidCredentials, err), a.Name()), nil
	case !token.Valid:
		return Rejected(ErrInvalidCredentials, a.Name()), nil
	}

	return Accepted(a.buildIdentity(claims)), nil
}

func (a *JWTAuthenticator) buildIdentity(claims jwt.MapClaims) *Identity {
	identity := &Identity{
		Method: MethodJWT,
		Claims: make(map[string]any, len(claims)+1),
	}
	for k, v := range claims {
		identity.Claims[k] = v
	}
	identity.Claims["auth_type"] = string(MethodJWT)

	if principal, ok := claims[a.config.PrincipalClaim].(string); ok {
		identity.Principal = principal
	}

	switch roles := claims[a.config.RolesClaim].(type) {
	case []any:
		identity.Roles = make([]string, 0, len(roles))
		for _, r := range roles {
			if s, ok := r.(string); ok {
				identity.Roles = append(identity.Roles, s)
			}
		}
	case string:
		identity.Roles = strings.Fields(roles)
	}

	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		identity.ExpiresAt = exp.Time
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		identity.IssuedAt = iat.Time
	}
	return identity
}

// TokenOptions describes a token minted by SignToken.
type TokenOptions struct {
	Subject string
	Roles   []string
	Admin   bool
	// TTL sets exp relative to now. Zero issues a token without expiry.
	TTL time.Duration
}

// SignToken issues an HS256 token accepted by a JWTAuthenticator built
// from the same config.
func SignToken(config JWTConfig, opts TokenOptions) (string, error) {
	if config.Secret == "" {
		return "", ErrNoSecret
	}
	config = config.withDefaults()
	now := time.Now()

	claims := jwt.MapClaims{
		config.PrincipalClaim: opts.Subject,
		"iat":                 now.Unix(),
	}
	if config.Issuer != "" {
		claims["iss"] = config.Issuer
	}
	if config.Audience != "" {
		claims["aud"] = config.Audience
	}
	if opts.TTL > 0 {
		claims["exp"] = now.Add(opts.TTL).Unix()
	}
	if len(opts.Roles) > 0 {
		claims[config.RolesClaim] = opts.Roles
	}
	if opts.Admin {
		claims[DefaultAdminClaim] = true
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(config.Secret))
}

var _ Authenticator = (*JWTAuthenticator)(nil)
