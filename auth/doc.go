// Package auth authenticates API callers and guards admin routes.
//
// Two credential types are accepted, tried in this order:
//
//   - X-API-Key: matched against configured keys, stored as SHA-256 hashes.
//   - Authorization: Bearer <jwt>: HS256 tokens signed with a shared secret,
//     with optional issuer and audience checks.
//
// Middleware.Optional attaches an identity when credentials are present,
// Middleware.Require demands one and Middleware.RequireAdmin demands an
// identity with a true admin claim or the admin role.
package auth
