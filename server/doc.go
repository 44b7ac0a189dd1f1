// Package server exposes the Star Wars catalog over HTTP.
//
// A Server wires the upstream client, response cache, catalog, image
// proxy, health checks, authentication and rate limiting from a
// config.Config, and serves them behind one middleware chain:
//
//	recovery -> request id -> observe -> security headers -> CORS ->
//	rate limit -> compression -> optional auth -> routes
//
// Resource routes live under the configured API prefix (default
// "/api/v1"); "/", "/health*" and "/metrics" live at the root. Every
// error response is an ErrorBody, and StatusFor documents how errors
// from the lower packages map to HTTP statuses.
//
// Usage:
//
//	cfg, err := config.Load(ctx, "config.yaml")
//	if err != nil {
//		return err
//	}
//	srv, err := server.New(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	return srv.Run(ctx)
package server
