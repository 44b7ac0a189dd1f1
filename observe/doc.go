// Package observe provides logging, tracing, and metrics for the API.
//
// An Observer owns the OpenTelemetry tracer and meter providers and a zap
// backed Logger. The HTTP Middleware turns each request into a server span,
// a request metric, and an access log line. The upstream client records one
// span and one fetch metric per URL it resolves.
//
// Request identifiers travel in the context (WithRequestID) and are attached
// to every log entry written with that context.
package observe
