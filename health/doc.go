// Package health reports whether the service can answer requests.
//
// Checkers cover the response cache, the circuit breaker guarding the
// upstream API and the Go heap. An Aggregator runs them in parallel under
// one deadline; the worst result is the overall status.
//
// Three handlers are exposed: StatusHandler for a cheap "up" answer,
// ReadinessHandler with per-check results (503 when unhealthy) and
// LivenessHandler answering a plain "OK".
package health
