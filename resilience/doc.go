// Package resilience guards calls to the upstream API.
//
// An Executor stacks a token-bucket RateLimiter, a concurrency Bulkhead,
// a CircuitBreaker, a Retry policy with exponential backoff and a
// per-attempt timeout:
//
//	exec := resilience.NewExecutor(
//	    resilience.WithBulkhead(resilience.NewBulkhead(resilience.BulkheadConfig{MaxConcurrent: 32})),
//	    resilience.WithCircuitBreaker(resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{})),
//	    resilience.WithRetry(resilience.NewRetry(resilience.RetryConfig{MaxAttempts: 3})),
//	    resilience.WithTimeout(10*time.Second),
//	)
//	body, err := resilience.Do(ctx, exec, fetch)
//
// IsTransient is the shared classification of errors worth retrying.
// KeyedRateLimiter keeps one bucket per client and backs the HTTP rate
// limiting middleware.
package resilience
