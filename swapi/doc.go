// Package swapi is a cache-backed client for the Star Wars API.
//
// Every upstream URL is read through a shared cache.Cache: detail URLs are
// kept for cache.TTLLong and collection, page and search URLs for
// cache.TTLMedium. GetAll learns the total count and page size from page 1,
// fetches the remaining pages concurrently and caches the merged result
// under its own aggregate key. Batch operations (GetAll, GetManyByIDs)
// tolerate individual failures; single lookups (GetPage, GetItem) do not.
//
// Requests go through a resilience.Executor (bulkhead, circuit breaker,
// retry with backoff for transient failures, per-attempt timeout) and a
// Fetcher, which is fasthttp-backed by default.
package swapi
