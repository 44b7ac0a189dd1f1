// Package cache provides the process-wide TTL cache shared by upstream
// clients.
//
// It provides a Store interface with an in-memory implementation that
// tracks hits and misses, namespaced key helpers, a singleflight-backed
// read-through Loader and a cron-driven Janitor that sweeps expired
// entries.
package cache
