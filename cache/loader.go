package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// LoadFunc produces the value for a key on a cache miss. It also returns
// the TTL to store the value with, so callers can choose a band from the
// outcome. A non-positive TTL hands the value back without storing it.
type LoadFunc func(ctx context.Context) (value []byte, ttl time.Duration, err error)

// Peeker is implemented by caches that can look a key up without
// recording a hit or a miss.
type Peeker interface {
	Peek(ctx context.Context, key string) ([]byte, bool)
}

// Loader is a read-through front for a Cache. Concurrent loads of the same
// key share a single LoadFunc call, which makes the check-then-set
// sequence atomic per key.
//
// The shared call runs on a context detached from any one caller's
// cancellation, so a caller that goes away cannot cut the result short
// for the others. LoadFunc must bound its own work with timeouts.
type Loader struct {
	cache Cache
	group singleflight.Group

	gen      atomic.Uint64
	inflight sync.Map // key -> struct{}
}

// NewLoader creates a read-through loader over cache.
func NewLoader(cache Cache) *Loader {
	return &Loader{cache: cache}
}

// Load returns the cached value for key or calls fn to produce it.
// hit reports whether the value came from the cache without running fn.
// Errors are returned to every waiting caller and are never cached. A
// caller whose ctx ends first gets ctx.Err() while the shared call goes on.
func (l *Loader) Load(ctx context.Context, key string, fn LoadFunc) (value []byte, hit bool, err error) {
	if cached, ok := l.cache.Get(ctx, key); ok {
		return cached, true, nil
	}

	flightCtx := context.WithoutCancel(ctx)
	ch := l.group.DoChan(key, func() (any, error) {
		l.inflight.Store(key, struct{}{})
		defer l.inflight.Delete(key)

		// Another flight may have filled the key between our Get and DoChan.
		if cached, ok := l.recheck(flightCtx, key); ok {
			return cached, nil
		}

		gen := l.gen.Load()
		value, ttl, err := fn(flightCtx)
		if err != nil {
			return nil, err
		}
		if ttl > 0 && l.gen.Load() == gen {
			l.cache.Set(flightCtx, key, value, ttl)
		}
		return value, nil
	})

	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, false, res.Err
		}
		return res.Val.([]byte), false, nil
	}
}

func (l *Loader) recheck(ctx context.Context, key string) ([]byte, bool) {
	if p, ok := l.cache.(Peeker); ok {
		return p.Peek(ctx, key)
	}
	return l.cache.Get(ctx, key)
}

// Invalidate is called after entries are purged from the cache. Loads
// already running still answer their callers but no longer store their
// result, and later Loads of the same keys start a fresh call.
func (l *Loader) Invalidate() {
	l.gen.Add(1)
	l.inflight.Range(func(k, _ any) bool {
		l.group.Forget(k.(string))
		return true
	})
}

var _ Peeker = (*MemoryCache)(nil)
