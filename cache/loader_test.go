package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestLoader_MissThenHit(t *testing.T) {
	store := NewMemoryCache(DefaultPolicy())
	loader := NewLoader(store)
	ctx := context.Background()

	var calls atomic.Int32
	fn := func(context.Context) ([]byte, time.Duration, error) {
		calls.Add(1)
		return []byte(`{"count":1}`), TTLMedium, nil
	}

	v, hit, err := loader.Load(ctx, "upstream:page-1", fn)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if hit {
		t.Error("first Load() hit = true, want false")
	}
	if string(v) != `{"count":1}` {
		t.Errorf("Load() = %s", v)
	}

	_, hit, err = loader.Load(ctx, "upstream:page-1", fn)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !hit {
		t.Error("second Load() hit = false, want true")
	}
	if calls.Load() != 1 {
		t.Errorf("load function called %d times, want 1", calls.Load())
	}
}

func TestLoader_ErrorsNotCached(t *testing.T) {
	store := NewMemoryCache(DefaultPolicy())
	loader := NewLoader(store)
	ctx := context.Background()
	boom := errors.New("boom")

	var calls int
	fn := func(context.Context) ([]byte, time.Duration, error) {
		calls++
		if calls == 1 {
			return nil, 0, boom
		}
		return []byte("ok"), TTLMedium, nil
	}

	if _, _, err := loader.Load(ctx, "k", fn); !errors.Is(err, boom) {
		t.Fatalf("Load() error = %v, want %v", err, boom)
	}
	if store.Len() != 0 {
		t.Errorf("Len() = %d after failed load, want 0", store.Len())
	}

	v, _, err := loader.Load(ctx, "k", fn)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if string(v) != "ok" {
		t.Errorf("Load() = %q, want ok", v)
	}
}

func TestLoader_ConcurrentLoadsShareOneCall(t *testing.T) {
	store := NewMemoryCache(DefaultPolicy())
	loader := NewLoader(store)
	ctx := context.Background()

	release := make(chan struct{})
	var calls atomic.Int32
	fn := func(context.Context) ([]byte, time.Duration, error) {
		calls.Add(1)
		<-release
		return []byte("v"), TTLMedium, nil
	}

	const callers = 20
	var wg sync.WaitGroup
	var started sync.WaitGroup
	wg.Add(callers)
	started.Add(callers)
	for i := 0; i < callers; i++ {
		go func() {
			defer wg.Done()
			started.Done()
			if _, _, err := loader.Load(ctx, "all:people", fn); err != nil {
				t.Errorf("Load() error = %v", err)
			}
		}()
	}

	started.Wait()
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if calls.Load() != 1 {
		t.Errorf("load function called %d times, want 1", calls.Load())
	}
}

func TestLoader_DisabledCacheAlwaysLoads(t *testing.T) {
	loader := NewLoader(NewMemoryCache(DisabledPolicy()))
	ctx := context.Background()

	var calls int
	fn := func(context.Context) ([]byte, time.Duration, error) {
		calls++
		return []byte("v"), TTLMedium, nil
	}

	for i := 0; i < 3; i++ {
		if _, hit, _ := loader.Load(ctx, "k", fn); hit {
			t.Error("Load() hit = true on disabled cache")
		}
	}
	if calls != 3 {
		t.Errorf("load function called %d times, want 3", calls)
	}
}

func TestLoader_NonPositiveTTLNotStored(t *testing.T) {
	store := NewMemoryCache(DefaultPolicy())
	loader := NewLoader(store)
	ctx := context.Background()

	var calls int
	fn := func(context.Context) ([]byte, time.Duration, error) {
		calls++
		return []byte("[]"), 0, nil
	}

	for i := 0; i < 2; i++ {
		v, hit, err := loader.Load(ctx, "all:films", fn)
		if err != nil || hit || string(v) != "[]" {
			t.Fatalf("Load() = %q, %v, %v; want [] miss", v, hit, err)
		}
	}
	if calls != 2 {
		t.Errorf("load function called %d times, want 2", calls)
	}
	if store.Len() != 0 {
		t.Errorf("Len() = %d, want 0", store.Len())
	}
}

func TestLoader_MissCountedOnce(t *testing.T) {
	store := NewMemoryCache(DefaultPolicy())
	loader := NewLoader(store)
	ctx := context.Background()
	fn := func(context.Context) ([]byte, time.Duration, error) {
		return []byte("v"), TTLMedium, nil
	}

	for i := 0; i < 2; i++ {
		if _, _, err := loader.Load(ctx, "k", fn); err != nil {
			t.Fatalf("Load() error = %v", err)
		}
	}
	st := store.Stats()
	if st.Hits != 1 || st.Misses != 1 {
		t.Errorf("hits = %d, misses = %d, want 1 and 1", st.Hits, st.Misses)
	}
	if st.HitRate != 50 {
		t.Errorf("HitRate = %v, want 50", st.HitRate)
	}
}

func TestLoader_CallerCancellationDoesNotCutSharedLoad(t *testing.T) {
	store := NewMemoryCache(DefaultPolicy())
	loader := NewLoader(store)

	release := make(chan struct{})
	var calls atomic.Int32
	fn := func(ctx context.Context) ([]byte, time.Duration, error) {
		calls.Add(1)
		select {
		case <-release:
			return []byte("full"), TTLMedium, nil
		case <-ctx.Done():
			return []byte("partial"), TTLMedium, nil
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, _, err := loader.Load(ctx, "all:people", fn); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Load() error = %v, want context.DeadlineExceeded", err)
	}

	done := make(chan []byte)
	go func() {
		v, _, _ := loader.Load(context.Background(), "all:people", fn)
		done <- v
	}()
	time.Sleep(10 * time.Millisecond)
	close(release)

	if v := <-done; string(v) != "full" {
		t.Errorf("Load() = %q, want full", v)
	}
	if cached, ok := store.Peek(context.Background(), "all:people"); !ok || string(cached) != "full" {
		t.Errorf("cached = %q, %v; want full", cached, ok)
	}
	if calls.Load() != 1 {
		t.Errorf("load function called %d times, want 1", calls.Load())
	}
}

func TestLoader_InvalidateDropsRunningResult(t *testing.T) {
	store := NewMemoryCache(DefaultPolicy())
	loader := NewLoader(store)
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	slow := func(context.Context) ([]byte, time.Duration, error) {
		close(started)
		<-release
		return []byte("stale"), TTLMedium, nil
	}

	done := make(chan []byte)
	go func() {
		v, _, _ := loader.Load(ctx, "upstream:k", slow)
		done <- v
	}()
	<-started
	store.Clear(ctx)
	loader.Invalidate()
	close(release)

	if v := <-done; string(v) != "stale" {
		t.Errorf("running Load() = %q, want stale", v)
	}
	if store.Len() != 0 {
		t.Errorf("Len() = %d after Invalidate, want 0", store.Len())
	}

	v, hit, err := loader.Load(ctx, "upstream:k", func(context.Context) ([]byte, time.Duration, error) {
		return []byte("fresh"), TTLMedium, nil
	})
	if err != nil || hit || string(v) != "fresh" {
		t.Errorf("Load() after Invalidate = %q, %v, %v; want fresh miss", v, hit, err)
	}
}
