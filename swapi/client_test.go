package swapi

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bytedance/sonic"

	"github.com/viniciuslks7/API-Starwars/cache"
)

const testBase = "https://swapi.test/api"

type response struct {
	status int
	body   string
	delay  time.Duration
	err    error
}

// fakeUpstream serves canned responses and records every request.
type fakeUpstream struct {
	mu        sync.Mutex
	responses map[string]response
	calls     []string
}

func newFakeUpstream() *fakeUpstream {
	return &fakeUpstream{responses: make(map[string]response)}
}

func (f *fakeUpstream) set(url string, r response) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[url] = r
}

func (f *fakeUpstream) Fetch(ctx context.Context, url string) (int, []byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	r, ok := f.responses[url]
	f.mu.Unlock()

	if !ok {
		return 404, []byte(`{"detail":"Not found"}`), nil
	}
	if r.delay > 0 {
		select {
		case <-time.After(r.delay):
		case <-ctx.Done():
			return 0, nil, ctx.Err()
		}
	}
	if r.err != nil {
		return 0, nil, r.err
	}
	return r.status, []byte(r.body), nil
}

func (f *fakeUpstream) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeUpstream) callsTo(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == url {
			n++
		}
	}
	return n
}

func personJSON(id int) string {
	return fmt.Sprintf(`{"name":"Person %d","url":"%s/people/%d/"}`, id, testBase, id)
}

// pageJSON renders a page holding ids [from, to].
func pageJSON(count, from, to int) string {
	parts := make([]string, 0, to-from+1)
	for id := from; id <= to; id++ {
		parts = append(parts, personJSON(id))
	}
	return fmt.Sprintf(`{"count":%d,"next":null,"previous":null,"results":[%s]}`, count, strings.Join(parts, ","))
}

// seedPeople publishes 25 people in pages of 10.
func seedPeople(f *fakeUpstream) {
	f.set(testBase+"/people/", response{status: 200, body: pageJSON(25, 1, 10)})
	// Page 2 is slower than page 3 so completion order differs from page order.
	f.set(testBase+"/people/?page=2", response{status: 200, body: pageJSON(25, 11, 20), delay: 30 * time.Millisecond})
	f.set(testBase+"/people/?page=3", response{status: 200, body: pageJSON(25, 21, 25)})
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.BaseURL = testBase
	cfg.Timeout = 2 * time.Second
	cfg.Retry = RetryConfig{MaxAttempts: 1}
	return cfg
}

func newTestClient(t *testing.T, f Fetcher, opts ...cache.Option) (*Client, *cache.MemoryCache) {
	t.Helper()
	store := cache.NewMemoryCache(cache.DefaultPolicy(), opts...)
	c, err := New(store, testConfig(), WithFetcher(f))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c, store
}

func ids(items []Item) []int {
	out := make([]int, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(nil, testConfig()); !errors.Is(err, ErrNilCache) {
		t.Errorf("New(nil) error = %v, want ErrNilCache", err)
	}

	cfg := testConfig()
	cfg.BaseURL = "not a url"
	if _, err := New(cache.NewMemoryCache(cache.DefaultPolicy()), cfg); err == nil {
		t.Error("New() with invalid base URL should fail")
	}
}

func TestClient_URLs(t *testing.T) {
	c, _ := newTestClient(t, newFakeUpstream())

	tests := []struct {
		got, want string
	}{
		{c.PageURL(People, 1), testBase + "/people/"},
		{c.PageURL(People, 0), testBase + "/people/"},
		{c.PageURL(Films, 3), testBase + "/films/?page=3"},
		{c.ItemURL(Planets, 7), testBase + "/planets/7/"},
		{c.SearchURL(Starships, "star destroyer"), testBase + "/starships/?search=star+destroyer"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("URL = %q, want %q", tt.got, tt.want)
		}
	}
}

func TestGetAll_FanOutPreservesPageOrder(t *testing.T) {
	f := newFakeUpstream()
	seedPeople(f)
	c, _ := newTestClient(t, f)

	items, err := c.GetAll(context.Background(), People)
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	if len(items) != 25 {
		t.Fatalf("len(items) = %d, want 25", len(items))
	}
	for i, id := range ids(items) {
		if id != i+1 {
			t.Fatalf("items[%d].ID = %d, want %d (order %v)", i, id, i+1, ids(items))
		}
	}
	if n := f.callCount(); n != 3 {
		t.Errorf("upstream calls = %d, want 3", n)
	}
	if f.calls[0] != testBase+"/people/" {
		t.Errorf("first call = %q, want page 1", f.calls[0])
	}
}

func TestGetAll_FailedPageIsDropped(t *testing.T) {
	f := newFakeUpstream()
	seedPeople(f)
	f.set(testBase+"/people/?page=3", response{err: errors.New("connection reset")})
	c, _ := newTestClient(t, f)

	items, err := c.GetAll(context.Background(), People)
	if err != nil {
		t.Fatalf("GetAll() error = %v, want nil", err)
	}
	if len(items) != 20 {
		t.Fatalf("len(items) = %d, want 20", len(items))
	}
	for _, it := range items {
		if it.ID > 20 {
			t.Errorf("item %d from the failed page is present", it.ID)
		}
	}
}

func TestGetAll_TimedOutPageIsDropped(t *testing.T) {
	f := newFakeUpstream()
	seedPeople(f)
	f.set(testBase+"/people/?page=3", response{status: 200, body: pageJSON(25, 21, 25), delay: time.Second})

	cfg := testConfig()
	cfg.Timeout = 50 * time.Millisecond
	c, err := New(cache.NewMemoryCache(cache.DefaultPolicy()), cfg, WithFetcher(f))
	if err != nil {
		t.Fatal(err)
	}

	items, err := c.GetAll(context.Background(), People)
	if err != nil {
		t.Fatalf("GetAll() error = %v, want nil", err)
	}
	if len(items) != 20 {
		t.Errorf("len(items) = %d, want 20 without the timed-out page", len(items))
	}
}

func TestGetAll_CancelledCallerLeavesNoTruncatedAggregate(t *testing.T) {
	f := newFakeUpstream()
	seedPeople(f)
	f.set(testBase+"/people/?page=2", response{status: 200, body: pageJSON(25, 11, 20), delay: 200 * time.Millisecond})
	f.set(testBase+"/people/?page=3", response{status: 200, body: pageJSON(25, 21, 25), delay: 200 * time.Millisecond})
	c, store := newTestClient(t, f)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if items, err := c.GetAll(ctx, People); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("GetAll() = %d items, %v; want context.DeadlineExceeded", len(items), err)
	}
	if data, ok := store.Peek(context.Background(), cache.AggregateKey("people")); ok {
		t.Errorf("aggregate cached for the cancelled caller: %s", data)
	}

	items, err := c.GetAll(context.Background(), People)
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	if len(items) != 25 {
		t.Errorf("len(items) = %d, want 25", len(items))
	}
	if n := f.callsTo(testBase + "/people/?page=2"); n != 1 {
		t.Errorf("page 2 fetched %d times, want 1", n)
	}
}

func TestGetAll_SecondCallServedFromCache(t *testing.T) {
	f := newFakeUpstream()
	seedPeople(f)
	c, _ := newTestClient(t, f)
	ctx := context.Background()

	if _, err := c.GetAll(ctx, People); err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	before := f.callCount()

	items, err := c.GetAll(ctx, People)
	if err != nil {
		t.Fatalf("second GetAll() error = %v", err)
	}
	if len(items) != 25 {
		t.Errorf("len(items) = %d, want 25", len(items))
	}
	if after := f.callCount(); after != before {
		t.Errorf("second GetAll made %d upstream calls, want 0", after-before)
	}
}

func TestGetAll_ConcurrentCallersShareOneBatch(t *testing.T) {
	f := newFakeUpstream()
	seedPeople(f)
	c, _ := newTestClient(t, f)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			items, err := c.GetAll(context.Background(), People)
			if err != nil || len(items) != 25 {
				t.Errorf("GetAll() = %d items, %v", len(items), err)
			}
		}()
	}
	wg.Wait()

	for _, u := range []string{testBase + "/people/", testBase + "/people/?page=2", testBase + "/people/?page=3"} {
		if n := f.callsTo(u); n != 1 {
			t.Errorf("calls to %s = %d, want 1", u, n)
		}
	}
}

func TestGetAll_FirstPageFailureIsReturned(t *testing.T) {
	f := newFakeUpstream()
	f.set(testBase+"/films/", response{status: 503, body: `{}`})
	c, _ := newTestClient(t, f)

	_, err := c.GetAll(context.Background(), Films)
	if StatusOf(err) != 503 {
		t.Errorf("GetAll() error = %v, want upstream 503", err)
	}
}

func TestGetAll_EmptyCollectionNotCached(t *testing.T) {
	f := newFakeUpstream()
	f.set(testBase+"/vehicles/", response{status: 200, body: `{"count":0,"next":null,"previous":null,"results":[]}`})
	c, store := newTestClient(t, f)
	ctx := context.Background()

	items, err := c.GetAll(ctx, Vehicles)
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	if len(items) != 0 {
		t.Errorf("len(items) = %d, want 0", len(items))
	}
	if _, ok := store.Get(ctx, cache.AggregateKey("vehicles")); ok {
		t.Error("empty aggregate was cached")
	}
}

func TestGetAll_MalformedSelfURLSkipped(t *testing.T) {
	f := newFakeUpstream()
	body := `{"count":3,"next":null,"previous":null,"results":[` +
		personJSON(1) + `,{"name":"Broken","url":"` + testBase + `/people/abc/"},` + personJSON(3) + `]}`
	f.set(testBase+"/people/", response{status: 200, body: body})
	c, _ := newTestClient(t, f)

	items, err := c.GetAll(context.Background(), People)
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	if got := ids(items); len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Errorf("ids = %v, want [1 3]", got)
	}
}

func TestGetAll_ItemPayloadKept(t *testing.T) {
	f := newFakeUpstream()
	f.set(testBase+"/people/", response{status: 200, body: pageJSON(1, 1, 1)})
	c, _ := newTestClient(t, f)

	items, err := c.GetAll(context.Background(), People)
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	var p struct {
		Name string `json:"name"`
	}
	if err := sonic.Unmarshal(items[0].Raw, &p); err != nil {
		t.Fatalf("decode raw: %v", err)
	}
	if p.Name != "Person 1" {
		t.Errorf("name = %q, want Person 1", p.Name)
	}
}

func TestGetManyByIDs_DropsFailures(t *testing.T) {
	f := newFakeUpstream()
	f.set(testBase+"/people/1/", response{status: 200, body: personJSON(1)})
	f.set(testBase+"/people/2/", response{status: 200, body: personJSON(2), delay: 20 * time.Millisecond})
	c, _ := newTestClient(t, f)

	items := c.GetManyByIDs(context.Background(), People, []int{1, 2, 999})
	if got := ids(items); len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("ids = %v, want [1 2]", got)
	}
}

func TestGetItem_Errors(t *testing.T) {
	f := newFakeUpstream()
	f.set(testBase+"/people/1/", response{status: 200, body: personJSON(1)})
	f.set(testBase+"/people/2/", response{status: 500, body: `oops`})
	f.set(testBase+"/people/3/", response{err: errors.New("dial tcp: refused")})
	f.set(testBase+"/people/4/", response{status: 200, body: `{not json`})
	c, _ := newTestClient(t, f)
	ctx := context.Background()

	item, err := c.GetItem(ctx, People, 1)
	if err != nil || item.ID != 1 {
		t.Fatalf("GetItem(1) = %+v, %v", item, err)
	}

	tests := []struct {
		id         int
		notFound   bool
		wantStatus int
	}{
		{id: 999, notFound: true, wantStatus: 404},
		{id: 2, wantStatus: 500},
		{id: 3, wantStatus: 0},
		{id: 4, wantStatus: 200},
	}
	for _, tt := range tests {
		_, err := c.GetItem(ctx, People, tt.id)
		if err == nil {
			t.Errorf("GetItem(%d) error = nil", tt.id)
			continue
		}
		if IsNotFound(err) != tt.notFound {
			t.Errorf("GetItem(%d) IsNotFound = %v, want %v", tt.id, IsNotFound(err), tt.notFound)
		}
		if !tt.notFound && !errors.Is(err, ErrUpstream) {
			t.Errorf("GetItem(%d) error = %v, want UpstreamError", tt.id, err)
		}
		if got := StatusOf(err); got != tt.wantStatus {
			t.Errorf("GetItem(%d) StatusOf = %d, want %d", tt.id, got, tt.wantStatus)
		}
	}
}

func TestGetItem_ErrorsNotCached(t *testing.T) {
	f := newFakeUpstream()
	f.set(testBase+"/films/1/", response{status: 502, body: `{}`})
	c, _ := newTestClient(t, f)
	ctx := context.Background()

	if _, err := c.GetItem(ctx, Films, 1); err == nil {
		t.Fatal("expected error")
	}
	f.set(testBase+"/films/1/", response{status: 200, body: `{"title":"A New Hope","url":"` + testBase + `/films/1/"}`})
	if _, err := c.GetItem(ctx, Films, 1); err != nil {
		t.Errorf("GetItem() after recovery error = %v", err)
	}
}

func TestRetry_TransientButNotNotFound(t *testing.T) {
	f := newFakeUpstream()
	f.set(testBase+"/planets/1/", response{status: 503, body: `{}`})
	cfg := testConfig()
	cfg.Retry = RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
	c, err := New(cache.NewMemoryCache(cache.DefaultPolicy()), cfg, WithFetcher(f))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx := context.Background()

	if _, err := c.GetItem(ctx, Planets, 1); StatusOf(err) != 503 {
		t.Errorf("GetItem() error = %v, want 503", err)
	}
	if n := f.callsTo(testBase + "/planets/1/"); n != 3 {
		t.Errorf("503 attempts = %d, want 3", n)
	}

	if _, err := c.GetItem(ctx, Planets, 404); !IsNotFound(err) {
		t.Errorf("GetItem() error = %v, want not found", err)
	}
	if n := f.callsTo(testBase + "/planets/404/"); n != 1 {
		t.Errorf("404 attempts = %d, want 1", n)
	}
}

func TestFetch_TTLBands(t *testing.T) {
	now := time.Date(2024, 5, 4, 12, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	advance := func(d time.Duration) {
		mu.Lock()
		now = now.Add(d)
		mu.Unlock()
	}

	f := newFakeUpstream()
	f.set(testBase+"/people/1/", response{status: 200, body: personJSON(1)})
	f.set(testBase+"/people/?page=2", response{status: 200, body: pageJSON(25, 11, 20)})
	c, _ := newTestClient(t, f, cache.WithClock(clock))
	ctx := context.Background()

	if _, err := c.GetItem(ctx, People, 1); err != nil {
		t.Fatal(err)
	}
	if _, err := c.GetPage(ctx, People, 2); err != nil {
		t.Fatal(err)
	}

	advance(cache.TTLMedium + time.Minute)
	_, _ = c.GetItem(ctx, People, 1)
	_, _ = c.GetPage(ctx, People, 2)
	if n := f.callsTo(testBase + "/people/1/"); n != 1 {
		t.Errorf("detail fetched %d times within long TTL, want 1", n)
	}
	if n := f.callsTo(testBase + "/people/?page=2"); n != 2 {
		t.Errorf("page fetched %d times after medium TTL, want 2", n)
	}

	advance(cache.TTLLong)
	_, _ = c.GetItem(ctx, People, 1)
	if n := f.callsTo(testBase + "/people/1/"); n != 2 {
		t.Errorf("detail fetched %d times after long TTL, want 2", n)
	}
}

func TestTTLFor(t *testing.T) {
	tests := []struct {
		url  string
		want time.Duration
	}{
		{testBase + "/people/1/", cache.TTLLong},
		{testBase + "/people/", cache.TTLMedium},
		{testBase + "/people/?page=2", cache.TTLMedium},
		{testBase + "/people/?search=luke", cache.TTLMedium},
	}
	for _, tt := range tests {
		if got := ttlFor(tt.url); got != tt.want {
			t.Errorf("ttlFor(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestSearch(t *testing.T) {
	f := newFakeUpstream()
	f.set(testBase+"/people/?search=sky", response{status: 200, body: pageJSON(2, 1, 2)})
	c, _ := newTestClient(t, f)
	ctx := context.Background()

	items, err := c.Search(ctx, People, "sky")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if got := ids(items); len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("ids = %v, want [1 2]", got)
	}

	if _, err := c.Search(ctx, Films, "hope"); !errors.Is(err, ErrSearchUnsupported) {
		t.Errorf("Search(films) error = %v, want ErrSearchUnsupported", err)
	}
}

func TestCircuitOpensOnRepeatedFailures(t *testing.T) {
	f := newFakeUpstream()
	for i := 1; i <= 10; i++ {
		f.set(fmt.Sprintf("%s/species/%d/", testBase, i), response{status: 500, body: `{}`})
	}
	cfg := testConfig()
	cfg.Breaker = BreakerConfig{MaxFailures: 2, ResetTimeout: time.Hour}
	c, err := New(cache.NewMemoryCache(cache.DefaultPolicy()), cfg, WithFetcher(f))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	for i := 1; i <= 2; i++ {
		_, _ = c.GetItem(ctx, Species, i)
	}
	before := f.callCount()
	_, err = c.GetItem(ctx, Species, 3)
	if !errors.Is(err, ErrUpstream) {
		t.Errorf("GetItem() error = %v, want UpstreamError", err)
	}
	if f.callCount() != before {
		t.Error("request reached the upstream while the circuit was open")
	}
	if c.Breaker().State().String() != "open" {
		t.Errorf("breaker state = %v, want open", c.Breaker().State())
	}
}
