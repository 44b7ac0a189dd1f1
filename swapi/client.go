package swapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"go.opentelemetry.io/otel/trace"

	"github.com/viniciuslks7/API-Starwars/cache"
	"github.com/viniciuslks7/API-Starwars/observe"
	"github.com/viniciuslks7/API-Starwars/resilience"
)

// DefaultBaseURL is the public upstream API root.
const DefaultBaseURL = "https://swapi.dev/api"

// ErrNilCache is returned by New when no cache is supplied.
var ErrNilCache = errors.New("swapi: cache is required")

var errMalformedBody = errors.New("malformed response body")

// RetryConfig configures retries of a single upstream request.
type RetryConfig struct {
	// MaxAttempts includes the first attempt.
	// Default: 3
	MaxAttempts int `yaml:"max_attempts" validate:"gte=0"`

	// InitialDelay is the first backoff delay.
	// Default: 200ms
	InitialDelay time.Duration `yaml:"initial_delay" validate:"gte=0"`

	// MaxDelay caps the backoff delay.
	// Default: 2s
	MaxDelay time.Duration `yaml:"max_delay" validate:"gte=0"`
}

// BreakerConfig configures the circuit breaker guarding the upstream.
type BreakerConfig struct {
	// MaxFailures opens the circuit after this many consecutive failures.
	// Default: 5
	MaxFailures int `yaml:"max_failures" validate:"gte=0"`

	// ResetTimeout is how long the circuit stays open before probing.
	// Default: 30s
	ResetTimeout time.Duration `yaml:"reset_timeout" validate:"gte=0"`
}

// Config configures a Client.
type Config struct {
	// BaseURL is the API root without a trailing slash.
	// Default: DefaultBaseURL
	BaseURL string `yaml:"base_url" validate:"omitempty,url"`

	// Timeout bounds each request attempt.
	// Default: 30s
	Timeout time.Duration `yaml:"timeout" validate:"gte=0"`

	// MaxConcurrency bounds the fan-out of GetAll and GetManyByIDs.
	// Default: 10
	MaxConcurrency int `yaml:"max_concurrency" validate:"gte=0"`

	// MaxInFlight bounds concurrent upstream requests across all callers.
	// Default: 32
	MaxInFlight int `yaml:"max_in_flight" validate:"gte=0"`

	// MaxConns limits open connections to the upstream host.
	// Default: 64
	MaxConns int `yaml:"max_conns" validate:"gte=0"`

	// UserAgent is sent with every upstream request.
	// Default: "starwars-api"
	UserAgent string `yaml:"user_agent"`

	// RequestsPerSecond paces upstream requests; callers wait up to
	// Timeout for a slot. Zero disables pacing.
	// Default: 0
	RequestsPerSecond float64 `yaml:"requests_per_second" validate:"gte=0"`

	Retry   RetryConfig   `yaml:"retry"`
	Breaker BreakerConfig `yaml:"breaker"`
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:        DefaultBaseURL,
		Timeout:        30 * time.Second,
		MaxConcurrency: 10,
		MaxInFlight:    32,
		MaxConns:       64,
		UserAgent:      "starwars-api",
		Retry: RetryConfig{
			MaxAttempts:  3,
			InitialDelay: 200 * time.Millisecond,
			MaxDelay:     2 * time.Second,
		},
		Breaker: BreakerConfig{
			MaxFailures:  5,
			ResetTimeout: 30 * time.Second,
		},
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.BaseURL == "" {
		c.BaseURL = d.BaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	if c.MaxConcurrency <= 0 {
		c.MaxConcurrency = d.MaxConcurrency
	}
	if c.MaxInFlight <= 0 {
		c.MaxInFlight = d.MaxInFlight
	}
	if c.Retry.MaxAttempts <= 0 {
		c.Retry.MaxAttempts = d.Retry.MaxAttempts
	}
	if c.Retry.InitialDelay <= 0 {
		c.Retry.InitialDelay = d.Retry.InitialDelay
	}
	if c.Retry.MaxDelay <= 0 {
		c.Retry.MaxDelay = d.Retry.MaxDelay
	}
	if c.Breaker.MaxFailures <= 0 {
		c.Breaker.MaxFailures = d.Breaker.MaxFailures
	}
	if c.Breaker.ResetTimeout <= 0 {
		c.Breaker.ResetTimeout = d.Breaker.ResetTimeout
	}
	return c
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the client logger.
func WithLogger(l observe.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithMetrics sets the metrics sink for upstream fetches.
func WithMetrics(m observe.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithTracer sets the tracer used for upstream fetch spans.
func WithTracer(t observe.Tracer) Option {
	return func(c *Client) { c.tracer = t }
}

// WithFetcher replaces the HTTP transport.
func WithFetcher(f Fetcher) Option {
	return func(c *Client) { c.fetcher = f }
}

// Client reads the upstream API through a shared cache.
//
// Contract:
// - Concurrency: safe for concurrent use; concurrent loads of one URL or one
//   aggregate share a single upstream request.
// - Errors: GetPage and GetItem fail fast with ErrNotFound or *UpstreamError.
//   GetAll and GetManyByIDs drop individual page or item failures.
type Client struct {
	cfg     Config
	cache   cache.Cache
	loader  *cache.Loader
	fetcher Fetcher
	exec    *resilience.Executor

	logger  observe.Logger
	metrics observe.Metrics
	tracer  observe.Tracer
}

// New creates a Client over c. Several clients may share one cache.
func New(c cache.Cache, cfg Config, opts ...Option) (*Client, error) {
	if c == nil {
		return nil, ErrNilCache
	}
	cfg = cfg.withDefaults()
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("swapi: invalid base URL %q: %w", cfg.BaseURL, err)
	}

	nop := observe.NewNopObserver()
	client := &Client{
		cfg:     cfg,
		cache:   c,
		loader:  cache.NewLoader(c),
		logger:  nop.Logger(),
		metrics: nop.Metrics(),
		tracer:  nop.Tracer(),
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.fetcher == nil {
		client.fetcher = NewHTTPFetcher(HTTPFetcherConfig{
			UserAgent:       cfg.UserAgent,
			MaxConnsPerHost: cfg.MaxConns,
			ReadTimeout:     cfg.Timeout,
			WriteTimeout:    cfg.Timeout,
			Timeout:         cfg.Timeout,
		})
	}

	logger := client.logger
	var pacing []resilience.ExecutorOption
	if cfg.RequestsPerSecond > 0 {
		pacing = append(pacing, resilience.WithRateLimiter(resilience.NewRateLimiter(resilience.RateLimiterConfig{
			Rate:        cfg.RequestsPerSecond,
			Burst:       max(1, int(cfg.RequestsPerSecond)),
			WaitOnLimit: true,
			MaxWait:     cfg.Timeout,
		})))
	}
	client.exec = resilience.NewExecutor(append(pacing,
		resilience.WithBulkhead(resilience.NewBulkhead(resilience.BulkheadConfig{
			MaxConcurrent: cfg.MaxInFlight,
			MaxWait:       cfg.Timeout,
		})),
		resilience.WithCircuitBreaker(resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			MaxFailures:  cfg.Breaker.MaxFailures,
			ResetTimeout: cfg.Breaker.ResetTimeout,
			IsFailure:    retryable,
			OnStateChange: func(from, to resilience.State) {
				logger.Warn(context.Background(), "upstream circuit state changed",
					observe.String("from", from.String()),
					observe.String("to", to.String()),
				)
			},
		})),
		resilience.WithRetry(resilience.NewRetry(resilience.RetryConfig{
			MaxAttempts:  cfg.Retry.MaxAttempts,
			InitialDelay: cfg.Retry.InitialDelay,
			MaxDelay:     cfg.Retry.MaxDelay,
			Jitter:       true,
			RetryIf:      retryable,
			OnRetry: func(attempt int, err error, delay time.Duration) {
				logger.Debug(context.Background(), "retrying upstream request",
					observe.Int("attempt", attempt),
					observe.Duration("delay", delay),
					observe.Err(err),
				)
			},
		})),
		resilience.WithTimeout(cfg.Timeout),
	)...)

	return client, nil
}

// Invalidate stops loads that are still running from storing their
// results. Call it after purging the cache.
func (c *Client) Invalidate() { c.loader.Invalidate() }

// Config returns the effective configuration.
func (c *Client) Config() Config { return c.cfg }

// Breaker returns the circuit breaker guarding the upstream.
func (c *Client) Breaker() *resilience.CircuitBreaker { return c.exec.CircuitBreaker() }

// ResourceURL returns the collection URL for r.
func (c *Client) ResourceURL(r Resource) string {
	return c.cfg.BaseURL + "/" + string(r) + "/"
}

// ItemURL returns the detail URL for r and id.
func (c *Client) ItemURL(r Resource, id int) string {
	return c.cfg.BaseURL + "/" + string(r) + "/" + strconv.Itoa(id) + "/"
}

// PageURL returns the URL of one collection page. Page 1 has no query.
func (c *Client) PageURL(r Resource, page int) string {
	if page <= 1 {
		return c.ResourceURL(r)
	}
	return c.ResourceURL(r) + "?page=" + strconv.Itoa(page)
}

// SearchURL returns the search URL for r and query.
func (c *Client) SearchURL(r Resource, query string) string {
	return c.ResourceURL(r) + "?search=" + url.QueryEscape(query)
}

// GetPage returns one page of r. Pages below 1 are treated as page 1.
func (c *Client) GetPage(ctx context.Context, r Resource, page int) (*Page, error) {
	u := c.PageURL(r, page)
	body, err := c.fetch(ctx, r, u)
	if err != nil {
		return nil, err
	}
	var p Page
	if err := sonic.Unmarshal(body, &p); err != nil {
		return nil, &UpstreamError{URL: u, Err: fmt.Errorf("%w: %v", errMalformedBody, err)}
	}
	return &p, nil
}

// GetItem returns the item of r with the given id.
func (c *Client) GetItem(ctx context.Context, r Resource, id int) (Item, error) {
	u := c.ItemURL(r, id)
	body, err := c.fetch(ctx, r, u)
	if err != nil {
		return Item{}, err
	}
	return Item{ID: id, Raw: body}, nil
}

// GetAll returns every item of r in upstream page order.
//
// Page 1 is fetched first to learn the total count and the page size; the
// remaining pages are then fetched concurrently. Pages that fail are left
// out of the result and logged. The merged result is cached under the
// aggregate key, so repeated calls do no network I/O until it expires.
// Only a failure of page 1 is returned as an error.
func (c *Client) GetAll(ctx context.Context, r Resource) ([]Item, error) {
	key := cache.AggregateKey(string(r))
	data, hit, err := c.loader.Load(ctx, key, func(ctx context.Context) ([]byte, time.Duration, error) {
		items, err := c.collect(ctx, r)
		if err != nil {
			return nil, 0, err
		}
		data, err := sonic.Marshal(items)
		if err != nil {
			return nil, 0, fmt.Errorf("swapi: encode %s aggregate: %w", r, err)
		}
		if len(items) == 0 {
			// An empty collection is not cached.
			return data, 0, nil
		}
		return data, cache.TTLMedium, nil
	})
	if err != nil {
		return nil, err
	}

	var items []Item
	if err := sonic.Unmarshal(data, &items); err != nil {
		// A corrupt aggregate is dropped so the next call rebuilds it.
		c.cache.Delete(ctx, key)
		return nil, fmt.Errorf("swapi: decode %s aggregate: %w", r, err)
	}
	if hit {
		c.logger.Debug(ctx, "aggregate served from cache",
			observe.String("resource", string(r)),
			observe.Int("items", len(items)),
		)
	}
	return items, nil
}

func (c *Client) collect(ctx context.Context, r Resource) ([]Item, error) {
	first, err := c.GetPage(ctx, r, 1)
	if err != nil {
		return nil, err
	}
	if len(first.Results) == 0 {
		return []Item{}, nil
	}

	pageSize := len(first.Results)
	totalPages := (first.Count + pageSize - 1) / pageSize

	pages := [][]json.RawMessage{first.Results}
	if totalPages > 1 {
		outcomes := Gather(ctx, totalPages-1, c.cfg.MaxConcurrency, func(ctx context.Context, i int) (*Page, error) {
			return c.GetPage(ctx, r, i+2)
		})
		// A caller that gave up must not leave a truncated aggregate behind.
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, o := range outcomes {
			if o.Err != nil {
				c.logger.Warn(ctx, "dropping failed page from aggregate",
					observe.String("resource", string(r)),
					observe.Int("page", o.Index+2),
					observe.Err(o.Err),
				)
				continue
			}
			pages = append(pages, o.Value.Results)
		}
	}

	items := make([]Item, 0, first.Count)
	for _, results := range pages {
		items = append(items, c.annotate(ctx, r, results)...)
	}
	return items, nil
}

// annotate derives the ID of each raw result, skipping malformed ones.
func (c *Client) annotate(ctx context.Context, r Resource, results []json.RawMessage) []Item {
	items := make([]Item, 0, len(results))
	for _, raw := range results {
		var self selfURL
		if err := sonic.Unmarshal(raw, &self); err != nil {
			c.logger.Debug(ctx, "skipping undecodable item",
				observe.String("resource", string(r)), observe.Err(err))
			continue
		}
		id, err := ParseID(self.URL)
		if err != nil {
			c.logger.Debug(ctx, "skipping item with malformed identifier",
				observe.String("resource", string(r)), observe.Err(err))
			continue
		}
		items = append(items, Item{ID: id, Raw: raw})
	}
	return items
}

// GetManyByIDs fetches the given items concurrently. Items that fail,
// including not-found ones, are left out. The result follows the order of
// ids among the successes.
func (c *Client) GetManyByIDs(ctx context.Context, r Resource, ids []int) []Item {
	outcomes := Gather(ctx, len(ids), c.cfg.MaxConcurrency, func(ctx context.Context, i int) (Item, error) {
		return c.GetItem(ctx, r, ids[i])
	})
	for _, o := range outcomes {
		if o.Err != nil {
			c.logger.Debug(ctx, "dropping item from batch",
				observe.String("resource", string(r)),
				observe.Int("id", ids[o.Index]),
				observe.Err(o.Err),
			)
		}
	}
	return Successes(outcomes)
}

// Search runs the upstream text search for r. Only the first page of
// matches is returned.
func (c *Client) Search(ctx context.Context, r Resource, query string) ([]Item, error) {
	if !r.Searchable() {
		return nil, fmt.Errorf("%w: %s", ErrSearchUnsupported, r)
	}
	u := c.SearchURL(r, query)
	body, err := c.fetch(ctx, r, u)
	if err != nil {
		return nil, err
	}
	var p Page
	if err := sonic.Unmarshal(body, &p); err != nil {
		return nil, &UpstreamError{URL: u, Err: fmt.Errorf("%w: %v", errMalformedBody, err)}
	}
	return c.annotate(ctx, r, p.Results), nil
}

// fetch resolves u through the cache, reaching the upstream only on a miss.
func (c *Client) fetch(ctx context.Context, r Resource, u string) ([]byte, error) {
	start := time.Now()
	ctx, span := c.tracer.StartSpan(ctx, "swapi.fetch",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			observe.AttrResource.String(string(r)),
			observe.AttrUpstreamURL.String(u),
		),
	)

	body, hit, err := c.loader.Load(ctx, cache.UpstreamKey(u), func(ctx context.Context) ([]byte, time.Duration, error) {
		body, err := c.request(ctx, u)
		if err != nil {
			return nil, 0, err
		}
		return body, ttlFor(u), nil
	})

	span.SetAttributes(observe.AttrCacheHit.Bool(hit))
	if status := StatusOf(err); status != 0 {
		span.SetAttributes(observe.AttrUpstreamStatus.Int(status))
	}
	// Not-found is an answer, not a failure of the fetch.
	if IsNotFound(err) {
		c.tracer.EndSpan(span, nil)
	} else {
		c.tracer.EndSpan(span, err)
	}
	c.metrics.RecordUpstreamFetch(ctx, string(r), time.Since(start), hit, err)
	return body, err
}

// request performs one guarded upstream GET and classifies the outcome.
func (c *Client) request(ctx context.Context, u string) ([]byte, error) {
	body, err := resilience.Do(ctx, c.exec, func(ctx context.Context) ([]byte, error) {
		status, body, err := c.fetcher.Fetch(ctx, u)
		if err != nil {
			return nil, &UpstreamError{URL: u, Err: err}
		}
		switch {
		case status == 404:
			return nil, fmt.Errorf("%w: %s", ErrNotFound, u)
		case status < 200 || status > 299:
			return nil, &UpstreamError{URL: u, Status: status}
		case !sonic.Valid(body):
			return nil, &UpstreamError{URL: u, Status: status, Err: errMalformedBody}
		}
		return body, nil
	})
	if err == nil {
		return body, nil
	}
	if IsNotFound(err) || errors.Is(err, ErrUpstream) {
		return nil, err
	}
	// Timeouts, an open circuit, a full bulkhead or cancellation.
	return nil, &UpstreamError{URL: u, Err: err}
}

// retryable excludes not-found answers from retries and breaker failures.
func retryable(err error) bool {
	return !IsNotFound(err) && resilience.IsTransient(err)
}

// ttlFor picks the long band for single-item detail URLs and the medium
// band for collection, page and search URLs.
func ttlFor(u string) time.Duration {
	parsed, err := url.Parse(u)
	if err != nil || parsed.RawQuery != "" {
		return cache.TTLMedium
	}
	if _, err := ParseID(parsed.Path); err == nil {
		return cache.TTLLong
	}
	return cache.TTLMedium
}
