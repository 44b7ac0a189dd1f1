package swapi

import (
	"context"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"
)

// Fetcher performs one HTTP GET.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must honor ctx deadlines and cancellation.
// - Errors: err is non-nil only for transport failures; any HTTP status,
//   including 4xx and 5xx, is reported through status with a nil err.
// - Ownership: the returned body belongs to the caller.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (status int, body []byte, err error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, url string) (int, []byte, error)

func (f FetcherFunc) Fetch(ctx context.Context, url string) (int, []byte, error) {
	return f(ctx, url)
}

// HTTPFetcherConfig configures HTTPFetcher.
type HTTPFetcherConfig struct {
	// UserAgent is sent with every request.
	// Default: "starwars-api"
	UserAgent string

	// MaxConnsPerHost limits open connections to the upstream host.
	// Default: 64
	MaxConnsPerHost int

	// ReadTimeout and WriteTimeout bound socket operations.
	// Default: 30s each
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Timeout bounds a request when ctx carries no deadline.
	// Default: 30s
	Timeout time.Duration
}

// HTTPFetcher is a Fetcher backed by fasthttp.
type HTTPFetcher struct {
	client    *fasthttp.Client
	userAgent string
	timeout   time.Duration
}

// NewHTTPFetcher creates a fasthttp-backed Fetcher.
func NewHTTPFetcher(cfg HTTPFetcherConfig) *HTTPFetcher {
	if cfg.UserAgent == "" {
		cfg.UserAgent = "starwars-api"
	}
	if cfg.MaxConnsPerHost <= 0 {
		cfg.MaxConnsPerHost = 64
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 30 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &HTTPFetcher{
		client: &fasthttp.Client{
			Name:            cfg.UserAgent,
			MaxConnsPerHost: cfg.MaxConnsPerHost,
			ReadTimeout:     cfg.ReadTimeout,
			WriteTimeout:    cfg.WriteTimeout,
		},
		userAgent: cfg.UserAgent,
		timeout:   cfg.Timeout,
	}
}

// Fetch issues a GET for url. The body is copied out of the pooled
// response before it is released.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (int, []byte, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(f.timeout)
	}

	// DoDeadline has no cancellation hook, so the call runs in its own
	// goroutine which owns the pooled request and response.
	done := make(chan fetchResult, 1)
	go func() {
		req := fasthttp.AcquireRequest()
		resp := fasthttp.AcquireResponse()
		defer fasthttp.ReleaseRequest(req)
		defer fasthttp.ReleaseResponse(resp)

		req.SetRequestURI(url)
		req.Header.SetMethod(fasthttp.MethodGet)
		req.Header.Set("Accept", "application/json")
		req.Header.SetUserAgent(f.userAgent)

		if err := f.client.DoDeadline(req, resp, deadline); err != nil {
			done <- fetchResult{err: fmt.Errorf("GET %s: %w", url, err)}
			return
		}
		done <- fetchResult{
			status: resp.StatusCode(),
			body:   append([]byte(nil), resp.Body()...),
		}
	}()

	select {
	case r := <-done:
		return r.status, r.body, r.err
	case <-ctx.Done():
		return 0, nil, ctx.Err()
	}
}

type fetchResult struct {
	status int
	body   []byte
	err    error
}

// CloseIdleConnections releases idle upstream connections.
func (f *HTTPFetcher) CloseIdleConnections() {
	f.client.CloseIdleConnections()
}

var _ Fetcher = (*HTTPFetcher)(nil)
