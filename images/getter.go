package images

import (
	"context"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"
)

// Getter downloads one resource.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must honor ctx deadlines and cancellation.
// - Errors: err is non-nil only for transport failures.
type Getter interface {
	Get(ctx context.Context, url string) (status int, contentType string, body []byte, err error)
}

// GetterFunc adapts a function to Getter.
type GetterFunc func(ctx context.Context, url string) (int, string, []byte, error)

func (f GetterFunc) Get(ctx context.Context, url string) (int, string, []byte, error) {
	return f(ctx, url)
}

// HTTPGetterConfig configures HTTPGetter.
type HTTPGetterConfig struct {
	// UserAgent is sent with every request. Some image hosts reject
	// non-browser agents.
	// Default: a desktop browser agent
	UserAgent string

	// Referer is sent with every request.
	// Default: "https://starwars.fandom.com/"
	Referer string

	// MaxBodySize caps a downloaded image.
	// Default: 8 MiB
	MaxBodySize int

	// Timeout bounds a request when ctx carries no deadline.
	// Default: 15s
	Timeout time.Duration
}

// HTTPGetter is a Getter backed by fasthttp.
type HTTPGetter struct {
	client *fasthttp.Client
	cfg    HTTPGetterConfig
}

// NewHTTPGetter creates a fasthttp-backed Getter.
func NewHTTPGetter(cfg HTTPGetterConfig) *HTTPGetter {
	if cfg.UserAgent == "" {
		cfg.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	}
	if cfg.Referer == "" {
		cfg.Referer = "https://starwars.fandom.com/"
	}
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = 8 << 20
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &HTTPGetter{
		client: &fasthttp.Client{
			Name:                cfg.UserAgent,
			MaxResponseBodySize: cfg.MaxBodySize,
			ReadTimeout:         cfg.Timeout,
			WriteTimeout:        cfg.Timeout,
		},
		cfg: cfg,
	}
}

type getResult struct {
	status      int
	contentType string
	body        []byte
	err         error
}

// Get issues a GET for url, following redirects.
func (g *HTTPGetter) Get(ctx context.Context, url string) (int, string, []byte, error) {
	if err := ctx.Err(); err != nil {
		return 0, "", nil, err
	}
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(g.cfg.Timeout)
	}

	done := make(chan getResult, 1)
	go func() {
		req := fasthttp.AcquireRequest()
		resp := fasthttp.AcquireResponse()
		defer fasthttp.ReleaseRequest(req)
		defer fasthttp.ReleaseResponse(resp)

		req.SetRequestURI(url)
		req.Header.SetMethod(fasthttp.MethodGet)
		req.Header.Set("Accept", "image/webp,image/jpeg,image/png,image/*,application/json")
		req.Header.SetReferer(g.cfg.Referer)
		req.Header.SetUserAgent(g.cfg.UserAgent)

		if err := g.client.DoRedirects(req, resp, 5); err != nil {
			done <- getResult{err: fmt.Errorf("GET %s: %w", url, err)}
			return
		}
		done <- getResult{
			status:      resp.StatusCode(),
			contentType: string(resp.Header.ContentType()),
			body:        append([]byte(nil), resp.Body()...),
		}
	}()

	timer := time.NewTimer(time.Until(deadline))
	defer timer.Stop()
	select {
	case r := <-done:
		return r.status, r.contentType, r.body, r.err
	case <-ctx.Done():
		return 0, "", nil, ctx.Err()
	case <-timer.C:
		return 0, "", nil, fmt.Errorf("GET %s: %w", url, context.DeadlineExceeded)
	}
}

var _ Getter = (*HTTPGetter)(nil)
