package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/viniciuslks7/API-Starwars/auth"
	"github.com/viniciuslks7/API-Starwars/cache"
	"github.com/viniciuslks7/API-Starwars/catalog"
	"github.com/viniciuslks7/API-Starwars/config"
	"github.com/viniciuslks7/API-Starwars/health"
	"github.com/viniciuslks7/API-Starwars/images"
	"github.com/viniciuslks7/API-Starwars/observe"
	"github.com/viniciuslks7/API-Starwars/resilience"
	"github.com/viniciuslks7/API-Starwars/swapi"
)

// ErrNilConfig is returned by New without a configuration.
var ErrNilConfig = errors.New("server: config is required")

// Option configures a Server.
type Option func(*options)

type options struct {
	observer    observe.Observer
	fetcher     swapi.Fetcher
	imageGetter images.Getter
}

// WithObserver uses obs instead of building one from the configuration.
// The caller keeps ownership and shuts it down.
func WithObserver(obs observe.Observer) Option {
	return func(o *options) { o.observer = obs }
}

// WithFetcher replaces the upstream HTTP transport.
func WithFetcher(f swapi.Fetcher) Option {
	return func(o *options) { o.fetcher = f }
}

// WithImageGetter replaces the image download transport.
func WithImageGetter(g images.Getter) Option {
	return func(o *options) { o.imageGetter = g }
}

// Server is the HTTP API over the upstream catalog.
//
// Contract:
//   - Concurrency: Handler is safe for concurrent use. Run may be called once.
//   - Context: Run serves until ctx is cancelled, then shuts down within
//     the configured shutdown timeout.
type Server struct {
	cfg    *config.Config
	obs    observe.Observer
	ownObs bool
	logger observe.Logger
	errors errorWriter

	store    *cache.MemoryCache
	client   *swapi.Client
	catalog  *catalog.Service
	images   *images.Proxy
	health   *health.Aggregator
	authMW   *auth.Middleware
	limiter  *resilience.KeyedRateLimiter
	janitors []*cache.Janitor

	handler http.Handler
}

// New wires the server components from cfg.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Server, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	s := &Server{cfg: cfg, obs: o.observer}
	if s.obs == nil {
		obs, err := observe.NewObserver(ctx, cfg.Observer())
		if err != nil {
			return nil, fmt.Errorf("server: observer: %w", err)
		}
		s.obs, s.ownObs = obs, true
	}
	s.logger = s.obs.Logger().With(observe.String("component", "server"))
	s.errors = errorWriter{debug: cfg.Service.Debug, logger: s.logger}

	s.store = cache.NewMemoryCache(cfg.Cache.Policy())
	if err := s.obs.Metrics().ObserveCache("responses", statsFunc(s.store)); err != nil {
		return nil, fmt.Errorf("server: cache metrics: %w", err)
	}

	clientOpts := []swapi.Option{
		swapi.WithLogger(s.obs.Logger().With(observe.String("component", "swapi"))),
		swapi.WithMetrics(s.obs.Metrics()),
		swapi.WithTracer(s.obs.Tracer()),
	}
	if o.fetcher != nil {
		clientOpts = append(clientOpts, swapi.WithFetcher(o.fetcher))
	}
	client, err := swapi.New(s.store, cfg.Upstream, clientOpts...)
	if err != nil {
		return nil, err
	}
	s.client = client

	s.catalog, err = catalog.New(client, catalog.WithLogger(s.obs.Logger().With(observe.String("component", "catalog"))))
	if err != nil {
		return nil, err
	}

	janitor, err := cache.NewJanitor(s.store, cfg.Cache.CleanupSchedule, s.obs.Logger())
	if err != nil {
		return nil, err
	}
	s.janitors = append(s.janitors, janitor)

	if cfg.Images.Enabled {
		imgOpts := []images.Option{images.WithLogger(s.obs.Logger().With(observe.String("component", "images")))}
		if o.imageGetter != nil {
			imgOpts = append(imgOpts, images.WithGetter(o.imageGetter))
		}
		s.images = images.New(cfg.Images.Config, imgOpts...)
		if err := s.obs.Metrics().ObserveCache("images", statsFunc(s.images.Store())); err != nil {
			return nil, fmt.Errorf("server: image cache metrics: %w", err)
		}
		imgJanitor, err := cache.NewJanitor(s.images.Store(), cfg.Cache.CleanupSchedule, s.obs.Logger())
		if err != nil {
			return nil, err
		}
		s.janitors = append(s.janitors, imgJanitor)
	}

	s.health = health.NewAggregator(5 * time.Second)
	s.health.Register(health.NewCacheChecker(s.store))
	s.health.Register(health.NewUpstreamChecker(client.Breaker()))
	s.health.Register(health.NewMemoryChecker(health.MemoryCheckerConfig{}))

	if cfg.Auth.Enabled {
		s.authMW = auth.NewMiddleware(newAuthenticator(cfg.Auth),
			auth.WithAPIKeyHeader(cfg.Auth.APIKeyHeader),
			auth.WithAdminClaim(cfg.Auth.AdminClaim),
			auth.WithErrorWriter(s.errors.write),
			auth.WithMiddlewareLogger(s.obs.Logger().With(observe.String("component", "auth"))),
		)
	}

	if cfg.RateLimit.Enabled {
		s.limiter = resilience.NewKeyedRateLimiter(resilience.KeyedRateLimiterConfig{
			Limit:  cfg.RateLimit.Requests,
			Period: cfg.RateLimit.Period,
		})
	}

	s.handler = s.buildHandler()
	return s, nil
}

func statsFunc(store cache.Store) observe.CacheStatsFunc {
	return func() (int64, int64, int) {
		st := store.Stats()
		return st.Hits, st.Misses, st.Entries
	}
}

// newAuthenticator tries API keys first, then bearer tokens.
func newAuthenticator(cfg config.AuthConfig) auth.Authenticator {
	var auths []auth.Authenticator
	if len(cfg.APIKeys) > 0 {
		auths = append(auths, auth.NewAPIKeyAuthenticator(
			cfg.APIKeyHeader,
			auth.StaticAPIKeys(cfg.APIKeys, cfg.AdminPrincipals),
		))
	}
	if cfg.JWT.Secret != "" {
		auths = append(auths, auth.NewJWTAuthenticator(cfg.JWT.Authenticator()))
	}
	return auth.NewChain(auths...)
}

// Handler returns the complete middleware chain and routes.
func (s *Server) Handler() http.Handler { return s.handler }

// Cache returns the shared response cache.
func (s *Server) Cache() *cache.MemoryCache { return s.store }

// Health returns the readiness aggregator.
func (s *Server) Health() *health.Aggregator { return s.health }

func (s *Server) buildHandler() http.Handler {
	mux := http.NewServeMux()
	s.routes(mux)

	mws := []Middleware{
		Recovery(s.logger, s.errors),
		RequestID(),
		observe.MiddlewareFromObserver(s.obs).Handler,
		SecurityHeaders(s.cfg.Server.APIPrefix),
		CORS(s.cfg.Server.CORSOrigins),
	}
	if s.limiter != nil {
		mws = append(mws, RateLimit(s.limiter, s.cfg.RateLimit.ExemptPaths, s.obs.Metrics(), s.errors))
	}
	if s.cfg.Compression.Enabled {
		mws = append(mws, Compression(s.cfg.Compression.Threshold, s.cfg.Compression.Level))
	}
	if s.authMW != nil {
		mws = append(mws, s.authMW.Optional)
	}
	return Chain(mux, mws...)
}

// handle registers h under pattern and labels requests with its route.
func (s *Server) handle(mux *http.ServeMux, pattern string, h handlerFunc, mws ...Middleware) {
	s.handleHTTP(mux, pattern, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			s.errors.fail(w, r, err)
		}
	}), mws...)
}

func (s *Server) handleHTTP(mux *http.ServeMux, pattern string, h http.Handler, mws ...Middleware) {
	route := pattern
	if _, path, ok := strings.Cut(pattern, " "); ok {
		route = path
	}
	inner := Chain(h, mws...)
	mux.Handle(pattern, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		observe.SetRoute(r.Context(), route)
		inner.ServeHTTP(w, r)
	}))
}

// Run serves until ctx is cancelled. The cache janitors run for the
// server's lifetime, and an observer built by New is shut down on exit.
func (s *Server) Run(ctx context.Context) error {
	for _, j := range s.janitors {
		j.Start()
	}

	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.handler,
		ReadTimeout:       s.cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.cfg.Server.WriteTimeout,
		IdleTimeout:       s.cfg.Server.IdleTimeout,
	}
	servers := []*http.Server{srv}

	g, gctx := errgroup.WithContext(ctx)
	if s.cfg.Server.TLS.Enabled() {
		challenge := s.enableTLS(srv)
		servers = append(servers, challenge)
		g.Go(func() error { return serve(challenge.ListenAndServe) })
		g.Go(func() error { return serve(func() error { return srv.ListenAndServeTLS("", "") }) })
	} else {
		g.Go(func() error { return serve(srv.ListenAndServe) })
	}
	s.logger.Info(ctx, "server started",
		observe.String("addr", srv.Addr),
		observe.String("api_prefix", s.cfg.Server.APIPrefix),
		observe.Bool("tls", s.cfg.Server.TLS.Enabled()),
	)

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.Server.ShutdownTimeout)
		defer cancel()
		return s.shutdown(shutdownCtx, servers)
	})
	return g.Wait()
}

func serve(listen func() error) error {
	if err := listen(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) shutdown(ctx context.Context, servers []*http.Server) error {
	s.logger.Info(ctx, "shutting down")
	var errs []error
	for _, srv := range servers {
		if err := srv.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown %s: %w", srv.Addr, err))
		}
	}
	for _, j := range s.janitors {
		j.Stop(ctx)
	}
	if s.ownObs {
		if err := s.obs.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
