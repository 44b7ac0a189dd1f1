package images

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/viniciuslks7/API-Starwars/cache"
	"github.com/viniciuslks7/API-Starwars/observe"
)

// Errors returned by the proxy.
var (
	// ErrInvalidKind is returned for an image type that is not served.
	ErrInvalidKind = errors.New("images: invalid type")

	// ErrImageUnavailable is returned by a load when the source does not
	// return a usable image.
	ErrImageUnavailable = errors.New("images: image unavailable")
)

// Kind is an image category.
type Kind string

const (
	Characters Kind = "characters"
	Films      Kind = "films"
	Starships  Kind = "starships"
	Planets    Kind = "planets"
	Species    Kind = "species"
	Vehicles   Kind = "vehicles"
)

var kinds = []Kind{Characters, Films, Starships, Planets, Species, Vehicles}

// Kinds returns every served image type.
func Kinds() []Kind {
	out := make([]Kind, len(kinds))
	copy(out, kinds)
	return out
}

// ParseKind validates an image type name.
func ParseKind(s string) (Kind, error) {
	for _, k := range kinds {
		if string(k) == s {
			return k, nil
		}
	}
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return "", fmt.Errorf("%w: %q (use one of: %s)", ErrInvalidKind, s, strings.Join(names, ", "))
}

// Label is the display name of the kind.
func (k Kind) Label() string {
	if k == "" {
		return ""
	}
	return strings.ToUpper(string(k[:1])) + string(k[1:])
}

// Image is an image payload ready to serve.
type Image struct {
	Data        []byte
	ContentType string
	// Placeholder is true for generated fallbacks.
	Placeholder bool
}

// Config configures a Proxy.
type Config struct {
	// CharacterIndexURL is the JSON index of character images.
	// Default: DefaultCharacterIndexURL
	CharacterIndexURL string `yaml:"character_index_url" validate:"omitempty,url"`

	// CacheTTL is how long fetched images and the index are kept.
	// Default: cache.TTLLong
	CacheTTL time.Duration `yaml:"cache_ttl" validate:"gte=0"`

	// Timeout bounds each image or index fetch.
	// Default: 15s
	Timeout time.Duration `yaml:"timeout" validate:"gte=0"`
}

func (c Config) withDefaults() Config {
	if c.CharacterIndexURL == "" {
		c.CharacterIndexURL = DefaultCharacterIndexURL
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = cache.TTLLong
	}
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
	return c
}

// Proxy resolves and serves entity images.
//
// Contract:
//   - Concurrency: safe for concurrent use; concurrent requests for the
//     same image share one fetch.
//   - Errors: Image never fails; any resolution or fetch problem yields a
//     placeholder, which is not cached.
type Proxy struct {
	cfg    Config
	getter Getter
	store  *cache.MemoryCache
	loader *cache.Loader
	logger observe.Logger
}

// Option configures a Proxy.
type Option func(*Proxy)

// WithGetter replaces the fasthttp-backed Getter.
func WithGetter(g Getter) Option {
	return func(p *Proxy) {
		if g != nil {
			p.getter = g
		}
	}
}

// WithLogger sets the proxy logger.
func WithLogger(l observe.Logger) Option {
	return func(p *Proxy) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithStore replaces the proxy's private image cache.
func WithStore(s *cache.MemoryCache) Option {
	return func(p *Proxy) {
		if s != nil {
			p.store = s
		}
	}
}

// New creates a Proxy with its own image cache.
func New(cfg Config, opts ...Option) *Proxy {
	cfg = cfg.withDefaults()
	p := &Proxy{
		cfg:    cfg,
		logger: observe.NewNopLogger(),
		store: cache.NewMemoryCache(cache.Policy{
			DefaultTTL: cfg.CacheTTL,
			MaxTTL:     cfg.CacheTTL,
			Enabled:    true,
		}),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.getter == nil {
		p.getter = NewHTTPGetter(HTTPGetterConfig{Timeout: cfg.Timeout})
	}
	p.loader = cache.NewLoader(p.store)
	return p
}

// Store returns the image cache so it can be swept and inspected.
func (p *Proxy) Store() *cache.MemoryCache { return p.store }

// Invalidate keeps image loads started before a purge from storing.
func (p *Proxy) Invalidate() { p.loader.Invalidate() }

const (
	namespaceImages = "images"
	indexKey        = "images:character-index"
)

type cachedImage struct {
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

// Image returns the image for kind and id, or a placeholder.
func (p *Proxy) Image(ctx context.Context, kind Kind, id int) Image {
	src := p.resolve(ctx, kind, id)
	if src == "" {
		return Placeholder(kind, id)
	}

	key := cache.MakeKey(namespaceImages, kind, id)
	raw, _, err := p.loader.Load(ctx, key, func(ctx context.Context) ([]byte, time.Duration, error) {
		ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()

		status, contentType, body, err := p.getter.Get(ctx, src)
		if err != nil {
			return nil, 0, err
		}
		if status != 200 || len(body) == 0 {
			return nil, 0, fmt.Errorf("%w: %s: status %d", ErrImageUnavailable, src, status)
		}
		if contentType == "" {
			contentType = "image/jpeg"
		}
		enc, err := sonic.Marshal(cachedImage{ContentType: contentType, Data: body})
		if err != nil {
			return nil, 0, err
		}
		return enc, p.cfg.CacheTTL, nil
	})
	if err != nil {
		p.logger.Warn(ctx, "image fetch failed",
			observe.String("kind", string(kind)),
			observe.Int("id", id),
			observe.Err(err),
		)
		return Placeholder(kind, id)
	}

	var img cachedImage
	if err := sonic.Unmarshal(raw, &img); err != nil {
		p.store.Delete(ctx, key)
		return Placeholder(kind, id)
	}
	return Image{Data: img.Data, ContentType: img.ContentType}
}

// resolve returns the source URL for an image, or "" when none is known.
func (p *Proxy) resolve(ctx context.Context, kind Kind, id int) string {
	switch kind {
	case Characters:
		index := p.characterIndex(ctx)
		if u := index[strconv.Itoa(id)]; u != "" {
			return u
		}
		if name, ok := characterNames[id]; ok {
			return index[nameKey(name)]
		}
		return ""
	case Films:
		return filmPosters[id]
	case Starships:
		return starshipImages[id]
	default:
		return ""
	}
}

func nameKey(name string) string {
	return "name:" + strings.ToLower(strings.TrimSpace(name))
}

type indexEntry struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

// characterIndex maps character ids and "name:<lower name>" keys to image
// URLs. A failed load yields an empty index and is retried next time.
func (p *Proxy) characterIndex(ctx context.Context) map[string]string {
	raw, _, err := p.loader.Load(ctx, indexKey, func(ctx context.Context) ([]byte, time.Duration, error) {
		ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()

		status, _, body, err := p.getter.Get(ctx, p.cfg.CharacterIndexURL)
		if err != nil {
			return nil, 0, err
		}
		if status != 200 {
			return nil, 0, fmt.Errorf("%w: character index: status %d", ErrImageUnavailable, status)
		}
		var entries []indexEntry
		if err := sonic.Unmarshal(body, &entries); err != nil {
			return nil, 0, fmt.Errorf("character index: %w", err)
		}
		index := make(map[string]string, 2*len(entries))
		for _, e := range entries {
			if e.Image == "" {
				continue
			}
			index[strconv.Itoa(e.ID)] = e.Image
			if e.Name != "" {
				index[nameKey(e.Name)] = e.Image
			}
		}
		enc, err := sonic.Marshal(index)
		if err != nil {
			return nil, 0, err
		}
		return enc, p.cfg.CacheTTL, nil
	})
	if err != nil {
		p.logger.Warn(ctx, "character index unavailable", observe.Err(err))
		return nil
	}
	var index map[string]string
	if err := sonic.Unmarshal(raw, &index); err != nil {
		p.store.Delete(ctx, indexKey)
		return nil
	}
	return index
}
