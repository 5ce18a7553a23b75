// Package di wires the client together: one cache service and query store,
// the REST transport, the invalidation router, the mutation executor, the
// cached readers and the link manager, all sharing one logger.
package di

import (
	"context"
	"net/http"
	"os"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-lide-client/cache"
	"github.com/goliatone/go-lide-client/internal/logging"
	"github.com/goliatone/go-lide-client/invalidation"
	"github.com/goliatone/go-lide-client/links"
	"github.com/goliatone/go-lide-client/model"
	"github.com/goliatone/go-lide-client/mutation"
	"github.com/goliatone/go-lide-client/querycache"
	"github.com/goliatone/go-lide-client/search"
	"github.com/goliatone/go-lide-client/transport"
	"github.com/goliatone/go-lide-client/views"
)

// Container holds the singleton components of one client session.
type Container struct {
	config        Config
	logger        zerolog.Logger
	cacheService  cache.CacheService
	keySerializer cache.KeySerializer
	store         *querycache.Store
	api           *transport.Client
	router        *invalidation.Router
	executor      *mutation.Executor
	reader        *views.Reader
	links         *links.Manager
}

// Option configures a Container.
type Option func(*options)

type options struct {
	logger     *zerolog.Logger
	httpClient *http.Client
}

// WithLogger replaces the logger built from Config.LogLevel.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = &logger
	}
}

// WithHTTPClient replaces the HTTP client; Config.HTTPTimeout is then ignored.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) {
		o.httpClient = hc
	}
}

// NewContainer validates cfg and builds every component.
func NewContainer(cfg Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	logger := logging.New(os.Stderr, cfg.LogLevel)
	if o.logger != nil {
		logger = *o.logger
	}

	cacheService, err := cache.NewCacheService(cfg.Cache)
	if err != nil {
		return nil, err
	}
	keySerializer := cache.NewDefaultKeySerializer()

	store := querycache.New(cacheService,
		querycache.WithKeySerializer(keySerializer),
		querycache.WithLogger(logger.With().Str("component", "querycache").Logger()),
	)

	transportOpts := []transport.Option{
		transport.WithTimeout(cfg.HTTPTimeout),
		transport.WithLogger(logger.With().Str("component", "transport").Logger()),
	}
	if o.httpClient != nil {
		transportOpts = append(transportOpts, transport.WithHTTPClient(o.httpClient))
	}
	api := transport.New(cfg.BaseURL, transportOpts...)

	router := invalidation.New(store.Keys())
	executor := mutation.New(api, store, router,
		mutation.WithLogger(logger.With().Str("component", "mutation").Logger()))
	reader := views.New(api, store)
	manager := links.New(executor, reader,
		links.WithLogger(logger.With().Str("component", "links").Logger()))

	return &Container{
		config:        cfg,
		logger:        logger,
		cacheService:  cacheService,
		keySerializer: keySerializer,
		store:         store,
		api:           api,
		router:        router,
		executor:      executor,
		reader:        reader,
		links:         manager,
	}, nil
}

// NewContainerWithDefaults builds a container from the environment.
func NewContainerWithDefaults(opts ...Option) (*Container, error) {
	cfg, err := ConfigFromEnv()
	if err != nil {
		return nil, err
	}
	return NewContainer(cfg, opts...)
}

func (c *Container) Config() Config { return c.config }
func (c *Container) Logger() zerolog.Logger { return c.logger }
func (c *Container) CacheService() cache.CacheService { return c.cacheService }
func (c *Container) KeySerializer() cache.KeySerializer { return c.keySerializer }
func (c *Container) Store() *querycache.Store { return c.store }
func (c *Container) API() *transport.Client { return c.api }
func (c *Container) Router() *invalidation.Router { return c.router }
func (c *Container) Executor() *mutation.Executor { return c.executor }
func (c *Container) Reader() *views.Reader { return c.reader }
func (c *Container) Links() *links.Manager { return c.links }

// NewSearch creates a search controller with the configured debounce and
// page size, re-fetching whenever keys under family are invalidated. Call
// the returned function when the view goes away; it also prunes generations
// of reads the cache no longer holds.
func NewSearch[T any](ctx context.Context, c *Container, load search.Loader[T], family string) (*search.Controller[T], func()) {
	ctrl := search.New(load,
		search.WithQuiet(c.config.DebounceDelay),
		search.WithPageSize(c.config.PageSize),
		search.WithLogger(c.logger.With().Str("component", "search").Str("family", family).Logger()),
	)
	detach := ctrl.Attach(ctx, c.store, family)
	return ctrl, func() {
		detach()
		c.store.Prune(ctx)
	}
}

// PersonSearch is the searchable person list.
func PersonSearch(ctx context.Context, c *Container) (*search.Controller[model.Person], func()) {
	return NewSearch[model.Person](ctx, c, c.reader.Persons, c.store.Keys().ListPrefix(model.KindPerson))
}

// EntrySearch is the searchable entry list.
func EntrySearch(ctx context.Context, c *Container) (*search.Controller[model.Entry], func()) {
	return NewSearch[model.Entry](ctx, c, c.reader.Entries, c.store.Keys().ListPrefix(model.KindEntry))
}

// TagSearch is the searchable tag list.
func TagSearch(ctx context.Context, c *Container) (*search.Controller[model.Tag], func()) {
	return NewSearch[model.Tag](ctx, c, c.reader.Tags, c.store.Keys().ListPrefix(model.KindTag))
}

// MediaSearch is the searchable media list.
func MediaSearch(ctx context.Context, c *Container) (*search.Controller[model.Media], func()) {
	return NewSearch[model.Media](ctx, c, c.reader.MediaList, c.store.Keys().ListPrefix(model.KindMedia))
}
