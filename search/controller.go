// Package search drives a searchable, paged list: keystrokes are debounced
// into a committed filter, a changed filter returns to the first page, and
// only the response to the latest query ever reaches the state.
package search

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-lide-client/querycache"
	"github.com/goliatone/go-lide-client/transport"
)

// DefaultQuiet is how long typing must pause before the filter is committed.
const DefaultQuiet = 250 * time.Millisecond

// Loader fetches one page.
type Loader[T any] func(ctx context.Context, req transport.PageRequest) (transport.Page[T], error)

// State is what a list view renders.
type State[T any] struct {
	Items   []T
	Total   int
	Page    int
	Size    int
	Filter  string
	Loading bool
	Err     error
}

func (s State[T]) HasPrev() bool {
	return s.Page > 0
}

func (s State[T]) HasNext() bool {
	return (s.Page+1)*s.Size < s.Total
}

// Range renders the visible window, e.g. "21-40 of 45".
func (s State[T]) Range() string {
	if len(s.Items) == 0 {
		return fmt.Sprintf("0 of %d", s.Total)
	}
	from := s.Page*s.Size + 1
	return fmt.Sprintf("%d-%d of %d", from, from+len(s.Items)-1, s.Total)
}

// Controller owns the state of one list view.
type Controller[T any] struct {
	load     Loader[T]
	clock    Clock
	quiet    time.Duration
	logger   zerolog.Logger
	onChange func(State[T])

	mu    sync.Mutex
	state State[T]
	timer Timer
	typed uint64
	seq   uint64
}

// Option configures a controller.
type Option func(*options)

type options struct {
	clock  Clock
	quiet  time.Duration
	size   int
	logger zerolog.Logger
}

// WithClock replaces the clock used for debouncing.
func WithClock(clock Clock) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithQuiet sets the debounce quiet period.
func WithQuiet(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.quiet = d
		}
	}
}

// WithPageSize sets the page size.
func WithPageSize(size int) Option {
	return func(o *options) {
		if size > 0 {
			o.size = size
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// New creates a controller on the first page with an empty filter. Nothing
// is loaded until Refresh, Type or a page change.
func New[T any](load Loader[T], opts ...Option) *Controller[T] {
	o := options{
		clock:  realClock{},
		quiet:  DefaultQuiet,
		size:   transport.DefaultPageSize,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Controller[T]{
		load:   load,
		clock:  o.clock,
		quiet:  o.quiet,
		logger: o.logger,
		state:  State[T]{Size: o.size},
	}
}

// OnChange registers fn to receive every state change. It replaces any
// earlier callback.
func (c *Controller[T]) OnChange(fn func(State[T])) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

// State returns a snapshot of the current state.
func (c *Controller[T]) State() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Type records a keystroke. The filter is committed once no further
// keystroke arrives for the quiet period.
func (c *Controller[T]) Type(ctx context.Context, raw string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timer != nil {
		c.timer.Stop()
	}
	c.typed++
	typed := c.typed
	c.timer = c.clock.AfterFunc(c.quiet, func() {
		c.commit(ctx, raw, typed)
	})
}

// commit applies the filter typed at keystroke typed. A timer that fired
// after a newer keystroke replaced it is dropped.
func (c *Controller[T]) commit(ctx context.Context, raw string, typed uint64) {
	filter := strings.TrimSpace(raw)

	c.mu.Lock()
	if typed != c.typed {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	if filter == c.state.Filter && c.seq > 0 {
		c.mu.Unlock()
		return
	}
	c.state.Filter = filter
	c.state.Page = 0
	c.mu.Unlock()

	_ = c.fetch(ctx)
}

// SetPage loads page. Negative pages are clamped to the first.
func (c *Controller[T]) SetPage(ctx context.Context, page int) error {
	if page < 0 {
		page = 0
	}
	c.mu.Lock()
	c.state.Page = page
	c.mu.Unlock()

	return c.fetch(ctx)
}

// Next loads the following page when there is one.
func (c *Controller[T]) Next(ctx context.Context) error {
	s := c.State()
	if !s.HasNext() {
		return nil
	}
	return c.SetPage(ctx, s.Page+1)
}

// Prev loads the previous page when there is one.
func (c *Controller[T]) Prev(ctx context.Context) error {
	s := c.State()
	if !s.HasPrev() {
		return nil
	}
	return c.SetPage(ctx, s.Page-1)
}

// Refresh re-issues the current query.
func (c *Controller[T]) Refresh(ctx context.Context) error {
	return c.fetch(ctx)
}

// Attach re-issues the current query whenever an invalidation touches the
// key family prefix. The returned function detaches the controller.
func (c *Controller[T]) Attach(ctx context.Context, store *querycache.Store, family string) (detach func()) {
	return store.Subscribe(func(prefixes []string) {
		for _, prefix := range prefixes {
			if querycache.Matches(family, prefix) || querycache.Matches(prefix, family) {
				go c.Refresh(ctx)
				return
			}
		}
	})
}

func (c *Controller[T]) fetch(ctx context.Context) error {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	req := transport.PageRequest{Q: c.state.Filter, Page: c.state.Page, Size: c.state.Size}
	c.state.Loading = true
	c.state.Err = nil
	snapshot, notify := c.state, c.onChange
	c.mu.Unlock()

	if notify != nil {
		notify(snapshot)
	}

	page, err := c.load(ctx, req)

	c.mu.Lock()
	if seq != c.seq {
		c.mu.Unlock()
		c.logger.Warn().
			Uint64("seq", seq).
			Str("q", req.Q).
			Int("page", req.Page).
			Msg("discarding stale search response")
		return nil
	}

	c.state.Loading = false
	c.state.Err = err
	if err == nil {
		c.state.Items = page.Items
		c.state.Total = page.Total
	}
	snapshot, notify = c.state, c.onChange
	c.mu.Unlock()

	if notify != nil {
		notify(snapshot)
	}
	return err
}
