// Package querycache is the read-through store shared by every view. Reads
// are cached under logical keys built by Keys; mutations invalidate them by
// prefix and listeners are told which prefixes went stale.
package querycache

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-lide-client/cache"
)

// generationMark separates the logical key from its generation in the
// physical key handed to the cache service.
const generationMark = "#"

// Listener receives the prefixes of every invalidation.
type Listener func(prefixes []string)

// Store caches query results. Every logical key carries a generation; the
// value lives under "<key>#<gen>". Invalidation bumps the generation so a
// fetch issued afterwards can never join a loader that started before it.
type Store struct {
	service cache.CacheService
	keys    Keys
	logger  zerolog.Logger

	generations *xsync.MapOf[string, uint64]
	// fetching is read-held by every Fetch so Prune never races a load
	fetching sync.RWMutex

	mu        sync.RWMutex
	listeners map[uint64]Listener
	nextID    uint64
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithKeySerializer replaces the serializer used by Keys.
func WithKeySerializer(serializer cache.KeySerializer) Option {
	return func(s *Store) {
		s.keys = NewKeys(serializer)
	}
}

// New creates a store on top of the given cache service.
func New(service cache.CacheService, opts ...Option) *Store {
	s := &Store{
		service:     service,
		keys:        NewKeys(nil),
		logger:      zerolog.Nop(),
		generations: xsync.NewMapOf[string, uint64](),
		listeners:   make(map[uint64]Listener),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Keys returns the key builder of the store.
func (s *Store) Keys() Keys {
	return s.keys
}

// Get returns the cached value of a logical key without fetching.
func (s *Store) Get(ctx context.Context, key string) (any, bool) {
	gen, ok := s.generations.Load(key)
	if !ok {
		return nil, false
	}
	return s.service.Get(ctx, physicalKey(key, gen))
}

// Fetch returns the cached value for key or runs loader to produce it.
// Concurrent fetches of one key share a single loader call and all observe
// its outcome. Failed loads are not cached.
func Fetch[T any](ctx context.Context, s *Store, key string, loader cache.FetchFn[T]) (T, error) {
	s.fetching.RLock()
	defer s.fetching.RUnlock()

	gen, _ := s.generations.LoadOrStore(key, 0)
	physical := physicalKey(key, gen)

	value, err := cache.GetOrFetch(ctx, s.service, physical, func(ctx context.Context) (T, error) {
		s.logger.Debug().Str("key", key).Uint64("generation", gen).Msg("cache miss")
		return loader(ctx)
	})

	// invalidated while loading: the caller keeps its answer but the cache
	// must not serve it to anyone else
	if current, _ := s.generations.Load(key); current != gen {
		_ = s.service.Delete(ctx, physical)
	}

	return value, err
}

// Prune forgets the generation of every logical key whose value is no longer
// held by the cache service, typically after eviction or expiry. Without it
// the generation table keeps one entry per distinct key ever read, search
// texts included. Prune skips the pass and returns 0 while any fetch is in
// flight; otherwise it returns the number of keys dropped.
func (s *Store) Prune(ctx context.Context) int {
	if !s.fetching.TryLock() {
		return 0
	}
	defer s.fetching.Unlock()

	pruned := 0
	s.generations.Range(func(key string, gen uint64) bool {
		if _, ok := s.service.Get(ctx, physicalKey(key, gen)); !ok {
			s.generations.Delete(key)
			pruned++
		}
		return true
	})

	if pruned > 0 {
		s.logger.Debug().Int("keys", pruned).Msg("cache generations pruned")
	}
	return pruned
}

// Invalidate marks every cached read matching one of the prefixes as stale and
// notifies listeners. It returns the logical keys that were invalidated.
func (s *Store) Invalidate(ctx context.Context, prefixes ...string) []string {
	if len(prefixes) == 0 {
		return nil
	}

	var matched []string
	s.generations.Range(func(key string, _ uint64) bool {
		if MatchesAny(key, prefixes) {
			matched = append(matched, key)
		}
		return true
	})
	sort.Strings(matched)

	for _, key := range matched {
		next, _ := s.generations.Compute(key, func(old uint64, _ bool) (uint64, bool) {
			return old + 1, false
		})
		if err := s.service.Delete(ctx, physicalKey(key, next-1)); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("cache delete failed")
		}
	}

	s.logger.Debug().
		Strs("prefixes", prefixes).
		Int("keys", len(matched)).
		Msg("cache invalidated")

	s.notify(prefixes)
	return matched
}

// Subscribe registers fn for invalidation notifications. Listeners run
// synchronously on the invalidating goroutine. The returned function
// removes the listener.
func (s *Store) Subscribe(fn Listener) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) notify(prefixes []string) {
	s.mu.RLock()
	ids := make([]uint64, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	fns := make([]Listener, 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.listeners[id])
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(append([]string(nil), prefixes...))
	}
}

// Matches reports whether key lies under prefix. Matching respects segment
// boundaries: "person::item::1" does not match "person::item::12". An empty
// prefix matches every key.
func Matches(key, prefix string) bool {
	if prefix == "" || key == prefix {
		return true
	}
	return strings.HasPrefix(key, prefix+cache.KeySeparator)
}

// MatchesAny reports whether key lies under any of the prefixes.
func MatchesAny(key string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if Matches(key, prefix) {
			return true
		}
	}
	return false
}

func physicalKey(key string, gen uint64) string {
	return key + generationMark + strconv.FormatUint(gen, 10)
}
