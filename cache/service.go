package cache

import "context"

// KeySerializer builds a cache key from a key family (entity or relation kind)
// and the scope parameters identifying one read inside that family.
type KeySerializer interface {
	SerializeKey(family string, scope ...any) string
}

// FetchFn loads a value from the source of truth on a cache miss.
type FetchFn[T any] func(ctx context.Context) (T, error)

// CacheService exposes the read-through operations the query store needs.
// Implementations must de-duplicate concurrent GetOrFetch calls for one key
// and must not retain results of failed fetches.
type CacheService interface {
	GetOrFetch(ctx context.Context, key string, fetchFn FetchFn[any]) (any, error)
	Get(ctx context.Context, key string) (any, bool)
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) []string
}

// GetOrFetch is a type-safe wrapper around CacheService.GetOrFetch.
func GetOrFetch[T any](ctx context.Context, service CacheService, key string, fetchFn FetchFn[T]) (T, error) {
	result, err := service.GetOrFetch(ctx, key, func(ctx context.Context) (any, error) {
		return fetchFn(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}

	// nil interface results cannot be asserted to T
	value, ok := result.(T)
	if !ok {
		var zero T
		return zero, nil
	}
	return value, nil
}
