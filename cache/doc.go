// Package cache provides the read-through cache interface and the key
// serializer behind the client's query store.
//
// # Overview
//
// This package exports two interfaces and their default implementations:
//
//   - CacheService: a read-through cache that de-duplicates concurrent
//     fetches of one key and never retains a failed fetch
//   - KeySerializer: builds keys from a family and scope parameters
//
// NewCacheService returns the sturdyc-backed implementation configured by
// Config. Early refresh and missing-record storage are off by default:
// freshness comes from explicit invalidation, not from timers.
//
// # Key Layout
//
// Keys are segments joined by KeySeparator:
//
//	person::item::p-1
//	person::list::nov::0::20
//	personentry::entry::e-7::all
//
// Free-text segments such as search input are quoted when they contain a
// separator character, so "a::b" typed into a search box stays one segment
// and prefix invalidation cannot match the wrong keys.
//
// # Basic Usage
//
//	svc, err := cache.NewCacheService(cache.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	key := cache.NewDefaultKeySerializer().SerializeKey("person", "item", id)
//	p, err := cache.GetOrFetch(ctx, svc, key, func(ctx context.Context) (model.Person, error) {
//		return transport.Get[model.Person](ctx, api, model.KindPerson, id)
//	})
//
// Most callers use the querycache package instead, which adds generations
// and prefix invalidation on top of a CacheService.
package cache
