package querycache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goliatone/go-lide-client/cache"
	"github.com/goliatone/go-lide-client/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	svc, err := cache.NewCacheService(cache.DefaultConfig())
	if err != nil {
		t.Fatalf("NewCacheService() error = %v", err)
	}
	return New(svc)
}

func TestStore_FetchCachesValue(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	key := store.Keys().Item(model.KindPerson, "1")

	var calls int32
	loader := func(context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "Jan", nil
	}

	for i := 0; i < 3; i++ {
		got, err := Fetch(ctx, store, key, loader)
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if got != "Jan" {
			t.Fatalf("Fetch() = %q", got)
		}
	}

	if calls != 1 {
		t.Errorf("expected 1 loader call, got %d", calls)
	}
	if v, ok := store.Get(ctx, key); !ok || v != "Jan" {
		t.Errorf("Get() = %v, %v", v, ok)
	}
}

func TestStore_ConcurrentFetchSharesLoader(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	key := store.Keys().List(model.KindTag, "", 0, 20)

	release := make(chan struct{})
	var calls int32
	loader := func(context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return 7, nil
	}

	const readers = 6
	var wg sync.WaitGroup
	results := make([]int, readers)
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := Fetch(ctx, store, key, loader)
			if err != nil {
				t.Errorf("Fetch() error = %v", err)
			}
			results[i] = v
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if calls != 1 {
		t.Errorf("expected a single loader call, got %d", calls)
	}
	for i, v := range results {
		if v != 7 {
			t.Errorf("reader %d got %d", i, v)
		}
	}
}

func TestStore_FailureIsNotRetained(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	key := store.Keys().Item(model.KindEntry, "e1")

	boom := errors.New("backend down")
	var calls int32
	loader := func(context.Context) (string, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return "", boom
		}
		return "ok", nil
	}

	if _, err := Fetch(ctx, store, key, loader); !errors.Is(err, boom) {
		t.Fatalf("expected loader error, got %v", err)
	}
	if _, ok := store.Get(ctx, key); ok {
		t.Fatal("failed fetch must not be cached")
	}

	got, err := Fetch(ctx, store, key, loader)
	if err != nil || got != "ok" {
		t.Fatalf("retry Fetch() = %q, %v", got, err)
	}
	if calls != 2 {
		t.Errorf("expected 2 loader calls, got %d", calls)
	}
}

func TestStore_InvalidateByPrefix(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	keys := store.Keys()

	seed := map[string]string{
		keys.Item(model.KindPerson, "1"):              "p1",
		keys.Item(model.KindPerson, "12"):             "p12",
		keys.List(model.KindPerson, "", 0, 20):        "list",
		keys.Collection(model.PersonTags, "1", 0, 20): "tags",
	}
	for key, value := range seed {
		value := value
		if _, err := Fetch(ctx, store, key, func(context.Context) (string, error) { return value, nil }); err != nil {
			t.Fatalf("seed %s: %v", key, err)
		}
	}

	got := store.Invalidate(ctx, keys.Item(model.KindPerson, "1"), keys.ListPrefix(model.KindPerson))

	want := []string{keys.Item(model.KindPerson, "1"), keys.List(model.KindPerson, "", 0, 20)}
	if len(got) != len(want) {
		t.Fatalf("Invalidate() = %v, want %v", got, want)
	}

	if _, ok := store.Get(ctx, keys.Item(model.KindPerson, "1")); ok {
		t.Error("person 1 should be invalidated")
	}
	if _, ok := store.Get(ctx, keys.Item(model.KindPerson, "12")); !ok {
		t.Error("person 12 must survive the person 1 invalidation")
	}
	if _, ok := store.Get(ctx, keys.Collection(model.PersonTags, "1", 0, 20)); !ok {
		t.Error("unrelated collection must survive")
	}
}

func TestStore_InvalidateDuringFetch(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	key := store.Keys().Collection(model.PersonEntries, "p1", 0, 20)

	started := make(chan struct{})
	release := make(chan struct{})
	var calls int32
	loader := func(context.Context) (string, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(started)
			<-release
			return "stale", nil
		}
		return "fresh", nil
	}

	staleResult := make(chan string, 1)
	go func() {
		v, _ := Fetch(ctx, store, key, loader)
		staleResult <- v
	}()

	<-started
	store.Invalidate(ctx, store.Keys().CollectionOwnerPrefix(model.PersonEntries, "p1"))

	fresh, err := Fetch(ctx, store, key, loader)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if fresh != "fresh" {
		t.Fatalf("post-invalidation fetch joined the stale load: %q", fresh)
	}

	close(release)
	if v := <-staleResult; v != "stale" {
		t.Errorf("first caller should still get its own answer, got %q", v)
	}

	again, _ := Fetch(ctx, store, key, loader)
	if again != "fresh" {
		t.Errorf("cache serves %q after invalidation", again)
	}
	if calls != 2 {
		t.Errorf("expected 2 loader calls, got %d", calls)
	}
}

func TestStore_SubscribeNotifiesPrefixes(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	var got [][]string
	cancel := store.Subscribe(func(prefixes []string) {
		got = append(got, prefixes)
	})

	store.Invalidate(ctx, "tag::list")
	cancel()
	store.Invalidate(ctx, "tag::item")

	if len(got) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(got))
	}
	if len(got[0]) != 1 || got[0][0] != "tag::list" {
		t.Errorf("unexpected prefixes %v", got[0])
	}

	// cancelling twice is harmless
	cancel()
}

func TestMatches(t *testing.T) {
	tests := []struct {
		key, prefix string
		want        bool
	}{
		{"person::item::1", "person::item::1", true},
		{"person::item::12", "person::item::1", false},
		{"person::item::1", "person", true},
		{"personentry::person::1::all", "person", false},
		{"personentry::person::1::all", "personentry::person::1", true},
		{"tag::list::\"\"::0::20", "tag::list", true},
		{"anything", "", true},
	}

	for _, tt := range tests {
		if got := Matches(tt.key, tt.prefix); got != tt.want {
			t.Errorf("Matches(%q, %q) = %v, want %v", tt.key, tt.prefix, got, tt.want)
		}
	}
}

func TestStore_PruneDropsEvictedKeys(t *testing.T) {
	ctx := context.Background()
	svc, err := cache.NewCacheService(cache.DefaultConfig())
	if err != nil {
		t.Fatalf("NewCacheService() error = %v", err)
	}
	store := New(svc)
	kept := store.Keys().Item(model.KindPerson, "1")
	evicted := store.Keys().List(model.KindPerson, "nov", 0, 20)

	for _, key := range []string{kept, evicted} {
		if _, err := Fetch(ctx, store, key, func(context.Context) (string, error) {
			return "v", nil
		}); err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
	}

	if n := store.Prune(ctx); n != 0 {
		t.Fatalf("expected nothing to prune, got %d", n)
	}

	if err := svc.Delete(ctx, physicalKey(evicted, 0)); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if n := store.Prune(ctx); n != 1 {
		t.Fatalf("expected 1 pruned key, got %d", n)
	}
	if _, ok := store.Get(ctx, kept); !ok {
		t.Error("cached key must survive pruning")
	}

	matched := store.Invalidate(ctx, store.Keys().ListPrefix(model.KindPerson))
	if len(matched) != 0 {
		t.Errorf("pruned key still tracked: %v", matched)
	}

	var calls int32
	got, err := Fetch(ctx, store, evicted, func(context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "fresh", nil
	})
	if err != nil || got != "fresh" || calls != 1 {
		t.Errorf("refetch after prune = %q, %v after %d calls", got, err, calls)
	}
}

func TestStore_PruneSkipsWhileFetching(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	key := store.Keys().Item(model.KindTag, "t1")

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = Fetch(ctx, store, key, func(context.Context) (string, error) {
			close(entered)
			<-release
			return "tag", nil
		})
	}()

	<-entered
	if n := store.Prune(ctx); n != 0 {
		t.Errorf("expected prune to skip during a fetch, got %d", n)
	}

	close(release)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("fetch did not finish")
	}

	if _, ok := store.Get(ctx, key); !ok {
		t.Error("expected fetched value to be cached")
	}
}
