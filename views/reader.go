// Package views exposes the typed, cached reads that screens are built from:
// single entities, searched entity lists, relationship collections and the
// aggregated person and entry details. Every read goes through the shared
// query store, so it is de-duplicated while in flight and invalidated by
// mutations.
package views

import (
	"context"
	"fmt"

	"github.com/goliatone/go-lide-client/model"
	"github.com/goliatone/go-lide-client/querycache"
	"github.com/goliatone/go-lide-client/transport"
)

// Reader performs cached reads.
type Reader struct {
	api   *transport.Client
	store *querycache.Store
	keys  querycache.Keys
}

// New creates a reader loading through api and caching in store.
func New(api *transport.Client, store *querycache.Store) *Reader {
	return &Reader{api: api, store: store, keys: store.Keys()}
}

// Store returns the query store the reader caches in.
func (r *Reader) Store() *querycache.Store {
	return r.store
}

func item[T any](ctx context.Context, r *Reader, kind model.Kind, id string) (T, error) {
	return querycache.Fetch(ctx, r.store, r.keys.Item(kind, id), func(ctx context.Context) (T, error) {
		return transport.Get[T](ctx, r.api, kind, id)
	})
}

func list[T any](ctx context.Context, r *Reader, kind model.Kind, req transport.PageRequest) (transport.Page[T], error) {
	req = req.Normalized()
	key := r.keys.List(kind, req.Q, req.Page, req.Size)
	return querycache.Fetch(ctx, r.store, key, func(ctx context.Context) (transport.Page[T], error) {
		return transport.List[T](ctx, r.api, kind, req)
	})
}

func collection[T any](ctx context.Context, r *Reader, col model.Collection, ownerID string, req transport.PageRequest) (transport.Page[T], error) {
	req = req.Normalized()
	key := r.keys.Collection(col, ownerID, req.Page, req.Size)
	return querycache.Fetch(ctx, r.store, key, func(ctx context.Context) (transport.Page[T], error) {
		return transport.ListCollection[T](ctx, r.api, col, ownerID, req)
	})
}

func (r *Reader) Person(ctx context.Context, id string) (model.Person, error) {
	return item[model.Person](ctx, r, model.KindPerson, id)
}

func (r *Reader) Entry(ctx context.Context, id string) (model.Entry, error) {
	return item[model.Entry](ctx, r, model.KindEntry, id)
}

func (r *Reader) Tag(ctx context.Context, id string) (model.Tag, error) {
	return item[model.Tag](ctx, r, model.KindTag, id)
}

func (r *Reader) Media(ctx context.Context, id string) (model.Media, error) {
	return item[model.Media](ctx, r, model.KindMedia, id)
}

// Persons returns one page of persons matching req.Q.
func (r *Reader) Persons(ctx context.Context, req transport.PageRequest) (transport.Page[model.Person], error) {
	return list[model.Person](ctx, r, model.KindPerson, req)
}

func (r *Reader) Entries(ctx context.Context, req transport.PageRequest) (transport.Page[model.Entry], error) {
	return list[model.Entry](ctx, r, model.KindEntry, req)
}

func (r *Reader) Tags(ctx context.Context, req transport.PageRequest) (transport.Page[model.Tag], error) {
	return list[model.Tag](ctx, r, model.KindTag, req)
}

func (r *Reader) MediaList(ctx context.Context, req transport.PageRequest) (transport.Page[model.Media], error) {
	return list[model.Media](ctx, r, model.KindMedia, req)
}

// PersonTags returns the tags of a person.
func (r *Reader) PersonTags(ctx context.Context, personID string, req transport.PageRequest) (transport.Page[model.Tag], error) {
	return collection[model.Tag](ctx, r, model.PersonTags, personID, req)
}

// TagPersons returns the persons carrying a tag.
func (r *Reader) TagPersons(ctx context.Context, tagID string, req transport.PageRequest) (transport.Page[model.Person], error) {
	return collection[model.Person](ctx, r, model.TagPersons, tagID, req)
}

// PersonEntries returns the entries of a person, once per role.
func (r *Reader) PersonEntries(ctx context.Context, personID string, req transport.PageRequest) (transport.Page[model.LinkedEntry], error) {
	return collection[model.LinkedEntry](ctx, r, model.PersonEntries, personID, req)
}

// EntryPersons returns the persons of an entry, once per role.
func (r *Reader) EntryPersons(ctx context.Context, entryID string, req transport.PageRequest) (transport.Page[model.LinkedPerson], error) {
	return collection[model.LinkedPerson](ctx, r, model.EntryPersons, entryID, req)
}

func (r *Reader) EntryTags(ctx context.Context, entryID string, req transport.PageRequest) (transport.Page[model.Tag], error) {
	return collection[model.Tag](ctx, r, model.EntryTags, entryID, req)
}

func (r *Reader) TagEntries(ctx context.Context, tagID string, req transport.PageRequest) (transport.Page[model.Entry], error) {
	return collection[model.Entry](ctx, r, model.TagEntries, tagID, req)
}

// EntryMedia returns the media of an entry with caption and sort order.
func (r *Reader) EntryMedia(ctx context.Context, entryID string, req transport.PageRequest) (transport.Page[model.LinkedMedia], error) {
	return collection[model.LinkedMedia](ctx, r, model.EntryMedia, entryID, req)
}

func (r *Reader) MediaEntries(ctx context.Context, mediaID string, req transport.PageRequest) (transport.Page[model.MediaLinkedEntry], error) {
	return collection[model.MediaLinkedEntry](ctx, r, model.MediaEntries, mediaID, req)
}

// RelationsFrom returns the outgoing relations of a person.
func (r *Reader) RelationsFrom(ctx context.Context, personID string, req transport.PageRequest) (transport.Page[model.PersonRelation], error) {
	return collection[model.PersonRelation](ctx, r, model.RelationsFrom, personID, req)
}

// RelationsTo returns the incoming relations of a person.
func (r *Reader) RelationsTo(ctx context.Context, personID string, req transport.PageRequest) (transport.Page[model.PersonRelation], error) {
	return collection[model.PersonRelation](ctx, r, model.RelationsTo, personID, req)
}

// PersonRead returns the aggregated person detail.
func (r *Reader) PersonRead(ctx context.Context, id string) (model.PersonRead, error) {
	return querycache.Fetch(ctx, r.store, r.keys.Read(model.KindPerson, id), func(ctx context.Context) (model.PersonRead, error) {
		return r.api.GetPersonRead(ctx, id)
	})
}

// EntryRead returns the aggregated entry detail.
func (r *Reader) EntryRead(ctx context.Context, id string) (model.EntryRead, error) {
	return querycache.Fetch(ctx, r.store, r.keys.Read(model.KindEntry, id), func(ctx context.Context) (model.EntryRead, error) {
		return r.api.GetEntryRead(ctx, id)
	})
}

// Links returns every link of one owner's collection, unpaged, as link
// values. It is the source of known natural keys for duplicate checks.
func (r *Reader) Links(ctx context.Context, col model.Collection, ownerID string) ([]model.Link, error) {
	return querycache.Fetch(ctx, r.store, r.keys.CollectionAll(col, ownerID), func(ctx context.Context) ([]model.Link, error) {
		return r.loadLinks(ctx, col, ownerID)
	})
}

func (r *Reader) loadLinks(ctx context.Context, col model.Collection, ownerID string) ([]model.Link, error) {
	switch col {
	case model.PersonTags:
		return linksOf(ctx, r, col, ownerID, func(t model.Tag) model.Link {
			return model.PersonTag{PersonID: ownerID, TagID: t.ID}
		})
	case model.TagPersons:
		return linksOf(ctx, r, col, ownerID, func(p model.Person) model.Link {
			return model.PersonTag{PersonID: p.ID, TagID: ownerID}
		})
	case model.PersonEntries:
		return linksOf(ctx, r, col, ownerID, func(e model.LinkedEntry) model.Link {
			return model.PersonEntry{PersonID: ownerID, EntryID: e.ID, Role: e.Role}
		})
	case model.EntryPersons:
		return linksOf(ctx, r, col, ownerID, func(p model.LinkedPerson) model.Link {
			return p.Link()
		})
	case model.EntryTags:
		return linksOf(ctx, r, col, ownerID, func(t model.Tag) model.Link {
			return model.EntryTag{EntryID: ownerID, TagID: t.ID}
		})
	case model.TagEntries:
		return linksOf(ctx, r, col, ownerID, func(e model.Entry) model.Link {
			return model.EntryTag{EntryID: e.ID, TagID: ownerID}
		})
	case model.EntryMedia:
		return linksOf(ctx, r, col, ownerID, func(m model.LinkedMedia) model.Link {
			return m.Link()
		})
	case model.MediaEntries:
		return linksOf(ctx, r, col, ownerID, func(e model.MediaLinkedEntry) model.Link {
			return e.Link()
		})
	case model.RelationsFrom, model.RelationsTo:
		return linksOf(ctx, r, col, ownerID, func(rel model.PersonRelation) model.Link {
			return rel
		})
	}
	return nil, fmt.Errorf("unknown collection %q", col.Name)
}

func linksOf[T any](ctx context.Context, r *Reader, col model.Collection, ownerID string, convert func(T) model.Link) ([]model.Link, error) {
	items, err := transport.ListCollectionAll[T](ctx, r.api, col, ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]model.Link, 0, len(items))
	for _, it := range items {
		out = append(out, model.Normalize(convert(it)))
	}
	return out, nil
}
