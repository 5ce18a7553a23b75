// Package invalidation decides which cached reads a mutation makes stale.
//
// The router errs on the side of over-invalidation: any read that might
// include the mutated record or link is targeted, and the caller re-fetches
// whatever is still displayed.
package invalidation

import (
	"sort"

	"github.com/goliatone/go-lide-client/model"
	"github.com/goliatone/go-lide-client/querycache"
)

// Action is the kind of write a mutation performs.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Mutation describes a successful write. Entity mutations set Kind (and ID
// once known); link mutations set Link.
type Mutation struct {
	Action Action
	Kind   model.Kind
	ID     string
	Link   model.Link
}

// EntityMutation describes a write of a single entity.
func EntityMutation(action Action, kind model.Kind, id string) Mutation {
	return Mutation{Action: action, Kind: kind, ID: id}
}

// LinkMutation describes a write of a single link.
func LinkMutation(action Action, link model.Link) Mutation {
	return Mutation{Action: action, Link: link}
}

// Router maps mutations to cache key prefixes.
type Router struct {
	keys querycache.Keys
}

// New creates a router producing prefixes in the key space of keys.
func New(keys querycache.Keys) *Router {
	return &Router{keys: keys}
}

// TargetsFor returns the sorted, de-duplicated prefixes to invalidate after
// m succeeded. Prefixes already covered by a broader one are dropped.
func (r *Router) TargetsFor(m Mutation) []string {
	set := map[string]struct{}{}
	add := func(prefixes ...string) {
		for _, p := range prefixes {
			set[p] = struct{}{}
		}
	}

	switch {
	case m.Link != nil:
		r.linkTargets(m.Link, add)
	case m.Kind.Valid():
		r.entityTargets(m, add)
	default:
		return nil
	}

	return minimize(set)
}

func (r *Router) entityTargets(m Mutation, add func(...string)) {
	k := r.keys
	add(k.ListPrefix(m.Kind))

	if m.ID != "" {
		add(k.Item(m.Kind, m.ID))
	}

	// a freshly created entity is not part of any collection or aggregate yet
	if m.Action == ActionCreate {
		return
	}

	for _, col := range model.Collections() {
		if col.OwnerKind == m.Kind && m.ID != "" {
			add(k.CollectionOwnerPrefix(col, m.ID))
		}
		if col.ItemKind == m.Kind {
			add(k.CollectionSidePrefix(col))
		}
	}

	for aggregate, embedded := range model.AggregateKinds() {
		if aggregate == m.Kind && m.ID != "" {
			add(k.Read(aggregate, m.ID))
		}
		for _, kind := range embedded {
			if kind == m.Kind {
				add(k.ReadPrefix(aggregate))
				break
			}
		}
	}

	if m.ID == "" {
		add(k.ItemPrefix(m.Kind))
	}
}

func (r *Router) linkTargets(link model.Link, add func(...string)) {
	k := r.keys
	owner, target := link.Endpoints()
	aggregates := model.AggregateKinds()

	for _, ep := range []model.Endpoint{owner, target} {
		add(k.ListPrefix(ep.Kind))
		if _, ok := aggregates[ep.Kind]; ok {
			if ep.ID == "" {
				add(k.ReadPrefix(ep.Kind))
			} else {
				add(k.Read(ep.Kind, ep.ID))
			}
		}
	}

	if owner.ID == "" || target.ID == "" {
		add(k.LinkPrefix(link.LinkKind()))
		return
	}

	for _, oc := range model.CollectionsOf(link) {
		add(k.CollectionOwnerPrefix(oc.Collection, oc.OwnerID))
	}

	if link.LinkKind() == model.LinkPersonRelation {
		// the same pair seen the other way round
		add(k.CollectionOwnerPrefix(model.RelationsFrom, target.ID))
		add(k.CollectionOwnerPrefix(model.RelationsTo, owner.ID))
	}
}

func minimize(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for p := range set {
		covered := false
		for q := range set {
			if q != p && querycache.Matches(p, q) {
				covered = true
				break
			}
		}
		if !covered {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}
