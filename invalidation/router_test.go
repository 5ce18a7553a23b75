package invalidation

import (
	"reflect"
	"testing"

	"github.com/goliatone/go-lide-client/model"
	"github.com/goliatone/go-lide-client/querycache"
)

func TestRouter_TargetsFor(t *testing.T) {
	router := New(querycache.NewKeys(nil))

	tests := []struct {
		name string
		m    Mutation
		want []string
	}{
		{
			name: "person entry link",
			m:    LinkMutation(ActionCreate, model.PersonEntry{PersonID: "p1", EntryID: "e1", Role: "autor"}),
			want: []string{
				"entry::list",
				"entry::read::e1",
				"person::list",
				"person::read::p1",
				"personentry::entry::e1",
				"personentry::person::p1",
			},
		},
		{
			name: "tag update",
			m:    EntityMutation(ActionUpdate, model.KindTag, "t1"),
			want: []string{
				"entry::read",
				"entrytag::entry",
				"entrytag::tag::t1",
				"person::read",
				"persontag::person",
				"persontag::tag::t1",
				"tag::item::t1",
				"tag::list",
			},
		},
		{
			name: "person update covers narrower prefixes",
			m:    EntityMutation(ActionUpdate, model.KindPerson, "p1"),
			want: []string{
				"entry::read",
				"person::item::p1",
				"person::list",
				"person::read",
				"personentry::entry",
				"personentry::person::p1",
				"personrelation::from",
				"personrelation::to",
				"persontag::person::p1",
				"persontag::tag",
			},
		},
		{
			name: "person create",
			m:    EntityMutation(ActionCreate, model.KindPerson, "p9"),
			want: []string{"person::item::p9", "person::list"},
		},
		{
			name: "relation with endpoints",
			m:    LinkMutation(ActionCreate, model.PersonRelation{FromPersonID: "a", ToPersonID: "b", Type: "friend"}),
			want: []string{
				"person::list",
				"person::read::a",
				"person::read::b",
				"personrelation::from::a",
				"personrelation::from::b",
				"personrelation::to::a",
				"personrelation::to::b",
			},
		},
		{
			name: "relation known only by id",
			m:    LinkMutation(ActionDelete, model.PersonRelation{ID: "r1"}),
			want: []string{"person::list", "person::read", "personrelation"},
		},
		{
			name: "media entry attributes",
			m:    LinkMutation(ActionUpdate, model.MediaEntry{MediaID: "m1", EntryID: "e1"}),
			want: []string{
				"entry::list",
				"entry::read::e1",
				"media::list",
				"mediaentry::entry::e1",
				"mediaentry::media::m1",
			},
		},
		{
			name: "unknown kind",
			m:    EntityMutation(ActionDelete, model.Kind("bogus"), "x"),
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := router.TargetsFor(tt.m)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("TargetsFor() =\n%v\nwant\n%v", got, tt.want)
			}
		})
	}
}

func TestRouter_EntityDeleteReachesEveryCachedView(t *testing.T) {
	keys := querycache.NewKeys(nil)
	router := New(keys)

	targets := router.TargetsFor(EntityMutation(ActionDelete, model.KindEntry, "e1"))

	mustBeStale := []string{
		keys.Item(model.KindEntry, "e1"),
		keys.List(model.KindEntry, "", 0, 20),
		keys.List(model.KindEntry, "trip", 3, 20),
		keys.Read(model.KindEntry, "e1"),
		keys.Read(model.KindPerson, "p7"),
		keys.Collection(model.PersonEntries, "p7", 0, 20),
		keys.CollectionAll(model.PersonEntries, "p7"),
		keys.Collection(model.TagEntries, "t3", 1, 20),
		keys.Collection(model.MediaEntries, "m2", 0, 20),
		keys.Collection(model.EntryTags, "e1", 0, 20),
		keys.Collection(model.EntryMedia, "e1", 0, 20),
	}
	for _, key := range mustBeStale {
		if !querycache.MatchesAny(key, targets) {
			t.Errorf("%s is not invalidated by %v", key, targets)
		}
	}

	untouched := []string{
		keys.Item(model.KindEntry, "e10"),
		keys.Collection(model.EntryTags, "e10", 0, 20),
		keys.List(model.KindTag, "", 0, 20),
	}
	for _, key := range untouched {
		if querycache.MatchesAny(key, targets) {
			t.Errorf("%s should not be invalidated", key)
		}
	}
}
