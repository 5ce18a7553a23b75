package transport

import (
	"fmt"
	"net/url"

	"github.com/goliatone/go-lide-client/model"
)

const apiPrefix = "/api"

func esc(id string) string {
	return url.PathEscape(id)
}

func entityPath(kind model.Kind) string {
	return apiPrefix + "/" + kind.Resource()
}

func entityItemPath(kind model.Kind, id string) string {
	return entityPath(kind) + "/" + esc(id)
}

func readPath(kind model.Kind, id string) (string, error) {
	switch kind {
	case model.KindPerson:
		return apiPrefix + "/personread/" + esc(id), nil
	case model.KindEntry:
		return apiPrefix + "/entryread/" + esc(id), nil
	}
	return "", fmt.Errorf("no aggregated read for kind %q", kind)
}

// collectionRoutes maps each relationship collection to its owner-scoped
// list route.
var collectionRoutes = map[model.Collection]string{
	model.PersonTags:    "/personstags/person/%s/tags",
	model.TagPersons:    "/personstags/tag/%s/persons",
	model.PersonEntries: "/personentry/person/%s/entries",
	model.EntryPersons:  "/personentry/entry/%s/persons",
	model.EntryTags:     "/entriestags/entry/%s/tags",
	model.TagEntries:    "/entriestags/tag/%s/entries",
	model.EntryMedia:    "/mediaentry/entry/%s/media",
	model.MediaEntries:  "/mediaentry/media/%s/entries",
	model.RelationsFrom: "/personrelation/from/%s",
	model.RelationsTo:   "/personrelation/to/%s",
}

func collectionPath(col model.Collection, ownerID string) (string, error) {
	route, ok := collectionRoutes[col]
	if !ok {
		return "", fmt.Errorf("unknown collection %q", col.Name)
	}
	return apiPrefix + fmt.Sprintf(route, esc(ownerID)), nil
}

func personTagPath(l model.PersonTag) string {
	return fmt.Sprintf("%s/personstags/person/%s/tag/%s", apiPrefix, esc(l.PersonID), esc(l.TagID))
}

func personEntryPath(personID, entryID string) string {
	return fmt.Sprintf("%s/personentry/person/%s/entries/%s", apiPrefix, esc(personID), esc(entryID))
}

func entryTagPath(l model.EntryTag) string {
	return fmt.Sprintf("%s/entriestags/entry/%s/tag/%s", apiPrefix, esc(l.EntryID), esc(l.TagID))
}

func mediaEntryPath(l model.MediaEntry) string {
	return fmt.Sprintf("%s/mediaentry/entry/%s/media/%s", apiPrefix, esc(l.EntryID), esc(l.MediaID))
}

func relationPath() string {
	return apiPrefix + "/personrelation"
}

func relationItemPath(id string) string {
	return relationPath() + "/" + esc(id)
}
