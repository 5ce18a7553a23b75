package model

import "time"

// Collection describes a relationship collection: the linked items of one
// link kind as seen from one owning side.
type Collection struct {
	Name      string
	Link      LinkKind
	Side      string
	OwnerKind Kind
	ItemKind  Kind
}

var (
	PersonTags    = Collection{Name: "PersonTags", Link: LinkPersonTag, Side: "person", OwnerKind: KindPerson, ItemKind: KindTag}
	TagPersons    = Collection{Name: "TagPersons", Link: LinkPersonTag, Side: "tag", OwnerKind: KindTag, ItemKind: KindPerson}
	PersonEntries = Collection{Name: "PersonEntries", Link: LinkPersonEntry, Side: "person", OwnerKind: KindPerson, ItemKind: KindEntry}
	EntryPersons  = Collection{Name: "EntryPersons", Link: LinkPersonEntry, Side: "entry", OwnerKind: KindEntry, ItemKind: KindPerson}
	EntryTags     = Collection{Name: "EntryTags", Link: LinkEntryTag, Side: "entry", OwnerKind: KindEntry, ItemKind: KindTag}
	TagEntries    = Collection{Name: "TagEntries", Link: LinkEntryTag, Side: "tag", OwnerKind: KindTag, ItemKind: KindEntry}
	EntryMedia    = Collection{Name: "EntryMedia", Link: LinkMediaEntry, Side: "entry", OwnerKind: KindEntry, ItemKind: KindMedia}
	MediaEntries  = Collection{Name: "MediaEntries", Link: LinkMediaEntry, Side: "media", OwnerKind: KindMedia, ItemKind: KindEntry}
	RelationsFrom = Collection{Name: "RelationsFrom", Link: LinkPersonRelation, Side: "from", OwnerKind: KindPerson, ItemKind: KindPerson}
	RelationsTo   = Collection{Name: "RelationsTo", Link: LinkPersonRelation, Side: "to", OwnerKind: KindPerson, ItemKind: KindPerson}
)

// Collections lists every relationship collection.
func Collections() []Collection {
	return []Collection{
		PersonTags, TagPersons,
		PersonEntries, EntryPersons,
		EntryTags, TagEntries,
		EntryMedia, MediaEntries,
		RelationsFrom, RelationsTo,
	}
}

// OwnedCollection is a collection bound to one owner.
type OwnedCollection struct {
	Collection Collection
	OwnerID    string
}

// CollectionsOf returns the collections on both sides of a link, owner side
// first. A relation appears in the outgoing view of its source and the
// incoming view of its target.
func CollectionsOf(l Link) []OwnedCollection {
	owner, target := l.Endpoints()
	switch l.LinkKind() {
	case LinkPersonTag:
		return []OwnedCollection{{PersonTags, owner.ID}, {TagPersons, target.ID}}
	case LinkPersonEntry:
		return []OwnedCollection{{PersonEntries, owner.ID}, {EntryPersons, target.ID}}
	case LinkEntryTag:
		return []OwnedCollection{{EntryTags, owner.ID}, {TagEntries, target.ID}}
	case LinkMediaEntry:
		return []OwnedCollection{{EntryMedia, owner.ID}, {MediaEntries, target.ID}}
	case LinkPersonRelation:
		return []OwnedCollection{{RelationsFrom, owner.ID}, {RelationsTo, target.ID}}
	}
	return nil
}

// LinkedEntry is an entry seen from a person, with the link role inline.
type LinkedEntry struct {
	Entry
	Role string `json:"role,omitempty"`
}

// LinkedPerson is a person seen from an entry, with the link role inline.
type LinkedPerson struct {
	PersonID  string `json:"personId"`
	EntryID   string `json:"entryId"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Nickname  string `json:"nickname,omitempty"`
	BirthDate *Date  `json:"birthDate,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty"`
	Note      string `json:"note,omitempty"`
	Role      string `json:"role"`
}

// Person returns the person part of the view.
func (p LinkedPerson) Person() Person {
	return Person{
		ID: p.PersonID, FirstName: p.FirstName, LastName: p.LastName, Nickname: p.Nickname,
		BirthDate: p.BirthDate, Phone: p.Phone, Email: p.Email, Note: p.Note,
	}
}

// Link returns the person-entry link the view represents.
func (p LinkedPerson) Link() PersonEntry {
	return PersonEntry{PersonID: p.PersonID, EntryID: p.EntryID, Role: p.Role}
}

// LinkedMedia is media seen from an entry, with caption and order inline.
type LinkedMedia struct {
	MediaID   string     `json:"mediaId"`
	EntryID   string     `json:"entryId"`
	MediaType string     `json:"mediaType"`
	MimeType  string     `json:"mimeType,omitempty"`
	URI       string     `json:"uri"`
	Title     string     `json:"title,omitempty"`
	Note      string     `json:"note,omitempty"`
	TakenAt   *time.Time `json:"takenAt,omitempty"`
	Caption   *string    `json:"caption,omitempty"`
	SortOrder *int       `json:"sortOrder,omitempty"`
}

// Link returns the media-entry link the view represents.
func (m LinkedMedia) Link() MediaEntry {
	return MediaEntry{MediaID: m.MediaID, EntryID: m.EntryID, Caption: m.Caption, SortOrder: m.SortOrder}
}

// MediaLinkedEntry is an entry seen from media, with caption and order inline.
type MediaLinkedEntry struct {
	EntryID    string     `json:"entryId"`
	MediaID    string     `json:"mediaId"`
	Type       string     `json:"type"`
	Title      string     `json:"title,omitempty"`
	Content    string     `json:"content,omitempty"`
	OccurredAt *time.Time `json:"occurredAt,omitempty"`
	Caption    *string    `json:"caption,omitempty"`
	SortOrder  *int       `json:"sortOrder,omitempty"`
}

// Link returns the media-entry link the view represents.
func (e MediaLinkedEntry) Link() MediaEntry {
	return MediaEntry{MediaID: e.MediaID, EntryID: e.EntryID, Caption: e.Caption, SortOrder: e.SortOrder}
}

// RelationView is a relation enriched with the other party's display name.
type RelationView struct {
	PersonRelation
	OtherPersonDisplayName string `json:"otherPersonDisplayName,omitempty"`
}

// PersonRead is the aggregated person detail: the person with its tags,
// entries (with role) and relations in both directions.
type PersonRead struct {
	Person
	Tags         []Tag          `json:"tags"`
	Entries      []LinkedEntry  `json:"entries"`
	RelationsOut []RelationView `json:"relationsOut"`
	RelationsIn  []RelationView `json:"relationsIn"`
}

// EntryRead is the aggregated entry detail: the entry with its tags,
// persons (with role) and media (with caption and order).
type EntryRead struct {
	Entry
	Tags    []Tag          `json:"tags"`
	Persons []LinkedPerson `json:"persons"`
	Media   []LinkedMedia  `json:"media"`
}

// AggregateKinds lists the kinds that have an aggregated read and, for each,
// the entity kinds embedded in it.
func AggregateKinds() map[Kind][]Kind {
	return map[Kind][]Kind{
		KindPerson: {KindPerson, KindTag, KindEntry},
		KindEntry:  {KindEntry, KindTag, KindPerson, KindMedia},
	}
}
