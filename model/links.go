package model

import (
	"errors"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// DefaultRole is applied to person-entry links created without a role.
const DefaultRole = "autor"

// LinkKind identifies one of the five relationship kinds.
type LinkKind string

const (
	LinkPersonTag      LinkKind = "persontag"
	LinkPersonEntry    LinkKind = "personentry"
	LinkEntryTag       LinkKind = "entrytag"
	LinkMediaEntry     LinkKind = "mediaentry"
	LinkPersonRelation LinkKind = "personrelation"
)

// LinkKinds lists every link kind.
func LinkKinds() []LinkKind {
	return []LinkKind{LinkPersonTag, LinkPersonEntry, LinkEntryTag, LinkMediaEntry, LinkPersonRelation}
}

// Endpoint is one side of a link.
type Endpoint struct {
	Kind Kind
	ID   string
}

// NaturalKey is the minimal attribute combination identifying a link.
// Free attributes (caption, sortOrder, note) never take part in it.
type NaturalKey struct {
	Link      LinkKind
	From      string
	To        string
	Qualifier string
}

// String renders the key for messages and logs.
func (k NaturalKey) String() string {
	s := string(k.Link) + "(" + k.From + "," + k.To
	if k.Qualifier != "" {
		s += "," + k.Qualifier
	}
	return s + ")"
}

// Link is the closed set of relationship variants: PersonTag, PersonEntry,
// EntryTag, MediaEntry and PersonRelation. Endpoints returns the owning side
// first; the owner's collection is where duplicates are looked up.
type Link interface {
	LinkKind() LinkKind
	NaturalKey() NaturalKey
	Endpoints() (owner Endpoint, target Endpoint)
	Validate() error
	normalized() Link
}

// Normalize applies defaults and normalization to any link variant.
func Normalize(l Link) Link {
	if l == nil {
		return nil
	}
	return l.normalized()
}

var whitespace = regexp.MustCompile(`\s+`)

// NormalizeRole trims, lower-cases and collapses whitespace. It does not
// apply the default; see RoleOrDefault.
func NormalizeRole(role string) string {
	return whitespace.ReplaceAllString(strings.ToLower(strings.TrimSpace(role)), " ")
}

// RoleOrDefault normalizes role and falls back to DefaultRole when blank.
func RoleOrDefault(role string) string {
	if r := NormalizeRole(role); r != "" {
		return r
	}
	return DefaultRole
}

// PersonTag links a person to a tag.
type PersonTag struct {
	PersonID string `json:"personId"`
	TagID    string `json:"tagId"`
}

func (l PersonTag) LinkKind() LinkKind { return LinkPersonTag }

func (l PersonTag) NaturalKey() NaturalKey {
	return NaturalKey{Link: LinkPersonTag, From: l.PersonID, To: l.TagID}
}

func (l PersonTag) Endpoints() (Endpoint, Endpoint) {
	return Endpoint{Kind: KindPerson, ID: l.PersonID}, Endpoint{Kind: KindTag, ID: l.TagID}
}

func (l PersonTag) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.PersonID, validation.Required),
		validation.Field(&l.TagID, validation.Required),
	)
}

func (l PersonTag) normalized() Link {
	return PersonTag{PersonID: strings.TrimSpace(l.PersonID), TagID: strings.TrimSpace(l.TagID)}
}

// PersonEntry links a person to an entry in a role. The same pair may be
// linked several times with different roles.
type PersonEntry struct {
	PersonID string `json:"personId"`
	EntryID  string `json:"entryId"`
	Role     string `json:"role"`
}

func (l PersonEntry) LinkKind() LinkKind { return LinkPersonEntry }

// NaturalKey uses the normalized role with the default applied.
func (l PersonEntry) NaturalKey() NaturalKey {
	return NaturalKey{Link: LinkPersonEntry, From: l.PersonID, To: l.EntryID, Qualifier: RoleOrDefault(l.Role)}
}

func (l PersonEntry) Endpoints() (Endpoint, Endpoint) {
	return Endpoint{Kind: KindPerson, ID: l.PersonID}, Endpoint{Kind: KindEntry, ID: l.EntryID}
}

func (l PersonEntry) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.PersonID, validation.Required),
		validation.Field(&l.EntryID, validation.Required),
	)
}

// HasRole reports whether an explicit, non-blank role is set.
func (l PersonEntry) HasRole() bool {
	return NormalizeRole(l.Role) != ""
}

func (l PersonEntry) normalized() Link {
	return PersonEntry{
		PersonID: strings.TrimSpace(l.PersonID),
		EntryID:  strings.TrimSpace(l.EntryID),
		Role:     RoleOrDefault(l.Role),
	}
}

// EntryTag links an entry to a tag.
type EntryTag struct {
	EntryID string `json:"entryId"`
	TagID   string `json:"tagId"`
}

func (l EntryTag) LinkKind() LinkKind { return LinkEntryTag }

func (l EntryTag) NaturalKey() NaturalKey {
	return NaturalKey{Link: LinkEntryTag, From: l.EntryID, To: l.TagID}
}

func (l EntryTag) Endpoints() (Endpoint, Endpoint) {
	return Endpoint{Kind: KindEntry, ID: l.EntryID}, Endpoint{Kind: KindTag, ID: l.TagID}
}

func (l EntryTag) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.EntryID, validation.Required),
		validation.Field(&l.TagID, validation.Required),
	)
}

func (l EntryTag) normalized() Link {
	return EntryTag{EntryID: strings.TrimSpace(l.EntryID), TagID: strings.TrimSpace(l.TagID)}
}

// MediaEntry attaches media to an entry with an optional caption and order.
type MediaEntry struct {
	MediaID   string  `json:"mediaId"`
	EntryID   string  `json:"entryId"`
	Caption   *string `json:"caption,omitempty"`
	SortOrder *int    `json:"sortOrder,omitempty"`
}

func (l MediaEntry) LinkKind() LinkKind { return LinkMediaEntry }

func (l MediaEntry) NaturalKey() NaturalKey {
	return NaturalKey{Link: LinkMediaEntry, From: l.EntryID, To: l.MediaID}
}

func (l MediaEntry) Endpoints() (Endpoint, Endpoint) {
	return Endpoint{Kind: KindEntry, ID: l.EntryID}, Endpoint{Kind: KindMedia, ID: l.MediaID}
}

func (l MediaEntry) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.MediaID, validation.Required),
		validation.Field(&l.EntryID, validation.Required),
		validation.Field(&l.SortOrder, validation.Min(0)),
	)
}

// Attributes returns the free attributes sent as the request body.
func (l MediaEntry) Attributes() MediaEntryAttributes {
	return MediaEntryAttributes{Caption: l.Caption, SortOrder: l.SortOrder}
}

func (l MediaEntry) normalized() Link {
	out := MediaEntry{
		MediaID:   strings.TrimSpace(l.MediaID),
		EntryID:   strings.TrimSpace(l.EntryID),
		SortOrder: l.SortOrder,
	}
	if l.Caption != nil {
		if c := strings.TrimSpace(*l.Caption); c != "" {
			out.Caption = &c
		}
	}
	return out
}

// MediaEntryAttributes is the body of media-entry link writes.
type MediaEntryAttributes struct {
	Caption   *string `json:"caption"`
	SortOrder *int    `json:"sortOrder"`
}

// PersonRelation is a directed relation between two persons with its own id.
type PersonRelation struct {
	ID           string `json:"id,omitempty"`
	FromPersonID string `json:"fromPersonId"`
	ToPersonID   string `json:"toPersonId"`
	Type         string `json:"type"`
	ValidFrom    *Date  `json:"validFrom,omitempty"`
	ValidTo      *Date  `json:"validTo,omitempty"`
	Note         string `json:"note,omitempty"`
}

func (l PersonRelation) LinkKind() LinkKind { return LinkPersonRelation }

// NaturalKey is (from, to, type, validFrom, validTo); the note is free.
func (l PersonRelation) NaturalKey() NaturalKey {
	return NaturalKey{
		Link:      LinkPersonRelation,
		From:      l.FromPersonID,
		To:        l.ToPersonID,
		Qualifier: NormalizeRole(l.Type) + "|" + dateString(l.ValidFrom) + "|" + dateString(l.ValidTo),
	}
}

func (l PersonRelation) Endpoints() (Endpoint, Endpoint) {
	return Endpoint{Kind: KindPerson, ID: l.FromPersonID}, Endpoint{Kind: KindPerson, ID: l.ToPersonID}
}

func (l PersonRelation) Validate() error {
	err := validation.ValidateStruct(&l,
		validation.Field(&l.FromPersonID, validation.Required),
		validation.Field(&l.ToPersonID, validation.Required,
			validation.NotIn(l.FromPersonID).Error("must differ from fromPersonId")),
		validation.Field(&l.Type, validation.Required, validation.By(func(any) error {
			if NormalizeRole(l.Type) == "" {
				return errors.New("cannot be blank")
			}
			return nil
		})),
		validation.Field(&l.ValidTo, validation.By(func(any) error {
			if l.ValidFrom != nil && l.ValidTo != nil && !l.ValidFrom.IsZero() && !l.ValidTo.IsZero() &&
				l.ValidTo.Before(l.ValidFrom.Time) {
				return errors.New("must not be before validFrom")
			}
			return nil
		})),
	)
	return err
}

// Inverse returns the relation as seen from the other person.
func (l PersonRelation) Inverse() PersonRelation {
	out := l
	out.FromPersonID, out.ToPersonID = l.ToPersonID, l.FromPersonID
	return out
}

func (l PersonRelation) normalized() Link {
	out := l
	out.FromPersonID = strings.TrimSpace(l.FromPersonID)
	out.ToPersonID = strings.TrimSpace(l.ToPersonID)
	out.Type = NormalizeRole(l.Type)
	out.Note = strings.TrimSpace(l.Note)
	return out
}
