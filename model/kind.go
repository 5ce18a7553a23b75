// Package model holds the knowledge base entities, their create/update
// inputs, the closed set of link variants connecting them and the
// relationship collections through which links are read.
package model

// Kind identifies one of the four entity kinds.
type Kind string

const (
	KindPerson Kind = "person"
	KindEntry  Kind = "entry"
	KindTag    Kind = "tag"
	KindMedia  Kind = "media"
)

// Kinds lists every entity kind.
func Kinds() []Kind {
	return []Kind{KindPerson, KindEntry, KindTag, KindMedia}
}

// Valid reports whether k is a known entity kind.
func (k Kind) Valid() bool {
	switch k {
	case KindPerson, KindEntry, KindTag, KindMedia:
		return true
	}
	return false
}

// Resource is the REST collection segment for the kind.
func (k Kind) Resource() string {
	switch k {
	case KindPerson:
		return "persons"
	case KindEntry:
		return "entries"
	case KindTag:
		return "tags"
	case KindMedia:
		return "media"
	}
	return string(k)
}

// ParseKind accepts a kind name or its resource segment.
func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds() {
		if s == string(k) || s == k.Resource() {
			return k, true
		}
	}
	return "", false
}

// Entity is implemented by every entity representation returned by the API.
type Entity interface {
	EntityKind() Kind
	EntityID() string
}
