package querycache

import (
	"github.com/goliatone/go-lide-client/cache"
	"github.com/goliatone/go-lide-client/model"
)

// Key segments naming the read shape inside a family.
const (
	segItem = "item"
	segList = "list"
	segRead = "read"
	segPage = "page"
	segAll  = "all"
)

// Keys builds the logical cache keys for every cached read. Entity reads are
// keyed under the entity kind, relationship collections under the link kind
// and the owning side, so a prefix always selects a whole subtree:
//
//	person::item::<id>
//	person::list::<q>::<page>::<size>
//	person::read::<id>
//	personentry::person::<ownerId>::page::<page>::<size>
//	personentry::person::<ownerId>::all
type Keys struct {
	serializer cache.KeySerializer
}

// NewKeys creates a key builder. A nil serializer selects the default one.
func NewKeys(serializer cache.KeySerializer) Keys {
	if serializer == nil {
		serializer = cache.NewDefaultKeySerializer()
	}
	return Keys{serializer: serializer}
}

func (k Keys) ser() cache.KeySerializer {
	if k.serializer == nil {
		return cache.NewDefaultKeySerializer()
	}
	return k.serializer
}

// Kind is the prefix of every read of an entity kind.
func (k Keys) Kind(kind model.Kind) string {
	return k.ser().SerializeKey(string(kind))
}

func (k Keys) Item(kind model.Kind, id string) string {
	return k.ser().SerializeKey(string(kind), segItem, id)
}

func (k Keys) ItemPrefix(kind model.Kind) string {
	return k.ser().SerializeKey(string(kind), segItem)
}

// List is the key of one page of a searched entity list.
func (k Keys) List(kind model.Kind, q string, page, size int) string {
	return k.ser().SerializeKey(string(kind), segList, q, page, size)
}

func (k Keys) ListPrefix(kind model.Kind) string {
	return k.ser().SerializeKey(string(kind), segList)
}

// Read is the key of an aggregated detail read.
func (k Keys) Read(kind model.Kind, id string) string {
	return k.ser().SerializeKey(string(kind), segRead, id)
}

func (k Keys) ReadPrefix(kind model.Kind) string {
	return k.ser().SerializeKey(string(kind), segRead)
}

// Collection is the key of one page of a relationship collection.
func (k Keys) Collection(col model.Collection, ownerID string, page, size int) string {
	return k.ser().SerializeKey(string(col.Link), col.Side, ownerID, segPage, page, size)
}

// CollectionAll is the key of the unpaged read of a relationship collection,
// used for duplicate detection.
func (k Keys) CollectionAll(col model.Collection, ownerID string) string {
	return k.ser().SerializeKey(string(col.Link), col.Side, ownerID, segAll)
}

// CollectionOwnerPrefix selects every page of one owner's collection.
func (k Keys) CollectionOwnerPrefix(col model.Collection, ownerID string) string {
	return k.ser().SerializeKey(string(col.Link), col.Side, ownerID)
}

// CollectionSidePrefix selects a collection for every owner.
func (k Keys) CollectionSidePrefix(col model.Collection) string {
	return k.ser().SerializeKey(string(col.Link), col.Side)
}

// LinkPrefix selects both collections of a link kind.
func (k Keys) LinkPrefix(link model.LinkKind) string {
	return k.ser().SerializeKey(string(link))
}
