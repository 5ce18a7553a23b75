package mutation

import (
	"context"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/goliatone/go-lide-client/failure"
	"github.com/goliatone/go-lide-client/invalidation"
	"github.com/goliatone/go-lide-client/model"
	"github.com/goliatone/go-lide-client/transport"
)

type createOp[T model.Entity] struct {
	kind     model.Kind
	input    any
	validate func() error
	ticket   string
}

func newCreate[T model.Entity](kind model.Kind, input any, validate func() error) Operation {
	return createOp[T]{kind: kind, input: input, validate: validate, ticket: uuid.NewString()}
}

// CreatePerson creates a person.
func CreatePerson(in model.PersonInput) Operation {
	return newCreate[model.Person](model.KindPerson, in, in.Validate)
}

// CreateEntry creates an entry.
func CreateEntry(in model.EntryInput) Operation {
	return newCreate[model.Entry](model.KindEntry, in, in.Validate)
}

// CreateTag creates a tag; the name is trimmed before it is sent.
func CreateTag(in model.TagInput) Operation {
	in = in.Trimmed()
	return newCreate[model.Tag](model.KindTag, in, in.Validate)
}

// CreateMedia creates a media record.
func CreateMedia(in model.MediaInput) Operation {
	return newCreate[model.Media](model.KindMedia, in, in.Validate)
}

func (o createOp[T]) Name() string { return "create " + string(o.kind) }
func (o createOp[T]) Record() string { return string(o.kind) + ":new:" + o.ticket }
func (o createOp[T]) Validate() error {
	return o.validate()
}

func (o createOp[T]) Apply(ctx context.Context, api *transport.Client) (any, error) {
	return transport.Create[T](ctx, api, o.kind, o.input)
}

func (o createOp[T]) Mutation(result any) invalidation.Mutation {
	id := ""
	if created, ok := result.(T); ok {
		id = created.EntityID()
	}
	return invalidation.EntityMutation(invalidation.ActionCreate, o.kind, id)
}

type updateOp[T model.Entity] struct {
	kind     model.Kind
	id       string
	input    any
	validate func() error
}

// UpdatePerson replaces the person's editable fields.
func UpdatePerson(id string, in model.PersonInput) Operation {
	return updateOp[model.Person]{kind: model.KindPerson, id: id, input: in, validate: in.ValidateUpdate}
}

// UpdateEntry replaces the entry's editable fields.
func UpdateEntry(id string, in model.EntryInput) Operation {
	return updateOp[model.Entry]{kind: model.KindEntry, id: id, input: in, validate: in.Validate}
}

// UpdateTag renames a tag.
func UpdateTag(id string, in model.TagInput) Operation {
	in = in.Trimmed()
	return updateOp[model.Tag]{kind: model.KindTag, id: id, input: in, validate: in.Validate}
}

// UpdateMedia replaces the media record's editable fields.
func UpdateMedia(id string, in model.MediaInput) Operation {
	return updateOp[model.Media]{kind: model.KindMedia, id: id, input: in, validate: in.Validate}
}

func (o updateOp[T]) Name() string { return "update " + string(o.kind) }
func (o updateOp[T]) Record() string { return entityRecord(o.kind, o.id) }

func (o updateOp[T]) Validate() error {
	if err := requireID(o.id); err != nil {
		return err
	}
	return o.validate()
}

func (o updateOp[T]) Apply(ctx context.Context, api *transport.Client) (any, error) {
	return transport.Update[T](ctx, api, o.kind, o.id, o.input)
}

func (o updateOp[T]) Mutation(any) invalidation.Mutation {
	return invalidation.EntityMutation(invalidation.ActionUpdate, o.kind, o.id)
}

type deleteOp struct {
	kind model.Kind
	id   string
}

// Delete removes an entity. The server drops its links; the cache follows
// through invalidation of every view that could list it.
func Delete(kind model.Kind, id string) Operation {
	return deleteOp{kind: kind, id: id}
}

func (o deleteOp) Name() string { return "delete " + string(o.kind) }
func (o deleteOp) Record() string { return entityRecord(o.kind, o.id) }

func (o deleteOp) Validate() error {
	if !o.kind.Valid() {
		return failure.InvalidField("kind", fmt.Sprintf("unknown entity kind %q", o.kind))
	}
	return requireID(o.id)
}

func (o deleteOp) Apply(ctx context.Context, api *transport.Client) (any, error) {
	return nil, api.Delete(ctx, o.kind, o.id)
}

func (o deleteOp) Mutation(any) invalidation.Mutation {
	return invalidation.EntityMutation(invalidation.ActionDelete, o.kind, o.id)
}

type addLinkOp struct {
	link model.Link
}

// AddLink creates a link. Defaults such as the person-entry role are applied
// before validation.
func AddLink(link model.Link) Operation {
	return addLinkOp{link: model.Normalize(link)}
}

func (o addLinkOp) Name() string { return "add " + linkName(o.link) }
func (o addLinkOp) Record() string { return linkRecord(o.link) }
func (o addLinkOp) Validate() error {
	return validateLink(o.link)
}

func (o addLinkOp) Apply(ctx context.Context, api *transport.Client) (any, error) {
	return api.AddLink(ctx, o.link)
}

func (o addLinkOp) Mutation(result any) invalidation.Mutation {
	if created, ok := result.(model.Link); ok {
		return invalidation.LinkMutation(invalidation.ActionCreate, created)
	}
	return invalidation.LinkMutation(invalidation.ActionCreate, o.link)
}

type updateLinkOp struct {
	link model.Link
}

// UpdateLink rewrites the free attributes of a media link or a relation.
func UpdateLink(link model.Link) Operation {
	return updateLinkOp{link: model.Normalize(link)}
}

func (o updateLinkOp) Name() string { return "update " + linkName(o.link) }
func (o updateLinkOp) Record() string { return linkRecord(o.link) }

func (o updateLinkOp) Validate() error {
	if err := validateLink(o.link); err != nil {
		return err
	}
	switch l := o.link.(type) {
	case model.MediaEntry:
		return nil
	case model.PersonRelation:
		if l.ID == "" {
			return failure.Ambiguity("relation id is required to update a relation")
		}
		return nil
	}
	return failure.Operation(failure.CodeNotEditable,
		fmt.Sprintf("%s links have no editable attributes", o.link.LinkKind()))
}

func (o updateLinkOp) Apply(ctx context.Context, api *transport.Client) (any, error) {
	return api.UpdateLink(ctx, o.link)
}

func (o updateLinkOp) Mutation(any) invalidation.Mutation {
	return invalidation.LinkMutation(invalidation.ActionUpdate, o.link)
}

type removeLinkOp struct {
	link model.Link
}

// RemoveLink deletes exactly one link. The link must carry its full natural
// key: a person-entry link needs its role and a relation its id.
func RemoveLink(link model.Link) Operation {
	return removeLinkOp{link: link}
}

func (o removeLinkOp) Name() string { return "remove " + linkName(o.link) }
func (o removeLinkOp) Record() string { return linkRecord(o.link) }

func (o removeLinkOp) Validate() error {
	switch l := o.link.(type) {
	case nil:
		return failure.InvalidField("link", "is required")
	case model.PersonEntry:
		if !l.HasRole() {
			return failure.Ambiguity("role is required to delete a specific person-entry link")
		}
	case model.PersonRelation:
		if strings.TrimSpace(l.ID) == "" {
			return failure.Ambiguity("relation id is required to delete a relation")
		}
		return nil
	}
	owner, target := o.link.Endpoints()
	return validation.Errors{
		"owner":  validation.Validate(owner.ID, validation.Required),
		"target": validation.Validate(target.ID, validation.Required),
	}.Filter()
}

func (o removeLinkOp) Apply(ctx context.Context, api *transport.Client) (any, error) {
	return nil, api.RemoveLink(ctx, o.link)
}

func (o removeLinkOp) Mutation(any) invalidation.Mutation {
	return invalidation.LinkMutation(invalidation.ActionDelete, o.link)
}

type changeRoleOp struct {
	personID string
	entryID  string
	oldRole  string
	newRole  string
}

// ChangeEntryRole moves a person-entry link from one role to another as a
// single server-side change. A blank new role means the default role.
func ChangeEntryRole(personID, entryID, oldRole, newRole string) Operation {
	return changeRoleOp{
		personID: strings.TrimSpace(personID),
		entryID:  strings.TrimSpace(entryID),
		oldRole:  model.NormalizeRole(oldRole),
		newRole:  model.RoleOrDefault(newRole),
	}
}

func (o changeRoleOp) Name() string { return "change personentry role" }

// Record is the person/entry pair: both roles are touched at once.
func (o changeRoleOp) Record() string {
	return personEntryRecord(o.personID, o.entryID)
}

func (o changeRoleOp) Validate() error {
	if o.oldRole == "" {
		return failure.Ambiguity("current role is required to change a person-entry role")
	}
	differs := validation.NotIn(o.oldRole).Error("must differ from the current role")
	return validation.Errors{
		"personId": validation.Validate(o.personID, validation.Required),
		"entryId":  validation.Validate(o.entryID, validation.Required),
		"newRole":  validation.Validate(o.newRole, differs),
	}.Filter()
}

func (o changeRoleOp) Apply(ctx context.Context, api *transport.Client) (any, error) {
	err := api.ChangeEntryRole(ctx, o.personID, o.entryID, o.oldRole, o.newRole)
	if err != nil {
		return nil, err
	}
	return model.PersonEntry{PersonID: o.personID, EntryID: o.entryID, Role: o.newRole}, nil
}

func (o changeRoleOp) Mutation(any) invalidation.Mutation {
	return invalidation.LinkMutation(invalidation.ActionUpdate,
		model.PersonEntry{PersonID: o.personID, EntryID: o.entryID, Role: o.newRole})
}

func validateLink(link model.Link) error {
	if link == nil {
		return failure.InvalidField("link", "is required")
	}
	return link.Validate()
}

func requireID(id string) error {
	if strings.TrimSpace(id) == "" {
		return failure.InvalidField("id", "cannot be blank")
	}
	return nil
}

func entityRecord(kind model.Kind, id string) string {
	return string(kind) + ":" + id
}

func linkName(link model.Link) string {
	if link == nil {
		return "link"
	}
	return string(link.LinkKind())
}

// linkRecord is the natural key, or the id for relations that have one.
// Person-entry links share one record per pair so that role changes and
// add/remove of any role on that pair are serialized.
func linkRecord(link model.Link) string {
	switch l := link.(type) {
	case nil:
		return "link:nil"
	case model.PersonEntry:
		return personEntryRecord(l.PersonID, l.EntryID)
	case model.PersonRelation:
		if l.ID != "" {
			return string(model.LinkPersonRelation) + ":" + l.ID
		}
	}
	return link.NaturalKey().String()
}

func personEntryRecord(personID, entryID string) string {
	return string(model.LinkPersonEntry) + ":" + strings.TrimSpace(personID) + ":" + strings.TrimSpace(entryID)
}
