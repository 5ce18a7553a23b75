// Package links manages the five relationship kinds between persons,
// entries, tags and media: adding with duplicate detection, editing free
// attributes, role changes, and removal by full natural key.
package links

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-lide-client/failure"
	"github.com/goliatone/go-lide-client/model"
	"github.com/goliatone/go-lide-client/mutation"
	"github.com/goliatone/go-lide-client/views"
)

// Manager applies link changes through the mutation executor and checks
// them against the links already known for the owning record.
type Manager struct {
	exec   *mutation.Executor
	reader *views.Reader
	logger zerolog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the manager logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// New creates a link manager.
func New(exec *mutation.Executor, reader *views.Reader, opts ...Option) *Manager {
	m := &Manager{
		exec:   exec,
		reader: reader,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Add creates link unless a link with the same natural key already exists
// for its owner. The returned link carries defaults and, for relations, the
// server-assigned id.
func (m *Manager) Add(ctx context.Context, link model.Link) (model.Link, error) {
	link = model.Normalize(link)
	if err := check(link); err != nil {
		return nil, err
	}
	if err := m.ensureAbsent(ctx, link, ""); err != nil {
		return nil, err
	}
	return mutation.Run[model.Link](ctx, m.exec, mutation.AddLink(link))
}

// Edit changes current into updated. Both must connect the same records.
// A person-entry link changes its role atomically; media links change their
// caption and order; relations change type, validity and note by id.
// Person-tag and entry-tag links have nothing to edit.
func (m *Manager) Edit(ctx context.Context, current, updated model.Link) (model.Link, error) {
	if current == nil || updated == nil {
		return nil, failure.InvalidField("link", "is required")
	}
	if current.LinkKind() != updated.LinkKind() {
		return nil, failure.InvalidField("link", "cannot change the link kind")
	}
	updated = model.Normalize(updated)
	if err := sameEndpoints(current, updated); err != nil {
		return nil, err
	}

	switch cur := current.(type) {
	case model.PersonEntry:
		if !cur.HasRole() {
			return nil, failure.Ambiguity("current role is required to change a person-entry role")
		}
		next := updated.(model.PersonEntry)
		if model.NormalizeRole(cur.Role) == next.Role {
			return model.Normalize(cur), nil
		}
		if err := m.ensureAbsent(ctx, next, ""); err != nil {
			return nil, err
		}
		op := mutation.ChangeEntryRole(cur.PersonID, cur.EntryID, cur.Role, next.Role)
		return mutation.Run[model.Link](ctx, m.exec, op)

	case model.MediaEntry:
		return mutation.Run[model.Link](ctx, m.exec, mutation.UpdateLink(updated))

	case model.PersonRelation:
		if cur.ID == "" {
			return nil, failure.Ambiguity("relation id is required to update a relation")
		}
		next := updated.(model.PersonRelation)
		next.ID = cur.ID
		if err := check(next); err != nil {
			return nil, err
		}
		if next.NaturalKey() != model.Normalize(cur).NaturalKey() {
			if err := m.ensureAbsent(ctx, next, cur.ID); err != nil {
				return nil, err
			}
		}
		return mutation.Run[model.Link](ctx, m.exec, mutation.UpdateLink(next))
	}

	return nil, failure.Operation(failure.CodeNotEditable,
		fmt.Sprintf("%s links have no editable attributes", current.LinkKind()))
}

// Remove deletes exactly one link identified by its full natural key.
func (m *Manager) Remove(ctx context.Context, link model.Link) error {
	_, err := m.exec.Execute(ctx, mutation.RemoveLink(link))
	return err
}

// Known returns the links owned by ownerID in col, as cached.
func (m *Manager) Known(ctx context.Context, col model.Collection, ownerID string) ([]model.Link, error) {
	return m.reader.Links(ctx, col, ownerID)
}

// ensureAbsent fails when the owner already has a link with the natural key
// of link. A relation being edited is skipped by its own id.
func (m *Manager) ensureAbsent(ctx context.Context, link model.Link, selfID string) error {
	owned := model.CollectionsOf(link)
	if len(owned) == 0 {
		return failure.InvalidField("link", "unknown link kind")
	}

	known, err := m.reader.Links(ctx, owned[0].Collection, owned[0].OwnerID)
	if err != nil {
		return err
	}

	key := link.NaturalKey()
	for _, existing := range known {
		if rel, ok := existing.(model.PersonRelation); ok && selfID != "" && rel.ID == selfID {
			continue
		}
		if existing.NaturalKey() == key {
			m.logger.Debug().
				Str("link", string(link.LinkKind())).
				Str("key", key.String()).
				Msg("duplicate link rejected")
			return failure.Duplicate(key.String())
		}
	}
	return nil
}

func check(link model.Link) error {
	if link == nil {
		return failure.InvalidField("link", "is required")
	}
	if err := link.Validate(); err != nil {
		return failure.Validation(err)
	}
	return nil
}

func sameEndpoints(current, updated model.Link) error {
	co, ct := model.Normalize(current).Endpoints()
	uo, ut := updated.Endpoints()
	if co.ID != uo.ID || ct.ID != ut.ID {
		return failure.InvalidField("link", "endpoints cannot be changed; remove the link and add a new one")
	}
	return nil
}
