package transport

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/goliatone/go-lide-client/failure"
	"github.com/goliatone/go-lide-client/model"
)

// AddLink creates a link. Relations come back with their server id; the
// other variants are returned as sent.
func (c *Client) AddLink(ctx context.Context, link model.Link) (model.Link, error) {
	switch l := link.(type) {
	case model.PersonTag:
		return l, c.send(ctx, http.MethodPost, personTagPath(l), nil, nil, nil)
	case model.PersonEntry:
		q := url.Values{"role": {model.RoleOrDefault(l.Role)}}
		return l, c.send(ctx, http.MethodPost, personEntryPath(l.PersonID, l.EntryID), q, nil, nil)
	case model.EntryTag:
		return l, c.send(ctx, http.MethodPost, entryTagPath(l), nil, nil, nil)
	case model.MediaEntry:
		return l, c.send(ctx, http.MethodPost, mediaEntryPath(l), nil, l.Attributes(), nil)
	case model.PersonRelation:
		created := l
		if err := c.send(ctx, http.MethodPost, relationPath(), nil, l, &created); err != nil {
			return nil, err
		}
		return created, nil
	}
	return nil, fmt.Errorf("unsupported link type %T", link)
}

// UpdateLink rewrites the free attributes of a link in place. Only media
// links and relations have attributes; a person-entry role change goes
// through ChangeEntryRole.
func (c *Client) UpdateLink(ctx context.Context, link model.Link) (model.Link, error) {
	switch l := link.(type) {
	case model.MediaEntry:
		return l, c.send(ctx, http.MethodPut, mediaEntryPath(l), nil, l.Attributes(), nil)
	case model.PersonRelation:
		if l.ID == "" {
			return nil, failure.Ambiguity("relation id is required to update a relation")
		}
		updated := l
		if err := c.send(ctx, http.MethodPut, relationItemPath(l.ID), nil, l, &updated); err != nil {
			return nil, err
		}
		return updated, nil
	case nil:
		return nil, fmt.Errorf("nil link")
	}
	return nil, failure.Operation(failure.CodeNotEditable,
		fmt.Sprintf("%s links have no editable attributes", link.LinkKind()))
}

// RemoveLink deletes exactly the link identified by its natural key. A
// person-entry link without a role or a relation without an id is rejected
// before any request is sent.
func (c *Client) RemoveLink(ctx context.Context, link model.Link) error {
	switch l := link.(type) {
	case model.PersonTag:
		return c.send(ctx, http.MethodDelete, personTagPath(l), nil, nil, nil)
	case model.PersonEntry:
		if !l.HasRole() {
			return failure.Ambiguity("role is required to delete a specific person-entry link")
		}
		q := url.Values{"role": {model.NormalizeRole(l.Role)}}
		return c.send(ctx, http.MethodDelete, personEntryPath(l.PersonID, l.EntryID), q, nil, nil)
	case model.EntryTag:
		return c.send(ctx, http.MethodDelete, entryTagPath(l), nil, nil, nil)
	case model.MediaEntry:
		return c.send(ctx, http.MethodDelete, mediaEntryPath(l), nil, nil, nil)
	case model.PersonRelation:
		if l.ID == "" {
			return failure.Ambiguity("relation id is required to delete a relation")
		}
		return c.send(ctx, http.MethodDelete, relationItemPath(l.ID), nil, nil, nil)
	}
	return fmt.Errorf("unsupported link type %T", link)
}

// ChangeEntryRole moves a person-entry link from oldRole to newRole in a
// single request; the server either applies the whole change or none of it.
func (c *Client) ChangeEntryRole(ctx context.Context, personID, entryID, oldRole, newRole string) error {
	q := url.Values{
		"oldRole": {model.RoleOrDefault(oldRole)},
		"newRole": {model.RoleOrDefault(newRole)},
	}
	return c.send(ctx, http.MethodPut, personEntryPath(personID, entryID), q, nil, nil)
}
