package transport

import (
	"context"
	"net/http"

	"github.com/goliatone/go-lide-client/model"
)

// List fetches one page of entities of a kind, filtered by req.Q.
func List[T any](ctx context.Context, c *Client, kind model.Kind, req PageRequest) (Page[T], error) {
	req = req.Normalized()

	var items []T
	resp, err := c.get(ctx, entityPath(kind), req.values(), &items)
	if err != nil {
		return Page[T]{}, err
	}
	return newPage(resp, req, items), nil
}

// Get fetches a single entity.
func Get[T any](ctx context.Context, c *Client, kind model.Kind, id string) (T, error) {
	var result T
	_, err := c.get(ctx, entityItemPath(kind, id), nil, &result)
	return result, err
}

// Create posts a new entity and returns the stored representation.
func Create[T any](ctx context.Context, c *Client, kind model.Kind, input any) (T, error) {
	var result T
	err := c.send(ctx, http.MethodPost, entityPath(kind), nil, input, &result)
	return result, err
}

// Update replaces an entity and returns the stored representation.
func Update[T any](ctx context.Context, c *Client, kind model.Kind, id string, input any) (T, error) {
	var result T
	err := c.send(ctx, http.MethodPut, entityItemPath(kind, id), nil, input, &result)
	return result, err
}

// Delete removes an entity.
func (c *Client) Delete(ctx context.Context, kind model.Kind, id string) error {
	return c.send(ctx, http.MethodDelete, entityItemPath(kind, id), nil, nil, nil)
}

// GetPersonRead fetches the aggregated person detail.
func (c *Client) GetPersonRead(ctx context.Context, id string) (model.PersonRead, error) {
	var result model.PersonRead
	path, err := readPath(model.KindPerson, id)
	if err != nil {
		return result, err
	}
	_, err = c.get(ctx, path, nil, &result)
	return result, err
}

// GetEntryRead fetches the aggregated entry detail.
func (c *Client) GetEntryRead(ctx context.Context, id string) (model.EntryRead, error) {
	var result model.EntryRead
	path, err := readPath(model.KindEntry, id)
	if err != nil {
		return result, err
	}
	_, err = c.get(ctx, path, nil, &result)
	return result, err
}

// ListCollection fetches one page of a relationship collection.
func ListCollection[T any](ctx context.Context, c *Client, col model.Collection, ownerID string, req PageRequest) (Page[T], error) {
	req = req.Normalized()
	req.Q = ""

	path, err := collectionPath(col, ownerID)
	if err != nil {
		return Page[T]{}, err
	}

	var items []T
	resp, err := c.get(ctx, path, req.values(), &items)
	if err != nil {
		return Page[T]{}, err
	}
	return newPage(resp, req, items), nil
}

// ListCollectionAll fetches a relationship collection without paging.
func ListCollectionAll[T any](ctx context.Context, c *Client, col model.Collection, ownerID string) ([]T, error) {
	path, err := collectionPath(col, ownerID)
	if err != nil {
		return nil, err
	}

	var items []T
	if _, err := c.get(ctx, path, nil, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}
