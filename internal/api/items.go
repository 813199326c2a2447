package api

import (
	"context"
	"net/http"

	"github.com/roach88/plms/internal/model"
)

// ListItems returns the active (not trashed) catalog.
func (c *Client) ListItems(ctx context.Context) ([]model.Item, error) {
	var out []model.Item
	if err := c.get(ctx, "/items", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetItem fetches one item by id.
func (c *Client) GetItem(ctx context.Context, id int64) (*model.Item, error) {
	var out model.Item
	if err := c.get(ctx, idPath("/items/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateItem posts a type-discriminated create payload.
func (c *Client) CreateItem(ctx context.Context, req *model.ItemCreateRequest) (*model.Item, error) {
	var out model.Item
	if err := c.post(ctx, "/items", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateItem replaces the editable fields of an item. Status is never part
// of the payload.
func (c *Client) UpdateItem(ctx context.Context, id int64, req *model.ItemUpdateRequest) (*model.Item, error) {
	var out model.Item
	if err := c.do(ctx, http.MethodPut, idPath("/items/%d", id), nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteItem moves an item to the trash.
func (c *Client) DeleteItem(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, idPath("/items/%d", id), nil, nil, nil)
}

// ListTrash returns soft-deleted items.
func (c *Client) ListTrash(ctx context.Context) ([]model.Item, error) {
	var out []model.Item
	if err := c.get(ctx, "/items/trash", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RestoreItem returns a trashed item to the active catalog.
func (c *Client) RestoreItem(ctx context.Context, id int64) (*model.Item, error) {
	var out model.Item
	if err := c.post(ctx, idPath("/items/%d/restore", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
