package api

import (
	"context"
	"net/http"

	"github.com/roach88/plms/internal/model"
)

// ListLists returns every media list with its ordered entries.
func (c *Client) ListLists(ctx context.Context) ([]model.MediaList, error) {
	var out []model.MediaList
	if err := c.get(ctx, "/lists", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetList fetches one list.
func (c *Client) GetList(ctx context.Context, id int64) (*model.MediaList, error) {
	var out model.MediaList
	if err := c.get(ctx, idPath("/lists/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateList creates an empty list.
func (c *Client) CreateList(ctx context.Context, name string) (*model.MediaList, error) {
	var out model.MediaList
	if err := c.post(ctx, "/lists", model.CreateListRequest{Name: name}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteList removes a list. Lists have no trash.
func (c *Client) DeleteList(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, idPath("/lists/%d", id), nil, nil, nil)
}

// AddListItem appends an item to a list.
func (c *Client) AddListItem(ctx context.Context, listID, itemID int64, priority *int) (*model.MediaList, error) {
	var out model.MediaList
	req := model.ListItemRequest{ItemID: itemID, Priority: priority}
	if err := c.post(ctx, idPath("/lists/%d/items", listID), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RemoveListItem drops an item from a list.
func (c *Client) RemoveListItem(ctx context.Context, listID, itemID int64) (*model.MediaList, error) {
	var out model.MediaList
	if err := c.do(ctx, http.MethodDelete, idPath("/lists/%d/items/%d", listID, itemID), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ReorderList replaces the list order with itemIDs, which must name every
// entry exactly once.
func (c *Client) ReorderList(ctx context.Context, listID int64, itemIDs []int64) (*model.MediaList, error) {
	if itemIDs == nil {
		itemIDs = []int64{}
	}
	var out model.MediaList
	if err := c.post(ctx, idPath("/lists/%d/items/reorder", listID), model.ReorderRequest{ItemIDs: itemIDs}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
