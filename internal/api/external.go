package api

import (
	"context"
	"net/url"

	"github.com/roach88/plms/internal/model"
)

// ExternalRefresh compares stored metadata with live provider data and
// returns the differing fields.
func (c *Client) ExternalRefresh(ctx context.Context, itemID int64) ([]model.DiffField, error) {
	var out []model.DiffField
	if err := c.get(ctx, idPath("/items/%d/external-refresh", itemID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ExternalApply overwrites the named fields with provider data.
func (c *Client) ExternalApply(ctx context.Context, itemID int64, fields []string) (*model.Item, error) {
	if fields == nil {
		fields = []string{}
	}
	var out model.Item
	if err := c.post(ctx, idPath("/items/%d/external-apply", itemID), model.ApplyRequest{Fields: fields}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LookupISBN asks the providers for candidates matching isbn.
func (c *Client) LookupISBN(ctx context.Context, isbn string) ([]model.ExternalCandidate, error) {
	var out []model.ExternalCandidate
	if err := c.get(ctx, "/external/books/lookup", url.Values{"isbn": {isbn}}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ConfirmCandidate creates an item from a chosen candidate.
func (c *Client) ConfirmCandidate(ctx context.Context, req model.ConfirmRequest) (*model.Item, error) {
	var out model.Item
	if err := c.post(ctx, "/external/books/confirm", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
