package api

import (
	"context"

	"github.com/roach88/plms/internal/model"
)

// SyncStatus returns the backend sync indicator.
func (c *Client) SyncStatus(ctx context.Context) (*model.SyncStatus, error) {
	var out model.SyncStatus
	if err := c.get(ctx, "/sync/status", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetSyncEnabled toggles backend sync.
func (c *Client) SetSyncEnabled(ctx context.Context, enabled bool) (*model.SyncStatus, error) {
	var out model.SyncStatus
	if err := c.post(ctx, "/sync/enable", model.SyncEnableRequest{Enabled: enabled}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RunSync triggers one sync pass.
func (c *Client) RunSync(ctx context.Context) (*model.SyncStatus, error) {
	var out model.SyncStatus
	if err := c.post(ctx, "/sync/run", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
