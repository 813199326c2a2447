package view

import (
	"context"

	"github.com/roach88/plms/internal/model"
)

// Trash lists soft-deleted items and restores them.
type Trash struct {
	base
	api   API
	items []model.Item
}

// NewTrash returns an unloaded trash view.
func NewTrash(a API) *Trash {
	return &Trash{api: a}
}

// Load fetches the trashed items.
func (v *Trash) Load(ctx context.Context) error {
	gen := v.generation()
	items, err := v.api.ListTrash(ctx)
	if err != nil {
		return v.fail(gen, err)
	}
	return v.commit(gen, func() { v.items = items })
}

// Items returns the trashed items.
func (v *Trash) Items() []model.Item {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.items
}

// Restore returns item id to the catalog and reloads. The restored item is
// the server's response to the restore.
func (v *Trash) Restore(ctx context.Context, id int64) (*model.Item, error) {
	gen := v.reset()
	item, err := v.api.RestoreItem(ctx, id)
	if err != nil {
		return nil, v.fail(gen, err)
	}
	if err := v.Load(ctx); err != nil {
		return nil, err
	}
	return item, nil
}
