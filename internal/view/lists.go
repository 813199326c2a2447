package view

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/plms/internal/form"
	"github.com/roach88/plms/internal/model"
)

var (
	// ErrNoListSelected is returned by list actions when no list is selected.
	ErrNoListSelected = errors.New("no list selected")

	// ErrUnknownList is returned when selecting a list that was not loaded.
	ErrUnknownList = errors.New("no such list")
)

// Direction of a Move.
const (
	Up   = -1
	Down = 1
)

// Lists manages named, ordered item collections.
type Lists struct {
	base
	api      API
	lists    []model.MediaList
	selected int64
	index    map[int64]model.Item
}

// NewLists returns an unloaded lists view.
func NewLists(a API) *Lists {
	return &Lists{api: a, index: map[int64]model.Item{}}
}

// Load fetches all lists and the catalog used to describe their entries.
// The selection survives a reload when the list still exists.
func (v *Lists) Load(ctx context.Context) error {
	gen := v.generation()

	var lists []model.MediaList
	var items []model.Item
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		lists, err = v.api.ListLists(gctx)
		return err
	})
	g.Go(func() (err error) {
		items, err = v.api.ListItems(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return v.fail(gen, err)
	}

	index := make(map[int64]model.Item, len(items))
	for _, it := range items {
		index[it.ID] = it
	}
	return v.commit(gen, func() {
		v.lists = lists
		v.index = index
		if v.find(v.selected) == nil {
			v.selected = 0
		}
	})
}

// find must be called with mu held.
func (v *Lists) find(id int64) *model.MediaList {
	for i := range v.lists {
		if v.lists[i].ID == id {
			return &v.lists[i]
		}
	}
	return nil
}

// Lists returns the loaded lists.
func (v *Lists) Lists() []model.MediaList {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lists
}

// Select makes list id the target of item actions.
func (v *Lists) Select(id int64) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.find(id) == nil {
		return fmt.Errorf("%w: %d", ErrUnknownList, id)
	}
	v.selected = id
	return nil
}

// Selected returns a copy of the selected list, or nil.
func (v *Lists) Selected() *model.MediaList {
	v.mu.Lock()
	defer v.mu.Unlock()
	l := v.find(v.selected)
	if l == nil {
		return nil
	}
	cp := *l
	cp.Items = append([]model.MediaListItem(nil), l.Items...)
	return &cp
}

// ItemMeta looks up a list entry's item in the catalog. Trashed items are
// absent.
func (v *Lists) ItemMeta(itemID int64) (model.Item, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	it, ok := v.index[itemID]
	return it, ok
}

// Create adds an empty list and reloads. A blank name is ignored.
func (v *Lists) Create(ctx context.Context, name string) (*model.MediaList, error) {
	gen := v.reset()
	if strings.TrimSpace(name) == "" {
		return nil, nil
	}
	list, err := v.api.CreateList(ctx, name)
	if err != nil {
		return nil, v.fail(gen, err)
	}
	return list, v.Load(ctx)
}

// Delete removes list id. A non-empty list is only deleted when confirm
// agrees. It reports whether the list was deleted.
func (v *Lists) Delete(ctx context.Context, id int64, confirm Confirm) (bool, error) {
	gen := v.reset()

	v.mu.Lock()
	var prompt string
	if l := v.find(id); l != nil && len(l.Items) > 0 {
		prompt = fmt.Sprintf("Delete %q with %d items?", l.Name, len(l.Items))
	}
	v.mu.Unlock()

	if prompt != "" && !confirm(prompt) {
		return false, nil
	}
	if err := v.api.DeleteList(ctx, id); err != nil {
		return false, v.fail(gen, err)
	}
	_ = v.commit(gen, func() { v.selected = 0 })
	return true, v.Load(ctx)
}

func (v *Lists) selectedID() (int64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.find(v.selected) == nil {
		return 0, ErrNoListSelected
	}
	return v.selected, nil
}

// AddItem appends the item whose id is typed in rawID to the selected list
// and reloads. Empty input is ignored.
func (v *Lists) AddItem(ctx context.Context, rawID string) error {
	gen := v.reset()
	listID, err := v.selectedID()
	if err != nil {
		return v.fail(gen, err)
	}
	if strings.TrimSpace(rawID) == "" {
		return nil
	}
	itemID, err := form.ParseID("itemId", rawID)
	if err != nil {
		return v.fail(gen, err)
	}
	if _, err := v.api.AddListItem(ctx, listID, itemID, nil); err != nil {
		return v.fail(gen, err)
	}
	return v.Load(ctx)
}

// Move swaps the entry at index with its neighbour in direction dir (Up or
// Down) and sends the whole resulting order. Moves past either end do
// nothing. It reports whether a reorder was sent.
func (v *Lists) Move(ctx context.Context, index, dir int) (bool, error) {
	gen := v.reset()
	sel := v.Selected()
	if sel == nil {
		return false, v.fail(gen, ErrNoListSelected)
	}
	ids := sel.ItemIDs()
	target := index + dir
	if index < 0 || index >= len(ids) || target < 0 || target >= len(ids) {
		return false, nil
	}
	ids[index], ids[target] = ids[target], ids[index]
	return true, v.Reorder(ctx, ids)
}

// Reorder replaces the selected list's order with itemIDs and reloads.
func (v *Lists) Reorder(ctx context.Context, itemIDs []int64) error {
	gen := v.reset()
	listID, err := v.selectedID()
	if err != nil {
		return v.fail(gen, err)
	}
	if _, err := v.api.ReorderList(ctx, listID, itemIDs); err != nil {
		return v.fail(gen, err)
	}
	return v.Load(ctx)
}
