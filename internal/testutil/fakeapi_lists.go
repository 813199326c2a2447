package testutil

import (
	"net/http"
	"sort"
	"strings"

	"github.com/roach88/plms/internal/model"
)

func (f *FakeAPI) lookupList(w http.ResponseWriter, id int64) *model.MediaList {
	l, ok := f.lists[id]
	if !ok {
		writeError(w, http.StatusNotFound, "List not found")
		return nil
	}
	return l
}

func (f *FakeAPI) handleListLists(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.MediaList{}
	for _, l := range f.lists {
		out = append(out, f.presentList(l))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, http.StatusOK, out)
}

func (f *FakeAPI) handleCreateList(w http.ResponseWriter, r *http.Request) {
	var req model.CreateListRequest
	if !decode(w, r, &req) {
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeError(w, http.StatusBadRequest, "List name is required")
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	l := &model.MediaList{ID: f.id(), Name: name, Items: []model.MediaListItem{}}
	f.lists[l.ID] = l
	writeJSON(w, http.StatusCreated, f.presentList(l))
}

func (f *FakeAPI) handleGetList(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if l := f.lookupList(w, pathID(r, "id")); l != nil {
		writeJSON(w, http.StatusOK, f.presentList(l))
	}
}

func (f *FakeAPI) handleDeleteList(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l := f.lookupList(w, pathID(r, "id"))
	if l == nil {
		return
	}
	delete(f.lists, l.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (f *FakeAPI) handleAddListItem(w http.ResponseWriter, r *http.Request) {
	var req model.ListItemRequest
	if !decode(w, r, &req) {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	l := f.lookupList(w, pathID(r, "id"))
	if l == nil {
		return
	}
	if _, ok := f.items[req.ItemID]; !ok {
		writeError(w, http.StatusNotFound, "Item not found")
		return
	}
	for _, e := range l.Items {
		if e.ItemID == req.ItemID {
			writeError(w, http.StatusConflict, "Item is already in the list")
			return
		}
	}
	entry := model.MediaListItem{ItemID: req.ItemID}
	if req.Priority != nil {
		entry.Priority = *req.Priority
	}
	l.Items = append(l.Items, entry)
	writeJSON(w, http.StatusOK, f.presentList(l))
}

func (f *FakeAPI) handleRemoveListItem(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l := f.lookupList(w, pathID(r, "id"))
	if l == nil {
		return
	}
	itemID := pathID(r, "itemId")
	for i, e := range l.Items {
		if e.ItemID == itemID {
			l.Items = append(l.Items[:i:i], l.Items[i+1:]...)
			writeJSON(w, http.StatusOK, f.presentList(l))
			return
		}
	}
	writeError(w, http.StatusNotFound, "Item is not in the list")
}

// handleReorder accepts only a permutation of the list's current entries.
func (f *FakeAPI) handleReorder(w http.ResponseWriter, r *http.Request) {
	var req model.ReorderRequest
	if !decode(w, r, &req) {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	l := f.lookupList(w, pathID(r, "id"))
	if l == nil {
		return
	}
	byID := make(map[int64]model.MediaListItem, len(l.Items))
	for _, e := range l.Items {
		byID[e.ItemID] = e
	}
	if len(req.ItemIDs) != len(l.Items) {
		writeError(w, http.StatusBadRequest, "Reorder must include every list item exactly once")
		return
	}
	next := make([]model.MediaListItem, 0, len(req.ItemIDs))
	for _, id := range req.ItemIDs {
		e, ok := byID[id]
		if !ok {
			writeError(w, http.StatusBadRequest, "Reorder must include every list item exactly once")
			return
		}
		delete(byID, id)
		next = append(next, e)
	}
	l.Items = next
	writeJSON(w, http.StatusOK, f.presentList(l))
}
