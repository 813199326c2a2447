package testutil

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/roach88/plms/internal/model"
)

func (f *FakeAPI) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[req.Email]; ok {
		writeError(w, http.StatusConflict, "Email already registered")
		return
	}
	u := f.addUser(req.Email, req.Password, req.DisplayName)
	writeJSON(w, http.StatusCreated, model.AuthResponse{Token: f.newToken(u), User: u.user})
}

func (f *FakeAPI) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !decode(w, r, &req) {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[req.Email]
	if !ok || u.password != req.Password {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	now := f.now()
	u.user.LastLoginAt = &now
	writeJSON(w, http.StatusOK, model.AuthResponse{Token: f.newToken(u), User: u.user})
}

func (f *FakeAPI) handleMe(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	f.mu.Lock()
	defer f.mu.Unlock()
	writeJSON(w, http.StatusOK, f.tokens[token].user)
}

// Items

func (f *FakeAPI) liveItems() []model.Item {
	out := []model.Item{}
	for _, it := range f.items {
		if !it.IsDeleted() {
			out = append(out, f.present(it))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *FakeAPI) handleListItems(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	writeJSON(w, http.StatusOK, f.liveItems())
}

func (f *FakeAPI) handleTrash(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Item{}
	for _, it := range f.items {
		if it.IsDeleted() {
			out = append(out, f.present(it))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, http.StatusOK, out)
}

// lookupItem must be called with mu held. It writes a 404 when id is unknown.
func (f *FakeAPI) lookupItem(w http.ResponseWriter, id int64) *model.Item {
	it, ok := f.items[id]
	if !ok {
		writeError(w, http.StatusNotFound, "Item not found")
		return nil
	}
	return it
}

func (f *FakeAPI) handleGetItem(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if it := f.lookupItem(w, pathID(r, "id")); it != nil {
		writeJSON(w, http.StatusOK, f.present(it))
	}
}

func validPayload(typ model.MediaType, title string, hasBook, hasDvd bool) string {
	switch {
	case strings.TrimSpace(title) == "":
		return "Title is required"
	case typ == model.MediaBook && hasDvd:
		return "A book cannot carry dvdInfo"
	case typ == model.MediaDVD && hasBook:
		return "A DVD cannot carry bookInfo"
	case typ != model.MediaBook && typ != model.MediaDVD:
		return "Unknown media type"
	}
	return ""
}

// insertItem must be called with mu held.
func (f *FakeAPI) insertItem(req model.ItemCreateRequest) *model.Item {
	now := f.now()
	it := &model.Item{
		ID:        f.id(),
		Type:      req.Type,
		Title:     req.Title,
		Year:      req.Year,
		Condition: req.Condition,
		Location:  req.Location,
		CreatedAt: &now,
		UpdatedAt: &now,
		Tags:      append([]string{}, req.Tags...),
		BookInfo:  req.BookInfo,
		DvdInfo:   req.DvdInfo,
	}
	if it.Type == model.MediaBook && it.BookInfo == nil {
		it.BookInfo = &model.BookInfo{}
	}
	if it.Type == model.MediaDVD && it.DvdInfo == nil {
		it.DvdInfo = &model.DvdInfo{}
	}
	f.items[it.ID] = it
	return it
}

func (f *FakeAPI) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var req model.ItemCreateRequest
	if !decode(w, r, &req) {
		return
	}
	if msg := validPayload(req.Type, req.Title, req.BookInfo != nil, req.DvdInfo != nil); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	writeJSON(w, http.StatusCreated, f.present(f.insertItem(req)))
}

// itemUpdateBody is a PUT /items/:id body as the server reads it. Absent or
// null top-level keys, authors and cast keep the stored value. The other
// bookInfo and dvdInfo keys are always written, so null clears them.
type itemUpdateBody struct {
	Title     *string  `json:"title"`
	Year      *int     `json:"year"`
	Condition *string  `json:"condition"`
	Location  *string  `json:"location"`
	Tags      []string `json:"tags"`
	BookInfo  *struct {
		ISBN      *string  `json:"isbn"`
		Pages     *int     `json:"pages"`
		Publisher *string  `json:"publisher"`
		Authors   []string `json:"authors"`
	} `json:"bookInfo"`
	DvdInfo *struct {
		Runtime  *int     `json:"runtime"`
		Director *string  `json:"director"`
		Cast     []string `json:"cast"`
	} `json:"dvdInfo"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (f *FakeAPI) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	var body itemUpdateBody
	if !decode(w, r, &body) {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	it := f.lookupItem(w, pathID(r, "id"))
	if it == nil {
		return
	}
	title := it.Title
	if body.Title != nil {
		title = *body.Title
	}
	if msg := validPayload(it.Type, title, body.BookInfo != nil, body.DvdInfo != nil); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	now := f.now()
	it.Title = title
	if body.Year != nil {
		it.Year = *body.Year
	}
	if body.Condition != nil {
		it.Condition = *body.Condition
	}
	if body.Location != nil {
		it.Location = *body.Location
	}
	if body.Tags != nil {
		it.Tags = append([]string{}, body.Tags...)
	}
	if b := body.BookInfo; b != nil {
		info := model.BookInfo{}
		if it.BookInfo != nil {
			info = *it.BookInfo
		}
		info.ISBN, info.Pages, info.Publisher = deref(b.ISBN), b.Pages, deref(b.Publisher)
		if b.Authors != nil {
			info.Authors = append([]string{}, b.Authors...)
		}
		it.BookInfo = &info
	}
	if d := body.DvdInfo; d != nil {
		info := model.DvdInfo{}
		if it.DvdInfo != nil {
			info = *it.DvdInfo
		}
		info.Runtime, info.Director = d.Runtime, deref(d.Director)
		if d.Cast != nil {
			info.Cast = append([]string{}, d.Cast...)
		}
		it.DvdInfo = &info
	}
	it.UpdatedAt = &now
	writeJSON(w, http.StatusOK, f.present(it))
}

func (f *FakeAPI) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it := f.lookupItem(w, pathID(r, "id"))
	if it == nil {
		return
	}
	now := f.now()
	it.DeletedAt = &now
	w.WriteHeader(http.StatusNoContent)
}

func (f *FakeAPI) handleRestore(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it := f.lookupItem(w, pathID(r, "id"))
	if it == nil {
		return
	}
	if !it.IsDeleted() {
		writeError(w, http.StatusConflict, "Item is not in the trash")
		return
	}
	it.DeletedAt = nil
	writeJSON(w, http.StatusOK, f.present(it))
}

// Search

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func anyContainsFold(values []string, needle string) bool {
	for _, v := range values {
		if containsFold(v, needle) {
			return true
		}
	}
	return false
}

func matches(it model.Item, q map[string][]string) bool {
	get := func(k string) string {
		if v := q[k]; len(v) > 0 {
			return v[0]
		}
		return ""
	}
	if s := get("query"); s != "" {
		if !containsFold(it.Title, s) && !anyContainsFold(it.Authors(), s) &&
			!anyContainsFold(it.Cast(), s) && !anyContainsFold(it.Tags, s) {
			return false
		}
	}
	if s := get("type"); s != "" && string(it.Type) != s {
		return false
	}
	if s := get("status"); s != "" && string(it.Status) != s {
		return false
	}
	if s := get("year"); s != "" && strconv.Itoa(it.Year) != s {
		return false
	}
	if s := get("condition"); s != "" && !strings.EqualFold(it.Condition, s) {
		return false
	}
	if s := get("location"); s != "" && !containsFold(it.Location, s) {
		return false
	}
	if s := get("author"); s != "" && !anyContainsFold(it.Authors(), s) {
		return false
	}
	if s := get("cast"); s != "" && !anyContainsFold(it.Cast(), s) {
		return false
	}
	for _, tag := range q["tags"] {
		found := false
		for _, t := range it.Tags {
			if strings.EqualFold(t, tag) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (f *FakeAPI) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("size"))
	if size <= 0 {
		size = 12
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	var hits []model.Item
	for _, it := range f.liveItems() {
		if matches(it, q) {
			hits = append(hits, it)
		}
	}
	start := min(page*size, len(hits))
	end := min(start+size, len(hits))
	writeJSON(w, http.StatusOK, model.SearchResponse{
		Items: append([]model.Item{}, hits[start:end]...),
		Page:  page,
		Size:  size,
		Total: int64(len(hits)),
	})
}

// External metadata

// externalFields is the order refresh reports differences in.
var externalFields = []string{"title", "year", "publisher", "pages"}

func currentValue(it *model.Item, field string) string {
	switch field {
	case "title":
		return it.Title
	case "year":
		return strconv.Itoa(it.Year)
	case "publisher":
		if it.BookInfo != nil {
			return it.BookInfo.Publisher
		}
	case "pages":
		if it.BookInfo != nil && it.BookInfo.Pages != nil {
			return strconv.Itoa(*it.BookInfo.Pages)
		}
	}
	return ""
}

func setValue(it *model.Item, field, value string) {
	switch field {
	case "title":
		it.Title = value
	case "year":
		it.Year, _ = strconv.Atoi(value)
	case "publisher":
		if it.BookInfo != nil {
			it.BookInfo.Publisher = value
		}
	case "pages":
		if it.BookInfo != nil {
			n, _ := strconv.Atoi(value)
			it.BookInfo.Pages = &n
		}
	}
}

func (f *FakeAPI) diff(it *model.Item) []model.DiffField {
	out := []model.DiffField{}
	fresh := f.external[it.ID]
	for _, field := range externalFields {
		v, ok := fresh[field]
		if !ok {
			continue
		}
		if cur := currentValue(it, field); cur != v {
			out = append(out, model.DiffField{Field: field, CurrentValue: cur, NewValue: v})
		}
	}
	return out
}

func (f *FakeAPI) handleExternalRefresh(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if it := f.lookupItem(w, pathID(r, "id")); it != nil {
		writeJSON(w, http.StatusOK, f.diff(it))
	}
}

func (f *FakeAPI) handleExternalApply(w http.ResponseWriter, r *http.Request) {
	var req model.ApplyRequest
	if !decode(w, r, &req) {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	it := f.lookupItem(w, pathID(r, "id"))
	if it == nil {
		return
	}
	fresh := f.external[it.ID]
	for _, field := range req.Fields {
		if v, ok := fresh[field]; ok {
			setValue(it, field, v)
		}
	}
	now := f.now()
	it.UpdatedAt = &now
	for i := range it.ExternalLinks {
		it.ExternalLinks[i].LastSyncAt = &now
	}
	writeJSON(w, http.StatusOK, f.present(it))
}

func (f *FakeAPI) handleLookup(w http.ResponseWriter, r *http.Request) {
	isbn := r.URL.Query().Get("isbn")
	if isbn == "" {
		writeError(w, http.StatusBadRequest, "isbn is required")
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.candidates[isbn]
	if out == nil {
		out = []model.ExternalCandidate{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (f *FakeAPI) handleConfirm(w http.ResponseWriter, r *http.Request) {
	var req model.ConfirmRequest
	if !decode(w, r, &req) {
		return
	}
	if req.ISBN == "" || req.Title == "" {
		writeError(w, http.StatusBadRequest, "isbn and title are required")
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	year := 0
	if req.Year != nil {
		year = *req.Year
	}
	it := f.insertItem(model.ItemCreateRequest{
		Type:  model.MediaBook,
		Title: req.Title,
		Year:  year,
		Tags:  []string{},
		BookInfo: &model.BookInfo{
			ISBN:      req.ISBN,
			Pages:     req.PageCount,
			Publisher: req.Publisher,
			Authors:   req.Authors,
		},
	})
	now := f.now()
	it.ExternalLinks = []model.ExternalLink{{
		ID:         f.id(),
		Provider:   req.Provider,
		ExternalID: req.ExternalID,
		URL:        req.InfoLink,
		Rating:     req.AverageRating,
		Summary:    req.Description,
		LastSyncAt: &now,
	}}
	writeJSON(w, http.StatusCreated, f.present(it))
}
