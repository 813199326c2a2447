package testutil

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	jsoniter "github.com/json-iterator/go"

	"github.com/roach88/plms/internal/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Request is one call the fake API received.
type Request struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
}

type failure struct {
	status int
	body   string
}

type fakeUser struct {
	user     model.User
	password string
}

// FakeAPI is an in-process PLMS server backed by maps. It implements enough
// of the real server's rules (auth, soft delete, derived item status, one
// active loan per item, progress only while loaned, whole-list reorder,
// paginated search, import/export and sync) for end-to-end tests of the
// client.
//
// Thread-safety: All handlers serialize on one mutex.
type FakeAPI struct {
	mu     sync.Mutex
	clock  *FixedClock
	server *httptest.Server

	nextID     int64
	users      map[string]*fakeUser
	tokens     map[string]*fakeUser
	items      map[int64]*model.Item
	loans      map[int64]*model.Loan
	progress   map[int64][]model.ProgressLog
	lists      map[int64]*model.MediaList
	candidates map[string][]model.ExternalCandidate
	external   map[int64]map[string]string
	sync       model.SyncStatus
	conflicts  int

	requests []Request
	failures map[string]failure
}

// NewFakeAPI starts a fake server that lives until the test ends. A nil
// clock reads DefaultNow.
func NewFakeAPI(t testing.TB, clock *FixedClock) *FakeAPI {
	t.Helper()
	if clock == nil {
		clock = NewFixedClock(DefaultNow)
	}
	f := &FakeAPI{
		clock:      clock,
		users:      map[string]*fakeUser{},
		tokens:     map[string]*fakeUser{},
		items:      map[int64]*model.Item{},
		loans:      map[int64]*model.Loan{},
		progress:   map[int64][]model.ProgressLog{},
		lists:      map[int64]*model.MediaList{},
		candidates: map[string][]model.ExternalCandidate{},
		external:   map[int64]map[string]string{},
		failures:   map[string]failure{},
	}
	f.server = httptest.NewServer(f.routes())
	t.Cleanup(f.server.Close)
	return f
}

// URL is the base URL of the fake server.
func (f *FakeAPI) URL() string { return f.server.URL }

// Clock returns the clock the server uses for "today".
func (f *FakeAPI) Clock() *FixedClock { return f.clock }

func (f *FakeAPI) routes() http.Handler {
	r := mux.NewRouter()
	r.Use(f.record, f.injectFailures, f.authenticate)

	r.HandleFunc("/auth/register", f.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", f.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/auth/me", f.handleMe).Methods(http.MethodGet)

	r.HandleFunc("/items", f.handleListItems).Methods(http.MethodGet)
	r.HandleFunc("/items", f.handleCreateItem).Methods(http.MethodPost)
	r.HandleFunc("/items/trash", f.handleTrash).Methods(http.MethodGet)
	r.HandleFunc("/items/search", f.handleSearch).Methods(http.MethodGet)
	r.HandleFunc("/items/{id:[0-9]+}", f.handleGetItem).Methods(http.MethodGet)
	r.HandleFunc("/items/{id:[0-9]+}", f.handleUpdateItem).Methods(http.MethodPut)
	r.HandleFunc("/items/{id:[0-9]+}", f.handleDeleteItem).Methods(http.MethodDelete)
	r.HandleFunc("/items/{id:[0-9]+}/restore", f.handleRestore).Methods(http.MethodPost)
	r.HandleFunc("/items/{id:[0-9]+}/external-refresh", f.handleExternalRefresh).Methods(http.MethodGet)
	r.HandleFunc("/items/{id:[0-9]+}/external-apply", f.handleExternalApply).Methods(http.MethodPost)
	r.HandleFunc("/external/books/lookup", f.handleLookup).Methods(http.MethodGet)
	r.HandleFunc("/external/books/confirm", f.handleConfirm).Methods(http.MethodPost)

	r.HandleFunc("/items/{id:[0-9]+}/progress", f.handleListProgress).Methods(http.MethodGet)
	r.HandleFunc("/items/{id:[0-9]+}/progress", f.handleLogProgress).Methods(http.MethodPost)
	r.HandleFunc("/items/{id:[0-9]+}/progress/{logId:[0-9]+}", f.handleDeleteProgress).Methods(http.MethodDelete)
	r.HandleFunc("/items/{id:[0-9]+}/loan", f.handleActiveLoan).Methods(http.MethodGet)
	r.HandleFunc("/items/{id:[0-9]+}/loan", f.handleCreateLoan).Methods(http.MethodPost)
	r.HandleFunc("/loans", f.handleListLoans).Methods(http.MethodGet)
	r.HandleFunc("/loans/overdue", f.handleOverdue).Methods(http.MethodGet)
	r.HandleFunc("/loans/{id:[0-9]+}/return", f.handleReturnLoan).Methods(http.MethodPost)

	r.HandleFunc("/lists", f.handleListLists).Methods(http.MethodGet)
	r.HandleFunc("/lists", f.handleCreateList).Methods(http.MethodPost)
	r.HandleFunc("/lists/{id:[0-9]+}", f.handleGetList).Methods(http.MethodGet)
	r.HandleFunc("/lists/{id:[0-9]+}", f.handleDeleteList).Methods(http.MethodDelete)
	r.HandleFunc("/lists/{id:[0-9]+}/items", f.handleAddListItem).Methods(http.MethodPost)
	r.HandleFunc("/lists/{id:[0-9]+}/items/reorder", f.handleReorder).Methods(http.MethodPost)
	r.HandleFunc("/lists/{id:[0-9]+}/items/{itemId:[0-9]+}", f.handleRemoveListItem).Methods(http.MethodDelete)

	r.HandleFunc("/export", f.handleExport).Methods(http.MethodGet)
	r.HandleFunc("/import", f.handleImport).Methods(http.MethodPost)

	r.HandleFunc("/sync/status", f.handleSyncStatus).Methods(http.MethodGet)
	r.HandleFunc("/sync/enable", f.handleSyncEnable).Methods(http.MethodPost)
	r.HandleFunc("/sync/run", f.handleSyncRun).Methods(http.MethodPost)
	return r
}

// Middleware

func (f *FakeAPI) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		f.mu.Lock()
		f.requests = append(f.requests, Request{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Header: r.Header.Clone(),
			Body:   body,
		})
		f.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (f *FakeAPI) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		fail, ok := f.failures[r.Method+" "+r.URL.Path]
		f.mu.Unlock()
		if ok {
			writeError(w, fail.status, fail.body)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *FakeAPI) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/auth/") && r.URL.Path != "/auth/me" {
			next.ServeHTTP(w, r)
			return
		}
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		f.mu.Lock()
		_, ok := f.tokens[token]
		f.mu.Unlock()
		if token == "" || !ok {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Test controls

// Fail makes every request to method+path answer status with body until
// ClearFailures is called.
func (f *FakeAPI) Fail(method, path string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[method+" "+path] = failure{status: status, body: body}
}

// ClearFailures removes all injected failures.
func (f *FakeAPI) ClearFailures() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = map[string]failure{}
}

// Requests returns every request received so far.
func (f *FakeAPI) Requests() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Request(nil), f.requests...)
}

// RequestsTo returns the requests received for method and path.
func (f *FakeAPI) RequestsTo(method, path string) []Request {
	var out []Request
	for _, r := range f.Requests() {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// CountRequests returns how many requests matched method and path.
func (f *FakeAPI) CountRequests(method, path string) int {
	return len(f.RequestsTo(method, path))
}

// ResetRequests forgets the request log.
func (f *FakeAPI) ResetRequests() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = nil
}

// IssueToken registers email (if needed) and returns a fresh valid token.
func (f *FakeAPI) IssueToken(email string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[email]
	if !ok {
		u = f.addUser(email, "password", email)
	}
	return f.newToken(u)
}

// RevokeTokens invalidates every issued token.
func (f *FakeAPI) RevokeTokens() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = map[string]*fakeUser{}
}

// SetCandidates sets what an ISBN lookup returns.
func (f *FakeAPI) SetCandidates(isbn string, c []model.ExternalCandidate) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.candidates[isbn] = c
}

// SetExternal sets the provider's current values for an item. Supported
// fields are title, year, publisher and pages.
func (f *FakeAPI) SetExternal(itemID int64, values map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.external[itemID] = values
}

// SetSyncConflicts sets the conflict count the next sync run reports.
func (f *FakeAPI) SetSyncConflicts(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.conflicts = n
}

// Item returns a snapshot of an item as the API would serve it.
func (f *FakeAPI) Item(id int64) (model.Item, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[id]
	if !ok {
		return model.Item{}, false
	}
	return f.present(it), true
}

// List returns a snapshot of a media list.
func (f *FakeAPI) List(id int64) (model.MediaList, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.lists[id]
	if !ok {
		return model.MediaList{}, false
	}
	return f.presentList(l), true
}

// ItemByTitle returns the item with the lowest id titled title, trashed or
// not.
func (f *FakeAPI) ItemByTitle(title string) (model.Item, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var found *model.Item
	for _, it := range f.items {
		if it.Title == title && (found == nil || it.ID < found.ID) {
			found = it
		}
	}
	if found == nil {
		return model.Item{}, false
	}
	return f.present(found), true
}

// ListByName returns the list with the lowest id named name.
func (f *FakeAPI) ListByName(name string) (model.MediaList, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var found *model.MediaList
	for _, l := range f.lists {
		if l.Name == name && (found == nil || l.ID < found.ID) {
			found = l
		}
	}
	if found == nil {
		return model.MediaList{}, false
	}
	return f.presentList(found), true
}

// Helpers. Callers hold mu.

func (f *FakeAPI) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *FakeAPI) now() time.Time { return f.clock.Now().UTC() }

func (f *FakeAPI) today() string { return model.Today(f.clock.Now()) }

func (f *FakeAPI) addUser(email, password, name string) *fakeUser {
	last := f.now()
	u := &fakeUser{
		user:     model.User{ID: f.id(), Email: email, DisplayName: name, CreatedAt: f.now(), LastLoginAt: &last},
		password: password,
	}
	f.users[email] = u
	return u
}

func (f *FakeAPI) newToken(u *fakeUser) string {
	tok := uuid.NewString()
	f.tokens[tok] = u
	return tok
}

func (f *FakeAPI) activeLoan(itemID int64) *model.Loan {
	for _, l := range f.loans {
		if l.ItemID == itemID && l.Status == model.LoanActive {
			return l
		}
	}
	return nil
}

// present returns the wire form of an item with status derived from loans.
func (f *FakeAPI) present(it *model.Item) model.Item {
	out := *it
	out.Status = model.DeriveStatus(f.activeLoan(it.ID))
	out.Tags = append([]string{}, it.Tags...)
	sort.Strings(out.Tags)
	if out.ExternalLinks == nil {
		out.ExternalLinks = []model.ExternalLink{}
	}
	return out
}

func (f *FakeAPI) presentLoan(l *model.Loan) model.Loan {
	out := *l
	if it, ok := f.items[l.ItemID]; ok {
		out.ItemTitle = it.Title
		out.ItemType = it.Type
	}
	return out
}

func (f *FakeAPI) presentList(l *model.MediaList) model.MediaList {
	out := *l
	out.Items = make([]model.MediaListItem, len(l.Items))
	for i, e := range l.Items {
		e.Position = i
		if it, ok := f.items[e.ItemID]; ok {
			e.Title = it.Title
		}
		out.Items[i] = e
	}
	return out
}

func pathID(r *http.Request, key string) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)[key], 10, 64)
	return id
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError answers with a plain-text message and no trailing newline.
func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, msg)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Malformed request body: %v", err))
		return false
	}
	return true
}
