// Package view holds one controller per screen of the client.
//
// A view owns the ephemeral state its screen shows and follows a fixed
// cycle: load everything it needs from the API, let the user mutate, then
// reload everything again. Nothing is cached across views and nothing is
// updated optimistically.
//
// API failures never abort a view. They are stored verbatim in the view's
// Banner and also returned, so the caller can decide how loudly to report
// them. Each view carries a generation counter; Close bumps it, and a load
// that completes after Close is discarded with ErrStale.
package view

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/roach88/plms/internal/api"
	"github.com/roach88/plms/internal/model"
)

// API is every endpoint the views call. *api.Client satisfies it.
type API interface {
	ListItems(ctx context.Context) ([]model.Item, error)
	GetItem(ctx context.Context, id int64) (*model.Item, error)
	CreateItem(ctx context.Context, req *model.ItemCreateRequest) (*model.Item, error)
	UpdateItem(ctx context.Context, id int64, req *model.ItemUpdateRequest) (*model.Item, error)
	DeleteItem(ctx context.Context, id int64) error
	ListTrash(ctx context.Context) ([]model.Item, error)
	RestoreItem(ctx context.Context, id int64) (*model.Item, error)
	SearchItems(ctx context.Context, q api.SearchQuery) (*model.SearchResponse, error)

	ExternalRefresh(ctx context.Context, itemID int64) ([]model.DiffField, error)
	ExternalApply(ctx context.Context, itemID int64, fields []string) (*model.Item, error)
	LookupISBN(ctx context.Context, isbn string) ([]model.ExternalCandidate, error)
	ConfirmCandidate(ctx context.Context, req model.ConfirmRequest) (*model.Item, error)

	ListProgress(ctx context.Context, itemID int64) ([]model.ProgressLog, error)
	LogProgress(ctx context.Context, itemID int64, req *model.ProgressRequest) (*model.ProgressLog, error)
	DeleteProgress(ctx context.Context, itemID, logID int64) error
	GetActiveLoan(ctx context.Context, itemID int64) (*model.Loan, error)
	CreateLoan(ctx context.Context, itemID int64, req *model.LoanRequest) (*model.Loan, error)
	ReturnLoan(ctx context.Context, loanID int64) (*model.Loan, error)
	ListLoans(ctx context.Context, status model.LoanStatus) ([]model.Loan, error)
	OverdueLoans(ctx context.Context) ([]model.Loan, error)

	ListLists(ctx context.Context) ([]model.MediaList, error)
	CreateList(ctx context.Context, name string) (*model.MediaList, error)
	DeleteList(ctx context.Context, id int64) error
	AddListItem(ctx context.Context, listID, itemID int64, priority *int) (*model.MediaList, error)
	ReorderList(ctx context.Context, listID int64, itemIDs []int64) (*model.MediaList, error)

	Export(ctx context.Context, f api.Format, w io.Writer) (int64, error)
	Import(ctx context.Context, f api.Format, filename string, r io.Reader) (*model.ImportSummary, error)
	SyncStatus(ctx context.Context) (*model.SyncStatus, error)
	SetSyncEnabled(ctx context.Context, enabled bool) (*model.SyncStatus, error)
	RunSync(ctx context.Context) (*model.SyncStatus, error)
}

// ErrStale is returned by a load that completed after the view was closed.
// Its result has been dropped.
var ErrStale = errors.New("view closed before load completed")

// ErrNotLoaded is returned by actions that need a prior successful Load.
var ErrNotLoaded = errors.New("view has not been loaded")

// Confirm asks the user a yes/no question.
type Confirm func(prompt string) bool

// Banner is the inline message area of a view.
type Banner struct {
	Error   string
	Success string
}

// Empty reports whether there is nothing to show.
func (b Banner) Empty() bool {
	return b.Error == "" && b.Success == ""
}

// base carries the banner and generation counter shared by every view.
type base struct {
	mu     sync.Mutex
	gen    uint64
	banner Banner
}

// Banner returns a copy of the current banner.
func (b *base) Banner() Banner {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.banner
}

// Close marks the view as gone. Loads in flight are discarded.
func (b *base) Close() {
	b.mu.Lock()
	b.gen++
	b.mu.Unlock()
}

func (b *base) generation() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.gen
}

// commit applies fn under the lock if gen is still current.
func (b *base) commit(gen uint64, fn func()) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if gen != b.gen {
		return ErrStale
	}
	fn()
	return nil
}

// fail records err in the banner unless the view was closed meanwhile.
func (b *base) fail(gen uint64, err error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if gen != b.gen {
		return ErrStale
	}
	b.banner = Banner{Error: err.Error()}
	return err
}

// reset clears the banner at the start of a user action.
func (b *base) reset() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.banner = Banner{}
	return b.gen
}

func (b *base) succeed(gen uint64, msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if gen == b.gen {
		b.banner = Banner{Success: msg}
	}
}
