package view

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/plms/internal/model"
)

// DashboardPreview is how many books and DVDs the dashboard lists.
const DashboardPreview = 6

// DashboardSummary is what the dashboard shows.
type DashboardSummary struct {
	Total        int          `json:"total"`
	Books        int          `json:"books"`
	DVDs         int          `json:"dvds"`
	Loaned       int          `json:"loaned"`
	RecentBooks  []model.Item `json:"recentBooks"`
	RecentDVDs   []model.Item `json:"recentDvds"`
	OverdueLoans []model.Loan `json:"overdueLoans"`
}

// Dashboard shows catalog totals and overdue loans.
type Dashboard struct {
	base
	api     API
	items   []model.Item
	overdue []model.Loan
}

// NewDashboard returns an unloaded dashboard.
func NewDashboard(a API) *Dashboard {
	return &Dashboard{api: a}
}

// Load fetches the catalog and overdue loans in parallel.
func (d *Dashboard) Load(ctx context.Context) error {
	gen := d.generation()

	var items []model.Item
	var overdue []model.Loan
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		items, err = d.api.ListItems(gctx)
		return err
	})
	g.Go(func() (err error) {
		overdue, err = d.api.OverdueLoans(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return d.fail(gen, err)
	}

	return d.commit(gen, func() {
		d.items = items
		d.overdue = overdue
	})
}

// Summary derives the dashboard figures from the last load. The loaned
// count comes from item status, which the server derives from loans.
func (d *Dashboard) Summary() DashboardSummary {
	d.mu.Lock()
	defer d.mu.Unlock()

	books := model.FilterByType(d.items, model.MediaBook)
	dvds := model.FilterByType(d.items, model.MediaDVD)
	return DashboardSummary{
		Total:        len(d.items),
		Books:        len(books),
		DVDs:         len(dvds),
		Loaned:       model.CountByStatus(d.items, model.StatusLoaned),
		RecentBooks:  head(books, DashboardPreview),
		RecentDVDs:   head(dvds, DashboardPreview),
		OverdueLoans: d.overdue,
	}
}

func head(items []model.Item, n int) []model.Item {
	if len(items) > n {
		return items[:n]
	}
	return items
}
