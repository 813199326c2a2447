package view

import (
	"context"
	"strings"

	"github.com/roach88/plms/internal/api"
	"github.com/roach88/plms/internal/form"
	"github.com/roach88/plms/internal/model"
)

// SearchFilters holds the raw text of every search input.
type SearchFilters struct {
	Query     string
	Type      string
	Status    string
	Year      string
	Condition string
	Location  string
	Author    string
	Cast      string
	Tags      string
}

// Search is the filtered, paginated catalog search.
type Search struct {
	base
	api     API
	filters SearchFilters
	page    int
	results []model.Item
	total   int64
}

// NewSearch returns a search with no filters on page 0.
func NewSearch(a API) *Search {
	return &Search{api: a}
}

// Filters returns the current filters.
func (s *Search) Filters() SearchFilters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters
}

// SetFilters replaces all filters. Any change resets the page to 0.
func (s *Search) SetFilters(f SearchFilters) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f != s.filters {
		s.filters = f
		s.page = 0
	}
}

func (s *Search) setFilter(set func(*SearchFilters)) {
	f := s.Filters()
	set(&f)
	s.SetFilters(f)
}

func (s *Search) SetQuery(v string)     { s.setFilter(func(f *SearchFilters) { f.Query = v }) }
func (s *Search) SetType(v string)      { s.setFilter(func(f *SearchFilters) { f.Type = v }) }
func (s *Search) SetStatus(v string)    { s.setFilter(func(f *SearchFilters) { f.Status = v }) }
func (s *Search) SetYear(v string)      { s.setFilter(func(f *SearchFilters) { f.Year = v }) }
func (s *Search) SetCondition(v string) { s.setFilter(func(f *SearchFilters) { f.Condition = v }) }
func (s *Search) SetLocation(v string)  { s.setFilter(func(f *SearchFilters) { f.Location = v }) }
func (s *Search) SetAuthor(v string)    { s.setFilter(func(f *SearchFilters) { f.Author = v }) }
func (s *Search) SetCast(v string)      { s.setFilter(func(f *SearchFilters) { f.Cast = v }) }
func (s *Search) SetTags(v string)      { s.setFilter(func(f *SearchFilters) { f.Tags = v }) }

// Page returns the 0-based page.
func (s *Search) Page() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

// SetPage jumps to page n. Negative pages are clamped to 0.
func (s *Search) SetPage(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.page = max(n, 0)
}

// HasPrev reports whether there is a previous page.
func (s *Search) HasPrev() bool {
	return s.Page() > 0
}

// HasNext reports whether the last result has a following page.
func (s *Search) HasNext() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(s.page+1)*api.DefaultPageSize < s.total
}

// Next advances one page if there is one.
func (s *Search) Next() bool {
	if !s.HasNext() {
		return false
	}
	s.mu.Lock()
	s.page++
	s.mu.Unlock()
	return true
}

// Prev goes back one page if there is one.
func (s *Search) Prev() bool {
	if !s.HasPrev() {
		return false
	}
	s.mu.Lock()
	s.page--
	s.mu.Unlock()
	return true
}

// Query turns the filters into an API query. Unparseable type, status or
// year input is rejected rather than sent.
func (s *Search) Query() (api.SearchQuery, error) {
	s.mu.Lock()
	f, page := s.filters, s.page
	s.mu.Unlock()

	q := api.SearchQuery{
		Query:     strings.TrimSpace(f.Query),
		Condition: strings.TrimSpace(f.Condition),
		Location:  strings.TrimSpace(f.Location),
		Author:    strings.TrimSpace(f.Author),
		Cast:      strings.TrimSpace(f.Cast),
		Tags:      form.SplitList(f.Tags),
		Page:      page,
		Size:      api.DefaultPageSize,
	}
	if strings.TrimSpace(f.Type) != "" {
		t, err := model.ParseMediaType(f.Type)
		if err != nil {
			return api.SearchQuery{}, &form.FieldError{Field: "type", Value: f.Type, Reason: "must be BOOK or DVD"}
		}
		q.Type = t
	}
	if strings.TrimSpace(f.Status) != "" {
		st, err := model.ParseMediaStatus(f.Status)
		if err != nil {
			return api.SearchQuery{}, &form.FieldError{Field: "status", Value: f.Status, Reason: "must be AVAILABLE or LOANED"}
		}
		q.Status = st
	}
	if strings.TrimSpace(f.Year) != "" {
		y, err := form.ParseYear(f.Year)
		if err != nil {
			return api.SearchQuery{}, err
		}
		q.Year = &y
	}
	return q, nil
}

// Run executes the current query.
func (s *Search) Run(ctx context.Context) error {
	gen := s.generation()

	q, err := s.Query()
	if err != nil {
		return s.fail(gen, err)
	}
	res, err := s.api.SearchItems(ctx, q)
	if err != nil {
		return s.fail(gen, err)
	}

	return s.commit(gen, func() {
		s.results = res.Items
		s.total = res.Total
		s.banner = Banner{}
	})
}

// Results returns the items of the current page.
func (s *Search) Results() []model.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.results
}

// Total returns the match count across all pages.
func (s *Search) Total() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}
