package testutil

import (
	"fmt"
	"os"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/roach88/plms/internal/model"
)

// Fixture is a YAML description of catalog state. Lists and loans refer to
// items by title.
type Fixture struct {
	Items []FixtureItem `yaml:"items"`
	Loans []FixtureLoan `yaml:"loans"`
	Lists []FixtureList `yaml:"lists"`
}

// FixtureItem is one catalogued item.
type FixtureItem struct {
	Type      model.MediaType `yaml:"type"`
	Title     string          `yaml:"title"`
	Year      int             `yaml:"year"`
	Condition string          `yaml:"condition"`
	Location  string          `yaml:"location"`
	Tags      []string        `yaml:"tags"`
	ISBN      string          `yaml:"isbn"`
	Pages     *int            `yaml:"pages"`
	Publisher string          `yaml:"publisher"`
	Authors   []string        `yaml:"authors"`
	Runtime   *int            `yaml:"runtime"`
	Director  string          `yaml:"director"`
	Cast      []string        `yaml:"cast"`
	Deleted   bool            `yaml:"deleted"`
}

// FixtureLoan lends the item titled Item. A loan with Returned set is
// RETURNED on that date.
type FixtureLoan struct {
	Item     string `yaml:"item"`
	ToWhom   string `yaml:"to"`
	Start    string `yaml:"start"`
	Due      string `yaml:"due"`
	Returned string `yaml:"returned"`
}

// FixtureList is a media list with entries in order.
type FixtureList struct {
	Name  string   `yaml:"name"`
	Items []string `yaml:"items"`
}

// Seed loads a YAML fixture into the fake API and returns the assigned item
// ids keyed by title.
func (f *FakeAPI) Seed(doc []byte) (map[string]int64, error) {
	var fx Fixture
	if err := yaml.Unmarshal(doc, &fx); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	ids := make(map[string]int64, len(fx.Items))
	for _, fi := range fx.Items {
		req := model.ItemCreateRequest{
			Type:      fi.Type,
			Title:     fi.Title,
			Year:      fi.Year,
			Condition: fi.Condition,
			Location:  fi.Location,
			Tags:      fi.Tags,
		}
		switch fi.Type {
		case model.MediaBook:
			req.BookInfo = &model.BookInfo{ISBN: fi.ISBN, Pages: fi.Pages, Publisher: fi.Publisher, Authors: fi.Authors}
		case model.MediaDVD:
			req.DvdInfo = &model.DvdInfo{Runtime: fi.Runtime, Director: fi.Director, Cast: fi.Cast}
		default:
			return nil, fmt.Errorf("fixture item %q: unknown type %q", fi.Title, fi.Type)
		}
		it := f.insertItem(req)
		if fi.Deleted {
			now := f.now()
			it.DeletedAt = &now
		}
		ids[fi.Title] = it.ID
	}

	for _, fl := range fx.Loans {
		itemID, ok := ids[fl.Item]
		if !ok {
			return nil, fmt.Errorf("fixture loan: unknown item %q", fl.Item)
		}
		loan := &model.Loan{
			ID:        f.id(),
			ItemID:    itemID,
			ToWhom:    fl.ToWhom,
			StartDate: fl.Start,
			DueDate:   fl.Due,
			Status:    model.LoanActive,
		}
		if fl.Returned != "" {
			loan.Status = model.LoanReturned
			loan.ReturnedAt = fl.Returned
		}
		f.loans[loan.ID] = loan
	}

	for _, fl := range fx.Lists {
		l := &model.MediaList{ID: f.id(), Name: fl.Name, Items: []model.MediaListItem{}}
		for _, title := range fl.Items {
			itemID, ok := ids[title]
			if !ok {
				return nil, fmt.Errorf("fixture list %q: unknown item %q", fl.Name, title)
			}
			l.Items = append(l.Items, model.MediaListItem{ItemID: itemID})
		}
		f.lists[l.ID] = l
	}
	return ids, nil
}

// SeedFile loads the fixture at path, failing the test on error.
func (f *FakeAPI) SeedFile(t testing.TB, path string) map[string]int64 {
	t.Helper()
	doc, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	ids, err := f.Seed(doc)
	if err != nil {
		t.Fatalf("seed fixture: %v", err)
	}
	return ids
}

// MustSeed loads an inline fixture, failing the test on error.
func (f *FakeAPI) MustSeed(t testing.TB, doc string) map[string]int64 {
	t.Helper()
	ids, err := f.Seed([]byte(doc))
	if err != nil {
		t.Fatalf("seed fixture: %v", err)
	}
	return ids
}
