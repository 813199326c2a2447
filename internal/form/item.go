package form

import (
	"strconv"
	"strings"

	"github.com/roach88/plms/internal/model"
)

// ManualForm holds the raw text of a manual item entry, one string per input.
type ManualForm struct {
	Type      model.MediaType
	Title     string
	Year      string
	Condition string
	Location  string
	Tags      string

	// BOOK fields
	ISBN      string
	Pages     string
	Publisher string
	Authors   string

	// DVD fields
	Runtime  string
	Director string
	Cast     string
}

// Build turns the form into a type-discriminated create payload. A BOOK
// payload carries only bookInfo and a DVD payload only dvdInfo; the fields of
// the other type are ignored.
func (f *ManualForm) Build() (*model.ItemCreateRequest, error) {
	title := strings.TrimSpace(f.Title)
	if title == "" {
		return nil, &FieldError{Field: "title", Reason: "is required"}
	}
	year, err := ParseYear(f.Year)
	if err != nil {
		return nil, err
	}

	req := &model.ItemCreateRequest{
		Type:      f.Type,
		Title:     title,
		Year:      year,
		Condition: optionalString(f.Condition),
		Location:  optionalString(f.Location),
		Tags:      SplitList(f.Tags),
	}

	switch f.Type {
	case model.MediaBook:
		pages, err := ParseOptionalInt("pages", f.Pages)
		if err != nil {
			return nil, err
		}
		req.BookInfo = &model.BookInfo{
			ISBN:      optionalString(f.ISBN),
			Pages:     pages,
			Publisher: optionalString(f.Publisher),
			Authors:   SplitList(f.Authors),
		}
	case model.MediaDVD:
		runtime, err := ParseOptionalInt("runtime", f.Runtime)
		if err != nil {
			return nil, err
		}
		req.DvdInfo = &model.DvdInfo{
			Runtime:  runtime,
			Director: optionalString(f.Director),
			Cast:     SplitList(f.Cast),
		}
	default:
		return nil, &FieldError{Field: "type", Value: string(f.Type), Reason: "must be BOOK or DVD"}
	}

	if err := ValidateCreate(req); err != nil {
		return nil, err
	}
	return req, nil
}

// EditForm holds the editable text of an existing item. Fields start out as
// the item's current values so untouched inputs are sent back unchanged.
type EditForm struct {
	Title     string
	Year      string
	Condition string
	Location  string
	Tags      string

	ISBN      string
	Pages     string
	Publisher string
	Authors   string

	Runtime  string
	Director string
	Cast     string
}

// NewEditForm fills an EditForm from item.
func NewEditForm(item *model.Item) *EditForm {
	f := &EditForm{
		Title:     item.Title,
		Year:      strconv.Itoa(item.Year),
		Condition: item.Condition,
		Location:  item.Location,
		Tags:      JoinList(item.Tags),
	}
	if b := item.BookInfo; b != nil {
		f.ISBN = b.ISBN
		f.Pages = formatOptionalInt(b.Pages)
		f.Publisher = b.Publisher
		f.Authors = JoinList(b.Authors)
	}
	if d := item.DvdInfo; d != nil {
		f.Runtime = formatOptionalInt(d.Runtime)
		f.Director = d.Director
		f.Cast = JoinList(d.Cast)
	}
	return f
}

// Build turns the form into a full update payload for an item of type t.
// The payload never carries status. On error nothing should be sent and the
// caller's copy of the item stays as it was.
func (f *EditForm) Build(t model.MediaType) (*model.ItemUpdateRequest, error) {
	title := strings.TrimSpace(f.Title)
	if title == "" {
		return nil, &FieldError{Field: "title", Reason: "is required"}
	}
	year, err := ParseYear(f.Year)
	if err != nil {
		return nil, err
	}

	req := &model.ItemUpdateRequest{
		Title:     title,
		Year:      year,
		Condition: optionalString(f.Condition),
		Location:  optionalString(f.Location),
		Tags:      SplitList(f.Tags),
	}

	switch t {
	case model.MediaBook:
		pages, err := ParseOptionalInt("pages", f.Pages)
		if err != nil {
			return nil, err
		}
		req.BookInfo = &model.BookInfoUpdate{
			ISBN:      optionalString(f.ISBN),
			Pages:     pages,
			Publisher: optionalString(f.Publisher),
			Authors:   SplitList(f.Authors),
		}
	case model.MediaDVD:
		runtime, err := ParseOptionalInt("runtime", f.Runtime)
		if err != nil {
			return nil, err
		}
		req.DvdInfo = &model.DvdInfoUpdate{
			Runtime:  runtime,
			Director: optionalString(f.Director),
			Cast:     SplitList(f.Cast),
		}
	default:
		return nil, &FieldError{Field: "type", Value: string(t), Reason: "must be BOOK or DVD"}
	}

	if err := ValidateUpdate(req); err != nil {
		return nil, err
	}
	return req, nil
}
