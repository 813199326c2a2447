package api

import (
	"context"
	"net/url"
	"strconv"

	"github.com/roach88/plms/internal/model"
)

// DefaultPageSize is the fixed search page size.
const DefaultPageSize = 12

// SearchQuery holds the optional search filters plus pagination. Zero-valued
// filters are omitted from the request.
type SearchQuery struct {
	Query     string
	Type      model.MediaType
	Status    model.MediaStatus
	Year      *int
	Condition string
	Location  string
	Author    string
	Cast      string
	Tags      []string
	Page      int
	Size      int
}

// Values encodes the query string. Tags repeat; page and size are always
// present, with size defaulting to DefaultPageSize.
func (q SearchQuery) Values() url.Values {
	v := url.Values{}
	set := func(key, val string) {
		if val != "" {
			v.Set(key, val)
		}
	}
	set("query", q.Query)
	set("type", string(q.Type))
	set("status", string(q.Status))
	if q.Year != nil {
		v.Set("year", strconv.Itoa(*q.Year))
	}
	set("condition", q.Condition)
	set("location", q.Location)
	set("author", q.Author)
	set("cast", q.Cast)
	for _, tag := range q.Tags {
		if tag != "" {
			v.Add("tags", tag)
		}
	}
	size := q.Size
	if size <= 0 {
		size = DefaultPageSize
	}
	page := q.Page
	if page < 0 {
		page = 0
	}
	v.Set("page", strconv.Itoa(page))
	v.Set("size", strconv.Itoa(size))
	return v
}

// SearchItems runs a filtered, paginated search.
func (c *Client) SearchItems(ctx context.Context, q SearchQuery) (*model.SearchResponse, error) {
	var out model.SearchResponse
	if err := c.get(ctx, "/items/search", q.Values(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}
