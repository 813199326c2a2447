package model

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemValidate(t *testing.T) {
	tests := []struct {
		name    string
		item    Item
		wantErr bool
	}{
		{"book with bookInfo", Item{Type: MediaBook, BookInfo: &BookInfo{}}, false},
		{"dvd with dvdInfo", Item{Type: MediaDVD, DvdInfo: &DvdInfo{}}, false},
		{"book without info", Item{Type: MediaBook}, true},
		{"dvd without info", Item{Type: MediaDVD}, true},
		{"book with both", Item{Type: MediaBook, BookInfo: &BookInfo{}, DvdInfo: &DvdInfo{}}, true},
		{"dvd carrying bookInfo", Item{Type: MediaDVD, BookInfo: &BookInfo{}}, true},
		{"unknown type", Item{Type: "VHS", BookInfo: &BookInfo{}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.item.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidItem))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestItemDecodesWireFormat(t *testing.T) {
	raw := `{
		"id": 7, "type": "BOOK", "title": "Dune", "year": 1965,
		"status": "LOANED", "progressPercent": 40, "progressValue": 200, "totalValue": 500,
		"tags": ["classic", "sci-fi"],
		"bookInfo": {"isbn": "9780441013593", "pages": 500, "authors": ["Frank Herbert"]},
		"externalLinks": [{"id": 1, "provider": "OPEN_LIBRARY", "externalId": "OL1"}],
		"deletedAt": null
	}`

	var item Item
	require.NoError(t, json.Unmarshal([]byte(raw), &item))
	require.NoError(t, item.Validate())

	assert.Equal(t, int64(7), item.ID)
	assert.Equal(t, StatusLoaned, item.Status)
	assert.False(t, item.IsDeleted())
	assert.Equal(t, []string{"Frank Herbert"}, item.Authors())
	assert.Nil(t, item.Cast())
	require.NotNil(t, item.BookInfo.Pages)
	assert.Equal(t, 500, *item.BookInfo.Pages)
	require.Len(t, item.ExternalLinks, 1)
	assert.Equal(t, "OPEN_LIBRARY", item.ExternalLinks[0].Provider)
}

func TestItemUpdateRequestHasNoStatus(t *testing.T) {
	data, err := json.Marshal(ItemUpdateRequest{Title: "x", Year: 2000, Tags: []string{}})
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	_, hasStatus := fields["status"]
	assert.False(t, hasStatus)
	assert.Equal(t, "", fields["condition"], "an empty condition is still sent")
	assert.Equal(t, "", fields["location"])
}

func TestNewConfirmRequest(t *testing.T) {
	pages := 320
	c := ExternalCandidate{
		Provider:   ProviderOpenLibrary,
		ExternalID: "OL123M",
		Title:      "Mock Book",
		Authors:    []string{"A. Writer"},
		PageCount:  &pages,
	}
	req := NewConfirmRequest(c, "9780000000000")

	assert.Equal(t, "OPEN_LIBRARY", req.Provider)
	assert.Equal(t, "OL123M", req.ExternalID)
	assert.Equal(t, "Mock Book", req.Title)
	assert.Equal(t, &pages, req.PageCount)
	assert.Equal(t, "9780000000000", req.ISBN)
}

func TestProviderLabel(t *testing.T) {
	assert.Equal(t, "Open Library", ProviderLabel(ProviderOpenLibrary))
	assert.Equal(t, "OMDb", ProviderLabel(ProviderOMDb))
	assert.Equal(t, "SOMETHING", ProviderLabel("SOMETHING"))
}

func TestParseEnums(t *testing.T) {
	mt, err := ParseMediaType(" dvd ")
	require.NoError(t, err)
	assert.Equal(t, MediaDVD, mt)

	_, err = ParseMediaType("vinyl")
	assert.Error(t, err)

	st, err := ParseMediaStatus("loaned")
	require.NoError(t, err)
	assert.Equal(t, StatusLoaned, st)

	ls, err := ParseLoanStatus("Returned")
	require.NoError(t, err)
	assert.Equal(t, LoanReturned, ls)

	_, err = ParseLoanStatus("REMOVED")
	assert.Error(t, err)
}

func TestSyncStatusConflictCount(t *testing.T) {
	var nilStatus *SyncStatus
	assert.Equal(t, 0, nilStatus.ConflictCount())
	assert.Equal(t, 0, (&SyncStatus{}).ConflictCount())

	n := 3
	assert.Equal(t, 3, (&SyncStatus{LastConflictCount: &n}).ConflictCount())
}

func TestMediaListItemIDs(t *testing.T) {
	l := MediaList{Items: []MediaListItem{{ItemID: 4}, {ItemID: 2}, {ItemID: 9}}}
	assert.Equal(t, []int64{4, 2, 9}, l.ItemIDs())
	assert.Empty(t, (&MediaList{}).ItemIDs())
}
