package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// MediaType discriminates the type-specific payload of an Item.
type MediaType string

const (
	MediaBook MediaType = "BOOK"
	MediaDVD  MediaType = "DVD"
)

// MediaStatus is the derived availability of an Item.
type MediaStatus string

const (
	StatusAvailable MediaStatus = "AVAILABLE"
	StatusLoaned    MediaStatus = "LOANED"
)

// LoanStatus is the lifecycle state of a Loan.
type LoanStatus string

const (
	LoanActive   LoanStatus = "ACTIVE"
	LoanReturned LoanStatus = "RETURNED"
)

// Provider names the API uses for external candidates and links.
const (
	ProviderOpenLibrary = "OPEN_LIBRARY"
	ProviderGoogleBooks = "GOOGLE_BOOKS"
	ProviderOMDb        = "OMDB"
)

// ErrInvalidItem is returned by Item.Validate for structurally broken items.
var ErrInvalidItem = errors.New("invalid item")

// BookInfo is the BOOK-specific payload.
type BookInfo struct {
	ISBN      string   `json:"isbn,omitempty"`
	Pages     *int     `json:"pages,omitempty"`
	Publisher string   `json:"publisher,omitempty"`
	Authors   []string `json:"authors,omitempty"`
}

// DvdInfo is the DVD-specific payload.
type DvdInfo struct {
	Runtime  *int     `json:"runtime,omitempty"`
	Director string   `json:"director,omitempty"`
	Cast     []string `json:"cast,omitempty"`
}

// ExternalLink is a cross-reference to an external metadata provider.
type ExternalLink struct {
	ID         int64      `json:"id"`
	Provider   string     `json:"provider"`
	ExternalID string     `json:"externalId,omitempty"`
	URL        string     `json:"url,omitempty"`
	Rating     *float64   `json:"rating,omitempty"`
	Summary    string     `json:"summary,omitempty"`
	LastSyncAt *time.Time `json:"lastSyncAt,omitempty"`
}

// Item is a catalogued Book or DVD.
type Item struct {
	ID              int64          `json:"id"`
	Type            MediaType      `json:"type"`
	Title           string         `json:"title"`
	Year            int            `json:"year"`
	Condition       string         `json:"condition,omitempty"`
	Location        string         `json:"location,omitempty"`
	Status          MediaStatus    `json:"status"`
	DeletedAt       *time.Time     `json:"deletedAt,omitempty"`
	CreatedAt       *time.Time     `json:"createdAt,omitempty"`
	UpdatedAt       *time.Time     `json:"updatedAt,omitempty"`
	ProgressPercent int            `json:"progressPercent"`
	ProgressValue   int            `json:"progressValue"`
	TotalValue      int            `json:"totalValue"`
	Tags            []string       `json:"tags"`
	BookInfo        *BookInfo      `json:"bookInfo,omitempty"`
	DvdInfo         *DvdInfo       `json:"dvdInfo,omitempty"`
	ExternalLinks   []ExternalLink `json:"externalLinks"`
}

// Validate checks that exactly one type-specific payload is populated and
// that it matches Type.
func (i *Item) Validate() error {
	switch i.Type {
	case MediaBook:
		if i.DvdInfo != nil {
			return fmt.Errorf("%w: book %d carries dvdInfo", ErrInvalidItem, i.ID)
		}
		if i.BookInfo == nil {
			return fmt.Errorf("%w: book %d has no bookInfo", ErrInvalidItem, i.ID)
		}
	case MediaDVD:
		if i.BookInfo != nil {
			return fmt.Errorf("%w: dvd %d carries bookInfo", ErrInvalidItem, i.ID)
		}
		if i.DvdInfo == nil {
			return fmt.Errorf("%w: dvd %d has no dvdInfo", ErrInvalidItem, i.ID)
		}
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidItem, i.Type)
	}
	return nil
}

// IsDeleted reports whether the item sits in the trash.
func (i *Item) IsDeleted() bool {
	return i.DeletedAt != nil
}

// Authors returns the book authors, or nil for DVDs.
func (i *Item) Authors() []string {
	if i.BookInfo == nil {
		return nil
	}
	return i.BookInfo.Authors
}

// Cast returns the DVD cast, or nil for books.
func (i *Item) Cast() []string {
	if i.DvdInfo == nil {
		return nil
	}
	return i.DvdInfo.Cast
}

// Loan records an Item being lent out.
type Loan struct {
	ID         int64      `json:"id"`
	ItemID     int64      `json:"itemId"`
	ItemTitle  string     `json:"itemTitle,omitempty"`
	ItemType   MediaType  `json:"itemType,omitempty"`
	ToWhom     string     `json:"toWhom"`
	StartDate  string     `json:"startDate"`
	DueDate    string     `json:"dueDate"`
	ReturnedAt string     `json:"returnedAt,omitempty"`
	Status     LoanStatus `json:"status"`
}

// ProgressLog is one dated progress entry for an Item.
type ProgressLog struct {
	ID              int64  `json:"id"`
	Date            string `json:"date"`
	DurationMinutes *int   `json:"durationMinutes,omitempty"`
	PageOrMinute    int    `json:"pageOrMinute"`
	Percent         int    `json:"percent"`
	ReaderName      string `json:"readerName,omitempty"`
}

// MediaListItem is one ordered entry of a MediaList.
type MediaListItem struct {
	ItemID   int64  `json:"itemId"`
	Title    string `json:"title"`
	Position int    `json:"position"`
	Priority int    `json:"priority"`
}

// MediaList is a named, ordered collection of Item references.
type MediaList struct {
	ID    int64           `json:"id"`
	Name  string          `json:"name"`
	Items []MediaListItem `json:"items"`
}

// ItemIDs returns the list's item ids in display order.
func (l *MediaList) ItemIDs() []int64 {
	ids := make([]int64, len(l.Items))
	for i, it := range l.Items {
		ids[i] = it.ItemID
	}
	return ids
}

// ExternalCandidate is one provider search hit offered during ISBN lookup.
type ExternalCandidate struct {
	Provider      string   `json:"provider"`
	ExternalID    string   `json:"externalId"`
	Title         string   `json:"title"`
	Authors       []string `json:"authors,omitempty"`
	Publisher     string   `json:"publisher,omitempty"`
	PageCount     *int     `json:"pageCount,omitempty"`
	Year          *int     `json:"year,omitempty"`
	Description   string   `json:"description,omitempty"`
	InfoLink      string   `json:"infoLink,omitempty"`
	AverageRating *float64 `json:"averageRating,omitempty"`
}

// ProviderLabel returns a human-readable provider name.
func ProviderLabel(provider string) string {
	switch provider {
	case ProviderOpenLibrary:
		return "Open Library"
	case ProviderGoogleBooks:
		return "Google Books"
	case ProviderOMDb:
		return "OMDb"
	}
	return provider
}

// DiffField is one attribute where stored data differs from fresh provider data.
type DiffField struct {
	Field        string `json:"field"`
	CurrentValue string `json:"currentValue,omitempty"`
	NewValue     string `json:"newValue,omitempty"`
}

// ImportSummary is the result of a bulk import.
type ImportSummary struct {
	Added   int      `json:"added"`
	Updated int      `json:"updated"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors"`
}

// SyncStatus is the backend sync indicator.
type SyncStatus struct {
	Enabled           bool       `json:"enabled"`
	LastSyncAt        *time.Time `json:"lastSyncAt,omitempty"`
	LastStatus        string     `json:"lastStatus,omitempty"`
	LastConflictCount *int       `json:"lastConflictCount,omitempty"`
}

// ConflictCount returns the last conflict count, treating absent as zero.
func (s *SyncStatus) ConflictCount() int {
	if s == nil || s.LastConflictCount == nil {
		return 0
	}
	return *s.LastConflictCount
}

// User is the authenticated user's profile.
type User struct {
	ID          int64      `json:"id"`
	Email       string     `json:"email"`
	DisplayName string     `json:"displayName"`
	CreatedAt   time.Time  `json:"createdAt"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}

// AuthResponse is returned by login and registration.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// SearchResponse is one page of search results.
type SearchResponse struct {
	Items []Item `json:"items"`
	Page  int    `json:"page"`
	Size  int    `json:"size"`
	Total int64  `json:"total"`
}

// ParseMediaType parses user input into a MediaType (case-insensitive).
func ParseMediaType(s string) (MediaType, error) {
	switch MediaType(strings.ToUpper(strings.TrimSpace(s))) {
	case MediaBook:
		return MediaBook, nil
	case MediaDVD:
		return MediaDVD, nil
	}
	return "", fmt.Errorf("unknown media type %q (want BOOK or DVD)", s)
}

// ParseMediaStatus parses user input into a MediaStatus (case-insensitive).
func ParseMediaStatus(s string) (MediaStatus, error) {
	switch MediaStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case StatusAvailable:
		return StatusAvailable, nil
	case StatusLoaned:
		return StatusLoaned, nil
	}
	return "", fmt.Errorf("unknown status %q (want AVAILABLE or LOANED)", s)
}

// ParseLoanStatus parses user input into a LoanStatus (case-insensitive).
func ParseLoanStatus(s string) (LoanStatus, error) {
	switch LoanStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case LoanActive:
		return LoanActive, nil
	case LoanReturned:
		return LoanReturned, nil
	}
	return "", fmt.Errorf("unknown loan status %q (want ACTIVE or RETURNED)", s)
}
