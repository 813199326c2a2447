package model

// ItemCreateRequest is the payload of POST /items.
type ItemCreateRequest struct {
	Type      MediaType `json:"type"`
	Title     string    `json:"title"`
	Year      int       `json:"year"`
	Condition string    `json:"condition,omitempty"`
	Location  string    `json:"location,omitempty"`
	Tags      []string  `json:"tags"`
	BookInfo  *BookInfo `json:"bookInfo,omitempty"`
	DvdInfo   *DvdInfo  `json:"dvdInfo,omitempty"`
}

// ItemUpdateRequest is the payload of PUT /items/:id.
// There is no status field: status is derived from loans server-side.
//
// The server keeps the stored value for any key the payload leaves out, so
// every editable field is always sent. A cleared field goes out as "" or [].
type ItemUpdateRequest struct {
	Title     string          `json:"title"`
	Year      int             `json:"year"`
	Condition string          `json:"condition"`
	Location  string          `json:"location"`
	Tags      []string        `json:"tags"`
	BookInfo  *BookInfoUpdate `json:"bookInfo,omitempty"`
	DvdInfo   *DvdInfoUpdate  `json:"dvdInfo,omitempty"`
}

// BookInfoUpdate is the book half of an update. Pages goes out as null when
// cleared.
type BookInfoUpdate struct {
	ISBN      string   `json:"isbn"`
	Pages     *int     `json:"pages"`
	Publisher string   `json:"publisher"`
	Authors   []string `json:"authors"`
}

// DvdInfoUpdate is the DVD half of an update. Runtime goes out as null when
// cleared.
type DvdInfoUpdate struct {
	Runtime  *int     `json:"runtime"`
	Director string   `json:"director"`
	Cast     []string `json:"cast"`
}

// LoginRequest is the payload of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the payload of POST /auth/register.
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

// ConfirmRequest is the payload of POST /external/books/confirm: the chosen
// candidate's fields plus the ISBN that produced it.
type ConfirmRequest struct {
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
	ISBN          string   `json:"isbn"`
}

// NewConfirmRequest builds a confirm payload from a candidate.
func NewConfirmRequest(c ExternalCandidate, isbn string) ConfirmRequest {
	return ConfirmRequest{
		Provider:      c.Provider,
		ExternalID:    c.ExternalID,
		Title:         c.Title,
		Authors:       c.Authors,
		Publisher:     c.Publisher,
		PageCount:     c.PageCount,
		Year:          c.Year,
		Description:   c.Description,
		InfoLink:      c.InfoLink,
		AverageRating: c.AverageRating,
		ISBN:          isbn,
	}
}

// ProgressRequest is the payload of POST /items/:id/progress.
type ProgressRequest struct {
	Date            string `json:"date"`
	PageOrMinute    int    `json:"pageOrMinute"`
	DurationMinutes *int   `json:"durationMinutes,omitempty"`
}

// LoanRequest is the payload of POST /items/:id/loan.
type LoanRequest struct {
	ToWhom    string `json:"toWhom"`
	StartDate string `json:"startDate"`
	DueDate   string `json:"dueDate"`
}

// CreateListRequest is the payload of POST /lists.
type CreateListRequest struct {
	Name string `json:"name"`
}

// ListItemRequest is the payload of POST /lists/:id/items.
type ListItemRequest struct {
	ItemID   int64 `json:"itemId"`
	Priority *int  `json:"priority,omitempty"`
}

// ReorderRequest is the payload of POST /lists/:id/items/reorder. It always
// carries the complete ordered id sequence.
type ReorderRequest struct {
	ItemIDs []int64 `json:"itemIds"`
}

// ApplyRequest is the payload of POST /items/:id/external-apply.
type ApplyRequest struct {
	Fields []string `json:"fields"`
}

// SyncEnableRequest is the payload of POST /sync/enable.
type SyncEnableRequest struct {
	Enabled bool `json:"enabled"`
}
