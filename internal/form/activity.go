package form

import (
	"strings"

	"github.com/roach88/plms/internal/model"
)

// LoanForm holds the raw text of the "mark as loaned" form.
type LoanForm struct {
	ToWhom    string
	StartDate string
	DueDate   string
}

// Build validates the form and returns the loan payload. Whether the due
// date may precede the start date is the server's call.
func (f *LoanForm) Build() (*model.LoanRequest, error) {
	who := strings.TrimSpace(f.ToWhom)
	if who == "" {
		return nil, &FieldError{Field: "toWhom", Reason: "is required"}
	}
	start := strings.TrimSpace(f.StartDate)
	if !model.ValidDate(start) {
		return nil, &FieldError{Field: "startDate", Value: start, Reason: "is not a YYYY-MM-DD date"}
	}
	due := strings.TrimSpace(f.DueDate)
	if !model.ValidDate(due) {
		return nil, &FieldError{Field: "dueDate", Value: due, Reason: "is not a YYYY-MM-DD date"}
	}
	return &model.LoanRequest{ToWhom: who, StartDate: start, DueDate: due}, nil
}

// ProgressForm holds the raw text of the progress entry form.
type ProgressForm struct {
	Date            string
	PageOrMinute    string
	DurationMinutes string
}

// Build validates the form and returns the progress payload.
func (f *ProgressForm) Build() (*model.ProgressRequest, error) {
	date := strings.TrimSpace(f.Date)
	if !model.ValidDate(date) {
		return nil, &FieldError{Field: "date", Value: date, Reason: "is not a YYYY-MM-DD date"}
	}
	value, err := ParseOptionalInt("pageOrMinute", f.PageOrMinute)
	if err != nil {
		return nil, err
	}
	if value == nil {
		return nil, &FieldError{Field: "pageOrMinute", Reason: "is required"}
	}
	duration, err := ParseOptionalInt("durationMinutes", f.DurationMinutes)
	if err != nil {
		return nil, err
	}
	return &model.ProgressRequest{Date: date, PageOrMinute: *value, DurationMinutes: duration}, nil
}
