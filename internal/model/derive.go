package model

import (
	"math"
	"time"
)

// DateLayout is the ISO 8601 calendar date format used by loans and progress.
const DateLayout = "2006-01-02"

// DeriveStatus projects an item's status from its loan relationship.
// An item is LOANED iff it has an ACTIVE loan.
func DeriveStatus(activeLoan *Loan) MediaStatus {
	if activeLoan != nil && activeLoan.Status == LoanActive {
		return StatusLoaned
	}
	return StatusAvailable
}

// ProgressPercent computes value/total*100 rounded half away from zero and
// clamped to [0, 100]. A non-positive total yields 0.
func ProgressPercent(value, total int) int {
	if total <= 0 {
		return 0
	}
	p := int(math.Round(float64(value) * 100 / float64(total)))
	return max(0, min(100, p))
}

// Today formats now as an ISO calendar date in now's location.
func Today(now time.Time) string {
	return now.Format(DateLayout)
}

// ValidDate reports whether s is a YYYY-MM-DD calendar date.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// IsOverdue reports whether the loan is ACTIVE and due before today.
// Both dates are YYYY-MM-DD, so string order is date order.
func (l *Loan) IsOverdue(today string) bool {
	return l.Status == LoanActive && l.DueDate < today
}

// OverdueLoanIDs returns the ids of overdue loans in loans.
func OverdueLoanIDs(loans []Loan, today string) map[int64]bool {
	ids := make(map[int64]bool)
	for i := range loans {
		if loans[i].IsOverdue(today) {
			ids[loans[i].ID] = true
		}
	}
	return ids
}

// CountByType counts items of the given type.
func CountByType(items []Item, t MediaType) int {
	n := 0
	for i := range items {
		if items[i].Type == t {
			n++
		}
	}
	return n
}

// CountByStatus counts items with the given status.
func CountByStatus(items []Item, s MediaStatus) int {
	n := 0
	for i := range items {
		if items[i].Status == s {
			n++
		}
	}
	return n
}

// FilterByType returns the items of the given type, preserving order.
func FilterByType(items []Item, t MediaType) []Item {
	var out []Item
	for _, it := range items {
		if it.Type == t {
			out = append(out, it)
		}
	}
	return out
}
