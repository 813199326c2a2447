package form

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidField is wrapped by every FieldError.
var ErrInvalidField = errors.New("invalid field")

// FieldError reports text input that could not be turned into a value.
// When a build returns a FieldError nothing is sent to the API.
type FieldError struct {
	Field  string
	Value  string
	Reason string
}

func (e *FieldError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: %q %s", e.Field, e.Value, e.Reason)
}

func (e *FieldError) Unwrap() error {
	return ErrInvalidField
}

// Bounds for numeric fields.
const (
	MinYear = 0
	MaxYear = 9999
)

// SplitList parses a comma-separated free-text field: split on ',', trim each
// token, drop empty tokens. Order is preserved and duplicates are kept.
// The result is never nil.
func SplitList(s string) []string {
	out := []string{}
	for _, tok := range strings.Split(s, ",") {
		if tok = strings.TrimSpace(tok); tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

// JoinList is the editing inverse of SplitList.
func JoinList(values []string) string {
	return strings.Join(values, ", ")
}

// ParseRequiredInt parses a mandatory integer field within [lo, hi].
func ParseRequiredInt(field, s string, lo, hi int) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, &FieldError{Field: field, Reason: "is required"}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, &FieldError{Field: field, Value: s, Reason: "is not a whole number"}
	}
	if n < lo || n > hi {
		return 0, &FieldError{Field: field, Value: s, Reason: fmt.Sprintf("must be between %d and %d", lo, hi)}
	}
	return n, nil
}

// ParseOptionalInt parses an optional non-negative integer field. Empty input
// yields nil so the field is omitted from the payload.
func ParseOptionalInt(field, s string) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, &FieldError{Field: field, Value: s, Reason: "is not a whole number"}
	}
	if n < 0 {
		return nil, &FieldError{Field: field, Value: s, Reason: "must not be negative"}
	}
	return &n, nil
}

// ParseYear parses the mandatory year field.
func ParseYear(s string) (int, error) {
	return ParseRequiredInt("year", s, MinYear, MaxYear)
}

// ParseID parses a positive numeric identifier.
func ParseID(field, s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, &FieldError{Field: field, Reason: "is required"}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, &FieldError{Field: field, Value: s, Reason: "is not a valid id"}
	}
	return n, nil
}

// optionalString returns the trimmed value.
func optionalString(s string) string {
	return strings.TrimSpace(s)
}

// formatOptionalInt renders an optional int for an edit form.
func formatOptionalInt(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}
