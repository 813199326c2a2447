package api

import (
	"errors"
	"net/http"
	"strings"
)

// Error is a non-2xx API response. The server's body text is the message;
// no structured error codes are interpreted.
type Error struct {
	Status int
	Body   string
}

// Error returns the response body verbatim, minus a trailing line break. An
// empty body falls back to the HTTP status text.
func (e *Error) Error() string {
	msg := strings.TrimRight(e.Body, "\r\n")
	if strings.TrimSpace(msg) == "" {
		return http.StatusText(e.Status)
	}
	return msg
}

// StatusCode returns the HTTP status carried by err, or 0 when err is not an
// API error.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsUnauthorized reports whether err is a 401 or 403 response.
func IsUnauthorized(err error) bool {
	code := StatusCode(err)
	return code == http.StatusUnauthorized || code == http.StatusForbidden
}

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}
