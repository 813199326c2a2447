package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/roach88/plms/internal/model"
)

// Format is a bulk transfer format.
type Format string

const (
	FormatJSON Format = "json"
	// FormatCSV is exported as a zip archive of CSV files.
	FormatCSV Format = "csv"
)

// ParseFormat parses a user-supplied transfer format.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	}
	return "", fmt.Errorf("unknown format %q (want json or csv)", s)
}

// ExportFilename is the download name for an export in format f.
func ExportFilename(f Format) string {
	if f == FormatCSV {
		return "plms-export.zip"
	}
	return "plms-export.json"
}

// Export streams the full export in format f to w and returns the number of
// bytes written.
func (c *Client) Export(ctx context.Context, f Format, w io.Writer) (int64, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/export", url.Values{"format": {string(f)}}, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "*/*")

	resp, err := c.send(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("download export: %w", err)
	}
	return n, nil
}

// Import uploads r as a multipart file named filename. When the server
// rejects the file with a summary body, the summary is returned alongside
// the error.
func (c *Client) Import(ctx context.Context, f Format, filename string, r io.Reader) (*model.ImportSummary, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		part, err := mw.CreateFormFile("file", filename)
		if err == nil {
			_, err = io.Copy(part, r)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	req, err := c.newRequest(ctx, http.MethodPost, "/import", url.Values{"format": {string(f)}}, pr)
	if err != nil {
		pr.Close()
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.send(req)
	if err != nil {
		pr.Close()
		var apiErr *Error
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusBadRequest {
			var summary model.ImportSummary
			if json.Unmarshal([]byte(apiErr.Body), &summary) == nil && summary.Errors != nil {
				return &summary, err
			}
		}
		return nil, err
	}
	defer resp.Body.Close()

	var out model.ImportSummary
	if err := decodeBody(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
