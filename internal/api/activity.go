package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/roach88/plms/internal/model"
)

// ListProgress returns an item's progress history.
func (c *Client) ListProgress(ctx context.Context, itemID int64) ([]model.ProgressLog, error) {
	var out []model.ProgressLog
	if err := c.get(ctx, idPath("/items/%d/progress", itemID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// LogProgress appends a progress entry. The server refuses it when the item
// has no active loan.
func (c *Client) LogProgress(ctx context.Context, itemID int64, req *model.ProgressRequest) (*model.ProgressLog, error) {
	var out model.ProgressLog
	if err := c.post(ctx, idPath("/items/%d/progress", itemID), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteProgress removes one progress entry.
func (c *Client) DeleteProgress(ctx context.Context, itemID, logID int64) error {
	return c.do(ctx, http.MethodDelete, idPath("/items/%d/progress/%d", itemID, logID), nil, nil, nil)
}

// GetActiveLoan returns the item's active loan, or nil when the server
// answers 404 or an empty body.
func (c *Client) GetActiveLoan(ctx context.Context, itemID int64) (*model.Loan, error) {
	var out *model.Loan
	err := c.get(ctx, idPath("/items/%d/loan", itemID), nil, &out)
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CreateLoan lends an item out.
func (c *Client) CreateLoan(ctx context.Context, itemID int64, req *model.LoanRequest) (*model.Loan, error) {
	var out model.Loan
	if err := c.post(ctx, idPath("/items/%d/loan", itemID), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ReturnLoan closes a loan.
func (c *Client) ReturnLoan(ctx context.Context, loanID int64) (*model.Loan, error) {
	var out model.Loan
	if err := c.post(ctx, idPath("/loans/%d/return", loanID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListLoans returns loans, optionally filtered by status. An empty status
// lists every loan.
func (c *Client) ListLoans(ctx context.Context, status model.LoanStatus) ([]model.Loan, error) {
	var query url.Values
	if status != "" {
		query = url.Values{"status": {string(status)}}
	}
	var out []model.Loan
	if err := c.get(ctx, "/loans", query, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// OverdueLoans returns active loans past their due date.
func (c *Client) OverdueLoans(ctx context.Context) ([]model.Loan, error) {
	var out []model.Loan
	if err := c.get(ctx, "/loans/overdue", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
