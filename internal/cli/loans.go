package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/plms/internal/form"
	"github.com/roach88/plms/internal/model"
	"github.com/roach88/plms/internal/render"
	"github.com/roach88/plms/internal/view"
)

// LoanOptions holds flags for loan create.
type LoanOptions struct {
	*RootOptions
	Form form.LoanForm
}

// NewLoanCommand creates the loan command group.
func NewLoanCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "loan",
		Aliases: []string{"loans"},
		Short:   "Lend items out and track their return",
	}
	cmd.AddCommand(newLoanCreateCommand(rootOpts))
	cmd.AddCommand(newLoanReturnCommand(rootOpts))
	cmd.AddCommand(newLoanListCommand(rootOpts))
	cmd.AddCommand(newLoanOverdueCommand(rootOpts))
	return cmd
}

func newLoanCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LoanOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "create <itemId>",
		Short: "Lend an item to someone",
		Long: `Lend an item. The start date defaults to today. An item can only
have one active loan.

Example:
  plms loan create 3 --to Sam --due 2026-11-02`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, a *app) error {
				v, err := loadItem(ctx, a, args[0])
				if err != nil {
					return err
				}
				f := v.NewLoanForm()
				f.ToWhom = opts.Form.ToWhom
				f.DueDate = opts.Form.DueDate
				if cmd.Flags().Changed("start") {
					f.StartDate = opts.Form.StartDate
				}
				loan, err := v.CreateLoan(ctx, f)
				if err != nil {
					return err
				}
				return a.out.Emit(loan, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "Loan #%d: %s to %s, due %s.\n",
						loan.ID, v.Item().Title, loan.ToWhom, loan.DueDate)
					return err
				})
			})
		},
	}

	cmd.Flags().StringVar(&opts.Form.ToWhom, "to", "", "borrower (required)")
	cmd.Flags().StringVar(&opts.Form.StartDate, "start", "", "start date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&opts.Form.DueDate, "due", "", "due date YYYY-MM-DD (required)")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("due")
	return cmd
}

// returnResult is the JSON shape of a loan return: the closed loan and the
// loans still active.
type returnResult struct {
	Returned *model.Loan  `json:"returned"`
	Active   []model.Loan `json:"active"`
}

func newLoanReturnCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "return <loanId>",
		Short:         "Mark a loan as returned",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, func(ctx context.Context, a *app) error {
				id, err := form.ParseID("loanId", args[0])
				if err != nil {
					return err
				}
				v := view.NewLoans(a.client, a.clock)
				loan, err := v.MarkReturned(ctx, id)
				if err != nil {
					return err
				}
				active := v.Loans()
				if active == nil {
					active = []model.Loan{}
				}
				overdue := v.Overdue()
				return a.out.Emit(returnResult{Returned: loan, Active: active}, func(w io.Writer) error {
					if _, err := fmt.Fprintf(w, "Loan #%d returned %s.\n", loan.ID, loan.ReturnedAt); err != nil {
						return err
					}
					return render.Loans(w, active, overdue)
				})
			})
		},
	}
}

// loanPage is the JSON shape of a loan listing.
type loanPage struct {
	Filter  view.LoanFilter `json:"filter,omitempty"`
	Loans   []model.Loan    `json:"loans"`
	Overdue []int64         `json:"overdue"`
}

func emitLoans(a *app, filter view.LoanFilter, loans []model.Loan, overdue map[int64]bool) error {
	if loans == nil {
		loans = []model.Loan{}
	}
	page := loanPage{Filter: filter, Loans: loans, Overdue: []int64{}}
	for _, l := range loans {
		if overdue[l.ID] {
			page.Overdue = append(page.Overdue, l.ID)
		}
	}
	return a.out.Emit(page, func(w io.Writer) error {
		return render.Loans(w, loans, overdue)
	})
}

func newLoanListCommand(rootOpts *RootOptions) *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List loans with overdue flags",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, func(ctx context.Context, a *app) error {
				filter, err := view.ParseLoanFilter(status)
				if err != nil {
					return &form.FieldError{Field: "status", Value: status, Reason: "must be ALL, ACTIVE or RETURNED"}
				}
				v := view.NewLoans(a.client, a.clock)
				v.SetFilter(filter)
				if err := v.Load(ctx); err != nil {
					return err
				}
				return emitLoans(a, filter, v.Loans(), v.Overdue())
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", string(view.LoanFilterActive), "ALL, ACTIVE or RETURNED")
	return cmd
}

func newLoanOverdueCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "overdue",
		Short:         "List active loans past their due date",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, func(ctx context.Context, a *app) error {
				loans, err := a.client.OverdueLoans(ctx)
				if err != nil {
					return err
				}
				return emitLoans(a, "", loans, model.OverdueLoanIDs(loans, a.today()))
			})
		},
	}
}
