package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/plms/internal/form"
	"github.com/roach88/plms/internal/model"
	"github.com/roach88/plms/internal/render"
	"github.com/roach88/plms/internal/view"
)

// NewExternalCommand creates the external command group.
func NewExternalCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "external",
		Short: "Compare and apply metadata from external providers",
	}
	cmd.AddCommand(newExternalRefreshCommand(rootOpts))
	cmd.AddCommand(newExternalApplyCommand(rootOpts))
	return cmd
}

// refreshItem fetches the metadata differences of the item raw names.
func refreshItem(ctx context.Context, a *app, raw string) (*view.ItemDetail, []model.DiffField, error) {
	id, err := form.ParseID("itemId", raw)
	if err != nil {
		return nil, nil, err
	}
	v := view.NewItemDetail(a.client, id, a.clock)
	diffs, err := v.RefreshExternal(ctx)
	if err != nil {
		return nil, nil, err
	}
	return v, diffs, nil
}

func newExternalRefreshCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "refresh <itemId>",
		Short:         "Show how provider metadata differs from the item",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, func(ctx context.Context, a *app) error {
				v, diffs, err := refreshItem(ctx, a, args[0])
				if err != nil {
					return err
				}
				return a.out.Emit(diffs, func(w io.Writer) error {
					return render.Diffs(w, diffs, v.Diff().IsSelected)
				})
			})
		},
	}
}

func newExternalApplyCommand(rootOpts *RootOptions) *cobra.Command {
	var fields []string
	cmd := &cobra.Command{
		Use:   "apply <itemId>",
		Short: "Apply provider metadata to the item",
		Long: `Refresh the provider metadata and apply the differences. Without
--field every difference is applied; with it only the named fields are.

Example:
  plms external apply 3
  plms external apply 3 --field title --field pages`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, func(ctx context.Context, a *app) error {
				v, diffs, err := refreshItem(ctx, a, args[0])
				if err != nil {
					return err
				}
				if len(fields) > 0 {
					if err := v.Diff().SelectOnly(fields); err != nil {
						return err
					}
				}
				if len(diffs) == 0 {
					return a.out.Emit(diffs, func(w io.Writer) error {
						return render.Diffs(w, diffs, v.Diff().IsSelected)
					})
				}
				if _, err := v.ApplyExternal(ctx); err != nil {
					return err
				}
				return emitItemDetail(a, v)
			})
		},
	}
	cmd.Flags().StringArrayVar(&fields, "field", nil, "field to apply (repeatable)")
	return cmd
}
