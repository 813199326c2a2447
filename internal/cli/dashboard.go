package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/plms/internal/render"
	"github.com/roach88/plms/internal/view"
)

// NewDashboardCommand creates the dashboard command.
func NewDashboardCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "dashboard",
		Short:         "Show catalog totals, overdue loans and recent items",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, func(ctx context.Context, a *app) error {
				d := view.NewDashboard(a.client)
				if err := d.Load(ctx); err != nil {
					return err
				}
				summary := d.Summary()
				return a.out.Emit(summary, func(w io.Writer) error {
					return render.Dashboard(w, summary)
				})
			})
		},
	}
}
