package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/plms/internal/form"
	"github.com/roach88/plms/internal/model"
	"github.com/roach88/plms/internal/render"
)

// ProgressOptions holds flags for progress log.
type ProgressOptions struct {
	*RootOptions
	Form form.ProgressForm
}

// NewProgressCommand creates the progress command group.
func NewProgressCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Record reading and watching progress of loaned items",
	}
	cmd.AddCommand(newProgressListCommand(rootOpts))
	cmd.AddCommand(newProgressLogCommand(rootOpts))
	cmd.AddCommand(newProgressDeleteCommand(rootOpts))
	return cmd
}

func newProgressListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list <itemId>",
		Short:         "Show an item's progress history",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, func(ctx context.Context, a *app) error {
				v, err := loadItem(ctx, a, args[0])
				if err != nil {
					return err
				}
				history := v.History()
				if history == nil {
					history = []model.ProgressLog{}
				}
				return a.out.Emit(history, func(w io.Writer) error {
					return render.ItemDetail(w, v.Item(), v.ActiveLoan(), history, a.today())
				})
			})
		},
	}
}

func newProgressLogCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProgressOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "log <itemId>",
		Short: "Log a page (books) or minute (DVDs) reached",
		Long: `Log progress on an item that is currently on loan. The value is the
page reached for a book and the minute reached for a DVD. The date defaults
to today.

Example:
  plms progress log 3 --value 120 --duration 45`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, a *app) error {
				v, err := loadItem(ctx, a, args[0])
				if err != nil {
					return err
				}
				f := v.NewProgressForm()
				f.PageOrMinute = opts.Form.PageOrMinute
				f.DurationMinutes = opts.Form.DurationMinutes
				if cmd.Flags().Changed("date") {
					f.Date = opts.Form.Date
				}
				entry, err := v.LogProgress(ctx, f)
				if err != nil {
					return err
				}
				item := v.Item()
				return a.out.Emit(entry, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "Logged %d on %s: %s %d%%\n",
						entry.PageOrMinute, entry.Date,
						render.ProgressBar(item.ProgressPercent, 20), item.ProgressPercent)
					return err
				})
			})
		},
	}

	cmd.Flags().StringVar(&opts.Form.PageOrMinute, "value", "", "page or minute reached (required)")
	cmd.Flags().StringVar(&opts.Form.Date, "date", "", "date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&opts.Form.DurationMinutes, "duration", "", "session length in minutes")
	_ = cmd.MarkFlagRequired("value")
	return cmd
}

func newProgressDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <itemId> <logId>",
		Short:         "Remove one progress entry",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, func(ctx context.Context, a *app) error {
				v, err := loadItem(ctx, a, args[0])
				if err != nil {
					return err
				}
				logID, err := form.ParseID("logId", args[1])
				if err != nil {
					return err
				}
				if err := v.DeleteProgress(ctx, logID); err != nil {
					return err
				}
				return a.out.Emit(map[string]int64{"itemId": v.ID(), "deleted": logID}, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "Deleted progress entry #%d.\n", logID)
					return err
				})
			})
		},
	}
}
