package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/plms/internal/model"
	"github.com/roach88/plms/internal/render"
	"github.com/roach88/plms/internal/view"
)

// syncState is the JSON shape of the sync indicator. A null status means
// it could not be fetched.
type syncState struct {
	Status *model.SyncStatus `json:"status"`
	Note   string            `json:"note,omitempty"`
}

// NewSyncCommand creates the sync command group.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Inspect and drive server-side sync",
	}
	cmd.AddCommand(newSyncCommand(rootOpts, "status", "Show sync status", nil))
	cmd.AddCommand(newSyncCommand(rootOpts, "enable", "Turn sync on", func(ctx context.Context, v *view.Settings) error {
		return v.SetSyncEnabled(ctx, true)
	}))
	cmd.AddCommand(newSyncCommand(rootOpts, "disable", "Turn sync off", func(ctx context.Context, v *view.Settings) error {
		return v.SetSyncEnabled(ctx, false)
	}))
	cmd.AddCommand(newSyncCommand(rootOpts, "run", "Run one sync pass", func(ctx context.Context, v *view.Settings) error {
		return v.RunSync(ctx)
	}))
	return cmd
}

// newSyncCommand builds one sync subcommand. action runs before the status
// is shown; a nil action only loads it.
func newSyncCommand(rootOpts *RootOptions, use, short string, action func(context.Context, *view.Settings) error) *cobra.Command {
	return &cobra.Command{
		Use:           use,
		Short:         short,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, func(ctx context.Context, a *app) error {
				v := view.NewSettings(a.client)
				if action != nil {
					if err := action(ctx, v); err != nil {
						return err
					}
				} else if err := v.LoadSync(ctx); err != nil {
					a.out.VerboseLog("sync status unavailable: %v", err)
				}
				state := syncState{Status: v.SyncStatus(), Note: v.ConflictNote()}
				return a.out.Emit(state, func(w io.Writer) error {
					return render.Settings(w, state.Status, state.Note)
				})
			})
		},
	}
}
