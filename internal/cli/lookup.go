package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/plms/internal/model"
	"github.com/roach88/plms/internal/render"
	"github.com/roach88/plms/internal/view"
)

// LookupOptions holds flags for the lookup command.
type LookupOptions struct {
	*RootOptions
	Pick int
}

// NewLookupCommand creates the lookup command.
func NewLookupCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LookupOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "lookup <isbn>",
		Short: "Find a book by ISBN and optionally add it",
		Long: `Ask the external providers for books matching an ISBN and list the
candidates. With --pick the numbered candidate is added to the catalog.

Example:
  plms lookup 9780441172719
  plms lookup 9780441172719 --pick 0`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, a *app) error {
				isbn := args[0]
				add := view.NewAdd(a.client)
				cands, err := add.Lookup(ctx, isbn)
				if err != nil {
					return err
				}
				if !cmd.Flags().Changed("pick") {
					if cands == nil {
						cands = []model.ExternalCandidate{}
					}
					return a.out.Emit(cands, func(w io.Writer) error {
						return render.Candidates(w, isbn, cands)
					})
				}
				item, err := add.Confirm(ctx, opts.Pick)
				if err != nil {
					return err
				}
				return emitCreated(a, item)
			})
		},
	}

	cmd.Flags().IntVar(&opts.Pick, "pick", 0, "add the candidate with this number")
	return cmd
}
