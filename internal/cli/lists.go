package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/plms/internal/form"
	"github.com/roach88/plms/internal/model"
	"github.com/roach88/plms/internal/render"
	"github.com/roach88/plms/internal/view"
)

// NewListsCommand creates the lists command group.
func NewListsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lists",
		Short: "Curate named, ordered lists of items",
	}
	cmd.AddCommand(newListsListCommand(rootOpts))
	cmd.AddCommand(newListsShowCommand(rootOpts))
	cmd.AddCommand(newListsCreateCommand(rootOpts))
	cmd.AddCommand(newListsDeleteCommand(rootOpts))
	cmd.AddCommand(newListsAddCommand(rootOpts))
	cmd.AddCommand(newListsRemoveCommand(rootOpts))
	cmd.AddCommand(newListsMoveCommand(rootOpts))
	cmd.AddCommand(newListsReorderCommand(rootOpts))
	return cmd
}

// loadLists loads the lists view and, when raw is not empty, selects the
// list it names.
func loadLists(ctx context.Context, a *app, raw string) (*view.Lists, error) {
	v := view.NewLists(a.client)
	if err := v.Load(ctx); err != nil {
		return nil, err
	}
	if raw == "" {
		return v, nil
	}
	id, err := form.ParseID("listId", raw)
	if err != nil {
		return nil, err
	}
	if err := v.Select(id); err != nil {
		return nil, err
	}
	return v, nil
}

func emitSelected(a *app, v *view.Lists) error {
	sel := v.Selected()
	return a.out.Emit(sel, func(w io.Writer) error {
		return render.List(w, sel, v.ItemMeta)
	})
}

func newListsListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List all lists",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, func(ctx context.Context, a *app) error {
				v, err := loadLists(ctx, a, "")
				if err != nil {
					return err
				}
				lists := v.Lists()
				if lists == nil {
					lists = []model.MediaList{}
				}
				return a.out.Emit(lists, func(w io.Writer) error {
					return render.Lists(w, lists)
				})
			})
		},
	}
}

func newListsShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show <listId>",
		Short:         "Show a list's entries in order",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, func(ctx context.Context, a *app) error {
				v, err := loadLists(ctx, a, args[0])
				if err != nil {
					return err
				}
				return emitSelected(a, v)
			})
		},
	}
}

func newListsCreateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "create <name>",
		Short:         "Create an empty list",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, func(ctx context.Context, a *app) error {
				name := strings.Join(args, " ")
				list, err := view.NewLists(a.client).Create(ctx, name)
				if err != nil {
					return err
				}
				if list == nil {
					return &form.FieldError{Field: "name", Reason: "is required"}
				}
				return a.out.Emit(list, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "Created list #%d %s.\n", list.ID, list.Name)
					return err
				})
			})
		},
	}
}

func newListsDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <listId>",
		Short: "Delete a list",
		Long: `Delete a list. The items themselves stay in the catalog. A list that
still has entries is only deleted after confirmation (or with --yes).`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, func(ctx context.Context, a *app) error {
				v, err := loadLists(ctx, a, args[0])
				if err != nil {
					return err
				}
				sel := v.Selected()
				deleted, err := v.Delete(ctx, sel.ID, a.prompt.Confirm)
				if err != nil {
					return err
				}
				return a.out.Emit(map[string]any{"id": sel.ID, "deleted": deleted}, func(w io.Writer) error {
					if !deleted {
						_, err := fmt.Fprintln(w, "Cancelled.")
						return err
					}
					_, err := fmt.Fprintf(w, "Deleted list %q.\n", sel.Name)
					return err
				})
			})
		},
	}
}

func newListsAddCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "add <listId> <itemId>",
		Short:         "Append an item to a list",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, func(ctx context.Context, a *app) error {
				v, err := loadLists(ctx, a, args[0])
				if err != nil {
					return err
				}
				if err := v.AddItem(ctx, args[1]); err != nil {
					return err
				}
				return emitSelected(a, v)
			})
		},
	}
}

func newListsRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "remove <listId> <itemId>",
		Short:         "Take an item off a list",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, func(ctx context.Context, a *app) error {
				listID, err := form.ParseID("listId", args[0])
				if err != nil {
					return err
				}
				itemID, err := form.ParseID("itemId", args[1])
				if err != nil {
					return err
				}
				if _, err := a.client.RemoveListItem(ctx, listID, itemID); err != nil {
					return err
				}
				v, err := loadLists(ctx, a, args[0])
				if err != nil {
					return err
				}
				return emitSelected(a, v)
			})
		},
	}
}

func newListsMoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "move <listId> <index> up|down",
		Short: "Swap an entry with its neighbour",
		Long: `Swap the entry at a 0-based position with the one above or below it.
Moving past either end of the list does nothing.

Example:
  plms lists move 2 1 up`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, func(ctx context.Context, a *app) error {
				index, err := strconv.Atoi(args[1])
				if err != nil {
					return &form.FieldError{Field: "index", Value: args[1], Reason: "is not a whole number"}
				}
				var dir int
				switch strings.ToLower(args[2]) {
				case "up":
					dir = view.Up
				case "down":
					dir = view.Down
				default:
					return &form.FieldError{Field: "direction", Value: args[2], Reason: "must be up or down"}
				}
				v, err := loadLists(ctx, a, args[0])
				if err != nil {
					return err
				}
				if _, err := v.Move(ctx, index, dir); err != nil {
					return err
				}
				return emitSelected(a, v)
			})
		},
	}
}

func newListsReorderCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <listId> <itemId>...",
		Short: "Replace a list's order",
		Long: `Send a complete new order for a list. Every entry must appear exactly
once.

Example:
  plms lists reorder 2 7 3 5`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, func(ctx context.Context, a *app) error {
				ids := make([]int64, 0, len(args)-1)
				for _, raw := range args[1:] {
					id, err := form.ParseID("itemId", raw)
					if err != nil {
						return err
					}
					ids = append(ids, id)
				}
				v, err := loadLists(ctx, a, args[0])
				if err != nil {
					return err
				}
				if err := v.Reorder(ctx, ids); err != nil {
					return err
				}
				return emitSelected(a, v)
			})
		},
	}
}
