package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/roach88/plms/internal/form"
	"github.com/roach88/plms/internal/model"
	"github.com/roach88/plms/internal/render"
	"github.com/roach88/plms/internal/view"
)

// ItemOptions holds the item field flags shared by add and edit.
type ItemOptions struct {
	*RootOptions
	Type   string
	Fields form.EditForm
}

// bindItemFlags registers one flag per editable field. Numbers stay text
// so the form decides how to reject them.
func bindItemFlags(fs *pflag.FlagSet, f *form.EditForm) {
	fs.StringVar(&f.Title, "title", "", "title")
	fs.StringVar(&f.Year, "year", "", "release or publication year")
	fs.StringVar(&f.Condition, "condition", "", "physical condition")
	fs.StringVar(&f.Location, "location", "", "shelf or storage location")
	fs.StringVar(&f.Tags, "tags", "", "comma-separated tags")
	fs.StringVar(&f.ISBN, "isbn", "", "ISBN (books)")
	fs.StringVar(&f.Pages, "pages", "", "page count (books)")
	fs.StringVar(&f.Publisher, "publisher", "", "publisher (books)")
	fs.StringVar(&f.Authors, "authors", "", "comma-separated authors (books)")
	fs.StringVar(&f.Runtime, "runtime", "", "runtime in minutes (DVDs)")
	fs.StringVar(&f.Director, "director", "", "director (DVDs)")
	fs.StringVar(&f.Cast, "cast", "", "comma-separated cast (DVDs)")
}

// NewItemsCommand creates the items command group.
func NewItemsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items",
		Short: "Browse and manage catalog items",
	}
	cmd.AddCommand(newItemsListCommand(rootOpts))
	cmd.AddCommand(newItemsShowCommand(rootOpts))
	cmd.AddCommand(newItemsAddCommand(rootOpts))
	cmd.AddCommand(newItemsEditCommand(rootOpts))
	cmd.AddCommand(newItemsDeleteCommand(rootOpts))
	cmd.AddCommand(newItemsTrashCommand(rootOpts))
	cmd.AddCommand(newItemsRestoreCommand(rootOpts))
	return cmd
}

func newItemsListCommand(rootOpts *RootOptions) *cobra.Command {
	var typ string
	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List catalog items",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, func(ctx context.Context, a *app) error {
				items, err := a.client.ListItems(ctx)
				if err != nil {
					return err
				}
				if typ != "" {
					t, err := model.ParseMediaType(typ)
					if err != nil {
						return &form.FieldError{Field: "type", Value: typ, Reason: "must be BOOK or DVD"}
					}
					items = model.FilterByType(items, t)
				}
				return a.out.Emit(items, func(w io.Writer) error {
					return render.ItemTable(w, items)
				})
			})
		},
	}
	cmd.Flags().StringVar(&typ, "type", "", "only BOOK or DVD")
	return cmd
}

// itemDetail is the JSON shape of one item with its activity.
type itemDetail struct {
	Item       *model.Item         `json:"item"`
	ActiveLoan *model.Loan         `json:"activeLoan"`
	Progress   []model.ProgressLog `json:"progress"`
}

func emitItemDetail(a *app, v *view.ItemDetail) error {
	detail := itemDetail{Item: v.Item(), ActiveLoan: v.ActiveLoan(), Progress: v.History()}
	return a.out.Emit(detail, func(w io.Writer) error {
		if err := render.Banner(w, v.Banner()); err != nil {
			return err
		}
		return render.ItemDetail(w, detail.Item, detail.ActiveLoan, detail.Progress, a.today())
	})
}

// loadItem parses raw as an item id and loads its detail view.
func loadItem(ctx context.Context, a *app, raw string) (*view.ItemDetail, error) {
	id, err := form.ParseID("itemId", raw)
	if err != nil {
		return nil, err
	}
	v := view.NewItemDetail(a.client, id, a.clock)
	if err := v.Load(ctx); err != nil {
		return nil, err
	}
	return v, nil
}

func newItemsShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show <id>",
		Short:         "Show one item with its loan and progress history",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, func(ctx context.Context, a *app) error {
				v, err := loadItem(ctx, a, args[0])
				if err != nil {
					return err
				}
				return emitItemDetail(a, v)
			})
		},
	}
}

func newItemsAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ItemOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an item by hand",
		Long: `Add a book or DVD by hand. Only the fields of the chosen type are
sent; the others are ignored. Use "plms lookup" to add a book from its ISBN.

Example:
  plms items add --type BOOK --title "Dune" --year 1965 --authors "Frank Herbert"
  plms items add --type DVD --title "Alien" --year 1979 --runtime 117`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, a *app) error {
				t, err := model.ParseMediaType(opts.Type)
				if err != nil {
					return &form.FieldError{Field: "type", Value: opts.Type, Reason: "must be BOOK or DVD"}
				}
				f := opts.Fields
				manual := &form.ManualForm{
					Type:      t,
					Title:     f.Title,
					Year:      f.Year,
					Condition: f.Condition,
					Location:  f.Location,
					Tags:      f.Tags,
					ISBN:      f.ISBN,
					Pages:     f.Pages,
					Publisher: f.Publisher,
					Authors:   f.Authors,
					Runtime:   f.Runtime,
					Director:  f.Director,
					Cast:      f.Cast,
				}
				item, err := view.NewAdd(a.client).CreateManual(ctx, manual)
				if err != nil {
					return err
				}
				return emitCreated(a, item)
			})
		},
	}

	cmd.Flags().StringVar(&opts.Type, "type", "", "BOOK or DVD (required)")
	bindItemFlags(cmd.Flags(), &opts.Fields)
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func emitCreated(a *app, item *model.Item) error {
	return a.out.Emit(item, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "Created #%d %s (%s, %d)\n", item.ID, item.Title, render.TypeLabel(item.Type), item.Year)
		return err
	})
}

func newItemsEditCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ItemOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change an item's details",
		Long: `Change an item's details. Fields whose flag is not given keep their
current value; an empty value clears an optional field. The whole item is
sent back to the server.

Example:
  plms items edit 3 --location "Shelf B" --tags "classic, sci-fi"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, a *app) error {
				v, err := loadItem(ctx, a, args[0])
				if err != nil {
					return err
				}
				f, err := v.EditForm()
				if err != nil {
					return err
				}
				overrideChanged(cmd.Flags(), f, &opts.Fields)
				if err := v.Save(ctx, f); err != nil {
					return err
				}
				return emitItemDetail(a, v)
			})
		},
	}

	bindItemFlags(cmd.Flags(), &opts.Fields)
	return cmd
}

// overrideChanged copies every field whose flag was given from src to dst.
func overrideChanged(fs *pflag.FlagSet, dst, src *form.EditForm) {
	fields := map[string]struct{ dst, src *string }{
		"title":     {&dst.Title, &src.Title},
		"year":      {&dst.Year, &src.Year},
		"condition": {&dst.Condition, &src.Condition},
		"location":  {&dst.Location, &src.Location},
		"tags":      {&dst.Tags, &src.Tags},
		"isbn":      {&dst.ISBN, &src.ISBN},
		"pages":     {&dst.Pages, &src.Pages},
		"publisher": {&dst.Publisher, &src.Publisher},
		"authors":   {&dst.Authors, &src.Authors},
		"runtime":   {&dst.Runtime, &src.Runtime},
		"director":  {&dst.Director, &src.Director},
		"cast":      {&dst.Cast, &src.Cast},
	}
	for name, f := range fields {
		if fs.Changed(name) {
			*f.dst = *f.src
		}
	}
}

func newItemsDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <id>",
		Short:         "Move an item to the trash",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, func(ctx context.Context, a *app) error {
				v, err := loadItem(ctx, a, args[0])
				if err != nil {
					return err
				}
				deleted, err := v.Delete(ctx, a.prompt.Confirm)
				if err != nil {
					return err
				}
				title := v.Item().Title
				return a.out.Emit(map[string]any{"id": v.ID(), "deleted": deleted}, func(w io.Writer) error {
					if !deleted {
						_, err := fmt.Fprintln(w, "Cancelled.")
						return err
					}
					_, err := fmt.Fprintf(w, "Moved %q to Trash.\n", title)
					return err
				})
			})
		},
	}
}

func newItemsTrashCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "trash",
		Short:         "List items in the trash",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, func(ctx context.Context, a *app) error {
				v := view.NewTrash(a.client)
				if err := v.Load(ctx); err != nil {
					return err
				}
				items := v.Items()
				return a.out.Emit(items, func(w io.Writer) error {
					return render.Trash(w, items)
				})
			})
		},
	}
}

// restoreResult is the JSON shape of a restore: the item and what is left in
// the trash.
type restoreResult struct {
	Restored *model.Item  `json:"restored"`
	Trash    []model.Item `json:"trash"`
}

func newItemsRestoreCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "restore <id>",
		Short:         "Return an item from the trash to the catalog",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, func(ctx context.Context, a *app) error {
				id, err := form.ParseID("itemId", args[0])
				if err != nil {
					return err
				}
				v := view.NewTrash(a.client)
				item, err := v.Restore(ctx, id)
				if err != nil {
					return err
				}
				trash := v.Items()
				if trash == nil {
					trash = []model.Item{}
				}
				return a.out.Emit(restoreResult{Restored: item, Trash: trash}, func(w io.Writer) error {
					if _, err := fmt.Fprintf(w, "Restored #%d %s.\n", item.ID, item.Title); err != nil {
						return err
					}
					return render.Trash(w, trash)
				})
			})
		},
	}
}
