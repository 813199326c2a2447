package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/plms/internal/api"
	"github.com/roach88/plms/internal/form"
	"github.com/roach88/plms/internal/model"
	"github.com/roach88/plms/internal/render"
	"github.com/roach88/plms/internal/view"
)

// SearchOptions holds flags for the search command.
type SearchOptions struct {
	*RootOptions
	Filters view.SearchFilters
	Page    int
}

// searchPage is the JSON shape of one page of results.
type searchPage struct {
	Items []model.Item `json:"items"`
	Page  int          `json:"page"`
	Size  int          `json:"size"`
	Total int64        `json:"total"`
}

// NewSearchCommand creates the search command.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SearchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search the catalog",
		Long: `Search the catalog with any combination of filters. Results come in
pages of 12; --page is 1-based.

Example:
  plms search --query dune
  plms search --type DVD --status LOANED
  plms search --tags "classic, sci-fi" --page 2`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, a *app) error {
				if opts.Page < 1 {
					return &form.FieldError{Field: "page", Reason: "must be 1 or more"}
				}
				s := view.NewSearch(a.client)
				s.SetFilters(opts.Filters)
				s.SetPage(opts.Page - 1)
				if err := s.Run(ctx); err != nil {
					return err
				}
				page := searchPage{Items: s.Results(), Page: s.Page(), Size: api.DefaultPageSize, Total: s.Total()}
				return a.out.Emit(page, func(w io.Writer) error {
					return render.SearchPage(w, page.Items, page.Page, page.Total, page.Size)
				})
			})
		},
	}

	f := &opts.Filters
	cmd.Flags().StringVarP(&f.Query, "query", "q", "", "free text over title, authors, cast and tags")
	cmd.Flags().StringVar(&f.Type, "type", "", "BOOK or DVD")
	cmd.Flags().StringVar(&f.Status, "status", "", "AVAILABLE or LOANED")
	cmd.Flags().StringVar(&f.Year, "year", "", "exact year")
	cmd.Flags().StringVar(&f.Condition, "condition", "", "condition")
	cmd.Flags().StringVar(&f.Location, "location", "", "location")
	cmd.Flags().StringVar(&f.Author, "author", "", "author (books)")
	cmd.Flags().StringVar(&f.Cast, "cast", "", "cast member (DVDs)")
	cmd.Flags().StringVar(&f.Tags, "tags", "", "comma-separated tags, all required")
	cmd.Flags().IntVar(&opts.Page, "page", 1, "page number")
	return cmd
}
