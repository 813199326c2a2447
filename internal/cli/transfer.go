package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/plms/internal/api"
	"github.com/roach88/plms/internal/form"
	"github.com/roach88/plms/internal/model"
	"github.com/roach88/plms/internal/render"
	"github.com/roach88/plms/internal/view"
)

// TransferOptions holds flags for export and import.
type TransferOptions struct {
	*RootOptions
	As     string
	Output string
}

// transferFormat resolves --as, falling back to the extension of path and
// then to JSON.
func transferFormat(as, path string) (api.Format, error) {
	if as != "" {
		f, err := api.ParseFormat(as)
		if err != nil {
			return "", &form.FieldError{Field: "as", Value: as, Reason: "must be json or csv"}
		}
		return f, nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip", ".csv":
		return api.FormatCSV, nil
	}
	return api.FormatJSON, nil
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TransferOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download the whole catalog",
		Long: `Download the whole catalog as JSON, or as a zip of CSV files. The
file is written to the current directory unless -o names another path;
-o - writes to stdout.

Example:
  plms export
  plms export --as csv -o backup.zip`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, a *app) error {
				f, err := transferFormat(opts.As, opts.Output)
				if err != nil {
					return err
				}
				v := view.NewSettings(a.client)
				path := opts.Output
				if path == "" {
					path = v.ExportFilename(f)
				}
				if path == "-" {
					_, err := v.Export(ctx, f, cmd.OutOrStdout())
					return err
				}
				n, err := exportFile(ctx, v, f, path)
				if err != nil {
					return err
				}
				result := map[string]any{"path": path, "format": f, "bytes": n}
				return a.out.Emit(result, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "Exported %d bytes to %s.\n", n, path)
					return err
				})
			})
		},
	}

	cmd.Flags().StringVar(&opts.As, "as", "", "json or csv (default from -o extension, else json)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "destination file, - for stdout")
	return cmd
}

// exportFile writes the export to path, removing the partial file when the
// download fails.
func exportFile(ctx context.Context, v *view.Settings, f api.Format, path string) (int64, error) {
	file, err := os.Create(path)
	if err != nil {
		return 0, WrapExitError(ExitCommandError, "create export file", err)
	}
	n, err := v.Export(ctx, f, file)
	if cerr := file.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("write %s: %w", path, cerr)
	}
	if err != nil {
		_ = os.Remove(path)
		return 0, err
	}
	return n, nil
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TransferOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Upload a JSON or CSV export into the catalog",
		Long: `Upload a file produced by export. Rows whose id is known update the
existing item; other rows add new items. The summary lists every rejected
row.

Example:
  plms import plms-export.json
  plms import --as csv backup.zip`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, a *app) error {
				path := args[0]
				f, err := transferFormat(opts.As, path)
				if err != nil {
					return err
				}
				file, err := os.Open(path)
				if err != nil {
					return WrapExitError(ExitCommandError, "open import file", err)
				}
				defer file.Close()

				summary, err := view.NewSettings(a.client).Import(ctx, f, filepath.Base(path), file)
				if err != nil && summary != nil {
					return rejectImport(a, summary, err)
				}
				if err != nil {
					return err
				}
				return a.out.Emit(summary, func(w io.Writer) error {
					return render.ImportSummary(w, summary)
				})
			})
		},
	}

	cmd.Flags().StringVar(&opts.As, "as", "", "json or csv (default from file extension, else json)")
	return cmd
}

// rejectImport reports a file the server refused as a whole. The server's
// body is the message, with the summary of its row errors under it.
func rejectImport(a *app, summary *model.ImportSummary, cause error) error {
	msg := cause.Error()
	if a.out.IsJSON() {
		_ = a.out.Error(CodeAPI, msg, summary)
	} else {
		_ = a.out.Error(CodeAPI, msg, nil)
		_ = render.ImportSummary(a.out.GetErrWriter(), summary)
	}
	return &ExitError{Code: ExitFailure, Message: msg, Err: cause, Reported: true}
}
