package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/plms/internal/config"
)

// configView is the JSON shape of the resolved configuration.
type configView struct {
	APIBaseURL string `json:"apiBaseUrl"`
	Timeout    string `json:"timeout"`
	StatePath  string `json:"statePath"`
	File       string `json:"file,omitempty"`
}

func newConfigView(c *config.Config) configView {
	return configView{
		APIBaseURL: c.APIBaseURL,
		Timeout:    c.Timeout.String(),
		StatePath:  c.StatePath,
		File:       c.File,
	}
}

// NewConfigCommand creates the config command group.
func NewConfigCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and save client settings",
	}
	cmd.AddCommand(newConfigShowCommand(rootOpts))
	cmd.AddCommand(newConfigInitCommand(rootOpts))
	return cmd
}

func newConfigShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show",
		Short:         "Print the resolved settings",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cv := newConfigView(rootOpts.config)
			return rootOpts.formatter(cmd).Emit(cv, func(w io.Writer) error {
				t := []struct{ k, v string }{
					{config.KeyAPIBaseURL, cv.APIBaseURL},
					{config.KeyTimeout, cv.Timeout},
					{config.KeyStatePath, cv.StatePath},
				}
				for _, row := range t {
					if _, err := fmt.Fprintf(w, "%s: %s\n", row.k, row.v); err != nil {
						return err
					}
				}
				if cv.File != "" {
					_, err := fmt.Fprintf(w, "# read from %s\n", cv.File)
					return err
				}
				return nil
			})
		},
	}
}

func newConfigInitCommand(rootOpts *RootOptions) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the resolved settings to the config file",
		Long: `Write the currently resolved settings (including any given with
flags) to the config file, so later runs pick them up. An existing file is
only replaced with --force.

Example:
  plms config init --api https://library.example.com`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		Annotations:   map[string]string{annotationConfigOptional: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := rootOpts.formatter(cmd)
			path := rootOpts.ConfigFile
			if path == "" {
				p, err := config.DefaultConfigPath()
				if err != nil {
					return report(out, WrapExitError(ExitCommandError, "", err))
				}
				path = p
			}
			if err := config.WriteFile(path, rootOpts.config, force); err != nil {
				return report(out, WrapExitError(ExitCommandError, "", err))
			}
			return out.Emit(map[string]string{"path": path}, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Wrote %s.\n", path)
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "replace an existing file")
	return cmd
}
