package cli

import (
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/plms/internal/config"
	"github.com/roach88/plms/internal/model"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	API        string
	State      string
	Timeout    time.Duration
	ConfigFile string
	Yes        bool

	// Clock overrides the wall clock (for testing).
	Clock model.Clock
	// HTTPClient overrides the transport; its Timeout is replaced by the
	// configured one (for testing).
	HTTPClient *http.Client
	// RequestIDs overrides request id generation (for testing).
	RequestIDs func() string
	// DotEnv overrides the .env path (for testing).
	DotEnv string

	config *config.Config
}

// annotationConfigOptional marks commands that run without an existing
// --config file.
const annotationConfigOptional = "plms/config-optional"

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the plms CLI.
func NewRootCommand() *cobra.Command {
	return NewRootCommandWithOptions(&RootOptions{})
}

// NewRootCommandWithOptions builds the command tree around opts, whose
// injection fields tests may preset.
func NewRootCommandWithOptions(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plms",
		Short: "plms - personal library management",
		Long: `Manage a personal catalog of books and DVDs: loans, reading and
watching progress, curated lists, external metadata, import/export and sync.

Settings come from defaults, ~/.config/plms/config.yaml, a .env file,
PLMS_* environment variables and the flags below, in increasing precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return WrapExitError(ExitCommandError, "",
					fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			configureLogging(cmd, opts.Verbose)

			cfg, err := config.Load(config.Options{
				ConfigFile:   opts.ConfigFile,
				AllowMissing: cmd.Annotations[annotationConfigOptional] != "",
				DotEnv:       opts.DotEnv,
				Flags:        cmd.Root().PersistentFlags(),
			})
			if err != nil {
				return WrapExitError(ExitCommandError, "configuration", err)
			}
			opts.config = cfg
			slog.Debug("configuration resolved",
				"api", cfg.APIBaseURL,
				"state", cfg.StatePath,
				"timeout", cfg.Timeout,
				"file", cfg.File)
			return nil
		},
	}

	// Global flags
	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	flags.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	flags.StringVar(&opts.API, "api", "", "API base URL (default "+config.DefaultAPIBaseURL+")")
	flags.StringVar(&opts.State, "state", "", "path to the local state database")
	flags.DurationVar(&opts.Timeout, "timeout", 0, "HTTP request timeout (default "+config.DefaultTimeout.String()+")")
	flags.StringVar(&opts.ConfigFile, "config", "", "config file (default $XDG_CONFIG_HOME/plms/config.yaml)")
	flags.BoolVarP(&opts.Yes, "yes", "y", false, "answer yes to every confirmation")

	// Add subcommands
	cmd.AddCommand(NewLoginCommand(opts))
	cmd.AddCommand(NewRegisterCommand(opts))
	cmd.AddCommand(NewLogoutCommand(opts))
	cmd.AddCommand(NewWhoamiCommand(opts))
	cmd.AddCommand(NewDashboardCommand(opts))
	cmd.AddCommand(NewItemsCommand(opts))
	cmd.AddCommand(NewSearchCommand(opts))
	cmd.AddCommand(NewLookupCommand(opts))
	cmd.AddCommand(NewLoanCommand(opts))
	cmd.AddCommand(NewProgressCommand(opts))
	cmd.AddCommand(NewListsCommand(opts))
	cmd.AddCommand(NewExternalCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewSyncCommand(opts))
	cmd.AddCommand(NewConfigCommand(opts))

	return cmd
}

// configureLogging installs the process logger on the command's stderr.
func configureLogging(cmd *cobra.Command, verbose bool) {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// formatter builds the output formatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

func (o *RootOptions) clock() model.Clock {
	if o.Clock != nil {
		return o.Clock
	}
	return model.SystemClock{}
}
