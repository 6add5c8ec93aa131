package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"gridsetter/models"
	"gridsetter/plugins/steamgriddb"
	"gridsetter/printer"
	"gridsetter/storage"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// APIKeyEnv overrides the API key from the config file
const APIKeyEnv = "STEAMGRIDDB_API_KEY"

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// options holds the flags of one command tree
type options struct {
	configPath string
	apiKey     string
	steamPath  string
	apiURL     string
	verbose    bool

	game          string
	types         string
	workers       int
	shortcutsPath string
	gridDir       string
	json          bool
	resolve       bool
}

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "gridsetter",
		Short: "Apply SteamGridDB artwork to non-Steam shortcuts",
		Long: `gridsetter reads the non-Steam shortcuts of every Steam profile on this
machine, finds each game on SteamGridDB and stores its grid, wide, hero and
logo artwork in the profile's grid directory.

Running gridsetter without a subcommand is the same as "gridsetter apply".

Examples:
  # Apply artwork to every shortcut of every profile
  gridsetter

  # Only Hades, only the portrait grid and the hero
  gridsetter --game hades --types grid,hero

  # List shortcuts and the artwork they already have
  gridsetter list`,
		Args: cobra.NoArgs,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			printer.SetOutput(cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(cmd, opts)
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Config file (default "+storage.DefaultConfigPath()+")")
	flags.StringVar(&opts.apiKey, "api-key", "", "SteamGridDB API key (overrides $"+APIKeyEnv+" and the config file)")
	flags.StringVar(&opts.steamPath, "steam-path", "", "Steam installation directory (auto-detected if omitted)")
	flags.StringVar(&opts.apiURL, "api-url", steamgriddb.DefaultBaseURL, "SteamGridDB API root")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Log requests and decisions to stderr")
	_ = flags.MarkHidden("api-url")

	addApplyFlags(cmd, opts)

	cmd.AddCommand(
		newApplyCmd(opts),
		newListCmd(opts),
		newConfigCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = versionString()
}

func versionString() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)
}

// loadSettings reads the config file and applies the environment and flag
// overrides, in that order
func (o *options) loadSettings(cmd *cobra.Command) (*models.Settings, *storage.Manager, error) {
	store := o.store()

	settings, err := store.LoadSettings()
	if err != nil {
		return nil, nil, printer.ErrorWithContext(
			"invalid configuration",
			err.Error(),
			map[string]string{"Config": store.ConfigPath()},
			[]string{"Fix the file, or inspect it with:\n  gridsetter config show"},
		)
	}

	if key := os.Getenv(APIKeyEnv); key != "" {
		settings.APIKey = key
	}
	if cmd.Flags().Changed("api-key") {
		settings.APIKey = o.apiKey
	}
	if cmd.Flags().Changed("steam-path") {
		settings.SteamPath = o.steamPath
	}
	if cmd.Flags().Changed("workers") {
		settings.Workers = o.workers
	}
	if err := settings.Validate(); err != nil {
		return nil, nil, printer.Error("invalid option", err.Error(), nil)
	}

	return settings, store, nil
}

func (o *options) store() *storage.Manager {
	return storage.NewManager(o.configPath)
}

// newLogger logs text to a terminal and JSON when stderr is redirected
func (o *options) newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	handlerOptions := &slog.HandlerOptions{Level: level}

	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return slog.New(slog.NewTextHandler(w, handlerOptions))
	}
	return slog.New(slog.NewJSONHandler(w, handlerOptions))
}
