package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"gridsetter/printer"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

func newConfigCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change settings",
		Long: `Show or change the settings stored in the config file.

Keys:
  api_key                SteamGridDB API key
  steam_path             Steam installation directory
  image_types.grid       true|false (also wide, hero, logo)
  workers                shortcuts processed in parallel
  request_timeout        HTTP timeout in seconds
  use_stored_app_id      name files after the appid stored in shortcuts.vdf
  fallback_search        retry unmatched names without tags and edition words
  nsfw, humor            include adult or humorous artwork`,
	}

	var reveal bool
	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, store, err := opts.loadSettings(cmd)
			if err != nil {
				return err
			}
			if !reveal {
				settings.APIKey = settings.MaskedAPIKey()
			}

			data, err := yaml.Marshal(settings)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", store.ConfigPath(), data)
			return nil
		},
	}
	show.Flags().BoolVar(&reveal, "reveal", false, "Print the API key unmasked")

	set := &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Change one setting and save the config file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := opts.store()
			settings, err := store.LoadSettings()
			if err != nil {
				return printer.Error("invalid configuration", err.Error(), nil)
			}
			if err := settings.Set(args[0], args[1]); err != nil {
				return printer.Error("cannot set "+args[0], err.Error(), []string{"See: gridsetter config --help"})
			}
			if err := store.SaveSettings(settings); err != nil {
				return printer.Error("failed to save config", err.Error(), nil)
			}
			printer.Success("%s updated in %s\n", args[0], store.ConfigPath())
			return nil
		},
	}

	setup := &cobra.Command{
		Use:   "setup",
		Short: "Prompt for the API key and save it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := opts.store()
			settings, err := store.LoadSettings()
			if err != nil {
				return printer.Error("invalid configuration", err.Error(), nil)
			}

			fmt.Fprint(cmd.ErrOrStderr(), "SteamGridDB API key (from https://www.steamgriddb.com/profile/preferences/api): ")
			key, err := readAPIKey(cmd.InOrStdin())
			fmt.Fprintln(cmd.ErrOrStderr())
			if err != nil {
				return printer.Error("failed to read API key", err.Error(), nil)
			}
			if key == "" {
				return printer.Error("API key is required", "Nothing was entered.", nil)
			}

			settings.APIKey = key
			if err := store.SaveSettings(settings); err != nil {
				return printer.Error("failed to save config", err.Error(), nil)
			}
			printer.Success("Configuration saved to %s\n", store.ConfigPath())
			return nil
		},
	}

	path := &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), opts.store().ConfigPath())
		},
	}

	cmd.AddCommand(show, set, setup, path)
	return cmd
}

// readAPIKey reads the key without echo from a terminal, or one line from
// any other input
func readAPIKey(in io.Reader) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		key, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(key)), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
