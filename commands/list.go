package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gridsetter/models"
	"gridsetter/printer"
	"gridsetter/search"
	"gridsetter/steam"

	"github.com/spf13/cobra"
)

func newListCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List non-Steam shortcuts and their artwork",
		Long: `List the shortcuts of every Steam profile with their derived AppID and
the artwork already present in the grid directory. No network access and no
API key are needed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.game, "game", "g", "", "Only shortcuts whose name contains this text (case-insensitive)")
	flags.StringVar(&opts.shortcutsPath, "shortcuts", "", "Read this shortcuts.vdf instead of scanning Steam profiles")
	flags.StringVar(&opts.gridDir, "grid-dir", "", "Look for artwork here instead of the profile's grid directory")
	flags.BoolVar(&opts.resolve, "resolve", false, "Also look up each shortcut on SteamGridDB (needs an API key)")
	flags.BoolVar(&opts.json, "json", false, "Output as JSON")
	return cmd
}

type listedShortcut struct {
	models.Shortcut
	GridID     uint32               `json:"grid_id"`
	GameID     uint64               `json:"game_id"`
	RunURL     string               `json:"run_url"`
	Artwork    []string             `json:"artwork"`
	Match      *models.CatalogMatch `json:"match,omitempty"`
	MatchError string               `json:"match_error,omitempty"`
}

type listedTarget struct {
	target
	Shortcuts []listedShortcut `json:"shortcuts"`
	Error     string           `json:"error,omitempty"`
}

func runList(cmd *cobra.Command, opts *options) error {
	settings, _, err := opts.loadSettings(cmd)
	if err != nil {
		return err
	}

	logger := opts.newLogger(cmd.ErrOrStderr())

	var resolver *search.Resolver
	if opts.resolve {
		if settings.APIKey == "" {
			return errMissingAPIKey()
		}
		_, resolver = opts.newCatalog(settings, logger)
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	targets, err := opts.resolveTargets(settings, logger)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	var listed []listedTarget
	malformed := 0
	for _, t := range targets {
		lt := listedTarget{target: t, Shortcuts: []listedShortcut{}}

		shortcuts, err := opts.readTarget(cmd.ErrOrStderr(), t)
		if err != nil {
			if !errors.Is(err, steam.ErrMalformedContainer) {
				return err
			}
			malformed++
			lt.Error = err.Error()
			if !opts.json {
				printer.Warning("%s: %v\n", t.Label, err)
			}
			listed = append(listed, lt)
			continue
		}

		existing := make(map[uint32][]string, len(shortcuts))
		var matches map[uint32]string
		if resolver != nil {
			matches = make(map[uint32]string, len(shortcuts))
		}
		for _, sc := range shortcuts {
			id := sc.GridID(settings.UseStoredAppID)
			files, err := steam.ExistingArtwork(t.GridDir, id)
			if err != nil {
				logger.Warn("cannot read grid directory", "dir", t.GridDir, "error", err)
			}
			if files == nil {
				files = []string{}
			}
			existing[id] = files
			ls := listedShortcut{
				Shortcut: sc,
				GridID:   id,
				GameID:   sc.GameID(),
				RunURL:   sc.RunURL(),
				Artwork:  files,
			}

			if resolver != nil {
				match, err := resolver.FindBestMatch(ctx, sc.AppName)
				switch {
				case err == nil:
					ls.Match = match
					matches[id] = fmt.Sprintf("%s [%d]", match.Name, match.CatalogID)
				case errors.Is(err, search.ErrNoMatch):
					ls.MatchError = err.Error()
					matches[id] = "-"
				default:
					ls.MatchError = err.Error()
					matches[id] = "unavailable"
				}
			}
			lt.Shortcuts = append(lt.Shortcuts, ls)
		}
		listed = append(listed, lt)

		if !opts.json {
			printer.Step("%s (%d shortcut(s))\n", t.Label, len(shortcuts))
			if len(shortcuts) > 0 {
				if err := printer.Shortcuts(out, shortcuts, settings.UseStoredAppID, existing, matches); err != nil {
					return err
				}
			}
			printer.Info("\n")
		}
	}

	if opts.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(listed); err != nil {
			return err
		}
	}

	if malformed > 0 {
		return printer.Error("some shortcuts files could not be read", "See the warnings above.", nil)
	}
	return nil
}
