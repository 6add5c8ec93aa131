package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"gridsetter/models"
	"gridsetter/pipeline"
	"gridsetter/plugins/steamgriddb"
	"gridsetter/printer"
	"gridsetter/search"
	"gridsetter/steam"
	"gridsetter/storage"

	"github.com/spf13/cobra"
)

func addApplyFlags(cmd *cobra.Command, opts *options) {
	flags := cmd.Flags()
	flags.StringVarP(&opts.game, "game", "g", "", "Only shortcuts whose name contains this text (case-insensitive)")
	flags.StringVarP(&opts.types, "types", "t", "", "Comma-separated image types: grid, wide, hero, logo (default: enabled in config)")
	flags.IntVarP(&opts.workers, "workers", "w", 4, "Shortcuts processed in parallel (default from config)")
	flags.StringVar(&opts.shortcutsPath, "shortcuts", "", "Read this shortcuts.vdf instead of scanning Steam profiles")
	flags.StringVar(&opts.gridDir, "grid-dir", "", "Write artwork here instead of the profile's grid directory")
	flags.BoolVar(&opts.json, "json", false, "Print the run report as JSON")
}

func newApplyCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Download and apply artwork",
		Long: `Find every shortcut on SteamGridDB and write its artwork to the grid
directory using the file names Steam expects:

  grid  {appid}p.png       portrait capsule
  wide  {appid}.png        horizontal capsule
  hero  {appid}_hero.png   library background
  logo  {appid}_logo.png   logo overlay

Existing files are replaced. One failing game or image does not stop the
others; the summary lists what was written, absent or failed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(cmd, opts)
		},
	}
	addApplyFlags(cmd, opts)
	return cmd
}

type applyResult struct {
	Reports   []*pipeline.Report `json:"reports"`
	Summary   pipeline.Summary   `json:"summary"`
	Malformed []string           `json:"malformed,omitempty"`
}

func runApply(cmd *cobra.Command, opts *options) error {
	settings, _, err := opts.loadSettings(cmd)
	if err != nil {
		return err
	}

	if settings.APIKey == "" {
		return errMissingAPIKey()
	}

	types := settings.Enabled()
	if opts.types != "" {
		if types, err = models.ParseImageTypes(opts.types); err != nil {
			return printer.Error("invalid --types", err.Error(), []string{"Valid types: grid, wide, hero, logo"})
		}
	}
	if len(types) == 0 {
		return printer.Error(
			"no image types selected",
			"Every image type is disabled in the config.",
			[]string{"Enable one:\n  gridsetter config set image_types.grid true"},
		)
	}

	logger := opts.newLogger(cmd.ErrOrStderr())
	targets, err := opts.resolveTargets(settings, logger)
	if err != nil {
		return err
	}

	client, resolver := opts.newCatalog(settings, logger)
	writer := storage.NewArtworkWriter()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	result := applyResult{Reports: []*pipeline.Report{}}
	for _, t := range targets {
		if ctx.Err() != nil {
			break
		}

		shortcuts, err := opts.readTarget(cmd.ErrOrStderr(), t)
		if err != nil {
			if !errors.Is(err, steam.ErrMalformedContainer) {
				return err
			}
			printer.Warning("%s: %v\n", t.Label, err)
			result.Malformed = append(result.Malformed, t.ShortcutsPath)
			continue
		}
		if len(shortcuts) == 0 {
			continue
		}

		if !opts.json {
			printer.Step("%s: %d shortcut(s) → %s\n", t.Label, len(shortcuts), t.GridDir)
		}
		runner := pipeline.NewRunner(resolver, client, writer, pipeline.Config{
			Types:          types,
			GridDir:        t.GridDir,
			Workers:        settings.Workers,
			UseStoredAppID: settings.UseStoredAppID,
		}, logger)

		report := runner.Run(ctx, shortcuts)
		if !opts.json {
			printer.Report(out, report)
		}
		result.Reports = append(result.Reports, report)
		result.Summary.Add(report.Summary())
	}

	if opts.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
	} else if result.Summary.Shortcuts == 0 && len(result.Malformed) == 0 {
		printer.Info("No shortcuts matched.\n")
	} else {
		printer.Summary(out, result.Summary)
	}

	if len(result.Malformed) > 0 {
		return printer.Error(
			fmt.Sprintf("%d shortcuts file(s) could not be read", len(result.Malformed)),
			strings.Join(result.Malformed, "\n"),
			[]string{"The file may be truncated or written by an incompatible tool; other profiles were processed."},
		)
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		return printer.Error("interrupted", "Remaining shortcuts were not processed.", nil)
	}
	return nil
}

func errMissingAPIKey() error {
	return printer.Error(
		"no SteamGridDB API key",
		"Requests to SteamGridDB need a personal API key (https://www.steamgriddb.com/profile/preferences/api).",
		[]string{
			"Store it in the config:\n  gridsetter config setup",
			"Or set it directly:\n  gridsetter config set api_key <KEY>",
			"Export it:\n  export " + APIKeyEnv + "=<KEY>",
			"Pass it once:\n  gridsetter --api-key <KEY>",
		},
	)
}

// newCatalog builds the SteamGridDB client and a resolver over it
func (o *options) newCatalog(settings *models.Settings, logger *slog.Logger) (*steamgriddb.Client, *search.Resolver) {
	timeout := time.Duration(settings.RequestTimeout) * time.Second
	client := steamgriddb.NewClient(
		steamgriddb.NewHTTPFetcher(settings.APIKey, o.apiURL, timeout),
		steamgriddb.WithBaseURL(o.apiURL),
		steamgriddb.WithFilters(settings.NSFW, settings.Humor),
		steamgriddb.WithLogger(logger),
	)

	var resolverOpts []search.ResolverOption
	if settings.FallbackSearch {
		resolverOpts = append(resolverOpts, search.WithFallbackSearch())
	}
	return client, search.NewResolver(client, logger, resolverOpts...)
}
