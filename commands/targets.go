package commands

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gridsetter/models"
	"gridsetter/printer"
	"gridsetter/steam"
)

// target is one shortcuts file and the grid directory its artwork goes to
type target struct {
	Label         string `json:"user"`
	ShortcutsPath string `json:"shortcuts_path"`
	GridDir       string `json:"grid_dir"`
}

// resolveTargets returns the explicit --shortcuts file, or every Steam
// profile that has a shortcuts.vdf
func (o *options) resolveTargets(settings *models.Settings, logger *slog.Logger) ([]target, error) {
	if o.shortcutsPath != "" {
		if _, err := os.Stat(o.shortcutsPath); err != nil {
			return nil, printer.Error(
				"shortcuts file not found",
				err.Error(),
				[]string{"Check the path passed to --shortcuts"},
			)
		}
		gridDir := o.gridDir
		if gridDir == "" {
			gridDir = filepath.Join(filepath.Dir(o.shortcutsPath), "grid")
		}
		return []target{{Label: o.shortcutsPath, ShortcutsPath: o.shortcutsPath, GridDir: gridDir}}, nil
	}

	steamPath := settings.SteamPath
	if steamPath == "" {
		found, err := steam.FindSteamPath()
		if err != nil {
			return nil, printer.Error(
				"Steam installation not found",
				"No Steam directory was found in the usual locations.",
				[]string{
					"Pass it explicitly:\n  gridsetter --steam-path /path/to/Steam",
					"Store it in the config:\n  gridsetter config set steam_path /path/to/Steam",
				},
			)
		}
		steamPath = found
	}

	users, err := steam.NewManager(steamPath, logger).UserDirs()
	if err != nil {
		return nil, fmt.Errorf("failed to list Steam users: %w", err)
	}

	var targets []target
	for _, u := range users {
		if _, err := os.Stat(u.ShortcutsPath()); errors.Is(err, os.ErrNotExist) {
			logger.Debug("profile has no shortcuts", "user", u.AccountID)
			continue
		}
		gridDir := u.GridPath()
		if o.gridDir != "" {
			gridDir = o.gridDir
		}
		targets = append(targets, target{
			Label:         "User " + u.DisplayName(),
			ShortcutsPath: u.ShortcutsPath(),
			GridDir:       gridDir,
		})
	}

	if len(targets) == 0 {
		return nil, printer.ErrorWithContext(
			"no shortcuts found",
			"None of the Steam profiles has a shortcuts.vdf file.",
			map[string]string{"Steam": steamPath},
			[]string{"Add a non-Steam game in Steam first, or pass --shortcuts FILE"},
		)
	}
	return targets, nil
}

// readTarget decodes the target's shortcuts, reports skipped records and
// applies the --game filter
func (o *options) readTarget(w io.Writer, t target) ([]models.Shortcut, error) {
	shortcuts, skipped, err := steam.ReadShortcuts(t.ShortcutsPath)
	if err != nil {
		return nil, err
	}
	printer.Skipped(w, t.Label, skipped)
	return models.FilterShortcuts(shortcuts, o.game), nil
}
