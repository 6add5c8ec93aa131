package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gridsetter/printer"
	"gridsetter/steam/steamtest"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

// execute runs a fresh command tree with args
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv(APIKeyEnv, "")

	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	t.Cleanup(func() { printer.SetOutput(os.Stdout, os.Stderr) })

	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

var hades = steamtest.Entry{
	AppID:   1234,
	AppName: "Hades",
	Exe:     `"C:\Games\Hades\Hades.exe"`,
}

var retroarch = steamtest.Entry{
	AppName: "RetroArch",
	Exe:     `"/usr/bin/retroarch"`,
}

func writeShortcuts(t *testing.T, dir string, entries ...steamtest.Entry) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	path := filepath.Join(dir, "shortcuts.vdf")
	require.NoError(t, os.WriteFile(path, steamtest.Shortcuts(entries...), 0644))
	return path
}

// newCatalogServer serves a SteamGridDB stub that knows Hades with a grid
// and no hero, and nothing else
func newCatalogServer(t *testing.T) *httptest.Server {
	var pngData bytes.Buffer
	require.NoError(t, png.Encode(&pngData, image.NewGray(image.Rect(0, 0, 2, 3))))

	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/img/1.png" && r.Header.Get("Authorization") != "Bearer test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"success":false,"errors":["Invalid API key"]}`)
			return
		}
		switch r.URL.Path {
		case "/search/autocomplete/Hades":
			fmt.Fprint(w, `{"success":true,"data":[{"id":5251,"name":"Hades","verified":true}]}`)
		case "/grids/game/5251":
			if !strings.HasPrefix(r.URL.Query().Get("dimensions"), "600x900") {
				fmt.Fprint(w, `{"success":true,"data":[]}`)
				return
			}
			fmt.Fprintf(w, `{"success":true,"data":[{"id":1,"score":2,"url":"%s/img/1.png","width":600,"height":900}]}`, srv.URL)
		case "/heroes/game/5251", "/logos/game/5251":
			fmt.Fprint(w, `{"success":true,"data":[]}`)
		case "/img/1.png":
			w.Write(pngData.Bytes())
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "gridsetter dev (commit: none, built: unknown)\n", out)
}

func TestConfigCommands(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.json")

	out, _, err := execute(t, "config", "path", "--config", configPath)
	require.NoError(t, err)
	assert.Equal(t, configPath+"\n", out)

	out, _, err = execute(t, "config", "set", "api_key", "abcdefgh", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "api_key updated")

	_, _, err = execute(t, "config", "set", "image_types.wide", "false", "--config", configPath)
	require.NoError(t, err)

	out, _, err = execute(t, "config", "show", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "# "+configPath+"\n")
	assert.Contains(t, out, "****efgh")
	assert.NotContains(t, out, "abcdefgh")
	assert.Contains(t, out, "wide: false")

	out, _, err = execute(t, "config", "show", "--reveal", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "api_key: abcdefgh")

	_, errOut, err := execute(t, "config", "set", "colour", "blue", "--config", configPath)
	assert.EqualError(t, err, "cannot set colour")
	assert.Contains(t, errOut, `unknown setting "colour"`)

	_, _, err = execute(t, "config", "set", "workers", "0", "--config", configPath)
	assert.Error(t, err)
}

func TestAPIKeyPrecedence(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("api_key: from-file\n"), 0600))

	out, _, err := execute(t, "config", "show", "--reveal", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "api_key: from-file")

	cmd := newRootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"config", "show", "--reveal", "--config", configPath})
	t.Setenv(APIKeyEnv, "from-env")
	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "api_key: from-env")

	cmd = newRootCmd()
	buf.Reset()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"config", "show", "--reveal", "--config", configPath, "--api-key", "from-flag"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "api_key: from-flag")
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	shortcutsPath := writeShortcuts(t, filepath.Join(dir, "config"), hades, retroarch)
	gridDir := filepath.Join(dir, "config", "grid")
	require.NoError(t, os.MkdirAll(gridDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(gridDir, "2555169630_hero.png"), []byte("x"), 0644))
	configPath := filepath.Join(dir, "config.json")

	out, _, err := execute(t, "list", "--shortcuts", shortcutsPath, "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "2555169630  Hades")
	assert.Contains(t, out, "hero")
	assert.Contains(t, out, "3985023816  RetroArch")

	out, _, err = execute(t, "list", "--shortcuts", shortcutsPath, "--config", configPath, "--game", "RETRO", "--json")
	require.NoError(t, err)

	var listed []struct {
		ShortcutsPath string `json:"shortcuts_path"`
		Shortcuts     []struct {
			AppID       uint32   `json:"app_id"`
			StoredAppID uint32   `json:"stored_app_id"`
			AppName     string   `json:"app_name"`
			GridID      uint32   `json:"grid_id"`
			GameID      uint64   `json:"game_id"`
			RunURL      string   `json:"run_url"`
			Artwork     []string `json:"artwork"`
		} `json:"shortcuts"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, shortcutsPath, listed[0].ShortcutsPath)
	require.Len(t, listed[0].Shortcuts, 1)
	assert.Equal(t, "RetroArch", listed[0].Shortcuts[0].AppName)
	assert.Equal(t, uint32(3985023816), listed[0].Shortcuts[0].AppID)
	assert.Equal(t, uint32(3985023816), listed[0].Shortcuts[0].GridID)
	assert.Equal(t, uint64(3985023816)<<32|0x02000000, listed[0].Shortcuts[0].GameID)
	assert.Equal(t, "steam://rungameid/17115546963534675968", listed[0].Shortcuts[0].RunURL)
	assert.Empty(t, listed[0].Shortcuts[0].Artwork)
}

func TestListUsesStoredAppID(t *testing.T) {
	dir := t.TempDir()
	shortcutsPath := writeShortcuts(t, filepath.Join(dir, "config"), hades)
	gridDir := filepath.Join(dir, "config", "grid")
	require.NoError(t, os.MkdirAll(gridDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(gridDir, "1234p.png"), []byte("x"), 0644))
	configPath := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(configPath, []byte(`{"use_stored_app_id": true}`), 0644))

	out, _, err := execute(t, "list", "--shortcuts", shortcutsPath, "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "1234   Hades  grid")

	out, _, err = execute(t, "list", "--shortcuts", shortcutsPath, "--config", configPath, "--json")
	require.NoError(t, err)

	var listed []struct {
		Shortcuts []struct {
			AppID   uint32   `json:"app_id"`
			GridID  uint32   `json:"grid_id"`
			Artwork []string `json:"artwork"`
		} `json:"shortcuts"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	require.Len(t, listed[0].Shortcuts, 1)
	assert.Equal(t, uint32(2555169630), listed[0].Shortcuts[0].AppID)
	assert.Equal(t, uint32(1234), listed[0].Shortcuts[0].GridID)
	assert.Equal(t, []string{"1234p.png"}, listed[0].Shortcuts[0].Artwork)
}

func TestListReportsSkippedRecords(t *testing.T) {
	dir := t.TempDir()
	shortcutsPath := writeShortcuts(t, dir, hades, steamtest.Entry{Exe: "/opt/nameless"})

	out, errOut, err := execute(t, "list", "--shortcuts", shortcutsPath, "--config", filepath.Join(dir, "config.json"))
	require.NoError(t, err)
	assert.Contains(t, out, "Hades")
	assert.Contains(t, errOut, shortcutsPath+": skipped entry 1: missing app name")
}

func TestApplyRequiresAPIKey(t *testing.T) {
	dir := t.TempDir()
	shortcutsPath := writeShortcuts(t, dir, hades)

	_, errOut, err := execute(t, "--shortcuts", shortcutsPath, "--config", filepath.Join(dir, "config.json"))
	assert.EqualError(t, err, "no SteamGridDB API key")
	assert.Contains(t, errOut, "gridsetter config set api_key <KEY>")
}

func TestApplyInvalidTypes(t *testing.T) {
	dir := t.TempDir()
	shortcutsPath := writeShortcuts(t, dir, hades)

	_, _, err := execute(t, "apply", "--shortcuts", shortcutsPath, "--config", filepath.Join(dir, "config.json"),
		"--api-key", "k", "--types", "grid,icon")
	assert.EqualError(t, err, "invalid --types")
}

func TestApplyShortcutsFile(t *testing.T) {
	srv := newCatalogServer(t)
	dir := t.TempDir()
	shortcutsPath := writeShortcuts(t, filepath.Join(dir, "config"), hades, retroarch)
	gridDir := filepath.Join(dir, "out")

	out, _, err := execute(t, "apply",
		"--config", filepath.Join(dir, "config.json"),
		"--api-key", "test-key",
		"--api-url", srv.URL,
		"--shortcuts", shortcutsPath,
		"--grid-dir", gridDir,
		"--types", "grid,hero",
	)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(gridDir, "2555169630p.png"))
	assert.NoFileExists(t, filepath.Join(gridDir, "2555169630_hero.png"))
	entries, err := os.ReadDir(gridDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	assert.Contains(t, out, "Hades (2555169630) → Hades [5251]")
	assert.Contains(t, out, "  ✓ grid  2555169630p.png")
	assert.Contains(t, out, "  - hero  absent")
	assert.Contains(t, out, "RetroArch (3985023816)\n  - grid  no-match")
	assert.Contains(t, out, "Processed 2 game(s): 1 written, 1 absent, 2 without a match, 0 failed.")
}

func TestApplyFiltersByGame(t *testing.T) {
	srv := newCatalogServer(t)
	dir := t.TempDir()
	shortcutsPath := writeShortcuts(t, dir, hades, retroarch)

	out, _, err := execute(t,
		"--config", filepath.Join(dir, "config.json"),
		"--api-key", "test-key",
		"--api-url", srv.URL,
		"--shortcuts", shortcutsPath,
		"--game", "hades",
		"--json",
	)
	require.NoError(t, err)

	var result struct {
		Reports []struct {
			GridDir   string `json:"grid_dir"`
			Shortcuts []struct {
				GridID uint32 `json:"grid_id"`
				Types  []struct {
					Type   string `json:"type"`
					Status string `json:"status"`
				} `json:"types"`
			} `json:"shortcuts"`
		} `json:"reports"`
		Summary struct {
			Shortcuts int `json:"shortcuts"`
			Written   int `json:"written"`
			Absent    int `json:"absent"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Reports, 1)
	assert.Equal(t, filepath.Join(dir, "grid"), result.Reports[0].GridDir)
	require.Len(t, result.Reports[0].Shortcuts, 1)
	assert.Equal(t, uint32(2555169630), result.Reports[0].Shortcuts[0].GridID)
	assert.Equal(t, 1, result.Summary.Shortcuts)
	assert.Equal(t, 1, result.Summary.Written)
	assert.Equal(t, 3, result.Summary.Absent)
	assert.FileExists(t, filepath.Join(dir, "grid", "2555169630p.png"))
}

func TestApplyBadAPIKeyReportsUnavailable(t *testing.T) {
	srv := newCatalogServer(t)
	dir := t.TempDir()
	shortcutsPath := writeShortcuts(t, dir, hades)

	out, _, err := execute(t,
		"--config", filepath.Join(dir, "config.json"),
		"--api-key", "wrong-key",
		"--api-url", srv.URL,
		"--shortcuts", shortcutsPath,
		"--types", "grid",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "  ✗ grid  failed: catalog unavailable")
	assert.Contains(t, out, "SteamGridDB could not be reached for 1 image(s); check your API key")
	assert.NoDirExists(t, filepath.Join(dir, "grid"))
}

func TestApplySteamProfiles(t *testing.T) {
	srv := newCatalogServer(t)
	steamRoot := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(steamRoot, "config"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(steamRoot, "config", "loginusers.vdf"), []byte(`"users"
{
	"76561197960287930"
	{
		"AccountName"		"gaben"
		"PersonaName"		"Gabe"
	}
}
`), 0644))
	writeShortcuts(t, filepath.Join(steamRoot, "userdata", "22202", "config"), hades)
	writeShortcuts(t, filepath.Join(steamRoot, "userdata", "101", "config"), retroarch)
	require.NoError(t, os.MkdirAll(filepath.Join(steamRoot, "userdata", "303"), 0755))

	broken := filepath.Join(steamRoot, "userdata", "404", "config")
	require.NoError(t, os.MkdirAll(broken, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(broken, "shortcuts.vdf"), []byte("\x00shortcuts\x00\x00\x010\x00"), 0644))

	out, errOut, err := execute(t,
		"--config", filepath.Join(steamRoot, "gridsetter.json"),
		"--api-key", "test-key",
		"--api-url", srv.URL,
		"--steam-path", steamRoot,
		"--types", "grid",
	)
	assert.EqualError(t, err, "1 shortcuts file(s) could not be read")
	assert.Contains(t, errOut, filepath.Join(broken, "shortcuts.vdf"))

	assert.Contains(t, out, "User 101: 1 shortcut(s)")
	assert.Contains(t, out, "User Gabe (22202): 1 shortcut(s)")
	assert.FileExists(t, filepath.Join(steamRoot, "userdata", "22202", "config", "grid", "2555169630p.png"))
	assert.NoDirExists(t, filepath.Join(steamRoot, "userdata", "101", "config", "grid"))
	assert.Contains(t, out, "Processed 2 game(s): 1 written, 0 absent, 1 without a match, 0 failed.")
}

func TestApplyMissingShortcutsFile(t *testing.T) {
	dir := t.TempDir()
	_, _, err := execute(t, "--shortcuts", filepath.Join(dir, "nope.vdf"), "--api-key", "k",
		"--config", filepath.Join(dir, "config.json"))
	assert.EqualError(t, err, "shortcuts file not found")
}

func TestRootRejectsArguments(t *testing.T) {
	_, _, err := execute(t, "hades")
	assert.Error(t, err)
}

func TestConfigSetup(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.json")
	t.Setenv(APIKeyEnv, "")
	t.Cleanup(func() { printer.SetOutput(os.Stdout, os.Stderr) })

	run := func(input string) (string, error) {
		cmd := newRootCmd()
		var out, errOut bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetErr(&errOut)
		cmd.SetIn(strings.NewReader(input))
		cmd.SetArgs([]string{"config", "setup", "--config", configPath})
		err := cmd.Execute()
		return out.String(), err
	}

	_, err := run("\n")
	assert.EqualError(t, err, "API key is required")
	assert.NoFileExists(t, configPath)

	out, err := run("  piped-key  \n")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration saved to "+configPath)

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"api_key": "piped-key"`)
}

func TestListResolve(t *testing.T) {
	srv := newCatalogServer(t)
	dir := t.TempDir()
	shortcutsPath := writeShortcuts(t, dir, hades, retroarch)
	configPath := filepath.Join(dir, "config.json")

	_, _, err := execute(t, "list", "--resolve", "--shortcuts", shortcutsPath, "--config", configPath)
	assert.EqualError(t, err, "no SteamGridDB API key")

	out, _, err := execute(t, "list", "--resolve", "--shortcuts", shortcutsPath, "--config", configPath,
		"--api-key", "test-key", "--api-url", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "MATCH")
	assert.Contains(t, out, "Hades [5251]")

	out, _, err = execute(t, "list", "--resolve", "--json", "--shortcuts", shortcutsPath, "--config", configPath,
		"--api-key", "test-key", "--api-url", srv.URL)
	require.NoError(t, err)

	var listed []struct {
		Shortcuts []struct {
			AppName    string `json:"app_name"`
			MatchError string `json:"match_error"`
			Match      *struct {
				CatalogID int `json:"catalog_id"`
			} `json:"match"`
		} `json:"shortcuts"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	require.Len(t, listed[0].Shortcuts, 2)
	require.NotNil(t, listed[0].Shortcuts[0].Match)
	assert.Equal(t, 5251, listed[0].Shortcuts[0].Match.CatalogID)
	assert.Nil(t, listed[0].Shortcuts[1].Match)
	assert.Contains(t, listed[0].Shortcuts[1].MatchError, "no catalog match")
}
