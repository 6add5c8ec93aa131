package steam

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"gridsetter/models"
)

// Manager handles Steam installation lookups for a single Steam root
type Manager struct {
	steamPath string
	logger    *slog.Logger
}

// UserDir is one Steam user profile under userdata/
type UserDir struct {
	AccountID   string
	Path        string
	AccountName string
	PersonaName string
}

// DisplayName returns the persona name when known, otherwise the account id
func (u UserDir) DisplayName() string {
	if u.PersonaName != "" {
		return fmt.Sprintf("%s (%s)", u.PersonaName, u.AccountID)
	}
	return u.AccountID
}

// ShortcutsPath returns the path of the user's shortcuts.vdf
func (u UserDir) ShortcutsPath() string {
	return filepath.Join(u.Path, "config", "shortcuts.vdf")
}

// GridPath returns the directory Steam reads custom artwork from
func (u UserDir) GridPath() string {
	return filepath.Join(u.Path, "config", "grid")
}

// NewManager creates a Steam manager rooted at steamPath
func NewManager(steamPath string, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{steamPath: steamPath, logger: logger}
}

// FindSteamPath attempts to find the Steam installation directory
func FindSteamPath() (string, error) {
	var possiblePaths []string

	homeDir, _ := os.UserHomeDir()
	switch runtime.GOOS {
	case "windows":
		possiblePaths = []string{
			filepath.Join(os.Getenv("PROGRAMFILES(X86)"), "Steam"),
			filepath.Join(os.Getenv("PROGRAMFILES"), "Steam"),
			"C:\\Program Files (x86)\\Steam",
			"C:\\Program Files\\Steam",
		}
	case "darwin":
		possiblePaths = []string{
			filepath.Join(homeDir, "Library", "Application Support", "Steam"),
		}
	default: // Linux
		possiblePaths = []string{
			filepath.Join(homeDir, ".steam", "steam"),
			filepath.Join(homeDir, ".local", "share", "Steam"),
			filepath.Join(homeDir, ".var", "app", "com.valvesoftware.Steam", ".local", "share", "Steam"),
		}
	}

	for _, path := range possiblePaths {
		if stat, err := os.Stat(path); err == nil && stat.IsDir() {
			return path, nil
		}
	}

	return "", fmt.Errorf("Steam installation not found")
}

// UserDirs lists the numeric profile directories under userdata/, sorted by
// account id. Persona names come from config/loginusers.vdf when readable.
func (m *Manager) UserDirs() ([]UserDir, error) {
	userDataDir := filepath.Join(m.steamPath, "userdata")

	entries, err := os.ReadDir(userDataDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read userdata directory: %w", err)
	}

	loginUsers, err := ReadLoginUsers(filepath.Join(m.steamPath, "config", "loginusers.vdf"))
	if err != nil {
		m.logger.Debug("login users unavailable", "error", err)
	}

	var users []UserDir
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		id, err := strconv.ParseUint(entry.Name(), 10, 32)
		if err != nil {
			continue
		}

		user := UserDir{
			AccountID: entry.Name(),
			Path:      filepath.Join(userDataDir, entry.Name()),
		}
		if login, ok := loginUsers[uint32(id)]; ok {
			user.AccountName = login.AccountName
			user.PersonaName = login.PersonaName
		}
		users = append(users, user)
	}

	sort.Slice(users, func(i, j int) bool {
		a, _ := strconv.ParseUint(users[i].AccountID, 10, 32)
		b, _ := strconv.ParseUint(users[j].AccountID, 10, 32)
		return a < b
	})

	return users, nil
}

// ReadShortcuts reads and decodes a shortcuts.vdf file. A missing file means
// the user has no shortcuts.
func ReadShortcuts(path string) ([]models.Shortcut, []SkippedRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, nil
		}
		return nil, nil, err
	}

	shortcuts, skipped, err := DecodeShortcuts(data)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return shortcuts, skipped, nil
}

// ExistingArtwork returns the sorted names of files in gridDir that belong to
// appID.
func ExistingArtwork(gridDir string, appID uint32) ([]string, error) {
	entries, err := os.ReadDir(gridDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	prefix := strconv.FormatUint(uint64(appID), 10)
	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) {
			continue
		}
		// 123.png must not be listed for app 12
		if rest := name[len(prefix):]; rest != "" && rest[0] >= '0' && rest[0] <= '9' {
			continue
		}
		files = append(files, name)
	}
	sort.Strings(files)

	return files, nil
}
