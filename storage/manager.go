package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gridsetter/models"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Manager handles settings persistence
type Manager struct {
	configPath string
}

// DefaultConfigPath returns ~/.config/steamgriddb/config.json, or a path
// relative to the working directory when the home directory is unknown.
func DefaultConfigPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			homeDir = "."
		}
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "steamgriddb", "config.json")
}

// NewManager creates a storage manager for the settings file at configPath.
// An empty path selects DefaultConfigPath.
func NewManager(configPath string) *Manager {
	if configPath == "" {
		configPath = DefaultConfigPath()
	}
	return &Manager{configPath: cleanPath(configPath)}
}

// ConfigPath returns the settings file location
func (m *Manager) ConfigPath() string {
	return m.configPath
}

// LoadSettings loads the settings from disk. Keys missing from the file keep
// their defaults; a missing file yields the defaults.
func (m *Manager) LoadSettings() (*models.Settings, error) {
	settings := models.DefaultSettings()

	data, err := os.ReadFile(m.configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if m.isYAML() {
		if err := yaml.Unmarshal(data, settings); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	} else if len(strings.TrimSpace(string(data))) > 0 {
		if err := json.Unmarshal(jsonc.ToJSON(data), settings); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	}

	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return settings, nil
}

// SaveSettings saves the settings to disk
func (m *Manager) SaveSettings(settings *models.Settings) error {
	var data []byte
	var err error
	if m.isYAML() {
		data, err = yaml.Marshal(settings)
	} else {
		data, err = json.MarshalIndent(settings, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(m.configPath), 0755); err != nil {
		return err
	}
	// The file carries the API key
	return writeFileAtomic(m.configPath, data, 0600)
}

func (m *Manager) isYAML() bool {
	ext := strings.ToLower(filepath.Ext(m.configPath))
	return ext == ".yaml" || ext == ".yml"
}

// cleanPath cleans and normalizes a file path
func cleanPath(path string) string {
	// Remove surrounding quotes
	path = strings.Trim(path, `"'`)

	if strings.HasPrefix(path, "~/") {
		if homeDir, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(homeDir, path[2:])
		}
	}

	return filepath.Clean(path)
}
