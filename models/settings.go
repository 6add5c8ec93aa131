package models

import (
	"fmt"
	"strconv"
	"strings"
)

// ImageTypeToggles enables or disables each artwork slot
type ImageTypeToggles struct {
	Grid bool `json:"grid" yaml:"grid"`
	Wide bool `json:"wide" yaml:"wide"`
	Hero bool `json:"hero" yaml:"hero"`
	Logo bool `json:"logo" yaml:"logo"`
}

// Settings represents application settings
type Settings struct {
	APIKey         string           `json:"api_key" yaml:"api_key"`
	SteamPath      string           `json:"steam_path,omitempty" yaml:"steam_path,omitempty"`
	ImageTypes     ImageTypeToggles `json:"image_types" yaml:"image_types"`
	Workers        int              `json:"workers" yaml:"workers"`
	RequestTimeout int              `json:"request_timeout" yaml:"request_timeout"` // in seconds
	UseStoredAppID bool             `json:"use_stored_app_id" yaml:"use_stored_app_id"`
	FallbackSearch bool             `json:"fallback_search" yaml:"fallback_search"`
	NSFW           bool             `json:"nsfw" yaml:"nsfw"`
	Humor          bool             `json:"humor" yaml:"humor"`
}

// DefaultSettings returns default application settings
func DefaultSettings() *Settings {
	return &Settings{
		ImageTypes: ImageTypeToggles{
			Grid: true,
			Wide: true,
			Hero: true,
			Logo: true,
		},
		Workers:        4,
		RequestTimeout: 30,
	}
}

// Enabled returns the enabled image types in canonical order
func (s *Settings) Enabled() []ImageType {
	var types []ImageType
	for _, t := range AllImageTypes {
		if s.TypeEnabled(t) {
			types = append(types, t)
		}
	}
	return types
}

// TypeEnabled reports whether artwork of type t should be fetched
func (s *Settings) TypeEnabled(t ImageType) bool {
	switch t {
	case Grid:
		return s.ImageTypes.Grid
	case Wide:
		return s.ImageTypes.Wide
	case Hero:
		return s.ImageTypes.Hero
	case Logo:
		return s.ImageTypes.Logo
	}
	return false
}

// SetTypeEnabled toggles a single image type
func (s *Settings) SetTypeEnabled(t ImageType, enabled bool) {
	switch t {
	case Grid:
		s.ImageTypes.Grid = enabled
	case Wide:
		s.ImageTypes.Wide = enabled
	case Hero:
		s.ImageTypes.Hero = enabled
	case Logo:
		s.ImageTypes.Logo = enabled
	}
}

// Set updates a setting addressed by its config key, e.g. "api_key" or
// "image_types.hero".
func (s *Settings) Set(key, value string) error {
	if rest, ok := strings.CutPrefix(key, "image_types."); ok {
		t, err := ParseImageType(rest)
		if err != nil {
			return err
		}
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		s.SetTypeEnabled(t, enabled)
		return nil
	}

	switch key {
	case "api_key":
		s.APIKey = strings.TrimSpace(value)
	case "steam_path":
		s.SteamPath = strings.TrimSpace(value)
	case "workers", "request_timeout":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		if key == "workers" {
			s.Workers = n
		} else {
			s.RequestTimeout = n
		}
	case "use_stored_app_id", "fallback_search", "nsfw", "humor":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		switch key {
		case "use_stored_app_id":
			s.UseStoredAppID = b
		case "fallback_search":
			s.FallbackSearch = b
		case "nsfw":
			s.NSFW = b
		default:
			s.Humor = b
		}
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	return s.Validate()
}

// Validate checks value ranges
func (s *Settings) Validate() error {
	if s.Workers < 1 {
		return fmt.Errorf("workers must be >= 1, got %d", s.Workers)
	}
	if s.RequestTimeout < 1 {
		return fmt.Errorf("request_timeout must be >= 1 second, got %d", s.RequestTimeout)
	}
	return nil
}

// MaskedAPIKey returns the API key with all but the last four characters hidden
func (s *Settings) MaskedAPIKey() string {
	if s.APIKey == "" {
		return ""
	}
	if len(s.APIKey) <= 4 {
		return strings.Repeat("*", len(s.APIKey))
	}
	return strings.Repeat("*", len(s.APIKey)-4) + s.APIKey[len(s.APIKey)-4:]
}
