package models

import (
	"fmt"
	"strings"
)

// Shortcut represents a non-Steam game entry decoded from shortcuts.vdf
type Shortcut struct {
	Index         int      `json:"index"`
	AppID         uint32   `json:"app_id"`
	StoredAppID   uint32   `json:"stored_app_id,omitempty"`
	AppName       string   `json:"app_name"`
	Exe           string   `json:"exe"`
	StartDir      string   `json:"start_dir,omitempty"`
	Icon          string   `json:"icon,omitempty"`
	LaunchOptions string   `json:"launch_options,omitempty"`
	IsHidden      bool     `json:"is_hidden,omitempty"`
	LastPlayTime  uint32   `json:"last_play_time,omitempty"`
	Tags          []string `json:"tags,omitempty"`
}

// GameID returns the 64-bit game id Steam uses in rungameid URLs
func (s Shortcut) GameID() uint64 {
	return uint64(s.AppID)<<32 | 0x02000000
}

// RunURL returns the steam:// URL for launching the shortcut
func (s Shortcut) RunURL() string {
	return fmt.Sprintf("steam://rungameid/%d", s.GameID())
}

// GridID returns the id used for artwork filenames. The stored appid is only
// used when preferStored is set and the file actually carried one.
func (s Shortcut) GridID(preferStored bool) uint32 {
	if preferStored && s.StoredAppID != 0 {
		return s.StoredAppID
	}
	return s.AppID
}

// Matches reports whether the app name contains query, ignoring case.
// An empty query matches everything.
func (s Shortcut) Matches(query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s.AppName), strings.ToLower(query))
}

// FilterShortcuts returns the shortcuts whose name matches query, in order
func FilterShortcuts(shortcuts []Shortcut, query string) []Shortcut {
	var out []Shortcut
	for _, s := range shortcuts {
		if s.Matches(query) {
			out = append(out, s)
		}
	}
	return out
}
