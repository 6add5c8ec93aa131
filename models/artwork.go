package models

import (
	"fmt"
	"strings"
)

// ImageType is one of the artwork slots Steam reads from the grid directory
type ImageType string

const (
	Grid ImageType = "grid" // portrait capsule
	Wide ImageType = "wide" // horizontal capsule
	Hero ImageType = "hero" // library background
	Logo ImageType = "logo" // logo overlay
)

// AllImageTypes lists every image type in canonical order
var AllImageTypes = []ImageType{Grid, Wide, Hero, Logo}

// Valid reports whether t is a known image type
func (t ImageType) Valid() bool {
	switch t {
	case Grid, Wide, Hero, Logo:
		return true
	}
	return false
}

// Filename returns the grid directory filename Steam expects for appID.
// It returns an empty string for unknown types.
func (t ImageType) Filename(appID uint32) string {
	switch t {
	case Grid:
		return fmt.Sprintf("%dp.png", appID)
	case Wide:
		return fmt.Sprintf("%d.png", appID)
	case Hero:
		return fmt.Sprintf("%d_hero.png", appID)
	case Logo:
		return fmt.Sprintf("%d_logo.png", appID)
	}
	return ""
}

// Label returns a display name for t
func (t ImageType) Label() string {
	if t == "" {
		return ""
	}
	return strings.ToUpper(string(t[:1])) + string(t[1:])
}

// ParseImageType parses a case-insensitive image type name
func ParseImageType(s string) (ImageType, error) {
	t := ImageType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown image type %q (must be grid, wide, hero or logo)", s)
	}
	return t, nil
}

// ParseImageTypes parses a comma separated list, dropping duplicates and
// returning the result in canonical order.
func ParseImageTypes(s string) ([]ImageType, error) {
	seen := make(map[ImageType]bool)
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		t, err := ParseImageType(part)
		if err != nil {
			return nil, err
		}
		seen[t] = true
	}
	var types []ImageType
	for _, t := range AllImageTypes {
		if seen[t] {
			types = append(types, t)
		}
	}
	return types, nil
}

// CatalogMatch is a candidate game returned by the artwork catalog for a query
type CatalogMatch struct {
	CatalogID     int    `json:"catalog_id"`
	Name          string `json:"name"`
	RelevanceRank int    `json:"relevance_rank"` // position in the catalog's own ordering
	Verified      bool   `json:"verified,omitempty"`
}

// ArtworkAsset is one candidate image for a catalog entry and image type
type ArtworkAsset struct {
	ID        int       `json:"id,omitempty"`
	URL       string    `json:"url"`
	ImageType ImageType `json:"image_type"`
	Score     float64   `json:"score,omitempty"`
	Scored    bool      `json:"scored,omitempty"` // false when the catalog gave no score
	Width     int       `json:"width,omitempty"`
	Height    int       `json:"height,omitempty"`
	Mime      string    `json:"mime,omitempty"`
}
