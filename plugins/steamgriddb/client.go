package steamgriddb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"gridsetter/models"
)

// DefaultBaseURL is the SteamGridDB v2 API root
const DefaultBaseURL = "https://www.steamgriddb.com/api/v2"

// Dimension filters. Grid asks for portrait capsules only so the
// horizontal sizes can be fetched separately as Wide.
const (
	gridDimensions = "600x900,342x482,660x930"
	wideDimensions = "460x215,920x430"
)

// Client is a SteamGridDB catalog. It is safe for concurrent use.
type Client struct {
	fetcher Fetcher
	baseURL string
	nsfw    bool
	humor   bool
	logger  *slog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL points the client at another API root
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithFilters includes adult and humorous artwork in asset listings
func WithFilters(nsfw, humor bool) Option {
	return func(c *Client) {
		c.nsfw = nsfw
		c.humor = humor
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient creates a catalog client that retrieves through fetcher
func NewClient(fetcher Fetcher, opts ...Option) *Client {
	c := &Client{
		fetcher: fetcher,
		baseURL: DefaultBaseURL,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Name() string { return "steamgriddb" }

// Search looks up games by name using the autocomplete endpoint. Results
// keep the API's order, which becomes their relevance rank.
func (c *Client) Search(ctx context.Context, name string) ([]models.CatalogMatch, error) {
	endpoint := c.baseURL + "/search/autocomplete/" + url.PathEscape(name)

	results, err := getJSON[gameResult](ctx, c, endpoint)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", name, err)
	}

	matches := make([]models.CatalogMatch, 0, len(results))
	for i, r := range results {
		matches = append(matches, models.CatalogMatch{
			CatalogID:     r.ID,
			Name:          r.Name,
			RelevanceRank: i,
			Verified:      r.Verified,
		})
	}
	return matches, nil
}

// AssetsFor lists the images of one type for a game
func (c *Client) AssetsFor(ctx context.Context, catalogID int, imageType models.ImageType) ([]models.ArtworkAsset, error) {
	endpoint, err := c.assetsURL(catalogID, imageType)
	if err != nil {
		return nil, err
	}

	results, err := getJSON[imageResult](ctx, c, endpoint)
	if err != nil {
		return nil, fmt.Errorf("list %s for game %d: %w", imageType, catalogID, err)
	}

	assets := make([]models.ArtworkAsset, 0, len(results))
	for _, r := range results {
		if r.URL == "" {
			continue
		}
		assets = append(assets, models.ArtworkAsset{
			ID:        r.ID,
			URL:       r.URL,
			ImageType: imageType,
			Score:     float64(r.Score),
			Scored:    true,
			Width:     r.Width,
			Height:    r.Height,
			Mime:      r.Mime,
		})
	}
	return assets, nil
}

// Download fetches the image for asset and verifies it decodes. The bytes
// are returned unmodified.
func (c *Client) Download(ctx context.Context, asset models.ArtworkAsset) ([]byte, error) {
	if asset.URL == "" {
		return nil, fmt.Errorf("asset %d has no URL", asset.ID)
	}

	c.logger.Debug("downloading artwork", "asset", asset.ID, "type", asset.ImageType, "url", asset.URL)
	data, err := c.fetcher.Fetch(ctx, asset.URL)
	if err != nil {
		return nil, err
	}

	format, cfg, err := ValidateImage(data)
	if err != nil {
		return nil, fmt.Errorf("asset %d: %w", asset.ID, err)
	}
	c.logger.Debug("downloaded artwork", "asset", asset.ID, "format", format,
		"width", cfg.Width, "height", cfg.Height, "bytes", len(data))
	return data, nil
}

func (c *Client) assetsURL(catalogID int, imageType models.ImageType) (string, error) {
	params := url.Values{}
	var kind string
	switch imageType {
	case models.Grid:
		kind = "grids"
		params.Set("dimensions", gridDimensions)
	case models.Wide:
		kind = "grids"
		params.Set("dimensions", wideDimensions)
	case models.Hero:
		kind = "heroes"
	case models.Logo:
		kind = "logos"
	default:
		return "", fmt.Errorf("unknown image type %q", imageType)
	}
	params.Set("nsfw", filterValue(c.nsfw))
	params.Set("humor", filterValue(c.humor))

	return fmt.Sprintf("%s/%s/game/%d?%s", c.baseURL, kind, catalogID, params.Encode()), nil
}

// filterValue maps an opt-in toggle to the API's tri-state filter
func filterValue(include bool) string {
	if include {
		return "any"
	}
	return "false"
}

// getJSON fetches endpoint and unwraps the data array. A 404 means the API
// has nothing for the request and yields an empty result.
func getJSON[T any](ctx context.Context, c *Client, endpoint string) ([]T, error) {
	c.logger.Debug("catalog request", "url", endpoint)

	body, err := c.fetcher.Fetch(ctx, endpoint)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}

	var resp apiResponse[T]
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if !resp.Success {
		if len(resp.Errors) > 0 {
			return nil, fmt.Errorf("API error: %s", strings.Join(resp.Errors, "; "))
		}
		return nil, errors.New("API reported failure")
	}
	return resp.Data, nil
}
