package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gridsetter/models"
)

// Resolution is the artwork selected for one shortcut. Every requested type
// has an entry in Assets; a nil entry means the type is absent and Errs holds
// the reason.
type Resolution struct {
	Match  *models.CatalogMatch
	Assets map[models.ImageType]*models.ArtworkAsset
	Errs   map[models.ImageType]error
}

// Asset returns the selected asset for t, or the reason it is absent
func (r *Resolution) Asset(t models.ImageType) (*models.ArtworkAsset, error) {
	if asset := r.Assets[t]; asset != nil {
		return asset, nil
	}
	if err := r.Errs[t]; err != nil {
		return nil, err
	}
	return nil, ErrNoAssetForType
}

// Resolver matches shortcut names against a catalog and picks one image per
// requested type.
type Resolver struct {
	catalog  Catalog
	logger   *slog.Logger
	fallback bool
}

// ResolverOption configures a Resolver
type ResolverOption func(*Resolver)

// WithFallbackSearch retries a search that found nothing with the
// simplified names from SearchTerms
func WithFallbackSearch() ResolverOption {
	return func(r *Resolver) { r.fallback = true }
}

// NewResolver constructs a resolver over catalog
func NewResolver(catalog Catalog, logger *slog.Logger, opts ...ResolverOption) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Resolver{catalog: catalog, logger: logger}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FindBestMatch searches the catalog for name and returns the most relevant
// entry. With fallback search enabled, simplified forms of the name are tried
// only when the previous query found nothing. It returns ErrNoMatch when the
// catalog has nothing and ErrCatalogUnavailable when a search itself failed.
func (r *Resolver) FindBestMatch(ctx context.Context, name string) (*models.CatalogMatch, error) {
	terms := []string{name}
	if r.fallback {
		terms = SearchTerms(name)
	}

	for _, term := range terms {
		matches, err := r.catalog.Search(ctx, term)
		if err != nil {
			return nil, unavailable(err)
		}

		best, ok := BestMatch(matches)
		if !ok {
			r.logger.Debug("no catalog match", "catalog", r.catalog.Name(), "query", term)
			continue
		}

		r.logger.Debug("catalog match",
			"catalog", r.catalog.Name(),
			"query", term,
			"candidates", len(matches),
			"catalog_id", best.CatalogID,
			"name", best.Name,
		)
		return &best, nil
	}

	return nil, fmt.Errorf("%w for %q", ErrNoMatch, name)
}

// Resolve selects artwork of each requested type for shortcut. The returned
// error is non-nil only when the search step could not reach the catalog; a
// missing game or missing images are reported through the Resolution.
func (r *Resolver) Resolve(ctx context.Context, shortcut models.Shortcut, types []models.ImageType) (*Resolution, error) {
	res := &Resolution{
		Assets: make(map[models.ImageType]*models.ArtworkAsset, len(types)),
		Errs:   make(map[models.ImageType]error),
	}

	match, err := r.FindBestMatch(ctx, shortcut.AppName)
	if err != nil {
		if !errors.Is(err, ErrNoMatch) {
			return nil, err
		}
		for _, t := range types {
			res.Assets[t] = nil
			res.Errs[t] = err
		}
		return res, nil
	}
	res.Match = match

	for _, t := range types {
		res.Assets[t] = nil

		assets, err := r.catalog.AssetsFor(ctx, match.CatalogID, t)
		if err != nil {
			r.logger.Warn("asset query failed",
				"name", shortcut.AppName,
				"catalog_id", match.CatalogID,
				"type", t,
				"error", err,
			)
			res.Errs[t] = unavailable(err)
			continue
		}

		asset, ok := SelectAsset(assets)
		if !ok {
			res.Errs[t] = fmt.Errorf("%w: %s for %q", ErrNoAssetForType, t, match.Name)
			continue
		}
		asset.ImageType = t
		res.Assets[t] = &asset
	}

	return res, nil
}

// BestMatch returns the match with the lowest relevance rank. Ties keep the
// earlier element, so the catalog's order decides.
func BestMatch(matches []models.CatalogMatch) (models.CatalogMatch, bool) {
	if len(matches) == 0 {
		return models.CatalogMatch{}, false
	}

	best := matches[0]
	for _, m := range matches[1:] {
		if m.RelevanceRank < best.RelevanceRank {
			best = m
		}
	}
	return best, true
}

// SelectAsset picks the highest scored asset, or the first one when the
// catalog supplied no scores. Ties keep the earlier element.
func SelectAsset(assets []models.ArtworkAsset) (models.ArtworkAsset, bool) {
	if len(assets) == 0 {
		return models.ArtworkAsset{}, false
	}

	best := -1
	for i, a := range assets {
		if !a.Scored {
			continue
		}
		if best < 0 || a.Score > assets[best].Score {
			best = i
		}
	}
	if best < 0 {
		return assets[0], true
	}
	return assets[best], true
}

// unavailable tags err as ErrCatalogUnavailable while keeping the cause
func unavailable(err error) error {
	if errors.Is(err, ErrCatalogUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
}
