package search

import (
	"context"
	"errors"

	"gridsetter/models"
)

var (
	// ErrCatalogUnavailable means the catalog could not be reached or
	// rejected the request (transport, auth, server errors). Retryable.
	ErrCatalogUnavailable = errors.New("catalog unavailable")

	// ErrNoMatch means the catalog returned no game for the name.
	ErrNoMatch = errors.New("no catalog match")

	// ErrNoAssetForType means the matched game has no image of the type.
	ErrNoAssetForType = errors.New("no asset for image type")
)

// Catalog is implemented by any artwork source that can look up games by
// name and list the images available for them. Implementations must be safe
// for concurrent use.
type Catalog interface {
	Name() string

	// Search returns candidate games for name in the catalog's own ranking
	// order. An empty result is not an error.
	Search(ctx context.Context, name string) ([]models.CatalogMatch, error)

	// AssetsFor lists images of one type for a catalog entry, best first.
	AssetsFor(ctx context.Context, catalogID int, imageType models.ImageType) ([]models.ArtworkAsset, error)
}
