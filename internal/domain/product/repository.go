package product

import (
	"context"

	"gelateria/internal/core/id"
	"gelateria/internal/domain"
)

// Repository defines the interface for Product persistence.
type Repository interface {
	domain.CatalogRepository[*Product]

	// DeductStock atomically decrements stock by quantity, only if the
	// resulting level stays non-negative. Returns InsufficientStock when
	// the product exists but cannot cover the quantity, NotFound when it
	// does not exist.
	DeductStock(ctx context.Context, productID id.ID, quantity int64) error

	// RestoreStock atomically increments stock by quantity.
	RestoreStock(ctx context.Context, productID id.ID, quantity int64) error
}
