package material

import (
	"context"

	"gelateria/internal/core/id"
	"gelateria/internal/core/types"
	"gelateria/internal/domain"
)

// Repository defines the interface for Material persistence.
type Repository interface {
	domain.CatalogRepository[*Material]

	// DeductQuantity atomically decrements the stock level, only if the
	// resulting level stays non-negative. Returns InsufficientStock when
	// the material cannot cover the quantity, NotFound when it is missing.
	DeductQuantity(ctx context.Context, materialID id.ID, quantity types.Quantity) error

	// AddQuantity atomically increments the stock level.
	AddQuantity(ctx context.Context, materialID id.ID, quantity types.Quantity) error

	// DeductQuantityFloored decrements the stock level, clamping the
	// result at zero. Used by ledger reversal paths that must not fail.
	DeductQuantityFloored(ctx context.Context, materialID id.ID, quantity types.Quantity) error

	// SetCostPerUnit overwrites the acquisition cost.
	SetCostPerUnit(ctx context.Context, materialID id.ID, cost types.Money) error

	// GetAll returns every material (stats aggregation).
	GetAll(ctx context.Context) ([]*Material, error)
}

// Stats summarizes the material catalog.
type Stats struct {
	TotalMaterials  int                      `json:"totalMaterials"`
	TotalStockValue types.Money              `json:"totalStockValue"`
	LowStockCount   int                      `json:"lowStockCount"`
	LowStock        []*Material              `json:"lowStockMaterials"`
	ByCategory      map[Category]CategoryAgg `json:"byCategory"`
}

// CategoryAgg aggregates count and stock value per category.
type CategoryAgg struct {
	Count      int         `json:"count"`
	TotalValue types.Money `json:"totalValue"`
}
