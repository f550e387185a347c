package consumption

import (
	"context"

	"gelateria/internal/core/id"
	"gelateria/internal/domain"
)

// Filter narrows consumption listings.
type Filter struct {
	domain.ListFilter

	// MaterialID limits results to one material when set.
	MaterialID id.ID
}

// Repository defines the interface for consumption ledger persistence.
type Repository interface {
	// Create inserts a consumption entry.
	Create(ctx context.Context, consumption *MaterialConsumption) error

	// GetByID retrieves a consumption entry.
	GetByID(ctx context.Context, consumptionID id.ID) (*MaterialConsumption, error)

	// Delete removes an entry.
	Delete(ctx context.Context, consumptionID id.ID) error

	// List retrieves entries, newest consumption first.
	List(ctx context.Context, filter Filter) (domain.ListResult[*MaterialConsumption], error)
}
