package purchase

import (
	"context"

	"gelateria/internal/core/id"
	"gelateria/internal/domain"
)

// Filter narrows purchase listings.
type Filter struct {
	domain.ListFilter

	// MaterialID limits results to one material when set.
	MaterialID id.ID
}

// Repository defines the interface for purchase ledger persistence.
type Repository interface {
	// Create inserts a purchase entry.
	Create(ctx context.Context, purchase *MaterialPurchase) error

	// GetByID retrieves a purchase entry.
	GetByID(ctx context.Context, purchaseID id.ID) (*MaterialPurchase, error)

	// Update modifies an entry (with optimistic locking).
	Update(ctx context.Context, purchase *MaterialPurchase) error

	// Delete removes an entry.
	Delete(ctx context.Context, purchaseID id.ID) error

	// List retrieves entries, newest purchase first.
	List(ctx context.Context, filter Filter) (domain.ListResult[*MaterialPurchase], error)
}
