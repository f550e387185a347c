package sale

import (
	"context"
	"time"

	"gelateria/internal/core/id"
	"gelateria/internal/domain"
)

// Repository defines the interface for Sale persistence.
type Repository interface {
	// Create inserts the sale with its items.
	Create(ctx context.Context, sale *Sale) error

	// GetByID retrieves a sale with items and material usage.
	GetByID(ctx context.Context, saleID id.ID) (*Sale, error)

	// List retrieves sales filtered by date range, newest first.
	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Sale], error)

	// UpdatePayment persists payment status, method and paidAt
	// (with optimistic locking).
	UpdatePayment(ctx context.Context, sale *Sale) error

	// ListPaidBetween retrieves concluded, paid sales in [from, to]
	// with items and material usage, for reporting.
	ListPaidBetween(ctx context.Context, from, to time.Time) ([]*Sale, error)
}
