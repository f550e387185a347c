package client

import (
	"context"

	"gelateria/internal/domain"
)

// Repository defines the interface for Client persistence.
type Repository interface {
	domain.CatalogRepository[*Client]

	// FindByEmail retrieves a client by email (NotFound when absent).
	FindByEmail(ctx context.Context, email string) (*Client, error)
}
