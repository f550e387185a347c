package postgres

import (
	"context"

	"github.com/Masterminds/squirrel"

	"gelateria/internal/domain/client"
)

var _ client.Repository = (*ClientRepo)(nil)

// ClientRepo persists clients.
type ClientRepo struct {
	*baseRepo[*client.Client]
}

// NewClientRepo creates a client repository.
func NewClientRepo(tm *TxManager) *ClientRepo {
	base := newBaseRepo(tm, "clients", func() *client.Client { return &client.Client{} })
	base.searchCols = []string{"name", "email", "phone"}
	return &ClientRepo{baseRepo: base}
}

// FindByEmail retrieves a client by email, case-insensitive.
func (r *ClientRepo) FindByEmail(ctx context.Context, email string) (*client.Client, error) {
	q := r.baseSelect().
		Where(squirrel.Expr("LOWER(email) = LOWER(?)", email)).
		Limit(1)
	return r.FindOne(ctx, q)
}
