package postgres

import (
	"context"
	"fmt"

	"gelateria/internal/core/apperror"
	"gelateria/internal/core/id"
	"gelateria/internal/domain/product"
)

var _ product.Repository = (*ProductRepo)(nil)

// ProductRepo persists products.
type ProductRepo struct {
	*baseRepo[*product.Product]
}

// NewProductRepo creates a product repository.
func NewProductRepo(tm *TxManager) *ProductRepo {
	base := newBaseRepo(tm, "products", func() *product.Product { return &product.Product{} })
	base.categoryCol = "category"
	return &ProductRepo{baseRepo: base}
}

// DeductStock decrements stock only when the remaining level stays
// non-negative. The condition rides in the UPDATE itself, so two
// concurrent sales can never drive stock below zero.
func (r *ProductRepo) DeductStock(ctx context.Context, productID id.ID, quantity int64) error {
	const sql = `UPDATE products SET stock = stock - $2, updated_at = now() WHERE id = $1 AND stock >= $2`

	result, err := r.tm.GetQuerier(ctx).Exec(ctx, sql, productID, quantity)
	if err != nil {
		return fmt.Errorf("deduct stock: %w", err)
	}
	if result.RowsAffected() == 0 {
		p, getErr := r.GetByID(ctx, productID)
		if getErr != nil {
			return getErr
		}
		return apperror.NewInsufficientStock("product", p.Name, float64(quantity), float64(p.Stock))
	}
	return nil
}

// RestoreStock increments stock.
func (r *ProductRepo) RestoreStock(ctx context.Context, productID id.ID, quantity int64) error {
	const sql = `UPDATE products SET stock = stock + $2, updated_at = now() WHERE id = $1`

	result, err := r.tm.GetQuerier(ctx).Exec(ctx, sql, productID, quantity)
	if err != nil {
		return fmt.Errorf("restore stock: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("product", productID.String())
	}
	return nil
}
