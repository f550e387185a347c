package postgres

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"

	"gelateria/internal/core/apperror"
	"gelateria/internal/core/id"
	"gelateria/internal/core/types"
	"gelateria/internal/domain/material"
)

var _ material.Repository = (*MaterialRepo)(nil)

// MaterialRepo persists materials. Stock levels are stored as BIGINT
// in hundredths, matching types.Quantity's fixed-point representation.
type MaterialRepo struct {
	*baseRepo[*material.Material]
}

// NewMaterialRepo creates a material repository.
func NewMaterialRepo(tm *TxManager) *MaterialRepo {
	base := newBaseRepo(tm, "materials", func() *material.Material { return &material.Material{} })
	base.categoryCol = "category"
	return &MaterialRepo{baseRepo: base}
}

// DeductQuantity decrements the stock level only when the remaining
// level stays non-negative.
func (r *MaterialRepo) DeductQuantity(ctx context.Context, materialID id.ID, quantity types.Quantity) error {
	const sql = `UPDATE materials SET quantity_in_stock = quantity_in_stock - $2, updated_at = now()
		WHERE id = $1 AND quantity_in_stock >= $2`

	result, err := r.tm.GetQuerier(ctx).Exec(ctx, sql, materialID, quantity)
	if err != nil {
		return fmt.Errorf("deduct quantity: %w", err)
	}
	if result.RowsAffected() == 0 {
		m, getErr := r.GetByID(ctx, materialID)
		if getErr != nil {
			return getErr
		}
		return apperror.NewInsufficientStock("material", m.Name, quantity.Float64(), m.QuantityInStock.Float64())
	}
	return nil
}

// AddQuantity increments the stock level.
func (r *MaterialRepo) AddQuantity(ctx context.Context, materialID id.ID, quantity types.Quantity) error {
	const sql = `UPDATE materials SET quantity_in_stock = quantity_in_stock + $2, updated_at = now() WHERE id = $1`

	result, err := r.tm.GetQuerier(ctx).Exec(ctx, sql, materialID, quantity)
	if err != nil {
		return fmt.Errorf("add quantity: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("material", materialID.String())
	}
	return nil
}

// DeductQuantityFloored decrements the stock level, clamping at zero.
// Reversal paths use this so undoing a ledger entry never fails on balance.
func (r *MaterialRepo) DeductQuantityFloored(ctx context.Context, materialID id.ID, quantity types.Quantity) error {
	const sql = `UPDATE materials SET quantity_in_stock = GREATEST(quantity_in_stock - $2, 0), updated_at = now() WHERE id = $1`

	result, err := r.tm.GetQuerier(ctx).Exec(ctx, sql, materialID, quantity)
	if err != nil {
		return fmt.Errorf("deduct quantity floored: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("material", materialID.String())
	}
	return nil
}

// SetCostPerUnit overwrites the acquisition cost.
func (r *MaterialRepo) SetCostPerUnit(ctx context.Context, materialID id.ID, cost types.Money) error {
	const sql = `UPDATE materials SET cost_per_unit = $2, updated_at = now() WHERE id = $1`

	result, err := r.tm.GetQuerier(ctx).Exec(ctx, sql, materialID, cost)
	if err != nil {
		return fmt.Errorf("set cost per unit: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("material", materialID.String())
	}
	return nil
}

// GetAll returns every material, for stats aggregation.
func (r *MaterialRepo) GetAll(ctx context.Context) ([]*material.Material, error) {
	q := r.baseSelect().OrderBy("name ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*material.Material
	if err := pgxscan.Select(ctx, r.tm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("get all materials: %w", err)
	}
	return items, nil
}
