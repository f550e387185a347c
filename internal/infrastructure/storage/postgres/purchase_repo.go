package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"gelateria/internal/core/id"
	"gelateria/internal/domain"
	"gelateria/internal/domain/purchase"
)

var _ purchase.Repository = (*PurchaseRepo)(nil)

// PurchaseRepo persists the material purchase ledger.
type PurchaseRepo struct {
	*baseRepo[*purchase.MaterialPurchase]
}

// NewPurchaseRepo creates a purchase repository.
func NewPurchaseRepo(tm *TxManager) *PurchaseRepo {
	base := newBaseRepo(tm, "material_purchases", func() *purchase.MaterialPurchase { return &purchase.MaterialPurchase{} })
	base.searchCols = []string{"supplier", "notes"}
	base.defaultOrder = "purchase_date"
	return &PurchaseRepo{baseRepo: base}
}

// List retrieves entries, newest purchase first.
func (r *PurchaseRepo) List(ctx context.Context, filter purchase.Filter) (domain.ListResult[*purchase.MaterialPurchase], error) {
	filter.Normalize()
	result := domain.ListResult[*purchase.MaterialPurchase]{
		Page:  filter.Page,
		Limit: filter.Limit,
	}

	q := r.baseSelect()

	if !id.IsNil(filter.MaterialID) {
		q = q.Where(squirrel.Eq{"material_id": filter.MaterialID})
	}
	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"purchase_date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"purchase_date": *filter.DateTo})
	}

	countQ := r.Builder().
		Select("COUNT(*)").
		FromSelect(q, "sub")

	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}

	querier := r.tm.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.Total); err != nil {
		return result, fmt.Errorf("count purchases: %w", err)
	}

	q = q.OrderBy("purchase_date DESC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset()))

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list purchases: %w", err)
	}
	return result, nil
}
