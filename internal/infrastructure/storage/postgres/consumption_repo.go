package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"gelateria/internal/core/id"
	"gelateria/internal/domain"
	"gelateria/internal/domain/consumption"
)

var _ consumption.Repository = (*ConsumptionRepo)(nil)

// ConsumptionRepo persists the material consumption ledger.
type ConsumptionRepo struct {
	*baseRepo[*consumption.MaterialConsumption]
}

// NewConsumptionRepo creates a consumption repository.
func NewConsumptionRepo(tm *TxManager) *ConsumptionRepo {
	base := newBaseRepo(tm, "material_consumptions", func() *consumption.MaterialConsumption { return &consumption.MaterialConsumption{} })
	base.searchCols = []string{"reason_description", "notes"}
	base.defaultOrder = "consumption_date"
	return &ConsumptionRepo{baseRepo: base}
}

// List retrieves entries, newest consumption first.
func (r *ConsumptionRepo) List(ctx context.Context, filter consumption.Filter) (domain.ListResult[*consumption.MaterialConsumption], error) {
	filter.Normalize()
	result := domain.ListResult[*consumption.MaterialConsumption]{
		Page:  filter.Page,
		Limit: filter.Limit,
	}

	q := r.baseSelect()

	if !id.IsNil(filter.MaterialID) {
		q = q.Where(squirrel.Eq{"material_id": filter.MaterialID})
	}
	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"consumption_date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"consumption_date": *filter.DateTo})
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
		return result, fmt.Errorf("count consumptions: %w", err)
	}

	q = q.OrderBy("consumption_date DESC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset()))

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list consumptions: %w", err)
	}
	return result, nil
}
