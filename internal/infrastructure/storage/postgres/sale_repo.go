package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"gelateria/internal/core/apperror"
	"gelateria/internal/core/id"
	"gelateria/internal/core/types"
	"gelateria/internal/domain"
	"gelateria/internal/domain/sale"
)

var _ sale.Repository = (*SaleRepo)(nil)

// SaleRepo persists sales. The header lives in sales, line items in
// sale_items with their material usage as a JSONB snapshot: usage is
// written once at sale time and must survive later material edits.
type SaleRepo struct {
	tm *TxManager
}

// NewSaleRepo creates a sale repository.
func NewSaleRepo(tm *TxManager) *SaleRepo {
	return &SaleRepo{tm: tm}
}

func (r *SaleRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// saleCols aliases client_id through COALESCE so anonymous sales
// (NULL client) scan into the zero UUID.
var saleCols = []string{
	"id",
	"COALESCE(client_id, '00000000-0000-0000-0000-000000000000'::uuid) AS client_id",
	"seller_id",
	"total_amount",
	"total_cost",
	"materials_cost",
	"gross_profit",
	"net_profit",
	"payment_method",
	"payment_status",
	"paid_at",
	"status",
	"sale_date",
	"created_at",
	"updated_at",
	"version",
}

// Create inserts the sale with its items.
func (r *SaleRepo) Create(ctx context.Context, s *sale.Sale) error {
	var clientID any
	if !id.IsNil(s.ClientID) {
		clientID = s.ClientID
	}

	q := r.builder().
		Insert("sales").
		Columns("id", "client_id", "seller_id",
			"total_amount", "total_cost", "materials_cost", "gross_profit", "net_profit",
			"payment_method", "payment_status", "paid_at", "status", "sale_date",
			"created_at", "updated_at", "version").
		Values(s.ID, clientID, s.SellerID,
			s.TotalAmount, s.TotalCost, s.MaterialsCost, s.GrossProfit, s.NetProfit,
			s.PaymentMethod, s.PaymentStatus, s.PaidAt, s.Status, s.SaleDate,
			s.CreatedAt, s.UpdatedAt, s.Version)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.tm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}

	if len(s.Items) == 0 {
		return nil
	}

	itemQ := r.builder().
		Insert("sale_items").
		Columns("sale_id", "position", "product_id", "quantity", "unit_price", "subtotal", "materials_used")
	for i, item := range s.Items {
		usage, err := json.Marshal(item.MaterialsUsed)
		if err != nil {
			return fmt.Errorf("marshal materials used: %w", err)
		}
		itemQ = itemQ.Values(s.ID, i, item.ProductID, item.Quantity, item.UnitPrice, item.Subtotal, usage)
	}

	sql, args, err = itemQ.ToSql()
	if err != nil {
		return fmt.Errorf("build items insert: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert sale items: %w", err)
	}
	return nil
}

// GetByID retrieves a sale with items and material usage.
func (r *SaleRepo) GetByID(ctx context.Context, saleID id.ID) (*sale.Sale, error) {
	q := r.builder().
		Select(saleCols...).
		From("sales").
		Where(squirrel.Eq{"id": saleID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	s := &sale.Sale{}
	if err := pgxscan.Get(ctx, r.tm.GetQuerier(ctx), s, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("sale", saleID.String())
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}

	if err := r.loadItems(ctx, []*sale.Sale{s}); err != nil {
		return nil, err
	}
	return s, nil
}

// List retrieves sales filtered by date range, newest first.
func (r *SaleRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*sale.Sale], error) {
	filter.Normalize()
	result := domain.ListResult[*sale.Sale]{
		Page:  filter.Page,
		Limit: filter.Limit,
	}

	q := r.builder().
		Select(saleCols...).
		From("sales")

	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"sale_date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"sale_date": *filter.DateTo})
	}

	countQ := r.builder().
		Select("COUNT(*)").
		FromSelect(q, "sub")

	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}

	querier := r.tm.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.Total); err != nil {
		return result, fmt.Errorf("count sales: %w", err)
	}

	q = q.OrderBy("sale_date DESC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset()))

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list sales: %w", err)
	}

	if err := r.loadItems(ctx, result.Items); err != nil {
		return result, err
	}
	return result, nil
}

// UpdatePayment persists payment status, method and paidAt with
// optimistic locking.
func (r *SaleRepo) UpdatePayment(ctx context.Context, s *sale.Sale) error {
	q := r.builder().
		Update("sales").
		Set("payment_status", s.PaymentStatus).
		Set("payment_method", s.PaymentMethod).
		Set("paid_at", s.PaidAt).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": s.ID}).
		Where(squirrel.Eq{"version": s.Version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.tm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update sale payment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("sale", s.ID)
	}
	return nil
}

// ListPaidBetween retrieves concluded, paid sales in [from, to] with
// items and material usage.
func (r *SaleRepo) ListPaidBetween(ctx context.Context, from, to time.Time) ([]*sale.Sale, error) {
	q := r.builder().
		Select(saleCols...).
		From("sales").
		Where(squirrel.Eq{"status": sale.SaleConcluida}).
		Where(squirrel.Eq{"payment_status": sale.StatusPago}).
		Where(squirrel.GtOrEq{"sale_date": from}).
		Where(squirrel.LtOrEq{"sale_date": to}).
		OrderBy("sale_date ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var sales []*sale.Sale
	if err := pgxscan.Select(ctx, r.tm.GetQuerier(ctx), &sales, sql, args...); err != nil {
		return nil, fmt.Errorf("list paid sales: %w", err)
	}

	if err := r.loadItems(ctx, sales); err != nil {
		return nil, err
	}
	return sales, nil
}

// itemRow is the scan target for sale_items; materials_used arrives as
// raw JSONB.
type itemRow struct {
	SaleID        id.ID       `db:"sale_id"`
	ProductID     id.ID       `db:"product_id"`
	Quantity      int64       `db:"quantity"`
	UnitPrice     types.Money `db:"unit_price"`
	Subtotal      types.Money `db:"subtotal"`
	MaterialsUsed []byte      `db:"materials_used"`
}

func (r *SaleRepo) loadItems(ctx context.Context, sales []*sale.Sale) error {
	if len(sales) == 0 {
		return nil
	}

	ids := make([]id.ID, len(sales))
	byID := make(map[id.ID]*sale.Sale, len(sales))
	for i, s := range sales {
		ids[i] = s.ID
		byID[s.ID] = s
	}

	q := r.builder().
		Select("sale_id", "product_id", "quantity", "unit_price", "subtotal", "materials_used").
		From("sale_items").
		Where(squirrel.Eq{"sale_id": ids}).
		OrderBy("sale_id", "position")

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build items query: %w", err)
	}

	var rows []itemRow
	if err := pgxscan.Select(ctx, r.tm.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return fmt.Errorf("load sale items: %w", err)
	}

	for _, row := range rows {
		item := sale.Item{
			ProductID: row.ProductID,
			Quantity:  row.Quantity,
			UnitPrice: row.UnitPrice,
			Subtotal:  row.Subtotal,
		}
		if len(row.MaterialsUsed) > 0 {
			if err := json.Unmarshal(row.MaterialsUsed, &item.MaterialsUsed); err != nil {
				return fmt.Errorf("unmarshal materials used: %w", err)
			}
		}
		s := byID[row.SaleID]
		s.Items = append(s.Items, item)
	}
	return nil
}
