package reports

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"gelateria/internal/core/apperror"
	"gelateria/internal/core/id"
	"gelateria/internal/core/types"
	"gelateria/internal/domain/material"
	"gelateria/internal/domain/sale"
	"gelateria/pkg/logger"
)

// Service computes period reports. Only concluded, paid sales count.
type Service struct {
	saleRepo     sale.Repository
	materialRepo material.Repository
}

// NewService creates a new reports service.
func NewService(saleRepo sale.Repository, materialRepo material.Repository) *Service {
	return &Service{
		saleRepo:     saleRepo,
		materialRepo: materialRepo,
	}
}

func validatePeriod(from, to time.Time) error {
	if from.IsZero() || to.IsZero() {
		return apperror.NewValidation("start and end dates are required").
			WithDetail("fields", "startDate, endDate")
	}
	if to.Before(from) {
		return apperror.NewValidation("end date must not precede start date")
	}
	return nil
}

// SalesReport totals revenue, cost and profit over the period.
func (s *Service) SalesReport(ctx context.Context, from, to time.Time) (*SalesReport, error) {
	if err := validatePeriod(from, to); err != nil {
		return nil, err
	}

	sales, err := s.saleRepo.ListPaidBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list paid sales: %w", err)
	}

	stats := SalesStatistics{
		TotalSales:       len(sales),
		TotalAmount:      decimal.Zero,
		TotalCost:        decimal.Zero,
		TotalGrossProfit: decimal.Zero,
		TotalNetProfit:   decimal.Zero,
	}
	for _, sl := range sales {
		stats.TotalAmount = stats.TotalAmount.Add(sl.TotalAmount)
		stats.TotalCost = stats.TotalCost.Add(sl.TotalCost)
		stats.TotalGrossProfit = stats.TotalGrossProfit.Add(sl.GrossProfit)
		stats.TotalNetProfit = stats.TotalNetProfit.Add(sl.NetProfit)
	}

	logger.Debug(ctx, "sales report built",
		"from", from,
		"to", to,
		"sales", stats.TotalSales)

	return &SalesReport{
		Period:     Period{StartDate: from, EndDate: to},
		Statistics: stats,
		Sales:      sales,
	}, nil
}

// MaterialConsumptionReport aggregates the material usage recorded on paid
// sales in the period, grouped by material. Materials deleted since are
// reported by ID only.
func (s *Service) MaterialConsumptionReport(ctx context.Context, from, to time.Time) (*ConsumptionReport, error) {
	if err := validatePeriod(from, to); err != nil {
		return nil, err
	}

	sales, err := s.saleRepo.ListPaidBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list paid sales: %w", err)
	}

	byMaterial := make(map[id.ID]*MaterialConsumptionItem)
	for _, sl := range sales {
		for _, item := range sl.Items {
			for _, usage := range item.MaterialsUsed {
				agg, ok := byMaterial[usage.MaterialID]
				if !ok {
					agg = &MaterialConsumptionItem{
						MaterialID: usage.MaterialID,
						TotalCost:  decimal.Zero,
					}
					byMaterial[usage.MaterialID] = agg
				}
				agg.TotalQuantity = agg.TotalQuantity.Add(usage.Quantity)
				agg.TotalCost = agg.TotalCost.Add(usage.Cost)
				agg.SalesCount++
			}
		}
	}

	items := make([]MaterialConsumptionItem, 0, len(byMaterial))
	totalCost := decimal.Zero
	for _, agg := range byMaterial {
		mat, err := s.materialRepo.GetByID(ctx, agg.MaterialID)
		if err == nil {
			agg.Material = mat
		} else if !apperror.IsNotFound(err) {
			return nil, fmt.Errorf("resolve material: %w", err)
		}
		totalCost = totalCost.Add(agg.TotalCost)
		items = append(items, *agg)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].TotalCost.GreaterThan(items[j].TotalCost)
	})

	return &ConsumptionReport{
		Period: Period{StartDate: from, EndDate: to},
		Statistics: ConsumptionStatistics{
			TotalMaterialsUsed: len(items),
			TotalCost:          types.Round2(totalCost),
		},
		Consumption: items,
	}, nil
}
