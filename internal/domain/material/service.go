package material

import (
	"context"

	"gelateria/internal/core/tx"
	"gelateria/internal/domain"
)

// Service provides business logic for the Material catalog.
type Service struct {
	*domain.CatalogService[*Material]
	repo Repository
}

// NewService creates a new Material service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Material]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "material",
	})

	return &Service{
		CatalogService: base,
		repo:           repo,
	}
}

// Stats aggregates the whole catalog: total count, stock value, low-stock
// materials and per-category breakdown.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	materials, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		TotalMaterials: len(materials),
		ByCategory:     make(map[Category]CategoryAgg),
	}

	for _, m := range materials {
		value := m.StockValue()
		stats.TotalStockValue = stats.TotalStockValue.Add(value)

		if m.IsLowStock() {
			stats.LowStock = append(stats.LowStock, m)
		}

		agg := stats.ByCategory[m.Category]
		agg.Count++
		agg.TotalValue = agg.TotalValue.Add(value)
		stats.ByCategory[m.Category] = agg
	}
	stats.LowStockCount = len(stats.LowStock)

	return stats, nil
}
