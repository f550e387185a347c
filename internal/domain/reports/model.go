// Package reports builds period aggregates over paid, concluded sales.
package reports

import (
	"time"

	"gelateria/internal/core/id"
	"gelateria/internal/core/types"
	"gelateria/internal/domain/material"
	"gelateria/internal/domain/sale"
)

// Period is the inclusive date range a report covers.
type Period struct {
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

// SalesStatistics are the totals for a sales report.
type SalesStatistics struct {
	TotalSales       int         `json:"totalSales"`
	TotalAmount      types.Money `json:"totalAmount"`
	TotalCost        types.Money `json:"totalCost"`
	TotalGrossProfit types.Money `json:"totalGrossProfit"`
	TotalNetProfit   types.Money `json:"totalNetProfit"`
}

// SalesReport is the period report over paid, concluded sales.
type SalesReport struct {
	Period     Period          `json:"period"`
	Statistics SalesStatistics `json:"statistics"`
	Sales      []*sale.Sale    `json:"sales"`
}

// MaterialConsumptionItem aggregates sale material usage for one material.
type MaterialConsumptionItem struct {
	MaterialID    id.ID              `json:"materialId"`
	Material      *material.Material `json:"material,omitempty"`
	TotalQuantity types.Quantity     `json:"totalQuantity"`
	TotalCost     types.Money        `json:"totalCost"`
	SalesCount    int                `json:"salesCount"`
}

// ConsumptionStatistics are the totals for a consumption report.
type ConsumptionStatistics struct {
	TotalMaterialsUsed int         `json:"totalMaterialsUsed"`
	TotalCost          types.Money `json:"totalCost"`
}

// ConsumptionReport aggregates the material usage recorded on paid sales.
type ConsumptionReport struct {
	Period      Period                    `json:"period"`
	Statistics  ConsumptionStatistics     `json:"statistics"`
	Consumption []MaterialConsumptionItem `json:"consumption"`
}
