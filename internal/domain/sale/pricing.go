package sale

import (
	"gelateria/internal/core/apperror"
	"gelateria/internal/core/id"
	"gelateria/internal/core/types"
	"gelateria/internal/domain/material"
	"gelateria/internal/domain/product"

	"github.com/shopspring/decimal"
)

// taxRate is the estimated tax applied to gross profit.
var taxRate = decimal.NewFromFloat(0.15)

// MaterialInput declares material usage per single unit of the product.
type MaterialInput struct {
	MaterialID id.ID
	PerUnit    types.Quantity
}

// ItemInput is one requested sale line. UnitPrice overrides the catalog
// price when set.
type ItemInput struct {
	ProductID id.ID
	Quantity  int64
	UnitPrice *types.Money
	Materials []MaterialInput
}

// Pricing is the computed result for a set of sale lines.
type Pricing struct {
	Items         []Item
	TotalAmount   types.Money
	TotalCost     types.Money
	MaterialsCost types.Money
	GrossProfit   types.Money
	NetProfit     types.Money
}

// Price computes subtotals, costs and profit for the requested lines against
// resolved products and materials. Stock is validated for every line even
// when the sale will stay pending, so a pending sale can always be paid
// against the stock snapshot it was created from.
//
// Net profit is gross profit after the estimated 15% tax.
func Price(
	items []ItemInput,
	products map[id.ID]*product.Product,
	materials map[id.ID]*material.Material,
) (*Pricing, error) {
	if len(items) == 0 {
		return nil, apperror.NewValidation("at least one item is required").
			WithDetail("field", "items")
	}

	result := &Pricing{
		TotalAmount:   decimal.Zero,
		TotalCost:     decimal.Zero,
		MaterialsCost: decimal.Zero,
	}

	for _, in := range items {
		if in.Quantity <= 0 {
			return nil, apperror.NewInvalidQuantity("item quantity must be positive").
				WithDetail("productId", in.ProductID.String())
		}

		prod, ok := products[in.ProductID]
		if !ok {
			return nil, apperror.NewNotFound("product", in.ProductID.String())
		}
		if !prod.HasStock(in.Quantity) {
			return nil, apperror.NewInsufficientStock(
				"product", prod.Name, float64(in.Quantity), float64(prod.Stock))
		}

		unitPrice := prod.Price
		if in.UnitPrice != nil {
			unitPrice = *in.UnitPrice
		}
		qty := decimal.NewFromInt(in.Quantity)
		subtotal := unitPrice.Mul(qty)
		itemCost := prod.CostPrice.Mul(qty)

		item := Item{
			ProductID: in.ProductID,
			Quantity:  in.Quantity,
			UnitPrice: unitPrice,
			Subtotal:  subtotal,
		}

		for _, matIn := range in.Materials {
			mat, ok := materials[matIn.MaterialID]
			if !ok {
				return nil, apperror.NewNotFound("material", matIn.MaterialID.String())
			}

			needed := matIn.PerUnit.MulInt(in.Quantity)
			if !mat.HasStock(needed) {
				return nil, apperror.NewInsufficientStock(
					"material", mat.Name, needed.Float64(), mat.QuantityInStock.Float64())
			}

			cost := mat.CostPerUnit.Mul(needed.Decimal())
			item.MaterialsUsed = append(item.MaterialsUsed, MaterialUsage{
				MaterialID: matIn.MaterialID,
				Quantity:   needed,
				Cost:       cost,
			})

			result.MaterialsCost = result.MaterialsCost.Add(cost)
			itemCost = itemCost.Add(cost)
		}

		result.Items = append(result.Items, item)
		result.TotalAmount = result.TotalAmount.Add(subtotal)
		result.TotalCost = result.TotalCost.Add(itemCost)
	}

	result.TotalAmount = types.Round2(result.TotalAmount)
	result.TotalCost = types.Round2(result.TotalCost)
	result.MaterialsCost = types.Round2(result.MaterialsCost)
	result.GrossProfit = result.TotalAmount.Sub(result.TotalCost)
	result.NetProfit = types.Round2(result.GrossProfit.Sub(result.GrossProfit.Mul(taxRate)))

	return result, nil
}
