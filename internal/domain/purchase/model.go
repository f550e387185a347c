// Package purchase implements the material purchase ledger. Every entry
// mirrors a stock increase on its material, and removing an entry reverses
// it.
package purchase

import (
	"context"
	"time"

	"gelateria/internal/core/apperror"
	"gelateria/internal/core/entity"
	"gelateria/internal/core/id"
	"gelateria/internal/core/types"
)

// MaterialPurchase is one purchase ledger entry.
type MaterialPurchase struct {
	entity.Base

	MaterialID    id.ID          `db:"material_id" json:"materialId"`
	Quantity      types.Quantity `db:"quantity" json:"quantity"`
	UnitPrice     types.Money    `db:"unit_price" json:"unitPrice"`
	TotalCost     types.Money    `db:"total_cost" json:"totalCost"`
	Supplier      string         `db:"supplier" json:"supplier,omitempty"`
	PurchasedByID id.ID          `db:"purchased_by_id" json:"purchasedById"`
	PurchaseDate  time.Time      `db:"purchase_date" json:"purchaseDate"`
	Notes         string         `db:"notes" json:"notes,omitempty"`
}

// New creates a purchase entry. TotalCost is always quantity times unit
// price, rounded to 2 decimals.
func New(materialID id.ID, quantity types.Quantity, unitPrice types.Money, purchasedBy id.ID) *MaterialPurchase {
	return &MaterialPurchase{
		Base:          entity.NewBase(),
		MaterialID:    materialID,
		Quantity:      quantity,
		UnitPrice:     unitPrice,
		TotalCost:     TotalCost(quantity, unitPrice),
		PurchasedByID: purchasedBy,
		PurchaseDate:  time.Now(),
	}
}

// TotalCost computes the rounded cost of a purchase.
func TotalCost(quantity types.Quantity, unitPrice types.Money) types.Money {
	return types.Round2(unitPrice.Mul(quantity.Decimal()))
}

// Validate implements entity.Validatable.
func (p *MaterialPurchase) Validate(ctx context.Context) error {
	if id.IsNil(p.MaterialID) {
		return apperror.NewValidation("material is required").WithDetail("field", "materialId")
	}
	if !p.Quantity.IsPositive() {
		return apperror.NewInvalidQuantity("quantity must be positive").
			WithDetail("field", "quantity")
	}
	if p.UnitPrice.IsNegative() {
		return apperror.NewValidation("unit price cannot be negative").
			WithDetail("field", "unitPrice")
	}
	return nil
}
