// Package product provides the sellable product catalog.
package product

import (
	"context"

	"gelateria/internal/core/apperror"
	"gelateria/internal/core/entity"
	"gelateria/internal/core/types"
)

// Product represents a finished item offered for sale.
type Product struct {
	entity.Base

	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description,omitempty"`

	// Price is the sale unit price
	Price types.Money `db:"price" json:"price"`

	// CostPrice is the unit cost used for profit calculations
	CostPrice types.Money `db:"cost_price" json:"costPrice"`

	// Stock is the on-hand quantity. Never negative; mutated only by sale
	// creation/deletion and payment-status transitions.
	Stock int64 `db:"stock" json:"stock"`

	Category string `db:"category" json:"category,omitempty"`
}

// New creates a new Product.
func New(name string, price, costPrice types.Money, stock int64) *Product {
	return &Product{
		Base:      entity.NewBase(),
		Name:      name,
		Price:     price,
		CostPrice: costPrice,
		Stock:     stock,
	}
}

// Validate implements entity.Validatable.
func (p *Product) Validate(ctx context.Context) error {
	if p.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	if p.Price.IsNegative() {
		return apperror.NewValidation("price cannot be negative").
			WithDetail("field", "price")
	}
	if p.CostPrice.IsNegative() {
		return apperror.NewValidation("cost price cannot be negative").
			WithDetail("field", "costPrice")
	}
	if p.Stock < 0 {
		return apperror.NewValidation("stock cannot be negative").
			WithDetail("field", "stock")
	}
	return nil
}

// HasStock reports whether the product can cover a requested quantity.
func (p *Product) HasStock(quantity int64) bool {
	return p.Stock >= quantity
}
