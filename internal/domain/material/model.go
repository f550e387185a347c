// Package material provides the raw material catalog (cones, toppings,
// packaging and the like).
package material

import (
	"context"

	"gelateria/internal/core/apperror"
	"gelateria/internal/core/entity"
	"gelateria/internal/core/types"
	"gelateria/internal/domain/stock"
)

// Category classifies a material.
type Category string

const (
	CategoryCone      Category = "cone"
	CategoryCobertura Category = "cobertura"
	CategoryTopping   Category = "topping"
	CategoryEmbalagem Category = "embalagem"
	CategoryUtensilio Category = "utensilio"
	CategoryOutro     Category = "outro"
)

// Unit is the measure a material is tracked in.
type Unit string

const (
	// UnitUnidade is the discrete counted unit; quantities must be whole.
	UnitUnidade Unit = "unidade"
	UnitKg      Unit = "kg"
	UnitLitro   Unit = "litro"
	UnitPacote  Unit = "pacote"
	UnitCaixa   Unit = "caixa"
)

// Kind maps the unit to the stock adjustment kind.
func (u Unit) Kind() stock.UnitKind {
	if u == UnitUnidade {
		return stock.Discrete
	}
	return stock.Continuous
}

// Material represents a raw material consumed by sales and production.
type Material struct {
	entity.Base

	Name        string   `db:"name" json:"name"`
	Description string   `db:"description" json:"description,omitempty"`
	Category    Category `db:"category" json:"category"`
	Unit        Unit     `db:"unit" json:"unit"`

	// CostPerUnit is the current acquisition cost, overwritten by purchases
	CostPerUnit types.Money `db:"cost_per_unit" json:"costPerUnit"`

	// QuantityInStock is the on-hand level, 2 decimal places, never negative
	QuantityInStock types.Quantity `db:"quantity_in_stock" json:"quantityInStock"`

	// MinimumStock is the low-stock reporting threshold (0 disables)
	MinimumStock types.Quantity `db:"minimum_stock" json:"minimumStock"`

	Supplier      string `db:"supplier" json:"supplier,omitempty"`
	SupplierPhone string `db:"supplier_phone" json:"supplierPhone,omitempty"`
	Notes         string `db:"notes" json:"notes,omitempty"`
}

// New creates a new Material.
func New(name string, category Category, unit Unit, costPerUnit types.Money) *Material {
	return &Material{
		Base:        entity.NewBase(),
		Name:        name,
		Category:    category,
		Unit:        unit,
		CostPerUnit: costPerUnit,
	}
}

// Validate implements entity.Validatable.
func (m *Material) Validate(ctx context.Context) error {
	if m.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	if !isValidCategory(m.Category) {
		return apperror.NewValidation("invalid material category").
			WithDetail("field", "category").
			WithDetail("value", string(m.Category))
	}
	if !isValidUnit(m.Unit) {
		return apperror.NewValidation("invalid material unit").
			WithDetail("field", "unit").
			WithDetail("value", string(m.Unit))
	}
	if m.CostPerUnit.IsNegative() {
		return apperror.NewValidation("cost per unit cannot be negative").
			WithDetail("field", "costPerUnit")
	}
	if m.QuantityInStock.IsNegative() {
		return apperror.NewValidation("quantity in stock cannot be negative").
			WithDetail("field", "quantityInStock")
	}
	if m.MinimumStock.IsNegative() {
		return apperror.NewValidation("minimum stock cannot be negative").
			WithDetail("field", "minimumStock")
	}
	return nil
}

// HasStock reports whether the material can cover a requested quantity.
func (m *Material) HasStock(quantity types.Quantity) bool {
	return stock.Sufficient(m.QuantityInStock, quantity)
}

// IsLowStock reports whether the level has fallen to the minimum threshold.
func (m *Material) IsLowStock() bool {
	return m.MinimumStock.IsPositive() && m.QuantityInStock <= m.MinimumStock
}

// StockValue returns the monetary value of the on-hand quantity.
func (m *Material) StockValue() types.Money {
	return m.CostPerUnit.Mul(m.QuantityInStock.Decimal())
}

func isValidCategory(c Category) bool {
	switch c {
	case CategoryCone, CategoryCobertura, CategoryTopping, CategoryEmbalagem, CategoryUtensilio, CategoryOutro:
		return true
	}
	return false
}

func isValidUnit(u Unit) bool {
	switch u {
	case UnitUnidade, UnitKg, UnitLitro, UnitPacote, UnitCaixa:
		return true
	}
	return false
}
