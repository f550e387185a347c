// Package stock provides the quantity adjustment primitives that underlie
// every stock mutation in the system: sale creation and payment transitions,
// purchase and consumption ledger entries, and their reversals.
package stock

import (
	"gelateria/internal/core/types"
)

// UnitKind distinguishes discrete counted units from continuous measures.
type UnitKind int

const (
	// Continuous units (kg, litro) allow fractional quantities,
	// rounded to 2 decimal places.
	Continuous UnitKind = iota

	// Discrete units (unidade) are counted whole; fractional input
	// is floored before use.
	Discrete
)

// Normalize prepares a requested quantity for a given unit kind.
// Discrete quantities lose their fractional part; continuous quantities
// are already fixed-point at 2 decimals.
func Normalize(q types.Quantity, kind UnitKind) types.Quantity {
	if kind == Discrete {
		return q.Floor()
	}
	return q
}

// Adjust applies delta to current and returns the new quantity.
// The result is clamped at zero: reversal paths must always succeed, so a
// computed negative level silently floors instead of failing. Callers that
// must refuse to go negative (consumption, sale deduction) check available
// stock before calling.
func Adjust(current, delta types.Quantity, kind UnitKind) types.Quantity {
	delta = Normalize(delta, kind)
	next := current.Add(delta)
	if next.IsNegative() {
		return 0
	}
	return next
}

// Sufficient reports whether available covers a requested deduction.
func Sufficient(available, requested types.Quantity) bool {
	return available >= requested
}
