// Package consumption implements the material consumption ledger
// (production use, losses, expiry). Entries deduct stock on creation and
// give it back when removed.
package consumption

import (
	"context"
	"time"

	"gelateria/internal/core/apperror"
	"gelateria/internal/core/entity"
	"gelateria/internal/core/id"
	"gelateria/internal/core/types"
)

// Reason classifies why the material left stock.
type Reason string

const (
	ReasonUsoProducao    Reason = "uso_producao"
	ReasonPerdaQuebras   Reason = "perda_quebras"
	ReasonVencimento     Reason = "vencimento"
	ReasonTesteQualidade Reason = "teste_qualidade"
	ReasonOutro          Reason = "outro"
)

// Valid reports whether the reason is a known one.
func (r Reason) Valid() bool {
	switch r {
	case ReasonUsoProducao, ReasonPerdaQuebras, ReasonVencimento,
		ReasonTesteQualidade, ReasonOutro:
		return true
	}
	return false
}

// MaterialConsumption is one consumption ledger entry.
type MaterialConsumption struct {
	entity.Base

	MaterialID        id.ID          `db:"material_id" json:"materialId"`
	Quantity          types.Quantity `db:"quantity" json:"quantity"`
	Reason            Reason         `db:"reason" json:"reason"`
	ReasonDescription string         `db:"reason_description" json:"reasonDescription,omitempty"`
	ConsumedByID      id.ID          `db:"consumed_by_id" json:"consumedById"`
	ConsumptionDate   time.Time      `db:"consumption_date" json:"consumptionDate"`
	Notes             string         `db:"notes" json:"notes,omitempty"`
}

// New creates a consumption entry.
func New(materialID id.ID, quantity types.Quantity, reason Reason, consumedBy id.ID) *MaterialConsumption {
	return &MaterialConsumption{
		Base:            entity.NewBase(),
		MaterialID:      materialID,
		Quantity:        quantity,
		Reason:          reason,
		ConsumedByID:    consumedBy,
		ConsumptionDate: time.Now(),
	}
}

// Validate implements entity.Validatable.
func (c *MaterialConsumption) Validate(ctx context.Context) error {
	if id.IsNil(c.MaterialID) {
		return apperror.NewValidation("material is required").WithDetail("field", "materialId")
	}
	if !c.Quantity.IsPositive() {
		return apperror.NewInvalidQuantity("quantity must be positive").
			WithDetail("field", "quantity")
	}
	if !c.Reason.Valid() {
		return apperror.NewValidation("invalid consumption reason").
			WithDetail("field", "reason")
	}
	return nil
}
