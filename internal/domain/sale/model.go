// Package sale implements sales with pricing, profit calculation and
// payment-driven stock movements.
package sale

import (
	"context"
	"time"

	"gelateria/internal/core/apperror"
	"gelateria/internal/core/entity"
	"gelateria/internal/core/id"
	"gelateria/internal/core/types"
)

// PaymentMethod is how the sale was (or will be) paid.
type PaymentMethod string

const (
	PaymentDinheiro     PaymentMethod = "dinheiro"
	PaymentCartaoDebito PaymentMethod = "cartao_debito"
	PaymentCartaoCredit PaymentMethod = "cartao_credito"
	PaymentPix          PaymentMethod = "pix"
	PaymentBoleto       PaymentMethod = "boleto"
	PaymentPendente     PaymentMethod = "pendente"
)

// Valid reports whether the payment method is a known one.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentDinheiro, PaymentCartaoDebito, PaymentCartaoCredit,
		PaymentPix, PaymentBoleto, PaymentPendente:
		return true
	}
	return false
}

// PaymentStatus tracks whether stock has been committed for the sale.
type PaymentStatus string

const (
	StatusPago     PaymentStatus = "pago"
	StatusPendente PaymentStatus = "pendente"
)

// Valid reports whether the payment status is a known one.
func (s PaymentStatus) Valid() bool {
	return s == StatusPago || s == StatusPendente
}

// Status is the lifecycle status of the sale record.
type Status string

const (
	SalePendente  Status = "pendente"
	SaleConcluida Status = "concluida"
	SaleCancelada Status = "cancelada"
)

// ResolvePaymentStatus applies the defaulting rule: an explicit status wins;
// otherwise the "pendente" payment method implies a pending payment and
// anything else counts as paid.
func ResolvePaymentStatus(explicit PaymentStatus, method PaymentMethod) PaymentStatus {
	if explicit != "" {
		return explicit
	}
	if method == PaymentPendente {
		return StatusPendente
	}
	return StatusPago
}

// MaterialUsage records material consumed by one sale item. Quantity is the
// total for the item (per-unit usage multiplied by the item quantity).
type MaterialUsage struct {
	MaterialID id.ID          `db:"material_id" json:"materialId"`
	Quantity   types.Quantity `db:"quantity" json:"quantity"`
	Cost       types.Money    `db:"cost" json:"cost"`
}

// Item is one product line of a sale.
type Item struct {
	ProductID     id.ID           `db:"product_id" json:"productId"`
	Quantity      int64           `db:"quantity" json:"quantity"`
	UnitPrice     types.Money     `db:"unit_price" json:"unitPrice"`
	Subtotal      types.Money     `db:"subtotal" json:"subtotal"`
	MaterialsUsed []MaterialUsage `db:"-" json:"materialsUsed,omitempty"`
}

// Sale is a finalized sale document with denormalized totals.
type Sale struct {
	entity.Base

	ClientID      id.ID         `db:"client_id" json:"clientId"`
	SellerID      id.ID         `db:"seller_id" json:"sellerId"`
	Items         []Item        `db:"-" json:"items"`
	TotalAmount   types.Money   `db:"total_amount" json:"totalAmount"`
	TotalCost     types.Money   `db:"total_cost" json:"totalCost"`
	MaterialsCost types.Money   `db:"materials_cost" json:"materialsCost"`
	GrossProfit   types.Money   `db:"gross_profit" json:"grossProfit"`
	NetProfit     types.Money   `db:"net_profit" json:"netProfit"`
	PaymentMethod PaymentMethod `db:"payment_method" json:"paymentMethod"`
	PaymentStatus PaymentStatus `db:"payment_status" json:"paymentStatus"`
	PaidAt        *time.Time    `db:"paid_at" json:"paidAt,omitempty"`
	Status        Status        `db:"status" json:"status"`
	SaleDate      time.Time     `db:"sale_date" json:"saleDate"`
}

// New creates an empty sale with defaults.
func New() *Sale {
	return &Sale{
		Base:          entity.NewBase(),
		PaymentMethod: PaymentDinheiro,
		Status:        SaleConcluida,
		SaleDate:      time.Now(),
	}
}

// Validate validates the sale document.
func (s *Sale) Validate(ctx context.Context) error {
	if id.IsNil(s.ClientID) {
		return apperror.NewValidation("client is required").WithDetail("field", "clientId")
	}
	if len(s.Items) == 0 {
		return apperror.NewValidation("at least one item is required").WithDetail("field", "items")
	}
	if !s.PaymentMethod.Valid() {
		return apperror.NewValidation("invalid payment method").
			WithDetail("field", "paymentMethod")
	}
	if !s.PaymentStatus.Valid() {
		return apperror.NewValidation("invalid payment status").
			WithDetail("field", "paymentStatus")
	}
	for i, item := range s.Items {
		if item.Quantity <= 0 {
			return apperror.NewInvalidQuantity("item quantity must be positive").
				WithDetail("item", i)
		}
	}
	return nil
}

// IsPaid reports whether stock has been committed for this sale.
func (s *Sale) IsPaid() bool {
	return s.PaymentStatus == StatusPago
}

// MarkPaid sets the paid status and timestamp. Version bookkeeping is
// left to the repository's optimistic update.
func (s *Sale) MarkPaid() {
	s.PaymentStatus = StatusPago
	now := time.Now()
	s.PaidAt = &now
}

// MarkPending sets the pending status and clears the payment timestamp.
func (s *Sale) MarkPending() {
	s.PaymentStatus = StatusPendente
	s.PaidAt = nil
}
