package dto

import (
	"time"

	"gelateria/internal/core/id"
	"gelateria/internal/core/types"
)

// --- Sales ---

// SaleMaterialRequest declares per-unit material usage on a sale item.
type SaleMaterialRequest struct {
	MaterialID id.ID          `json:"materialId" binding:"required"`
	Quantity   types.Quantity `json:"quantity"`
}

// SaleItemRequest is one line of a sale.
type SaleItemRequest struct {
	ProductID id.ID                 `json:"productId" binding:"required"`
	Quantity  int64                 `json:"quantity" binding:"required"`
	UnitPrice *types.Money          `json:"unitPrice"`
	Materials []SaleMaterialRequest `json:"materials"`
}

// CreateSaleRequest for sale creation.
type CreateSaleRequest struct {
	ClientID      id.ID             `json:"clientId"`
	Items         []SaleItemRequest `json:"items" binding:"required"`
	PaymentMethod string            `json:"paymentMethod"`
	PaymentStatus string            `json:"paymentStatus"`
}

// UpdatePaymentRequest for payment-status transitions.
type UpdatePaymentRequest struct {
	PaymentStatus string `json:"paymentStatus" binding:"required"`
	PaymentMethod string `json:"paymentMethod"`
}

// --- Material purchases ---

// CreatePurchaseRequest for purchase ledger entries.
type CreatePurchaseRequest struct {
	MaterialID   id.ID          `json:"materialId" binding:"required"`
	Quantity     types.Quantity `json:"quantity"`
	UnitPrice    types.Money    `json:"unitPrice"`
	Supplier     string         `json:"supplier"`
	Notes        string         `json:"notes"`
	PurchaseDate *time.Time     `json:"purchaseDate"`
}

// UpdatePurchaseRequest for purchase ledger corrections.
type UpdatePurchaseRequest struct {
	Quantity  types.Quantity `json:"quantity"`
	UnitPrice types.Money    `json:"unitPrice"`
	Supplier  *string        `json:"supplier"`
	Notes     *string        `json:"notes"`
}

// --- Material consumptions ---

// CreateConsumptionRequest for consumption ledger entries.
type CreateConsumptionRequest struct {
	MaterialID        id.ID          `json:"materialId" binding:"required"`
	Quantity          types.Quantity `json:"quantity"`
	Reason            string         `json:"reason" binding:"required"`
	ReasonDescription string         `json:"reasonDescription"`
	Notes             string         `json:"notes"`
	ConsumptionDate   *time.Time     `json:"consumptionDate"`
}
