package dto

import (
	"time"

	"gelateria/internal/core/types"
	"gelateria/internal/domain/client"
)

// --- Products ---

// CreateProductRequest for product creation.
type CreateProductRequest struct {
	Name        string      `json:"name" binding:"required"`
	Description string      `json:"description"`
	Price       types.Money `json:"price"`
	CostPrice   types.Money `json:"costPrice"`
	Stock       int64       `json:"stock"`
	Category    string      `json:"category"`
}

// UpdateProductRequest for partial product update.
type UpdateProductRequest struct {
	Name        *string      `json:"name"`
	Description *string      `json:"description"`
	Price       *types.Money `json:"price"`
	CostPrice   *types.Money `json:"costPrice"`
	Stock       *int64       `json:"stock"`
	Category    *string      `json:"category"`
}

// --- Materials ---

// CreateMaterialRequest for material creation. A positive initial
// stock produces an opening purchase ledger entry.
type CreateMaterialRequest struct {
	Name            string         `json:"name" binding:"required"`
	Description     string         `json:"description"`
	Category        string         `json:"category" binding:"required"`
	Unit            string         `json:"unit" binding:"required"`
	CostPerUnit     types.Money    `json:"costPerUnit"`
	QuantityInStock types.Quantity `json:"quantityInStock"`
	MinimumStock    types.Quantity `json:"minimumStock"`
	Supplier        string         `json:"supplier"`
	SupplierPhone   string         `json:"supplierPhone"`
	Notes           string         `json:"notes"`
}

// UpdateMaterialRequest for partial material update. Stock level is
// deliberately absent: it only moves through purchases, consumptions
// and sales.
type UpdateMaterialRequest struct {
	Name          *string         `json:"name"`
	Description   *string         `json:"description"`
	Category      *string         `json:"category"`
	Unit          *string         `json:"unit"`
	CostPerUnit   *types.Money    `json:"costPerUnit"`
	MinimumStock  *types.Quantity `json:"minimumStock"`
	Supplier      *string         `json:"supplier"`
	SupplierPhone *string         `json:"supplierPhone"`
	Notes         *string         `json:"notes"`
}

// --- Clients ---

// AddressRequest carries the nested address of the client payload.
type AddressRequest struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
}

// CreateClientRequest for client creation.
type CreateClientRequest struct {
	Name    string          `json:"name" binding:"required"`
	Email   string          `json:"email"`
	Phone   string          `json:"phone"`
	Address *AddressRequest `json:"address"`
	Notes   string          `json:"notes"`
}

// UpdateClientRequest for partial client update.
type UpdateClientRequest struct {
	Name    *string         `json:"name"`
	Email   *string         `json:"email"`
	Phone   *string         `json:"phone"`
	Address *AddressRequest `json:"address"`
	Notes   *string         `json:"notes"`
}

// ClientResponse presents a client with the nested address shape the
// frontend expects; storage keeps the address flattened.
type ClientResponse struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Email     string         `json:"email,omitempty"`
	Phone     string         `json:"phone,omitempty"`
	Address   AddressRequest `json:"address"`
	Notes     string         `json:"notes,omitempty"`
	Version   int            `json:"version"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// FromClient converts a client entity to its response shape.
func FromClient(c *client.Client) ClientResponse {
	return ClientResponse{
		ID:    c.ID.String(),
		Name:  c.Name,
		Email: c.Email,
		Phone: c.Phone,
		Address: AddressRequest{
			Street:  c.Street,
			City:    c.City,
			State:   c.State,
			ZipCode: c.ZipCode,
		},
		Notes:     c.Notes,
		Version:   c.Version,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// FromClients converts a slice of client entities.
func FromClients(items []*client.Client) []ClientResponse {
	out := make([]ClientResponse, len(items))
	for i, c := range items {
		out[i] = FromClient(c)
	}
	return out
}
