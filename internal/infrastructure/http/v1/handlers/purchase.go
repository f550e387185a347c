package handlers

import (
	"github.com/gin-gonic/gin"

	"gelateria/internal/core/id"
	"gelateria/internal/core/apperror"
	"gelateria/internal/domain/purchase"
	"gelateria/internal/infrastructure/http/v1/dto"
)

// PurchaseHandler handles the material purchase ledger endpoints.
type PurchaseHandler struct {
	*BaseHandler
	service *purchase.Service
}

// NewPurchaseHandler creates a purchase handler.
func NewPurchaseHandler(service *purchase.Service) *PurchaseHandler {
	return &PurchaseHandler{
		BaseHandler: NewBaseHandler(),
		service:     service,
	}
}

// List handles GET /api/material-purchases.
func (h *PurchaseHandler) List(c *gin.Context) {
	base, ok := h.ParseListFilter(c)
	if !ok {
		return
	}
	filter := purchase.Filter{ListFilter: base}

	if raw := c.Query("materialId"); raw != "" {
		materialID, err := id.Parse(raw)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid materialId"))
			return
		}
		filter.MaterialID = materialID
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.SendList(c, dto.NewListResponse(result))
}

// Get handles GET /api/material-purchases/:id.
func (h *PurchaseHandler) Get(c *gin.Context) {
	purchaseID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	entry, err := h.service.GetByID(c.Request.Context(), purchaseID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, entry)
}

// Create handles POST /api/material-purchases.
func (h *PurchaseHandler) Create(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	var req dto.CreatePurchaseRequest
	if !h.BindJSON(c, &req) {
		return
	}

	input := purchase.CreateInput{
		MaterialID:    req.MaterialID,
		Quantity:      req.Quantity,
		UnitPrice:     req.UnitPrice,
		Supplier:      req.Supplier,
		Notes:         req.Notes,
		PurchasedByID: userID,
	}
	if req.PurchaseDate != nil {
		input.PurchaseDate = *req.PurchaseDate
	}

	entry, err := h.service.Create(c.Request.Context(), input)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, entry)
}

// Update handles PUT /api/material-purchases/:id. The stock delta and
// cost adjustments are applied by the service.
func (h *PurchaseHandler) Update(c *gin.Context) {
	purchaseID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdatePurchaseRequest
	if !h.BindJSON(c, &req) {
		return
	}

	entry, err := h.service.Update(c.Request.Context(), purchaseID, purchase.UpdateInput{
		Quantity:  req.Quantity,
		UnitPrice: req.UnitPrice,
		Supplier:  req.Supplier,
		Notes:     req.Notes,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, entry)
}

// Delete handles DELETE /api/material-purchases/:id.
func (h *PurchaseHandler) Delete(c *gin.Context) {
	purchaseID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), purchaseID); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "purchase removed")
}
