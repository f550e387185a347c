package handlers

import (
	"github.com/gin-gonic/gin"

	"gelateria/internal/domain/material"
	"gelateria/internal/infrastructure/http/v1/dto"
)

// MaterialHandler handles material endpoints.
type MaterialHandler struct {
	*BaseHandler
	service *material.Service
}

// NewMaterialHandler creates a material handler.
func NewMaterialHandler(service *material.Service) *MaterialHandler {
	return &MaterialHandler{
		BaseHandler: NewBaseHandler(),
		service:     service,
	}
}

// List handles GET /api/materials.
func (h *MaterialHandler) List(c *gin.Context) {
	filter, ok := h.ParseListFilter(c)
	if !ok {
		return
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.SendList(c, dto.NewListResponse(result))
}

// Get handles GET /api/materials/:id.
func (h *MaterialHandler) Get(c *gin.Context) {
	materialID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	m, err := h.service.GetByID(c.Request.Context(), materialID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, m)
}

// Create handles POST /api/materials. An initial stock level produces
// an opening purchase ledger entry in the same transaction, via the
// after-create hook registered at wiring time.
func (h *MaterialHandler) Create(c *gin.Context) {
	var req dto.CreateMaterialRequest
	if !h.BindJSON(c, &req) {
		return
	}

	m := material.New(req.Name, material.Category(req.Category), material.Unit(req.Unit), req.CostPerUnit)
	m.Description = req.Description
	m.QuantityInStock = req.QuantityInStock
	m.MinimumStock = req.MinimumStock
	m.Supplier = req.Supplier
	m.SupplierPhone = req.SupplierPhone
	m.Notes = req.Notes

	if err := h.service.Create(c.Request.Context(), m); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, m)
}

// Update handles PUT /api/materials/:id. Stock level is not editable
// here; it only moves through ledger operations and sales.
func (h *MaterialHandler) Update(c *gin.Context) {
	materialID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateMaterialRequest
	if !h.BindJSON(c, &req) {
		return
	}

	m, err := h.service.GetByID(c.Request.Context(), materialID)
	if err != nil {
		h.Error(c, err)
		return
	}

	if req.Name != nil {
		m.Name = *req.Name
	}
	if req.Description != nil {
		m.Description = *req.Description
	}
	if req.Category != nil {
		m.Category = material.Category(*req.Category)
	}
	if req.Unit != nil {
		m.Unit = material.Unit(*req.Unit)
	}
	if req.CostPerUnit != nil {
		m.CostPerUnit = *req.CostPerUnit
	}
	if req.MinimumStock != nil {
		m.MinimumStock = *req.MinimumStock
	}
	if req.Supplier != nil {
		m.Supplier = *req.Supplier
	}
	if req.SupplierPhone != nil {
		m.SupplierPhone = *req.SupplierPhone
	}
	if req.Notes != nil {
		m.Notes = *req.Notes
	}

	if err := h.service.Update(c.Request.Context(), m); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, m)
}

// Delete handles DELETE /api/materials/:id.
func (h *MaterialHandler) Delete(c *gin.Context) {
	materialID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), materialID); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "material removed")
}

// Stats handles GET /api/materials/stats.
func (h *MaterialHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, stats)
}
