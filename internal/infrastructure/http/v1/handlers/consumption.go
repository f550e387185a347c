package handlers

import (
	"github.com/gin-gonic/gin"

	"gelateria/internal/core/id"
	"gelateria/internal/core/apperror"
	"gelateria/internal/domain/consumption"
	"gelateria/internal/infrastructure/http/v1/dto"
)

// ConsumptionHandler handles the material consumption ledger endpoints.
type ConsumptionHandler struct {
	*BaseHandler
	service *consumption.Service
}

// NewConsumptionHandler creates a consumption handler.
func NewConsumptionHandler(service *consumption.Service) *ConsumptionHandler {
	return &ConsumptionHandler{
		BaseHandler: NewBaseHandler(),
		service:     service,
	}
}

// List handles GET /api/material-consumptions.
func (h *ConsumptionHandler) List(c *gin.Context) {
	base, ok := h.ParseListFilter(c)
	if !ok {
		return
	}
	filter := consumption.Filter{ListFilter: base}

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

// Get handles GET /api/material-consumptions/:id.
func (h *ConsumptionHandler) Get(c *gin.Context) {
	consumptionID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	entry, err := h.service.GetByID(c.Request.Context(), consumptionID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, entry)
}

// Create handles POST /api/material-consumptions.
func (h *ConsumptionHandler) Create(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	var req dto.CreateConsumptionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	input := consumption.CreateInput{
		MaterialID:        req.MaterialID,
		Quantity:          req.Quantity,
		Reason:            consumption.Reason(req.Reason),
		ReasonDescription: req.ReasonDescription,
		Notes:             req.Notes,
		ConsumedByID:      userID,
	}
	if req.ConsumptionDate != nil {
		input.ConsumptionDate = *req.ConsumptionDate
	}

	entry, err := h.service.Create(c.Request.Context(), input)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, entry)
}

// Delete handles DELETE /api/material-consumptions/:id. Removing an
// entry puts the consumed quantity back into stock.
func (h *ConsumptionHandler) Delete(c *gin.Context) {
	consumptionID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), consumptionID); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "consumption removed")
}
