package handlers

import (
	"github.com/gin-gonic/gin"

	"gelateria/internal/domain/sale"
	"gelateria/internal/infrastructure/http/v1/dto"
)

// SaleHandler handles sale endpoints.
type SaleHandler struct {
	*BaseHandler
	service *sale.Service
}

// NewSaleHandler creates a sale handler.
func NewSaleHandler(service *sale.Service) *SaleHandler {
	return &SaleHandler{
		BaseHandler: NewBaseHandler(),
		service:     service,
	}
}

// List handles GET /api/sales.
func (h *SaleHandler) List(c *gin.Context) {
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

// Get handles GET /api/sales/:id.
func (h *SaleHandler) Get(c *gin.Context) {
	saleID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	s, err := h.service.GetByID(c.Request.Context(), saleID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, s)
}

// Create handles POST /api/sales. The authenticated user becomes the
// seller.
func (h *SaleHandler) Create(c *gin.Context) {
	sellerID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	var req dto.CreateSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	input := sale.CreateInput{
		ClientID:      req.ClientID,
		SellerID:      sellerID,
		PaymentMethod: sale.PaymentMethod(req.PaymentMethod),
		PaymentStatus: sale.PaymentStatus(req.PaymentStatus),
	}
	for _, item := range req.Items {
		in := sale.ItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		}
		for _, mat := range item.Materials {
			in.Materials = append(in.Materials, sale.MaterialInput{
				MaterialID: mat.MaterialID,
				PerUnit:    mat.Quantity,
			})
		}
		input.Items = append(input.Items, in)
	}

	s, err := h.service.Create(c.Request.Context(), input)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, s)
}

// UpdatePayment handles PUT /api/sales/:id/payment.
func (h *SaleHandler) UpdatePayment(c *gin.Context) {
	saleID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdatePaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	s, err := h.service.UpdatePaymentStatus(c.Request.Context(), saleID, sale.PaymentInput{
		Status: sale.PaymentStatus(req.PaymentStatus),
		Method: sale.PaymentMethod(req.PaymentMethod),
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, s)
}
