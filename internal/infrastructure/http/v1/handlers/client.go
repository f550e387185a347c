package handlers

import (
	"github.com/gin-gonic/gin"

	"gelateria/internal/domain/client"
	"gelateria/internal/infrastructure/http/v1/dto"
)

// ClientHandler handles client endpoints.
type ClientHandler struct {
	*BaseHandler
	service *client.Service
}

// NewClientHandler creates a client handler.
func NewClientHandler(service *client.Service) *ClientHandler {
	return &ClientHandler{
		BaseHandler: NewBaseHandler(),
		service:     service,
	}
}

// List handles GET /api/clients.
func (h *ClientHandler) List(c *gin.Context) {
	filter, ok := h.ParseListFilter(c)
	if !ok {
		return
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	response := dto.NewListResponse(result)
	response.Data = dto.FromClients(result.Items)
	h.SendList(c, response)
}

// Get handles GET /api/clients/:id.
func (h *ClientHandler) Get(c *gin.Context) {
	clientID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	cl, err := h.service.GetByID(c.Request.Context(), clientID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromClient(cl))
}

// Create handles POST /api/clients.
func (h *ClientHandler) Create(c *gin.Context) {
	var req dto.CreateClientRequest
	if !h.BindJSON(c, &req) {
		return
	}

	cl := client.New(req.Name, req.Email, req.Phone)
	cl.Notes = req.Notes
	if req.Address != nil {
		cl.Street = req.Address.Street
		cl.City = req.Address.City
		cl.State = req.Address.State
		cl.ZipCode = req.Address.ZipCode
	}

	if err := h.service.Create(c.Request.Context(), cl); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromClient(cl))
}

// Update handles PUT /api/clients/:id.
func (h *ClientHandler) Update(c *gin.Context) {
	clientID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateClientRequest
	if !h.BindJSON(c, &req) {
		return
	}

	cl, err := h.service.GetByID(c.Request.Context(), clientID)
	if err != nil {
		h.Error(c, err)
		return
	}

	if req.Name != nil {
		cl.Name = *req.Name
	}
	if req.Email != nil {
		cl.Email = *req.Email
	}
	if req.Phone != nil {
		cl.Phone = *req.Phone
	}
	if req.Address != nil {
		cl.Street = req.Address.Street
		cl.City = req.Address.City
		cl.State = req.Address.State
		cl.ZipCode = req.Address.ZipCode
	}
	if req.Notes != nil {
		cl.Notes = *req.Notes
	}

	if err := h.service.Update(c.Request.Context(), cl); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromClient(cl))
}

// Delete handles DELETE /api/clients/:id.
func (h *ClientHandler) Delete(c *gin.Context) {
	clientID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), clientID); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "client removed")
}
