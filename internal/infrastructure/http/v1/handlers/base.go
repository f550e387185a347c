// Package handlers implements the HTTP API.
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"gelateria/internal/core/appctx"
	"gelateria/internal/core/apperror"
	"gelateria/internal/core/id"
	"gelateria/internal/domain"
	"gelateria/internal/infrastructure/http/v1/dto"
)

// BaseHandler provides common handler utilities.
type BaseHandler struct{}

// NewBaseHandler creates a new base handler.
func NewBaseHandler() *BaseHandler {
	return &BaseHandler{}
}

// BindJSON binds and validates the JSON request body.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid request body").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// Error registers the error on the gin context and aborts. The JSON
// body is produced by middleware.ErrorHandler.
func (h *BaseHandler) Error(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// OK sends a 200 envelope with data.
func (h *BaseHandler) OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.Response{Success: true, Data: data})
}

// Created sends a 201 envelope with data.
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.Response{Success: true, Data: data})
}

// Success sends a 200 envelope with a message only.
func (h *BaseHandler) Success(c *gin.Context, message string) {
	c.JSON(http.StatusOK, dto.Response{Success: true, Message: message})
}

// SendList sends a 200 list envelope.
func (h *BaseHandler) SendList(c *gin.Context, response dto.ListResponse) {
	c.JSON(http.StatusOK, response)
}

// ParseID parses a UUID path parameter.
func (h *BaseHandler) ParseID(c *gin.Context, param string) (id.ID, bool) {
	parsed, err := id.Parse(c.Param(param))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id").WithDetail("param", param))
		return id.Nil(), false
	}
	return parsed, true
}

// ParseIntQuery parses an integer query parameter with a default.
func (h *BaseHandler) ParseIntQuery(c *gin.Context, key string, defaultVal int) int {
	val := c.Query(key)
	if val == "" {
		return defaultVal
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return parsed
}

// ParseDateQuery parses a date query parameter, accepting RFC 3339 and
// plain dates. Returns nil when absent, false on a malformed value.
func (h *BaseHandler) ParseDateQuery(c *gin.Context, key string) (*time.Time, bool) {
	val := c.Query(key)
	if val == "" {
		return nil, true
	}
	if t, err := time.Parse(time.RFC3339, val); err == nil {
		return &t, true
	}
	if t, err := time.Parse("2006-01-02", val); err == nil {
		return &t, true
	}
	h.Error(c, apperror.NewValidation("invalid date").WithDetail("param", key).WithDetail("value", val))
	return nil, false
}

// ParseListFilter extracts the common listing parameters.
func (h *BaseHandler) ParseListFilter(c *gin.Context) (domain.ListFilter, bool) {
	filter := domain.ListFilter{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		OrderBy:  c.Query("orderBy"),
		Page:     h.ParseIntQuery(c, "page", 1),
		Limit:    h.ParseIntQuery(c, "limit", 10),
	}

	from, ok := h.ParseDateQuery(c, "startDate")
	if !ok {
		return filter, false
	}
	to, ok := h.ParseDateQuery(c, "endDate")
	if !ok {
		return filter, false
	}
	filter.DateFrom = from
	filter.DateTo = to
	return filter, true
}

// CurrentUserID extracts the authenticated user's ID.
func (h *BaseHandler) CurrentUserID(c *gin.Context) (id.ID, bool) {
	user := appctx.GetUser(c.Request.Context())
	if user == nil {
		h.Error(c, apperror.NewUnauthorized("authentication required"))
		return id.Nil(), false
	}
	userID, err := id.Parse(user.UserID)
	if err != nil {
		h.Error(c, apperror.NewUnauthorized("invalid user context"))
		return id.Nil(), false
	}
	return userID, true
}
