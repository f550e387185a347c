// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"gelateria/internal/domain"
)

// Response is the common envelope. Success responses carry Data (and
// optionally Message); error responses carry Error.
type Response struct {
	Success bool       `json:"success"`
	Message string     `json:"message,omitempty"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

// ErrorBody carries structured error details.
type ErrorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Pagination carries list paging metadata.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// ListResponse wraps a page of results.
type ListResponse struct {
	Success    bool       `json:"success"`
	Data       any        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// NewListResponse builds the list envelope from a domain list result.
func NewListResponse[T any](result domain.ListResult[T]) ListResponse {
	items := result.Items
	if items == nil {
		items = []T{}
	}
	return ListResponse{
		Success: true,
		Data:    items,
		Pagination: Pagination{
			Page:  result.Page,
			Limit: result.Limit,
			Total: result.Total,
			Pages: result.Pages(),
		},
	}
}
