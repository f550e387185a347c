// Package domain provides shared business logic interfaces and types.
package domain

import (
	"time"

	"gelateria/internal/core/id"
)

// --- Filter & Pagination ---

// ListFilter contains common filtering options for list operations.
type ListFilter struct {
	// Search performs case-insensitive substring match on searchable fields
	Search string

	// Category filters by category (materials)
	Category string

	// IDs filters by specific IDs
	IDs []id.ID

	// Date range (ledger entries, sales)
	DateFrom *time.Time
	DateTo   *time.Time

	// OrderBy specifies sorting (e.g., "name", "created_at DESC")
	OrderBy string

	// Pagination (1-based page)
	Page  int
	Limit int
}

// Normalize applies pagination defaults.
func (f *ListFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 10
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
}

// Offset calculates the SQL offset.
func (f ListFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// ListResult contains paginated results.
type ListResult[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

// Pages returns the total number of pages.
func (r ListResult[T]) Pages() int {
	if r.Limit <= 0 {
		return 0
	}
	pages := int(r.Total) / r.Limit
	if int(r.Total)%r.Limit > 0 {
		pages++
	}
	return pages
}
