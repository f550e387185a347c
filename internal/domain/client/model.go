// Package client provides the client (customer) catalog.
package client

import (
	"context"
	"regexp"

	"gelateria/internal/core/apperror"
	"gelateria/internal/core/entity"
)

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// Client represents a buyer referenced by sales.
// Address fields are stored flat; the API layer presents them nested.
type Client struct {
	entity.Base

	Name  string `db:"name" json:"name"`
	Email string `db:"email" json:"email,omitempty"`
	Phone string `db:"phone" json:"phone,omitempty"`

	Street  string `db:"street" json:"street,omitempty"`
	City    string `db:"city" json:"city,omitempty"`
	State   string `db:"state" json:"state,omitempty"`
	ZipCode string `db:"zip_code" json:"zipCode,omitempty"`

	Notes string `db:"notes" json:"notes,omitempty"`
}

// New creates a new Client.
func New(name, email, phone string) *Client {
	return &Client{
		Base:  entity.NewBase(),
		Name:  name,
		Email: email,
		Phone: phone,
	}
}

// Validate implements entity.Validatable.
func (c *Client) Validate(ctx context.Context) error {
	if c.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	if c.Email != "" && !emailPattern.MatchString(c.Email) {
		return apperror.NewValidation("invalid email").
			WithDetail("field", "email")
	}
	return nil
}
