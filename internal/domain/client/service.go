package client

import (
	"context"

	"gelateria/internal/core/apperror"
	"gelateria/internal/core/tx"
	"gelateria/internal/domain"
)

// Service provides business logic for the Client catalog.
type Service struct {
	*domain.CatalogService[*Client]
	repo Repository
}

// NewService creates a new Client service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Client]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "client",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
	}

	base.Hooks().OnBeforeCreate(svc.checkEmailUnique)
	base.Hooks().On(domain.BeforeUpdate, svc.checkEmailUnique)

	return svc
}

// checkEmailUnique enforces email uniqueness across clients.
func (s *Service) checkEmailUnique(ctx context.Context, c *Client) error {
	if c.Email == "" {
		return nil
	}
	existing, err := s.repo.FindByEmail(ctx, c.Email)
	if err != nil {
		return nil // absent or lookup failure: the unique index backs this up
	}
	if existing.ID != c.ID {
		return apperror.NewDuplicate("client", "email")
	}
	return nil
}

// FindByEmail retrieves a client by email.
func (s *Service) FindByEmail(ctx context.Context, email string) (*Client, error) {
	return s.repo.FindByEmail(ctx, email)
}
