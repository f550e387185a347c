package purchase

import (
	"context"
	"fmt"
	"time"

	"gelateria/internal/core/apperror"
	"gelateria/internal/core/id"
	"gelateria/internal/core/tx"
	"gelateria/internal/core/types"
	"gelateria/internal/domain"
	"gelateria/internal/domain/material"
	"gelateria/pkg/logger"
)

// CreateInput is the request to register a purchase.
type CreateInput struct {
	MaterialID    id.ID
	Quantity      types.Quantity
	UnitPrice     types.Money
	Supplier      string
	Notes         string
	PurchasedByID id.ID
	// PurchaseDate defaults to now when zero.
	PurchaseDate time.Time
}

// UpdateInput carries the fields that can change on an entry. Nil pointers
// leave the stored value untouched.
type UpdateInput struct {
	Quantity  types.Quantity
	UnitPrice types.Money
	Supplier  *string
	Notes     *string
}

// Service orchestrates the purchase ledger and its stock side effects.
type Service struct {
	repo         Repository
	materialRepo material.Repository
	txManager    tx.Manager
}

// NewService creates a new purchase service.
func NewService(repo Repository, materialRepo material.Repository, txManager tx.Manager) *Service {
	return &Service{
		repo:         repo,
		materialRepo: materialRepo,
		txManager:    txManager,
	}
}

func (s *Service) resolveMaterial(ctx context.Context, materialID id.ID) (*material.Material, error) {
	mat, err := s.materialRepo.GetByID(ctx, materialID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("material", materialID.String())
		}
		return nil, fmt.Errorf("resolve material: %w", err)
	}
	return mat, nil
}

// Create registers a purchase: the entry is stored, the material stock grows
// by the purchased quantity and the material's cost per unit follows the new
// price when it changed. All in one transaction.
func (s *Service) Create(ctx context.Context, in CreateInput) (*MaterialPurchase, error) {
	var created *MaterialPurchase
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		mat, err := s.resolveMaterial(ctx, in.MaterialID)
		if err != nil {
			return err
		}

		entry := New(in.MaterialID, in.Quantity, in.UnitPrice, in.PurchasedByID)
		entry.Notes = in.Notes
		entry.Supplier = in.Supplier
		if entry.Supplier == "" {
			entry.Supplier = mat.Supplier
		}
		if !in.PurchaseDate.IsZero() {
			entry.PurchaseDate = in.PurchaseDate
		}
		if err := entry.Validate(ctx); err != nil {
			return err
		}

		if err := s.repo.Create(ctx, entry); err != nil {
			return fmt.Errorf("create purchase: %w", err)
		}

		if err := s.materialRepo.AddQuantity(ctx, mat.ID, entry.Quantity); err != nil {
			return fmt.Errorf("add stock: %w", err)
		}
		if !entry.UnitPrice.Equal(mat.CostPerUnit) {
			if err := s.materialRepo.SetCostPerUnit(ctx, mat.ID, entry.UnitPrice); err != nil {
				return fmt.Errorf("update cost per unit: %w", err)
			}
		}

		created = entry
		return nil
	})
	if err != nil {
		if apperror.IsAppError(err) {
			return nil, err
		}
		return nil, apperror.NewInternal(err)
	}

	logger.Info(ctx, "material purchase registered",
		"purchase_id", created.ID,
		"material_id", created.MaterialID,
		"quantity", created.Quantity,
		"total_cost", created.TotalCost)

	return created, nil
}

// CreateInitial records the bootstrap ledger entry for a material created
// with opening stock. The material already carries the quantity, so no stock
// is moved here.
func (s *Service) CreateInitial(ctx context.Context, mat *material.Material, purchasedBy id.ID) (*MaterialPurchase, error) {
	entry := New(mat.ID, mat.QuantityInStock, mat.CostPerUnit, purchasedBy)
	entry.Supplier = mat.Supplier
	entry.Notes = "Cadastro inicial"
	if err := entry.Validate(ctx); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("create initial purchase: %w", err)
	}

	logger.Info(ctx, "initial purchase recorded",
		"purchase_id", entry.ID,
		"material_id", mat.ID)

	return entry, nil
}

// Update edits an entry and applies the quantity delta to the material
// stock. A shrinking purchase never drives the stock negative; the reversal
// floors at zero.
func (s *Service) Update(ctx context.Context, purchaseID id.ID, in UpdateInput) (*MaterialPurchase, error) {
	var updated *MaterialPurchase
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		entry, err := s.repo.GetByID(ctx, purchaseID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewNotFound("purchase", purchaseID.String())
			}
			return fmt.Errorf("load purchase: %w", err)
		}

		mat, err := s.resolveMaterial(ctx, entry.MaterialID)
		if err != nil {
			return err
		}

		if !in.Quantity.IsPositive() {
			return apperror.NewInvalidQuantity("quantity must be positive").
				WithDetail("field", "quantity")
		}

		diff := in.Quantity.Sub(entry.Quantity)
		if diff.IsPositive() {
			if err := s.materialRepo.AddQuantity(ctx, mat.ID, diff); err != nil {
				return fmt.Errorf("apply quantity delta: %w", err)
			}
		} else if diff.IsNegative() {
			if err := s.materialRepo.DeductQuantityFloored(ctx, mat.ID, diff.Neg()); err != nil {
				return fmt.Errorf("apply quantity delta: %w", err)
			}
		}

		if !in.UnitPrice.Equal(entry.UnitPrice) {
			if err := s.materialRepo.SetCostPerUnit(ctx, mat.ID, in.UnitPrice); err != nil {
				return fmt.Errorf("update cost per unit: %w", err)
			}
		}

		entry.Quantity = in.Quantity
		entry.UnitPrice = in.UnitPrice
		entry.TotalCost = TotalCost(in.Quantity, in.UnitPrice)
		if in.Supplier != nil {
			entry.Supplier = *in.Supplier
		}
		if in.Notes != nil {
			entry.Notes = *in.Notes
		}

		if err := s.repo.Update(ctx, entry); err != nil {
			return fmt.Errorf("update purchase: %w", err)
		}
		updated = entry
		return nil
	})
	if err != nil {
		if apperror.IsAppError(err) {
			return nil, err
		}
		return nil, apperror.NewInternal(err)
	}

	logger.Info(ctx, "material purchase updated",
		"purchase_id", updated.ID,
		"material_id", updated.MaterialID)

	return updated, nil
}

// Delete removes an entry and takes its quantity back out of stock, floored
// at zero so the reversal never fails on balance.
func (s *Service) Delete(ctx context.Context, purchaseID id.ID) error {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		entry, err := s.repo.GetByID(ctx, purchaseID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewNotFound("purchase", purchaseID.String())
			}
			return fmt.Errorf("load purchase: %w", err)
		}

		if _, err := s.resolveMaterial(ctx, entry.MaterialID); err != nil {
			return err
		}

		if err := s.materialRepo.DeductQuantityFloored(ctx, entry.MaterialID, entry.Quantity); err != nil {
			return fmt.Errorf("revert stock: %w", err)
		}

		if err := s.repo.Delete(ctx, purchaseID); err != nil {
			return fmt.Errorf("delete purchase: %w", err)
		}
		return nil
	})
	if err != nil {
		if apperror.IsAppError(err) {
			return err
		}
		return apperror.NewInternal(err)
	}

	logger.Info(ctx, "material purchase deleted", "purchase_id", purchaseID)
	return nil
}

// GetByID retrieves a purchase entry.
func (s *Service) GetByID(ctx context.Context, purchaseID id.ID) (*MaterialPurchase, error) {
	entry, err := s.repo.GetByID(ctx, purchaseID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("purchase", purchaseID.String())
		}
		return nil, err
	}
	return entry, nil
}

// List retrieves purchase entries.
func (s *Service) List(ctx context.Context, filter Filter) (domain.ListResult[*MaterialPurchase], error) {
	filter.Normalize()
	return s.repo.List(ctx, filter)
}
