package consumption

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
	"gelateria/internal/domain/stock"
	"gelateria/pkg/logger"
)

// CreateInput is the request to record a consumption.
type CreateInput struct {
	MaterialID        id.ID
	Quantity          types.Quantity
	Reason            Reason
	ReasonDescription string
	Notes             string
	ConsumedByID      id.ID
	// ConsumptionDate defaults to now when zero.
	ConsumptionDate time.Time
}

// Service orchestrates the consumption ledger and its stock side effects.
type Service struct {
	repo         Repository
	materialRepo material.Repository
	txManager    tx.Manager
}

// NewService creates a new consumption service.
func NewService(repo Repository, materialRepo material.Repository, txManager tx.Manager) *Service {
	return &Service{
		repo:         repo,
		materialRepo: materialRepo,
		txManager:    txManager,
	}
}

// Create records a consumption and deducts the material stock. Discrete
// units are floored to whole units first and must stay positive; the
// deduction is conditional and refuses to drive the stock negative.
func (s *Service) Create(ctx context.Context, in CreateInput) (*MaterialConsumption, error) {
	var created *MaterialConsumption
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		mat, err := s.materialRepo.GetByID(ctx, in.MaterialID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewNotFound("material", in.MaterialID.String())
			}
			return fmt.Errorf("resolve material: %w", err)
		}

		quantity := stock.Normalize(in.Quantity, mat.Unit.Kind())
		if !quantity.IsPositive() {
			if mat.Unit == material.UnitUnidade {
				return apperror.NewInvalidQuantity(
					"quantity must be a whole number greater than zero for discrete units").
					WithDetail("field", "quantity")
			}
			return apperror.NewInvalidQuantity("quantity must be positive").
				WithDetail("field", "quantity")
		}

		entry := New(in.MaterialID, quantity, in.Reason, in.ConsumedByID)
		entry.ReasonDescription = in.ReasonDescription
		entry.Notes = in.Notes
		if !in.ConsumptionDate.IsZero() {
			entry.ConsumptionDate = in.ConsumptionDate
		}
		if err := entry.Validate(ctx); err != nil {
			return err
		}

		if err := s.materialRepo.DeductQuantity(ctx, mat.ID, quantity); err != nil {
			return err
		}

		if err := s.repo.Create(ctx, entry); err != nil {
			return fmt.Errorf("create consumption: %w", err)
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

	logger.Info(ctx, "material consumption recorded",
		"consumption_id", created.ID,
		"material_id", created.MaterialID,
		"quantity", created.Quantity,
		"reason", created.Reason)

	return created, nil
}

// Delete removes an entry and returns its quantity to stock.
func (s *Service) Delete(ctx context.Context, consumptionID id.ID) error {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		entry, err := s.repo.GetByID(ctx, consumptionID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewNotFound("consumption", consumptionID.String())
			}
			return fmt.Errorf("load consumption: %w", err)
		}

		if err := s.materialRepo.AddQuantity(ctx, entry.MaterialID, entry.Quantity); err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewNotFound("material", entry.MaterialID.String())
			}
			return fmt.Errorf("restore stock: %w", err)
		}

		if err := s.repo.Delete(ctx, consumptionID); err != nil {
			return fmt.Errorf("delete consumption: %w", err)
		}
		return nil
	})
	if err != nil {
		if apperror.IsAppError(err) {
			return err
		}
		return apperror.NewInternal(err)
	}

	logger.Info(ctx, "material consumption deleted", "consumption_id", consumptionID)
	return nil
}

// GetByID retrieves a consumption entry.
func (s *Service) GetByID(ctx context.Context, consumptionID id.ID) (*MaterialConsumption, error) {
	entry, err := s.repo.GetByID(ctx, consumptionID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("consumption", consumptionID.String())
		}
		return nil, err
	}
	return entry, nil
}

// List retrieves consumption entries.
func (s *Service) List(ctx context.Context, filter Filter) (domain.ListResult[*MaterialConsumption], error) {
	filter.Normalize()
	return s.repo.List(ctx, filter)
}
