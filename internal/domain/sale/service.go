package sale

import (
	"context"
	"fmt"

	"gelateria/internal/core/apperror"
	"gelateria/internal/core/id"
	"gelateria/internal/core/tx"
	"gelateria/internal/domain"
	"gelateria/internal/domain/material"
	"gelateria/internal/domain/product"
	"gelateria/pkg/logger"
)

// CreateInput is the request to register a sale.
type CreateInput struct {
	ClientID      id.ID
	SellerID      id.ID
	Items         []ItemInput
	PaymentMethod PaymentMethod
	PaymentStatus PaymentStatus
}

// PaymentInput is the request to change a sale's payment status.
type PaymentInput struct {
	Status PaymentStatus
	Method PaymentMethod
}

// Service orchestrates sale creation, payment transitions and listing.
type Service struct {
	saleRepo     Repository
	productRepo  product.Repository
	materialRepo material.Repository
	txManager    tx.Manager
}

// NewService creates a new sale service.
func NewService(
	saleRepo Repository,
	productRepo product.Repository,
	materialRepo material.Repository,
	txManager tx.Manager,
) *Service {
	return &Service{
		saleRepo:     saleRepo,
		productRepo:  productRepo,
		materialRepo: materialRepo,
		txManager:    txManager,
	}
}

// Create prices and persists a sale. For paid sales the product and material
// stock is deducted in the same transaction; if any line cannot be covered
// the whole sale rolls back and no stock moves.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Sale, error) {
	if id.IsNil(in.ClientID) {
		return nil, apperror.NewValidation("client is required").WithDetail("field", "clientId")
	}
	method := in.PaymentMethod
	if method == "" {
		method = PaymentDinheiro
	}
	if !method.Valid() {
		return nil, apperror.NewValidation("invalid payment method").
			WithDetail("field", "paymentMethod")
	}
	if in.PaymentStatus != "" && !in.PaymentStatus.Valid() {
		return nil, apperror.NewValidation("invalid payment status").
			WithDetail("field", "paymentStatus")
	}
	status := ResolvePaymentStatus(in.PaymentStatus, method)

	var created *Sale
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		products, materials, err := s.resolveCatalogs(ctx, in.Items)
		if err != nil {
			return err
		}

		pricing, err := Price(in.Items, products, materials)
		if err != nil {
			return err
		}

		sale := New()
		sale.ClientID = in.ClientID
		sale.SellerID = in.SellerID
		sale.Items = pricing.Items
		sale.TotalAmount = pricing.TotalAmount
		sale.TotalCost = pricing.TotalCost
		sale.MaterialsCost = pricing.MaterialsCost
		sale.GrossProfit = pricing.GrossProfit
		sale.NetProfit = pricing.NetProfit
		sale.PaymentMethod = method
		sale.PaymentStatus = status
		if status == StatusPago {
			sale.MarkPaid()
		}

		if err := sale.Validate(ctx); err != nil {
			return err
		}

		if status == StatusPago {
			if err := s.deductStock(ctx, sale.Items, false); err != nil {
				return err
			}
		}

		if err := s.saleRepo.Create(ctx, sale); err != nil {
			return fmt.Errorf("create sale: %w", err)
		}
		created = sale
		return nil
	})
	if err != nil {
		if apperror.IsAppError(err) {
			return nil, err
		}
		return nil, apperror.NewInternal(err)
	}

	logger.Info(ctx, "sale registered",
		"sale_id", created.ID,
		"client_id", created.ClientID,
		"total", created.TotalAmount,
		"payment_status", created.PaymentStatus)

	return created, nil
}

// resolveCatalogs loads every product and material referenced by the input
// lines, deduplicated.
func (s *Service) resolveCatalogs(
	ctx context.Context,
	items []ItemInput,
) (map[id.ID]*product.Product, map[id.ID]*material.Material, error) {
	products := make(map[id.ID]*product.Product)
	materials := make(map[id.ID]*material.Material)

	for _, item := range items {
		if _, ok := products[item.ProductID]; !ok {
			prod, err := s.productRepo.GetByID(ctx, item.ProductID)
			if err != nil {
				if apperror.IsNotFound(err) {
					return nil, nil, apperror.NewNotFound("product", item.ProductID.String())
				}
				return nil, nil, fmt.Errorf("resolve product: %w", err)
			}
			products[item.ProductID] = prod
		}

		for _, matIn := range item.Materials {
			if _, ok := materials[matIn.MaterialID]; ok {
				continue
			}
			mat, err := s.materialRepo.GetByID(ctx, matIn.MaterialID)
			if err != nil {
				if apperror.IsNotFound(err) {
					return nil, nil, apperror.NewNotFound("material", matIn.MaterialID.String())
				}
				return nil, nil, fmt.Errorf("resolve material: %w", err)
			}
			materials[matIn.MaterialID] = mat
		}
	}

	return products, materials, nil
}

// deductStock applies conditional decrements for every item and its material
// usage. With skipMissing set, lines whose product or material has been
// deleted since the sale was recorded are skipped instead of failing; an
// insufficient balance always fails.
func (s *Service) deductStock(ctx context.Context, items []Item, skipMissing bool) error {
	for _, item := range items {
		err := s.productRepo.DeductStock(ctx, item.ProductID, item.Quantity)
		if err != nil {
			if skipMissing && apperror.IsNotFound(err) {
				logger.Warn(ctx, "product missing on payment, skipping stock deduction",
					"product_id", item.ProductID)
			} else {
				return err
			}
		}

		for _, usage := range item.MaterialsUsed {
			err := s.materialRepo.DeductQuantity(ctx, usage.MaterialID, usage.Quantity)
			if err != nil {
				if skipMissing && apperror.IsNotFound(err) {
					logger.Warn(ctx, "material missing on payment, skipping stock deduction",
						"material_id", usage.MaterialID)
					continue
				}
				return err
			}
		}
	}
	return nil
}

// restoreStock returns every deducted quantity. Missing products or
// materials are skipped; restoration never fails on balance.
func (s *Service) restoreStock(ctx context.Context, items []Item) error {
	for _, item := range items {
		err := s.productRepo.RestoreStock(ctx, item.ProductID, item.Quantity)
		if err != nil && !apperror.IsNotFound(err) {
			return err
		}

		for _, usage := range item.MaterialsUsed {
			err := s.materialRepo.AddQuantity(ctx, usage.MaterialID, usage.Quantity)
			if err != nil && !apperror.IsNotFound(err) {
				return err
			}
		}
	}
	return nil
}

// UpdatePaymentStatus moves a sale between pendente and pago. Requesting the
// current status is a no-op. Marking paid re-validates stock with
// conditional decrements; marking pending returns every quantity. The whole
// transition is one transaction.
func (s *Service) UpdatePaymentStatus(ctx context.Context, saleID id.ID, in PaymentInput) (*Sale, error) {
	if !in.Status.Valid() {
		return nil, apperror.NewValidation("invalid payment status").
			WithDetail("field", "paymentStatus")
	}
	if in.Method != "" && !in.Method.Valid() {
		return nil, apperror.NewValidation("invalid payment method").
			WithDetail("field", "paymentMethod")
	}

	var updated *Sale
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		sale, err := s.saleRepo.GetByID(ctx, saleID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewNotFound("sale", saleID.String())
			}
			return fmt.Errorf("load sale: %w", err)
		}

		// Requesting the status the sale already has must not move stock
		// twice.
		if sale.PaymentStatus == in.Status {
			updated = sale
			return nil
		}

		switch in.Status {
		case StatusPago:
			if err := s.deductStock(ctx, sale.Items, true); err != nil {
				return err
			}
			sale.MarkPaid()
		case StatusPendente:
			if err := s.restoreStock(ctx, sale.Items); err != nil {
				return err
			}
			sale.MarkPending()
		}

		if in.Method != "" {
			sale.PaymentMethod = in.Method
		}

		if err := s.saleRepo.UpdatePayment(ctx, sale); err != nil {
			return fmt.Errorf("update payment: %w", err)
		}
		updated = sale
		return nil
	})
	if err != nil {
		if apperror.IsAppError(err) {
			return nil, err
		}
		return nil, apperror.NewInternal(err)
	}

	logger.Info(ctx, "payment status updated",
		"sale_id", updated.ID,
		"payment_status", updated.PaymentStatus)

	return updated, nil
}

// GetByID retrieves a sale.
func (s *Service) GetByID(ctx context.Context, saleID id.ID) (*Sale, error) {
	sale, err := s.saleRepo.GetByID(ctx, saleID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("sale", saleID.String())
		}
		return nil, err
	}
	return sale, nil
}

// List retrieves sales filtered by date range.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Sale], error) {
	filter.Normalize()
	return s.saleRepo.List(ctx, filter)
}
