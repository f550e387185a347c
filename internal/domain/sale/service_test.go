package sale_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gelateria/internal/core/apperror"
	"gelateria/internal/core/id"
	"gelateria/internal/core/types"
	"gelateria/internal/domain"
	"gelateria/internal/domain/material"
	"gelateria/internal/domain/product"
	"gelateria/internal/domain/sale"
)

// memStore is shared in-memory state for the fake repositories. The fake tx
// manager snapshots it before the function runs and restores it on error, so
// rollback behavior is observable in tests.
type memStore struct {
	products  map[id.ID]*product.Product
	materials map[id.ID]*material.Material
	sales     map[id.ID]*sale.Sale
}

func newMemStore() *memStore {
	return &memStore{
		products:  make(map[id.ID]*product.Product),
		materials: make(map[id.ID]*material.Material),
		sales:     make(map[id.ID]*sale.Sale),
	}
}

func (s *memStore) snapshot() *memStore {
	snap := newMemStore()
	for k, v := range s.products {
		cp := *v
		snap.products[k] = &cp
	}
	for k, v := range s.materials {
		cp := *v
		snap.materials[k] = &cp
	}
	for k, v := range s.sales {
		snap.sales[k] = copySale(v)
	}
	return snap
}

func (s *memStore) restore(snap *memStore) {
	s.products = snap.products
	s.materials = snap.materials
	s.sales = snap.sales
}

func copySale(v *sale.Sale) *sale.Sale {
	cp := *v
	cp.Items = make([]sale.Item, len(v.Items))
	for i, item := range v.Items {
		itemCp := item
		itemCp.MaterialsUsed = append([]sale.MaterialUsage(nil), item.MaterialsUsed...)
		cp.Items[i] = itemCp
	}
	return &cp
}

type fakeTxManager struct {
	store *memStore
}

func (m *fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	snap := m.store.snapshot()
	if err := fn(ctx); err != nil {
		m.store.restore(snap)
		return err
	}
	return nil
}

type fakeProductRepo struct {
	store *memStore
}

func (r *fakeProductRepo) Create(ctx context.Context, p *product.Product) error {
	cp := *p
	r.store.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) GetByID(ctx context.Context, productID id.ID) (*product.Product, error) {
	p, ok := r.store.products[productID]
	if !ok {
		return nil, apperror.NewNotFound("product", productID.String())
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) Update(ctx context.Context, p *product.Product) error {
	cp := *p
	r.store.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) Delete(ctx context.Context, productID id.ID) error {
	delete(r.store.products, productID)
	return nil
}

func (r *fakeProductRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*product.Product], error) {
	return domain.ListResult[*product.Product]{}, nil
}

func (r *fakeProductRepo) Exists(ctx context.Context, productID id.ID) (bool, error) {
	_, ok := r.store.products[productID]
	return ok, nil
}

func (r *fakeProductRepo) DeductStock(ctx context.Context, productID id.ID, quantity int64) error {
	p, ok := r.store.products[productID]
	if !ok {
		return apperror.NewNotFound("product", productID.String())
	}
	if p.Stock < quantity {
		return apperror.NewInsufficientStock("product", p.Name, float64(quantity), float64(p.Stock))
	}
	p.Stock -= quantity
	return nil
}

func (r *fakeProductRepo) RestoreStock(ctx context.Context, productID id.ID, quantity int64) error {
	p, ok := r.store.products[productID]
	if !ok {
		return apperror.NewNotFound("product", productID.String())
	}
	p.Stock += quantity
	return nil
}

type fakeMaterialRepo struct {
	store *memStore
}

func (r *fakeMaterialRepo) Create(ctx context.Context, m *material.Material) error {
	cp := *m
	r.store.materials[m.ID] = &cp
	return nil
}

func (r *fakeMaterialRepo) GetByID(ctx context.Context, materialID id.ID) (*material.Material, error) {
	m, ok := r.store.materials[materialID]
	if !ok {
		return nil, apperror.NewNotFound("material", materialID.String())
	}
	cp := *m
	return &cp, nil
}

func (r *fakeMaterialRepo) Update(ctx context.Context, m *material.Material) error {
	cp := *m
	r.store.materials[m.ID] = &cp
	return nil
}

func (r *fakeMaterialRepo) Delete(ctx context.Context, materialID id.ID) error {
	delete(r.store.materials, materialID)
	return nil
}

func (r *fakeMaterialRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*material.Material], error) {
	return domain.ListResult[*material.Material]{}, nil
}

func (r *fakeMaterialRepo) Exists(ctx context.Context, materialID id.ID) (bool, error) {
	_, ok := r.store.materials[materialID]
	return ok, nil
}

func (r *fakeMaterialRepo) DeductQuantity(ctx context.Context, materialID id.ID, quantity types.Quantity) error {
	m, ok := r.store.materials[materialID]
	if !ok {
		return apperror.NewNotFound("material", materialID.String())
	}
	if m.QuantityInStock < quantity {
		return apperror.NewInsufficientStock("material", m.Name, quantity.Float64(), m.QuantityInStock.Float64())
	}
	m.QuantityInStock -= quantity
	return nil
}

func (r *fakeMaterialRepo) AddQuantity(ctx context.Context, materialID id.ID, quantity types.Quantity) error {
	m, ok := r.store.materials[materialID]
	if !ok {
		return apperror.NewNotFound("material", materialID.String())
	}
	m.QuantityInStock += quantity
	return nil
}

func (r *fakeMaterialRepo) DeductQuantityFloored(ctx context.Context, materialID id.ID, quantity types.Quantity) error {
	m, ok := r.store.materials[materialID]
	if !ok {
		return apperror.NewNotFound("material", materialID.String())
	}
	m.QuantityInStock -= quantity
	if m.QuantityInStock < 0 {
		m.QuantityInStock = 0
	}
	return nil
}

func (r *fakeMaterialRepo) SetCostPerUnit(ctx context.Context, materialID id.ID, cost types.Money) error {
	m, ok := r.store.materials[materialID]
	if !ok {
		return apperror.NewNotFound("material", materialID.String())
	}
	m.CostPerUnit = cost
	return nil
}

func (r *fakeMaterialRepo) GetAll(ctx context.Context) ([]*material.Material, error) {
	out := make([]*material.Material, 0, len(r.store.materials))
	for _, m := range r.store.materials {
		cp := *m
		out = append(out, &cp)
	}
	return out, nil
}

type fakeSaleRepo struct {
	store *memStore
}

func (r *fakeSaleRepo) Create(ctx context.Context, s *sale.Sale) error {
	r.store.sales[s.ID] = copySale(s)
	return nil
}

func (r *fakeSaleRepo) GetByID(ctx context.Context, saleID id.ID) (*sale.Sale, error) {
	s, ok := r.store.sales[saleID]
	if !ok {
		return nil, apperror.NewNotFound("sale", saleID.String())
	}
	return copySale(s), nil
}

func (r *fakeSaleRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*sale.Sale], error) {
	return domain.ListResult[*sale.Sale]{}, nil
}

func (r *fakeSaleRepo) UpdatePayment(ctx context.Context, s *sale.Sale) error {
	stored, ok := r.store.sales[s.ID]
	if !ok {
		return apperror.NewNotFound("sale", s.ID.String())
	}
	// Same optimistic check as the real repository: the caller's version
	// must match the stored row, and the store owns the increment.
	if stored.Version != s.Version {
		return apperror.NewConcurrentModification("sale", s.ID)
	}
	updated := copySale(s)
	updated.Version = stored.Version + 1
	r.store.sales[s.ID] = updated
	return nil
}

func (r *fakeSaleRepo) ListPaidBetween(ctx context.Context, from, to time.Time) ([]*sale.Sale, error) {
	out := make([]*sale.Sale, 0)
	for _, s := range r.store.sales {
		if s.Status != sale.SaleConcluida || s.PaymentStatus != sale.StatusPago {
			continue
		}
		if s.SaleDate.Before(from) || s.SaleDate.After(to) {
			continue
		}
		out = append(out, copySale(s))
	}
	return out, nil
}

func newTestService(store *memStore) *sale.Service {
	return sale.NewService(
		&fakeSaleRepo{store: store},
		&fakeProductRepo{store: store},
		&fakeMaterialRepo{store: store},
		&fakeTxManager{store: store},
	)
}

func seedProduct(store *memStore, price, cost string, stock int64) *product.Product {
	p := newTestProduct("Sundae", price, cost, stock)
	store.products[p.ID] = p
	return p
}

func seedMaterial(store *memStore, unit material.Unit, cost string, stock float64) *material.Material {
	m := newTestMaterial("Cone", unit, cost, stock)
	store.materials[m.ID] = m
	return m
}

func TestCreatePaidSaleDeductsStock(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	prod := seedProduct(store, "100", "40", 10)
	mat := seedMaterial(store, material.UnitUnidade, "0.50", 20)
	svc := newTestService(store)

	created, err := svc.Create(ctx, sale.CreateInput{
		ClientID: id.New(),
		SellerID: id.New(),
		Items: []sale.ItemInput{
			{
				ProductID: prod.ID,
				Quantity:  3,
				Materials: []sale.MaterialInput{
					{MaterialID: mat.ID, PerUnit: types.NewQuantityFromInt(1)},
				},
			},
		},
		PaymentMethod: sale.PaymentPix,
	})
	require.NoError(t, err)

	assert.Equal(t, sale.StatusPago, created.PaymentStatus)
	require.NotNil(t, created.PaidAt)
	assert.True(t, created.TotalAmount.Equal(types.MustMoney("300")))

	assert.Equal(t, int64(7), store.products[prod.ID].Stock)
	assert.Equal(t, types.NewQuantityFromInt(17), store.materials[mat.ID].QuantityInStock)

	stored, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, stored.ID)
}

func TestCreatePendingSaleKeepsStock(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	prod := seedProduct(store, "100", "40", 10)
	svc := newTestService(store)

	created, err := svc.Create(ctx, sale.CreateInput{
		ClientID:      id.New(),
		SellerID:      id.New(),
		Items:         []sale.ItemInput{{ProductID: prod.ID, Quantity: 3}},
		PaymentMethod: sale.PaymentPendente,
	})
	require.NoError(t, err)

	assert.Equal(t, sale.StatusPendente, created.PaymentStatus)
	assert.Nil(t, created.PaidAt)
	assert.Equal(t, int64(10), store.products[prod.ID].Stock)
}

func TestCreateRollsBackAllDeductionsOnFailure(t *testing.T) {
	// Two items share one material: each line passes validation against the
	// full snapshot, but the second conditional deduction must fail and the
	// first one must be rolled back with the sale.
	ctx := context.Background()
	store := newMemStore()
	prodA := seedProduct(store, "100", "40", 10)
	prodB := seedProduct(store, "50", "20", 10)
	mat := seedMaterial(store, material.UnitKg, "30", 1.0)
	svc := newTestService(store)

	_, err := svc.Create(ctx, sale.CreateInput{
		ClientID: id.New(),
		SellerID: id.New(),
		Items: []sale.ItemInput{
			{
				ProductID: prodA.ID,
				Quantity:  1,
				Materials: []sale.MaterialInput{
					{MaterialID: mat.ID, PerUnit: types.NewQuantityFromFloat64(0.60)},
				},
			},
			{
				ProductID: prodB.ID,
				Quantity:  1,
				Materials: []sale.MaterialInput{
					{MaterialID: mat.ID, PerUnit: types.NewQuantityFromFloat64(0.60)},
				},
			},
		},
		PaymentMethod: sale.PaymentDinheiro,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	// Nothing moved and nothing was stored.
	assert.Equal(t, int64(10), store.products[prodA.ID].Stock)
	assert.Equal(t, int64(10), store.products[prodB.ID].Stock)
	assert.Equal(t, types.NewQuantityFromFloat64(1.0), store.materials[mat.ID].QuantityInStock)
	assert.Empty(t, store.sales)
}

func TestPaymentStatusRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	prod := seedProduct(store, "100", "40", 10)
	mat := seedMaterial(store, material.UnitUnidade, "0.50", 20)
	svc := newTestService(store)

	created, err := svc.Create(ctx, sale.CreateInput{
		ClientID: id.New(),
		SellerID: id.New(),
		Items: []sale.ItemInput{
			{
				ProductID: prod.ID,
				Quantity:  3,
				Materials: []sale.MaterialInput{
					{MaterialID: mat.ID, PerUnit: types.NewQuantityFromInt(1)},
				},
			},
		},
		PaymentMethod: sale.PaymentDinheiro,
	})
	require.NoError(t, err)
	require.Equal(t, int64(7), store.products[prod.ID].Stock)

	// pago -> pendente restores every quantity and clears paidAt.
	updated, err := svc.UpdatePaymentStatus(ctx, created.ID, sale.PaymentInput{Status: sale.StatusPendente})
	require.NoError(t, err)
	assert.Nil(t, updated.PaidAt)
	assert.Equal(t, int64(10), store.products[prod.ID].Stock)
	assert.Equal(t, types.NewQuantityFromInt(20), store.materials[mat.ID].QuantityInStock)

	// pendente -> pago deducts again and stamps paidAt.
	updated, err = svc.UpdatePaymentStatus(ctx, created.ID, sale.PaymentInput{Status: sale.StatusPago})
	require.NoError(t, err)
	require.NotNil(t, updated.PaidAt)
	assert.Equal(t, int64(7), store.products[prod.ID].Stock)
	assert.Equal(t, types.NewQuantityFromInt(17), store.materials[mat.ID].QuantityInStock)
}

func TestPendingSaleFirstPaymentTransition(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	prod := seedProduct(store, "100", "40", 10)
	svc := newTestService(store)

	created, err := svc.Create(ctx, sale.CreateInput{
		ClientID:      id.New(),
		SellerID:      id.New(),
		Items:         []sale.ItemInput{{ProductID: prod.ID, Quantity: 3}},
		PaymentMethod: sale.PaymentPendente,
	})
	require.NoError(t, err)
	require.Equal(t, sale.StatusPendente, created.PaymentStatus)
	storedVersion := store.sales[created.ID].Version

	// The loaded version must satisfy the repository's optimistic check;
	// the repository owns the increment.
	updated, err := svc.UpdatePaymentStatus(ctx, created.ID, sale.PaymentInput{Status: sale.StatusPago})
	require.NoError(t, err)
	assert.Equal(t, sale.StatusPago, updated.PaymentStatus)
	require.NotNil(t, updated.PaidAt)
	assert.Equal(t, int64(7), store.products[prod.ID].Stock)
	assert.Equal(t, storedVersion+1, store.sales[created.ID].Version)
}

func TestPaymentStatusIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	prod := seedProduct(store, "100", "40", 10)
	svc := newTestService(store)

	created, err := svc.Create(ctx, sale.CreateInput{
		ClientID:      id.New(),
		SellerID:      id.New(),
		Items:         []sale.ItemInput{{ProductID: prod.ID, Quantity: 3}},
		PaymentMethod: sale.PaymentDinheiro,
	})
	require.NoError(t, err)
	require.Equal(t, int64(7), store.products[prod.ID].Stock)
	paidAt := created.PaidAt

	// Paying an already paid sale must not deduct again.
	updated, err := svc.UpdatePaymentStatus(ctx, created.ID, sale.PaymentInput{Status: sale.StatusPago})
	require.NoError(t, err)
	assert.Equal(t, int64(7), store.products[prod.ID].Stock)
	require.NotNil(t, updated.PaidAt)
	assert.Equal(t, paidAt.Unix(), updated.PaidAt.Unix())
}

func TestPendingToPaidRevalidatesStock(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	prod := seedProduct(store, "100", "40", 10)
	svc := newTestService(store)

	created, err := svc.Create(ctx, sale.CreateInput{
		ClientID:      id.New(),
		SellerID:      id.New(),
		Items:         []sale.ItemInput{{ProductID: prod.ID, Quantity: 3}},
		PaymentMethod: sale.PaymentPendente,
	})
	require.NoError(t, err)

	// Stock drained by other operations while the sale was pending.
	store.products[prod.ID].Stock = 1

	_, err = svc.UpdatePaymentStatus(ctx, created.ID, sale.PaymentInput{Status: sale.StatusPago})
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	// Still pending, nothing deducted.
	assert.Equal(t, int64(1), store.products[prod.ID].Stock)
	stored, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, sale.StatusPendente, stored.PaymentStatus)
}

func TestPendingToPaidSkipsDeletedProduct(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	prod := seedProduct(store, "100", "40", 10)
	svc := newTestService(store)

	created, err := svc.Create(ctx, sale.CreateInput{
		ClientID:      id.New(),
		SellerID:      id.New(),
		Items:         []sale.ItemInput{{ProductID: prod.ID, Quantity: 3}},
		PaymentMethod: sale.PaymentPendente,
	})
	require.NoError(t, err)

	delete(store.products, prod.ID)

	updated, err := svc.UpdatePaymentStatus(ctx, created.ID, sale.PaymentInput{Status: sale.StatusPago})
	require.NoError(t, err)
	assert.Equal(t, sale.StatusPago, updated.PaymentStatus)
	require.NotNil(t, updated.PaidAt)
}
