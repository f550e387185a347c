package consumption_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gelateria/internal/core/apperror"
	"gelateria/internal/core/id"
	"gelateria/internal/core/types"
	"gelateria/internal/domain"
	"gelateria/internal/domain/consumption"
	"gelateria/internal/domain/material"
)

type passTxManager struct{}

func (passTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memMaterialRepo struct {
	materials map[id.ID]*material.Material
}

func newMemMaterialRepo() *memMaterialRepo {
	return &memMaterialRepo{materials: make(map[id.ID]*material.Material)}
}

func (r *memMaterialRepo) Create(ctx context.Context, m *material.Material) error {
	r.materials[m.ID] = m
	return nil
}

func (r *memMaterialRepo) GetByID(ctx context.Context, materialID id.ID) (*material.Material, error) {
	m, ok := r.materials[materialID]
	if !ok {
		return nil, apperror.NewNotFound("material", materialID.String())
	}
	cp := *m
	return &cp, nil
}

func (r *memMaterialRepo) Update(ctx context.Context, m *material.Material) error {
	r.materials[m.ID] = m
	return nil
}

func (r *memMaterialRepo) Delete(ctx context.Context, materialID id.ID) error {
	delete(r.materials, materialID)
	return nil
}

func (r *memMaterialRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*material.Material], error) {
	return domain.ListResult[*material.Material]{}, nil
}

func (r *memMaterialRepo) Exists(ctx context.Context, materialID id.ID) (bool, error) {
	_, ok := r.materials[materialID]
	return ok, nil
}

func (r *memMaterialRepo) DeductQuantity(ctx context.Context, materialID id.ID, quantity types.Quantity) error {
	m, ok := r.materials[materialID]
	if !ok {
		return apperror.NewNotFound("material", materialID.String())
	}
	if m.QuantityInStock < quantity {
		return apperror.NewInsufficientStock("material", m.Name, quantity.Float64(), m.QuantityInStock.Float64())
	}
	m.QuantityInStock -= quantity
	return nil
}

func (r *memMaterialRepo) AddQuantity(ctx context.Context, materialID id.ID, quantity types.Quantity) error {
	m, ok := r.materials[materialID]
	if !ok {
		return apperror.NewNotFound("material", materialID.String())
	}
	m.QuantityInStock += quantity
	return nil
}

func (r *memMaterialRepo) DeductQuantityFloored(ctx context.Context, materialID id.ID, quantity types.Quantity) error {
	m, ok := r.materials[materialID]
	if !ok {
		return apperror.NewNotFound("material", materialID.String())
	}
	m.QuantityInStock -= quantity
	if m.QuantityInStock < 0 {
		m.QuantityInStock = 0
	}
	return nil
}

func (r *memMaterialRepo) SetCostPerUnit(ctx context.Context, materialID id.ID, cost types.Money) error {
	m, ok := r.materials[materialID]
	if !ok {
		return apperror.NewNotFound("material", materialID.String())
	}
	m.CostPerUnit = cost
	return nil
}

func (r *memMaterialRepo) GetAll(ctx context.Context) ([]*material.Material, error) {
	out := make([]*material.Material, 0, len(r.materials))
	for _, m := range r.materials {
		out = append(out, m)
	}
	return out, nil
}

type memConsumptionRepo struct {
	entries map[id.ID]*consumption.MaterialConsumption
}

func newMemConsumptionRepo() *memConsumptionRepo {
	return &memConsumptionRepo{entries: make(map[id.ID]*consumption.MaterialConsumption)}
}

func (r *memConsumptionRepo) Create(ctx context.Context, c *consumption.MaterialConsumption) error {
	cp := *c
	r.entries[c.ID] = &cp
	return nil
}

func (r *memConsumptionRepo) GetByID(ctx context.Context, consumptionID id.ID) (*consumption.MaterialConsumption, error) {
	c, ok := r.entries[consumptionID]
	if !ok {
		return nil, apperror.NewNotFound("consumption", consumptionID.String())
	}
	cp := *c
	return &cp, nil
}

func (r *memConsumptionRepo) Delete(ctx context.Context, consumptionID id.ID) error {
	delete(r.entries, consumptionID)
	return nil
}

func (r *memConsumptionRepo) List(ctx context.Context, filter consumption.Filter) (domain.ListResult[*consumption.MaterialConsumption], error) {
	return domain.ListResult[*consumption.MaterialConsumption]{}, nil
}

func seedMaterial(repo *memMaterialRepo, unit material.Unit, stock float64) *material.Material {
	m := material.New("Cone crocante", material.CategoryCone, unit, types.MustMoney("0.50"))
	m.QuantityInStock = types.NewQuantityFromFloat64(stock)
	repo.materials[m.ID] = m
	return m
}

func TestCreateConsumptionFloorsDiscreteQuantity(t *testing.T) {
	ctx := context.Background()
	matRepo := newMemMaterialRepo()
	mat := seedMaterial(matRepo, material.UnitUnidade, 5)
	svc := consumption.NewService(newMemConsumptionRepo(), matRepo, passTxManager{})

	// 2.7 of a discrete unit floors to 2: stock 5 -> 3.
	entry, err := svc.Create(ctx, consumption.CreateInput{
		MaterialID:   mat.ID,
		Quantity:     types.NewQuantityFromFloat64(2.7),
		Reason:       consumption.ReasonUsoProducao,
		ConsumedByID: id.New(),
	})
	require.NoError(t, err)

	assert.Equal(t, types.NewQuantityFromInt(2), entry.Quantity)
	assert.Equal(t, types.NewQuantityFromInt(3), matRepo.materials[mat.ID].QuantityInStock)
}

func TestCreateConsumptionContinuousKeepsFraction(t *testing.T) {
	ctx := context.Background()
	matRepo := newMemMaterialRepo()
	mat := seedMaterial(matRepo, material.UnitKg, 5)
	svc := consumption.NewService(newMemConsumptionRepo(), matRepo, passTxManager{})

	entry, err := svc.Create(ctx, consumption.CreateInput{
		MaterialID:   mat.ID,
		Quantity:     types.NewQuantityFromFloat64(2.7),
		Reason:       consumption.ReasonPerdaQuebras,
		ConsumedByID: id.New(),
	})
	require.NoError(t, err)

	assert.Equal(t, types.NewQuantityFromFloat64(2.7), entry.Quantity)
	assert.Equal(t, types.NewQuantityFromFloat64(2.3), matRepo.materials[mat.ID].QuantityInStock)
}

func TestCreateConsumptionRejectsFractionBelowOneUnit(t *testing.T) {
	ctx := context.Background()
	matRepo := newMemMaterialRepo()
	mat := seedMaterial(matRepo, material.UnitUnidade, 5)
	svc := consumption.NewService(newMemConsumptionRepo(), matRepo, passTxManager{})

	// 0.9 floors to zero for discrete units.
	_, err := svc.Create(ctx, consumption.CreateInput{
		MaterialID:   mat.ID,
		Quantity:     types.NewQuantityFromFloat64(0.9),
		Reason:       consumption.ReasonUsoProducao,
		ConsumedByID: id.New(),
	})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInvalidQuantity, appErr.Code)
	assert.Equal(t, types.NewQuantityFromInt(5), matRepo.materials[mat.ID].QuantityInStock)
}

func TestCreateConsumptionRejectsInsufficientStock(t *testing.T) {
	ctx := context.Background()
	matRepo := newMemMaterialRepo()
	mat := seedMaterial(matRepo, material.UnitKg, 1)
	svc := consumption.NewService(newMemConsumptionRepo(), matRepo, passTxManager{})

	_, err := svc.Create(ctx, consumption.CreateInput{
		MaterialID:   mat.ID,
		Quantity:     types.NewQuantityFromFloat64(1.5),
		Reason:       consumption.ReasonVencimento,
		ConsumedByID: id.New(),
	})
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))
	assert.Equal(t, types.NewQuantityFromInt(1), matRepo.materials[mat.ID].QuantityInStock)
}

func TestCreateConsumptionUnknownMaterial(t *testing.T) {
	svc := consumption.NewService(newMemConsumptionRepo(), newMemMaterialRepo(), passTxManager{})

	_, err := svc.Create(context.Background(), consumption.CreateInput{
		MaterialID:   id.New(),
		Quantity:     types.NewQuantityFromInt(1),
		Reason:       consumption.ReasonOutro,
		ConsumedByID: id.New(),
	})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestCreateConsumptionInvalidReason(t *testing.T) {
	matRepo := newMemMaterialRepo()
	mat := seedMaterial(matRepo, material.UnitKg, 5)
	svc := consumption.NewService(newMemConsumptionRepo(), matRepo, passTxManager{})

	_, err := svc.Create(context.Background(), consumption.CreateInput{
		MaterialID:   mat.ID,
		Quantity:     types.NewQuantityFromInt(1),
		Reason:       "derretimento",
		ConsumedByID: id.New(),
	})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestDeleteConsumptionRestoresStock(t *testing.T) {
	ctx := context.Background()
	matRepo := newMemMaterialRepo()
	mat := seedMaterial(matRepo, material.UnitUnidade, 5)
	svc := consumption.NewService(newMemConsumptionRepo(), matRepo, passTxManager{})

	entry, err := svc.Create(ctx, consumption.CreateInput{
		MaterialID:   mat.ID,
		Quantity:     types.NewQuantityFromInt(2),
		Reason:       consumption.ReasonTesteQualidade,
		ConsumedByID: id.New(),
	})
	require.NoError(t, err)
	require.Equal(t, types.NewQuantityFromInt(3), matRepo.materials[mat.ID].QuantityInStock)

	require.NoError(t, svc.Delete(ctx, entry.ID))
	assert.Equal(t, types.NewQuantityFromInt(5), matRepo.materials[mat.ID].QuantityInStock)

	_, err = svc.GetByID(ctx, entry.ID)
	assert.True(t, apperror.IsNotFound(err))
}
