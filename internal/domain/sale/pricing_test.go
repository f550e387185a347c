package sale_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gelateria/internal/core/apperror"
	"gelateria/internal/core/id"
	"gelateria/internal/core/types"
	"gelateria/internal/domain/material"
	"gelateria/internal/domain/product"
	"gelateria/internal/domain/sale"
)

func newTestProduct(name string, price, cost string, stock int64) *product.Product {
	return product.New(name, types.MustMoney(price), types.MustMoney(cost), stock)
}

func newTestMaterial(name string, unit material.Unit, cost string, stock float64) *material.Material {
	m := material.New(name, material.CategoryCone, unit, types.MustMoney(cost))
	m.QuantityInStock = types.NewQuantityFromFloat64(stock)
	return m
}

func TestPriceSingleItem(t *testing.T) {
	p := newTestProduct("Sundae", "100", "40", 10)
	products := map[id.ID]*product.Product{p.ID: p}

	pricing, err := sale.Price([]sale.ItemInput{
		{ProductID: p.ID, Quantity: 3},
	}, products, nil)
	require.NoError(t, err)

	assert.True(t, pricing.TotalAmount.Equal(types.MustMoney("300")), "total: %s", pricing.TotalAmount)
	assert.True(t, pricing.TotalCost.Equal(types.MustMoney("120")), "cost: %s", pricing.TotalCost)
	assert.True(t, pricing.GrossProfit.Equal(types.MustMoney("180")), "gross: %s", pricing.GrossProfit)
	assert.True(t, pricing.NetProfit.Equal(types.MustMoney("153")), "net: %s", pricing.NetProfit)
	assert.True(t, pricing.MaterialsCost.IsZero())

	require.Len(t, pricing.Items, 1)
	item := pricing.Items[0]
	assert.Equal(t, int64(3), item.Quantity)
	assert.True(t, item.UnitPrice.Equal(types.MustMoney("100")))
	assert.True(t, item.Subtotal.Equal(types.MustMoney("300")))
}

func TestPriceUnitPriceOverride(t *testing.T) {
	p := newTestProduct("Milkshake", "25", "10", 5)
	products := map[id.ID]*product.Product{p.ID: p}

	override := types.MustMoney("20")
	pricing, err := sale.Price([]sale.ItemInput{
		{ProductID: p.ID, Quantity: 2, UnitPrice: &override},
	}, products, nil)
	require.NoError(t, err)

	assert.True(t, pricing.TotalAmount.Equal(types.MustMoney("40")))
	assert.True(t, pricing.Items[0].UnitPrice.Equal(override))
}

func TestPriceWithMaterials(t *testing.T) {
	p := newTestProduct("Casquinha", "10", "4", 100)
	cone := newTestMaterial("Cone crocante", material.UnitUnidade, "0.50", 50)
	cobertura := newTestMaterial("Calda de chocolate", material.UnitKg, "30", 2)

	products := map[id.ID]*product.Product{p.ID: p}
	materials := map[id.ID]*material.Material{cone.ID: cone, cobertura.ID: cobertura}

	pricing, err := sale.Price([]sale.ItemInput{
		{
			ProductID: p.ID,
			Quantity:  4,
			Materials: []sale.MaterialInput{
				{MaterialID: cone.ID, PerUnit: types.NewQuantityFromInt(1)},
				{MaterialID: cobertura.ID, PerUnit: types.NewQuantityFromFloat64(0.05)},
			},
		},
	}, products, materials)
	require.NoError(t, err)

	// 4 cones at 0.50 plus 0.20 kg at 30.
	assert.True(t, pricing.MaterialsCost.Equal(types.MustMoney("8")), "materials: %s", pricing.MaterialsCost)
	// item cost 16 + materials 8
	assert.True(t, pricing.TotalCost.Equal(types.MustMoney("24")), "cost: %s", pricing.TotalCost)
	assert.True(t, pricing.TotalAmount.Equal(types.MustMoney("40")))
	assert.True(t, pricing.GrossProfit.Equal(types.MustMoney("16")))
	assert.True(t, pricing.NetProfit.Equal(types.MustMoney("13.6")), "net: %s", pricing.NetProfit)

	require.Len(t, pricing.Items[0].MaterialsUsed, 2)
	assert.Equal(t, types.NewQuantityFromInt(4), pricing.Items[0].MaterialsUsed[0].Quantity)
	assert.Equal(t, types.NewQuantityFromFloat64(0.20), pricing.Items[0].MaterialsUsed[1].Quantity)
}

func TestPriceValidatesStockEvenWhenPending(t *testing.T) {
	// Price has no notion of payment status: stock is always validated so a
	// pending sale can later be paid.
	p := newTestProduct("Picole", "5", "2", 2)
	products := map[id.ID]*product.Product{p.ID: p}

	_, err := sale.Price([]sale.ItemInput{
		{ProductID: p.ID, Quantity: 3},
	}, products, nil)
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))
}

func TestPriceInsufficientMaterial(t *testing.T) {
	p := newTestProduct("Acai", "15", "6", 10)
	mat := newTestMaterial("Granola", material.UnitKg, "20", 0.5)

	products := map[id.ID]*product.Product{p.ID: p}
	materials := map[id.ID]*material.Material{mat.ID: mat}

	_, err := sale.Price([]sale.ItemInput{
		{
			ProductID: p.ID,
			Quantity:  10,
			Materials: []sale.MaterialInput{
				{MaterialID: mat.ID, PerUnit: types.NewQuantityFromFloat64(0.10)},
			},
		},
	}, products, materials)
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))
}

func TestPriceUnknownProduct(t *testing.T) {
	_, err := sale.Price([]sale.ItemInput{
		{ProductID: id.New(), Quantity: 1},
	}, map[id.ID]*product.Product{}, nil)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestPriceRejectsNonPositiveQuantity(t *testing.T) {
	p := newTestProduct("Sorvete", "12", "5", 10)
	products := map[id.ID]*product.Product{p.ID: p}

	for _, qty := range []int64{0, -1} {
		_, err := sale.Price([]sale.ItemInput{
			{ProductID: p.ID, Quantity: qty},
		}, products, nil)
		require.Error(t, err)

		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeInvalidQuantity, appErr.Code)
	}
}

func TestPriceEmptyItems(t *testing.T) {
	_, err := sale.Price(nil, nil, nil)
	require.Error(t, err)
}

func TestResolvePaymentStatus(t *testing.T) {
	tests := []struct {
		name     string
		explicit sale.PaymentStatus
		method   sale.PaymentMethod
		want     sale.PaymentStatus
	}{
		{"explicit wins", sale.StatusPendente, sale.PaymentPix, sale.StatusPendente},
		{"explicit paid with pending method", sale.StatusPago, sale.PaymentPendente, sale.StatusPago},
		{"pending method defaults pending", "", sale.PaymentPendente, sale.StatusPendente},
		{"cash defaults paid", "", sale.PaymentDinheiro, sale.StatusPago},
		{"pix defaults paid", "", sale.PaymentPix, sale.StatusPago},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sale.ResolvePaymentStatus(tt.explicit, tt.method))
		})
	}
}
