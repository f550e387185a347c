package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantityConstruction(t *testing.T) {
	assert.Equal(t, Quantity(125), NewQuantityFromFloat64(1.25))
	assert.Equal(t, Quantity(130), NewQuantityFromFloat64(1.299), "rounds to 2 decimals")
	assert.Equal(t, Quantity(-250), NewQuantityFromFloat64(-2.5))
	assert.Equal(t, Quantity(300), NewQuantityFromInt(3))
	assert.Equal(t, Quantity(42), NewQuantityFromInt64Scaled(42))
}

func TestQuantityArithmetic(t *testing.T) {
	a := NewQuantityFromFloat64(1.25)
	b := NewQuantityFromFloat64(0.50)

	assert.Equal(t, NewQuantityFromFloat64(1.75), a.Add(b))
	assert.Equal(t, NewQuantityFromFloat64(0.75), a.Sub(b))
	assert.Equal(t, NewQuantityFromFloat64(3.75), a.MulInt(3))
	assert.Equal(t, NewQuantityFromFloat64(-1.25), a.Neg())
}

func TestQuantityFloor(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{2.70, 2},
		{2.00, 2},
		{0.99, 0},
		{-1.50, -1}, // toward zero
	}
	for _, tt := range tests {
		assert.Equal(t, NewQuantityFromFloat64(tt.want), NewQuantityFromFloat64(tt.in).Floor(),
			"Floor(%v)", tt.in)
	}

	assert.True(t, NewQuantityFromInt(5).IsWhole())
	assert.False(t, NewQuantityFromFloat64(5.01).IsWhole())
}

func TestQuantityString(t *testing.T) {
	assert.Equal(t, "1.25", NewQuantityFromFloat64(1.25).String())
	assert.Equal(t, "0.05", NewQuantityFromFloat64(0.05).String())
	assert.Equal(t, "-2.50", NewQuantityFromFloat64(-2.5).String())
	assert.Equal(t, "10.00", NewQuantityFromInt(10).String())
}

func TestQuantityDecimal(t *testing.T) {
	d := NewQuantityFromFloat64(1.25).Decimal()
	assert.Equal(t, "1.25", d.String())
}

func TestQuantityJSON(t *testing.T) {
	t.Run("marshal as number", func(t *testing.T) {
		data, err := json.Marshal(NewQuantityFromFloat64(1.25))
		require.NoError(t, err)
		assert.Equal(t, "1.25", string(data))
	})

	t.Run("unmarshal", func(t *testing.T) {
		tests := []struct {
			in   string
			want Quantity
		}{
			{`1.25`, NewQuantityFromFloat64(1.25)},
			{`"1.25"`, NewQuantityFromFloat64(1.25)},
			{`3`, NewQuantityFromInt(3)},
			{`0.5`, NewQuantityFromFloat64(0.5)},
			{`1.259`, NewQuantityFromFloat64(1.25)}, // extra digits truncated
			{`-2.5`, NewQuantityFromFloat64(-2.5)},
			{`1.5e1`, NewQuantityFromInt(15)},
			{`null`, 0},
		}
		for _, tt := range tests {
			var q Quantity
			require.NoError(t, json.Unmarshal([]byte(tt.in), &q), "input %s", tt.in)
			assert.Equal(t, tt.want, q, "input %s", tt.in)
		}
	})

	t.Run("unmarshal rejects garbage", func(t *testing.T) {
		var q Quantity
		assert.Error(t, json.Unmarshal([]byte(`"abc"`), &q))
		assert.Error(t, json.Unmarshal([]byte(`"1.2.3"`), &q))
	})
}

func TestMoneyRound2(t *testing.T) {
	assert.True(t, MustMoney("10.13").Equal(Round2(MustMoney("10.125"))), "half up")
	assert.True(t, MustMoney("10.12").Equal(Round2(MustMoney("10.124"))))
}
