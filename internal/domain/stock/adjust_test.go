package stock

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gelateria/internal/core/types"
)

func TestAdjust(t *testing.T) {
	tests := []struct {
		name    string
		current float64
		delta   float64
		kind    UnitKind
		want    float64
	}{
		{"continuous add", 1.25, 0.50, Continuous, 1.75},
		{"continuous subtract", 5.00, -2.30, Continuous, 2.70},
		{"continuous rounding", 0.10, 0.204, Continuous, 0.30},
		{"floor at zero", 2.00, -3.50, Continuous, 0},
		{"exact zero", 2.50, -2.50, Continuous, 0},
		{"discrete add", 5, 3, Discrete, 8},
		{"discrete fractional delta floored", 5, 2.70, Discrete, 7},
		{"discrete deduction floored", 5, -2.70, Discrete, 3},
		{"discrete floor at zero", 1, -4, Discrete, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Adjust(
				types.NewQuantityFromFloat64(tt.current),
				types.NewQuantityFromFloat64(tt.delta),
				tt.kind,
			)
			assert.Equal(t, types.NewQuantityFromFloat64(tt.want), got)
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t,
		types.NewQuantityFromInt(2),
		Normalize(types.NewQuantityFromFloat64(2.7), Discrete),
		"discrete quantities lose their fractional part",
	)
	assert.Equal(t,
		types.NewQuantityFromFloat64(2.7),
		Normalize(types.NewQuantityFromFloat64(2.7), Continuous),
	)
}

func TestSufficient(t *testing.T) {
	assert.True(t, Sufficient(types.NewQuantityFromFloat64(5), types.NewQuantityFromFloat64(5)))
	assert.True(t, Sufficient(types.NewQuantityFromFloat64(5.01), types.NewQuantityFromFloat64(5)))
	assert.False(t, Sufficient(types.NewQuantityFromFloat64(4.99), types.NewQuantityFromFloat64(5)))
}
