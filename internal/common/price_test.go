package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePrice(t *testing.T) {
	cases := []struct {
		name     string
		price    float64
		tick     float64
		expected float64
	}{
		{"snaps to tick", 15.486, 0.01, 15.49},
		{"tiny tick preserves precision", 15.486765123653, 1e-11, 15.48676512365},
		{"already on tick", 100.5, 0.5, 100.5},
		{"rounds down below half", 100.24, 0.5, 100.0},
		{"rounds up above half", 100.26, 0.5, 100.5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizePrice(tc.price, tc.tick)
			require.NoError(t, err)
			assert.InDelta(t, tc.expected, got, 1e-9)
		})
	}
}

func TestNormalizePriceBankersRoundingOnExactHalf(t *testing.T) {
	// 100.25 / 0.5 = 200.5 ticks, an exact half: rounds to the even
	// neighbor (200, not 201).
	got, err := NormalizePrice(100.25, 0.5)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, got, 1e-9)

	// 100.75 / 0.5 = 201.5 ticks, exact half rounding up to the even 202.
	got, err = NormalizePrice(100.75, 0.5)
	require.NoError(t, err)
	assert.InDelta(t, 101.0, got, 1e-9)
}

func TestNormalizePriceRejectsBadInput(t *testing.T) {
	_, err := NormalizePrice(1.0, 0)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	_, err = NormalizePrice(1.0, -0.5)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}
