package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRateForTierBoundaries(t *testing.T) {
	cases := []struct {
		amount float64
		rate   float64
	}{
		{0.01, 3.00},
		{49999.99, 3.00},
		{50000, 2.00},
		{75000, 2.00},
		{99999.99, 2.00},
		{100000, 1.00},
		{250000, 1.00},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.rate, RateFor(tc.amount), "amount %v", tc.amount)
	}
}

func TestAmountFor(t *testing.T) {
	assert.Equal(t, 1500.00, AmountFor(75000))
	assert.Equal(t, 1000.00, AmountFor(100000))
	assert.Equal(t, 1499.9997, AmountFor(49999.99))
}
