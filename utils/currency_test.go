package utils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		amount   string
		currency string
		want     string
	}{
		{"15000.5", "RM", "RM 15,000.50"},
		{"0", "RM", "RM 0.00"},
		{"999.99", "", "999.99"},
		{"1234567.891", "RM", "RM 1,234,567.89"},
		{"-2500", "RM", "RM -2,500.00"},
	}

	for _, tc := range cases {
		amount, err := decimal.NewFromString(tc.amount)
		assert.NoError(t, err)
		assert.Equal(t, tc.want, FormatAmount(amount, tc.currency), tc.amount)
	}
}
