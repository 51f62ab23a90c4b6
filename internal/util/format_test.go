package util

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatMoneyShort(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   int64
		want string
	}{
		{"零", 0, "0"},
		{"十亿", 1_500_000_000, "1.5 Tỷ"},
		{"百万", 2_340_000, "2.3 Tr"},
		{"千", 12_400, "12 k"},
		{"千以下", 999, "999"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, FormatMoneyShort(decimal.NewFromInt(tt.in)))
		})
	}
}

func TestFormatAmount(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "1.234.567", FormatAmount(decimal.NewFromInt(1_234_567)))
	assert.Equal(t, "1.001", FormatAmount(decimal.RequireFromString("1000.6")))
	assert.Equal(t, "0", FormatAmount(decimal.Zero))
}

func TestFormatPercent(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "119.7%", FormatPercent(119.7))
	assert.Equal(t, "0%", FormatPercent(0))
	assert.Equal(t, "545%", FormatPercent(545))
}
