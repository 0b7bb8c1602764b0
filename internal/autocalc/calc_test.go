package autocalc

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tradejournal/internal/domain"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		name   string
		in     Inputs
		want   string
		wantOK bool
	}{
		{
			name:   "buy profit",
			in:     Inputs{EntryPrice: "100", SellPrice: "150", QuantitySold: "10", Quantity: "10", PositionType: domain.Buy},
			want:   "500.00",
			wantOK: true,
		},
		{
			name:   "sell mirrors buy",
			in:     Inputs{EntryPrice: "100", SellPrice: "150", QuantitySold: "10", Quantity: "10", PositionType: domain.Sell},
			want:   "-500.00",
			wantOK: true,
		},
		{
			name:   "falls back to quantity",
			in:     Inputs{EntryPrice: "10.5", SellPrice: "10", QuantitySold: " ", Quantity: "3", PositionType: domain.Buy},
			want:   "-1.50",
			wantOK: true,
		},
		{
			name:   "quantity sold wins over quantity",
			in:     Inputs{EntryPrice: "20", SellPrice: "25", QuantitySold: "2", Quantity: "100", PositionType: domain.Buy},
			want:   "10.00",
			wantOK: true,
		},
		{
			name:   "rounds to two decimals",
			in:     Inputs{EntryPrice: "0.1", SellPrice: "0.2", Quantity: "3.333", PositionType: domain.Buy},
			want:   "0.33",
			wantOK: true,
		},
		{
			name:   "no change is zero",
			in:     Inputs{EntryPrice: "5", SellPrice: "5", Quantity: "3", PositionType: domain.Sell},
			want:   "0.00",
			wantOK: true,
		},
		{
			name: "missing exit price",
			in:   Inputs{EntryPrice: "100", Quantity: "10", PositionType: domain.Buy},
		},
		{
			name: "non-numeric quantity",
			in:   Inputs{EntryPrice: "100", SellPrice: "110", Quantity: "ten", PositionType: domain.Buy},
		},
		{
			name: "non-numeric entry",
			in:   Inputs{EntryPrice: "$100", SellPrice: "110", Quantity: "1", PositionType: domain.Buy},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Compute(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
