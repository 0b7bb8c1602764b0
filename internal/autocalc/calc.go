// Package autocalc keeps a trade's result field in sync with its prices, quantity and
// direction until the user overrides it.
package autocalc

import (
	"strings"

	"github.com/shopspring/decimal"

	"tradejournal/internal/domain"
)

// Inputs are the raw form values the result depends on.
type Inputs struct {
	EntryPrice   string              `json:"entryPrice"`
	SellPrice    string              `json:"sellPrice"`
	QuantitySold string              `json:"quantitySold"`
	Quantity     string              `json:"quantity"`
	PositionType domain.PositionType `json:"positionType"`
}

// Compute returns (exit − entry) × quantity, negated for sell positions, formatted with
// two decimals. QuantitySold is used when present, Quantity otherwise. ok is false when
// a price or the quantity is missing or not a number.
func Compute(in Inputs) (string, bool) {
	entry, ok := toDecimal(in.EntryPrice)
	if !ok {
		return "", false
	}
	exit, ok := toDecimal(in.SellPrice)
	if !ok {
		return "", false
	}
	qty, ok := toDecimal(in.QuantitySold)
	if !ok {
		if qty, ok = toDecimal(in.Quantity); !ok {
			return "", false
		}
	}

	result := exit.Sub(entry).Mul(qty)
	if in.PositionType != domain.Buy {
		result = result.Neg()
	}
	return result.StringFixed(2), true
}

func toDecimal(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
