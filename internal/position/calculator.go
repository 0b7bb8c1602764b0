// Package position derives quantities, prices and realized results from a trade and its
// partial closes. All functions are pure and never fail: degenerate input yields a
// degenerate but defined value.
package position

import "tradejournal/internal/domain"

// HasPartialCloses reports whether the trade has at least one partial close.
func HasPartialCloses(t *domain.Trade) bool {
	return len(t.CloseEvents) > 0
}

// PartialQuantity returns the quantity sold across all partial closes.
func PartialQuantity(t *domain.Trade) float64 {
	var qty float64
	for _, ev := range t.CloseEvents {
		qty += ev.QuantitySold
	}
	return qty
}

// RemainingQuantity returns the quantity still held: the original quantity minus every
// partial close and the final close (see FinalQuantity). A negative value means the
// trade is over-sold and is returned as is so callers can flag it.
func RemainingQuantity(t *domain.Trade) float64 {
	return t.Quantity - ClosedQuantity(t)
}

// IsOverSold reports whether more was sold than the trade held.
func IsOverSold(t *domain.Trade) bool {
	return RemainingQuantity(t) < 0
}

// PartialCloseTotal sums the realized result of all partial closes.
func PartialCloseTotal(t *domain.Trade) float64 {
	var total float64
	for _, ev := range t.CloseEvents {
		total += ev.Result
	}
	return total
}

// TotalRealized returns the P/L booked so far. For a closed trade this is the partial
// closes plus the final result; for an open trade only the partial closes count.
// A closed trade whose result is not numeric contributes only its partials.
func TotalRealized(t *domain.Trade) float64 {
	total := PartialCloseTotal(t)
	if t.IsClosed() {
		if final, ok := t.FinalResult(); ok {
			total += final
		}
	}
	return total
}

// FinalQuantity returns the quantity sold by the final close. When it was not entered,
// a closed trade is assumed to have sold whatever the partial closes left.
func FinalQuantity(t *domain.Trade) float64 {
	if t.QuantitySold > 0 {
		return t.QuantitySold
	}
	if !t.IsClosed() {
		return 0
	}
	left := t.Quantity - PartialQuantity(t)
	if left < 0 {
		return 0
	}
	return left
}

// ClosedQuantity returns the total quantity sold by partial and final closes.
func ClosedQuantity(t *domain.Trade) float64 {
	return PartialQuantity(t) + FinalQuantity(t)
}

// WeightedAverageExitPrice returns the quantity-weighted average of every exit price.
// Without partial closes it is the final sell price. When nothing was sold the final
// sell price is returned if one exists; otherwise ok is false.
func WeightedAverageExitPrice(t *domain.Trade) (float64, bool) {
	if !HasPartialCloses(t) {
		return t.SellPrice, t.SellPrice > 0
	}

	var weighted, qty float64
	for _, ev := range t.CloseEvents {
		weighted += ev.SellPrice * ev.QuantitySold
		qty += ev.QuantitySold
	}
	if finalQty := FinalQuantity(t); finalQty > 0 && t.SellPrice > 0 {
		weighted += t.SellPrice * finalQty
		qty += finalQty
	}

	if qty == 0 {
		if t.SellPrice > 0 {
			return t.SellPrice, true
		}
		return 0, false
	}
	return weighted / qty, true
}
