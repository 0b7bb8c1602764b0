package position

import (
	"tradejournal/internal/domain"
)

// LedgerEntry is one exit of a trade. The final close of a trade with partials is
// represented as a synthetic entry flagged Final.
type LedgerEntry struct {
	domain.CloseEvent
	Final bool `json:"isFinal"`
}

// OpenTradeView is an open trade enriched with its derived position figures.
type OpenTradeView struct {
	Trade             *domain.Trade `json:"trade"`
	RemainingQuantity float64       `json:"remainingQuantity"`
	PartialCloseTotal float64       `json:"partialCloseTotal"`
	HasPartialCloses  bool          `json:"hasPartialCloses"`
	OverSold          bool          `json:"overSold"`
}

// ClosedTradeView is a closed trade enriched with totals over all of its exits.
type ClosedTradeView struct {
	Trade            *domain.Trade `json:"trade"`
	TotalQuantity    float64       `json:"totalQuantity"`
	TotalResult      float64       `json:"totalResult"`
	AverageExitPrice float64       `json:"averageExitPrice"`
	HasPartialCloses bool          `json:"hasPartialCloses"`
	Ledger           []LedgerEntry `json:"ledger,omitempty"`
}

// NewOpenTradeView derives the figures shown for an open trade.
func NewOpenTradeView(t *domain.Trade) OpenTradeView {
	remaining := RemainingQuantity(t)
	return OpenTradeView{
		Trade:             t,
		RemainingQuantity: remaining,
		PartialCloseTotal: PartialCloseTotal(t),
		HasPartialCloses:  HasPartialCloses(t),
		OverSold:          remaining < 0,
	}
}

// NewClosedTradeView derives the figures shown for a closed trade.
func NewClosedTradeView(t *domain.Trade) ClosedTradeView {
	avg, _ := WeightedAverageExitPrice(t)
	v := ClosedTradeView{
		Trade:            t,
		TotalResult:      TotalRealized(t),
		AverageExitPrice: avg,
		HasPartialCloses: HasPartialCloses(t),
	}
	if !v.HasPartialCloses {
		v.TotalQuantity = FinalQuantity(t)
		return v
	}
	v.TotalQuantity = ClosedQuantity(t)
	v.Ledger = Ledger(t)
	return v
}

// Ledger lists the partial closes in stored order followed by the final close.
func Ledger(t *domain.Trade) []LedgerEntry {
	entries := make([]LedgerEntry, 0, len(t.CloseEvents)+1)
	for _, ev := range t.CloseEvents {
		entries = append(entries, LedgerEntry{CloseEvent: ev})
	}
	if !t.IsClosed() {
		return entries
	}
	final, _ := t.FinalResult()
	entries = append(entries, LedgerEntry{
		CloseEvent: domain.CloseEvent{
			ID:           t.ID + "-final",
			Date:         t.CloseDate,
			Time:         t.CloseTime,
			QuantitySold: FinalQuantity(t),
			SellPrice:    t.SellPrice,
			Result:       final,
		},
		Final: true,
	})
	return entries
}
