package analytics

import (
	"sort"

	"tradejournal/internal/domain"
	"tradejournal/internal/position"
)

// ClassifyOpen returns the trades without a final close date, including those that
// were partially closed.
func ClassifyOpen(trades []*domain.Trade) []*domain.Trade {
	out := make([]*domain.Trade, 0, len(trades))
	for _, t := range trades {
		if t.IsOpen() {
			out = append(out, t)
		}
	}
	return out
}

// ClassifyClosed returns the fully closed trades. Every returned trade has a non-empty
// close date, close time and result.
func ClassifyClosed(trades []*domain.Trade) []*domain.Trade {
	out := make([]*domain.Trade, 0, len(trades))
	for _, t := range trades {
		if t.IsClosed() {
			out = append(out, t)
		}
	}
	return out
}

// SortClosedByRecency returns a copy of trades ordered by close date, most recent first,
// breaking ties by close time. Unparseable dates sort last. The sort is stable.
func SortClosedByRecency(trades []*domain.Trade) []*domain.Trade {
	out := append([]*domain.Trade(nil), trades...)
	sort.SliceStable(out, func(i, j int) bool {
		di, _ := domain.ParseDate(out[i].CloseDate)
		dj, _ := domain.ParseDate(out[j].CloseDate)
		if !di.Equal(dj) {
			return di.After(dj)
		}
		return domain.MinutesSinceMidnight(out[i].CloseTime) > domain.MinutesSinceMidnight(out[j].CloseTime)
	})
	return out
}

// OpenViews classifies and enriches the open trades.
func OpenViews(trades []*domain.Trade) []position.OpenTradeView {
	open := ClassifyOpen(trades)
	views := make([]position.OpenTradeView, 0, len(open))
	for _, t := range open {
		views = append(views, position.NewOpenTradeView(t))
	}
	return views
}

// ClosedViews classifies, sorts and enriches the closed trades.
func ClosedViews(trades []*domain.Trade) []position.ClosedTradeView {
	closed := SortClosedByRecency(ClassifyClosed(trades))
	views := make([]position.ClosedTradeView, 0, len(closed))
	for _, t := range closed {
		views = append(views, position.NewClosedTradeView(t))
	}
	return views
}

// HistoryTotal sums the realized result of every trade in the collection.
func HistoryTotal(trades []*domain.Trade) float64 {
	var total float64
	for _, t := range trades {
		total += position.TotalRealized(t)
	}
	return total
}
