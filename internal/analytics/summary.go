// Package analytics reduces collections of trades into calendar summaries, win/loss
// counts and ordered history views. Every function only reads its input.
package analytics

import (
	"fmt"
	"time"

	"tradejournal/internal/domain"
)

// TotalKey is the single bucket used when grouping by total.
const TotalKey = "total"

// Contribution is one realized result booked on a date: either a partial close or the
// final close of a trade.
type Contribution struct {
	TradeID string
	EventID string // empty for a final close
	Date    time.Time
	Result  float64
	Partial bool
}

// Contributions lists every realized result in the collection. Partial closes need a
// parseable date; a final close is included only when the trade is closed and its result
// is a finite, non-zero number. A trade's partials and its final close are always
// separate contributions.
func Contributions(trades []*domain.Trade) []Contribution {
	out := make([]Contribution, 0, len(trades))
	for _, t := range trades {
		for _, ev := range t.CloseEvents {
			d, ok := domain.ParseDate(ev.Date)
			if !ok {
				continue
			}
			out = append(out, Contribution{TradeID: t.ID, EventID: ev.ID, Date: d, Result: ev.Result, Partial: true})
		}
		if !t.IsClosed() {
			continue
		}
		result, ok := t.FinalResult()
		if !ok || result == 0 {
			continue
		}
		d, ok := domain.ParseDate(t.CloseDate)
		if !ok {
			continue
		}
		out = append(out, Contribution{TradeID: t.ID, Date: d, Result: result})
	}
	return out
}

// BucketKey formats a date for the given grouping: DD-MM-YYYY, M-YYYY, YYYY or "total".
func BucketKey(d time.Time, groupBy domain.GroupBy) string {
	switch groupBy {
	case domain.GroupByDay:
		return d.Format(domain.DayKeyLayout)
	case domain.GroupByMonth:
		return fmt.Sprintf("%d-%d", int(d.Month()), d.Year())
	case domain.GroupByYear:
		return fmt.Sprintf("%d", d.Year())
	default:
		return TotalKey
	}
}

// ParseBucketKey turns a day, month or year key back into the first instant of its period.
func ParseBucketKey(key string) (time.Time, bool) {
	for _, layout := range []string{domain.DayKeyLayout, "1-2006", "2006"} {
		if t, err := time.ParseInLocation(layout, key, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Aggregate sums realized results per bucket.
func Aggregate(trades []*domain.Trade, groupBy domain.GroupBy) map[string]float64 {
	out := make(map[string]float64)
	for _, c := range Contributions(trades) {
		out[BucketKey(c.Date, groupBy)] += c.Result
	}
	return out
}

// MergeSummaries adds the buckets of b into a copy of a.
func MergeSummaries(a, b map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] += v
	}
	return out
}

// DayStats counts the realized results booked on one day. A zero result counts as a win.
type DayStats struct {
	Result int `json:"result"`
	Win    int `json:"win"`
	Lost   int `json:"lost"`
}

// PerDayWinLoss counts realized results per DD-MM-YYYY day.
func PerDayWinLoss(trades []*domain.Trade) map[string]DayStats {
	out := make(map[string]DayStats)
	for _, c := range Contributions(trades) {
		key := BucketKey(c.Date, domain.GroupByDay)
		s := out[key]
		s.Result++
		if c.Result >= 0 {
			s.Win++
		} else {
			s.Lost++
		}
		out[key] = s
	}
	return out
}

// DayItem is a close (partial or final) shown in a calendar day's trade list.
type DayItem struct {
	ID             string              `json:"id"`
	SymbolName     string              `json:"symbolName"`
	PositionType   domain.PositionType `json:"positionType"`
	Quantity       float64             `json:"quantity"`
	EntryPrice     float64             `json:"entryPrice"`
	Result         float64             `json:"result"`
	IsPartialClose bool                `json:"isPartialClose"`
	TradeID        string              `json:"tradeId"`
}

// ClosedItemsForDay lists the partial and final closes booked on dayKey (DD-MM-YYYY).
// A final close of a trade that had partials is flagged as partial too.
func ClosedItemsForDay(trades []*domain.Trade, dayKey string) []DayItem {
	items := make([]DayItem, 0)
	for _, t := range trades {
		for _, ev := range t.CloseEvents {
			d, ok := domain.ParseDate(ev.Date)
			if !ok || d.Format(domain.DayKeyLayout) != dayKey {
				continue
			}
			items = append(items, DayItem{
				ID:             t.ID + "-" + ev.ID,
				SymbolName:     t.SymbolName,
				PositionType:   t.PositionType,
				Quantity:       ev.QuantitySold,
				EntryPrice:     t.EntryPrice,
				Result:         ev.Result,
				IsPartialClose: true,
				TradeID:        t.ID,
			})
		}

		if !t.IsClosed() {
			continue
		}
		d, ok := domain.ParseDate(t.CloseDate)
		if !ok || d.Format(domain.DayKeyLayout) != dayKey {
			continue
		}
		result, ok := t.FinalResult()
		if !ok || result == 0 {
			continue
		}
		qty := t.QuantitySold
		if qty == 0 {
			qty = t.Quantity
		}
		items = append(items, DayItem{
			ID:             t.ID,
			SymbolName:     t.SymbolName,
			PositionType:   t.PositionType,
			Quantity:       qty,
			EntryPrice:     t.EntryPrice,
			Result:         result,
			IsPartialClose: len(t.CloseEvents) > 0,
			TradeID:        t.ID,
		})
	}
	return items
}
