package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradejournal/internal/domain"
)

func closedTrade(id, date, time, result string, events ...domain.CloseEvent) *domain.Trade {
	return &domain.Trade{
		ID:           id,
		SymbolName:   "AAPL",
		PositionType: domain.Buy,
		OpenDate:     "2024-03-01",
		EntryPrice:   100,
		Quantity:     10,
		CloseDate:    date,
		CloseTime:    time,
		Result:       result,
		CloseEvents:  events,
	}
}

func openTrade(id string, events ...domain.CloseEvent) *domain.Trade {
	return closedTrade(id, "", "", "", events...)
}

func TestAggregate_DayScenario(t *testing.T) {
	a := closedTrade("a", "2024-03-15", "16:00", "250")
	b := openTrade("b", domain.CloseEvent{ID: "e1", Date: "2024-03-15", QuantitySold: 2, Result: 50})

	got := Aggregate([]*domain.Trade{a, b}, domain.GroupByDay)
	assert.Equal(t, map[string]float64{"15-03-2024": 300}, got)
}

func TestAggregate_Keys(t *testing.T) {
	trades := []*domain.Trade{
		closedTrade("a", "2024-03-15", "16:00", "100"),
		closedTrade("b", "2024-11-02", "09:15", "-40",
			domain.CloseEvent{ID: "e1", Date: "2023-12-31", Result: 15},
		),
	}

	assert.Equal(t, map[string]float64{"15-03-2024": 100, "02-11-2024": -40, "31-12-2023": 15},
		Aggregate(trades, domain.GroupByDay))
	assert.Equal(t, map[string]float64{"3-2024": 100, "11-2024": -40, "12-2023": 15},
		Aggregate(trades, domain.GroupByMonth))
	assert.Equal(t, map[string]float64{"2024": 60, "2023": 15},
		Aggregate(trades, domain.GroupByYear))
	assert.Equal(t, map[string]float64{"total": 75},
		Aggregate(trades, domain.GroupByTotal))
}

func TestAggregate_Exclusions(t *testing.T) {
	trades := []*domain.Trade{
		openTrade("open-no-events"),
		closedTrade("zero-result", "2024-03-15", "10:00", "0"),
		closedTrade("bad-result", "2024-03-15", "10:00", "abc"),
		closedTrade("no-time", "2024-03-15", "", "90"),
		openTrade("undated-event", domain.CloseEvent{ID: "e1", Date: "", Result: 10}),
	}
	assert.Empty(t, Aggregate(trades, domain.GroupByTotal))
	assert.Empty(t, PerDayWinLoss(trades))
}

func TestAggregate_NoDoubleCounting(t *testing.T) {
	tr := closedTrade("a", "2024-03-15", "16:00", "30",
		domain.CloseEvent{ID: "e1", Date: "2024-03-15", Result: 20},
		domain.CloseEvent{ID: "e2", Date: "2024-03-16", Result: -5},
	)
	got := Aggregate([]*domain.Trade{tr}, domain.GroupByDay)
	assert.Equal(t, 50.0, got["15-03-2024"])
	assert.Equal(t, -5.0, got["16-03-2024"])
	assert.Len(t, Contributions([]*domain.Trade{tr}), 3)
}

func TestAggregate_MergeProperty(t *testing.T) {
	left := []*domain.Trade{
		closedTrade("a", "2024-03-15", "16:00", "250"),
		openTrade("b", domain.CloseEvent{ID: "e1", Date: "2024-04-01", Result: 50}),
	}
	right := []*domain.Trade{
		closedTrade("c", "2024-03-15", "09:00", "-75", domain.CloseEvent{ID: "e2", Date: "2024-03-14", Result: 10}),
		closedTrade("d", "2025-01-02", "11:00", "12.5"),
	}
	all := append(append([]*domain.Trade{}, left...), right...)

	for _, g := range []domain.GroupBy{domain.GroupByDay, domain.GroupByMonth, domain.GroupByYear, domain.GroupByTotal} {
		merged := MergeSummaries(Aggregate(left, g), Aggregate(right, g))
		assert.Equal(t, Aggregate(all, g), merged, string(g))

		reversed := []*domain.Trade{all[3], all[2], all[1], all[0]}
		assert.Equal(t, Aggregate(all, g), Aggregate(reversed, g), string(g))
	}
}

func TestPerDayWinLoss(t *testing.T) {
	trades := []*domain.Trade{
		closedTrade("a", "2024-03-15", "16:00", "-20",
			domain.CloseEvent{ID: "e1", Date: "2024-03-15", Result: 0},
			domain.CloseEvent{ID: "e2", Date: "2024-03-16", Result: 5},
		),
		closedTrade("b", "2024-03-15", "10:00", "40"),
	}
	got := PerDayWinLoss(trades)
	assert.Equal(t, DayStats{Result: 3, Win: 2, Lost: 1}, got["15-03-2024"])
	assert.Equal(t, DayStats{Result: 1, Win: 1, Lost: 0}, got["16-03-2024"])
}

func TestClosedItemsForDay(t *testing.T) {
	trades := []*domain.Trade{
		closedTrade("a", "2024-03-15", "16:00", "-20",
			domain.CloseEvent{ID: "e1", Date: "2024-03-15", QuantitySold: 4, Result: 12},
		),
		closedTrade("b", "2024-03-16", "10:00", "40"),
	}
	trades[0].QuantitySold = 6

	items := ClosedItemsForDay(trades, "15-03-2024")
	require.Len(t, items, 2)
	assert.Equal(t, "a-e1", items[0].ID)
	assert.Equal(t, 4.0, items[0].Quantity)
	assert.True(t, items[0].IsPartialClose)
	assert.Equal(t, "a", items[1].ID)
	assert.Equal(t, 6.0, items[1].Quantity)
	assert.Equal(t, -20.0, items[1].Result)
	assert.True(t, items[1].IsPartialClose)

	items = ClosedItemsForDay(trades, "16-03-2024")
	require.Len(t, items, 1)
	assert.Equal(t, 10.0, items[0].Quantity)
	assert.False(t, items[0].IsPartialClose)

	assert.Empty(t, ClosedItemsForDay(trades, "01-01-2020"))
}

func TestParseBucketKey(t *testing.T) {
	d, ok := ParseBucketKey("05-03-2024")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.Local), d)

	m, ok := ParseBucketKey("3-2024")
	require.True(t, ok)
	assert.Equal(t, time.March, m.Month())

	y, ok := ParseBucketKey("2024")
	require.True(t, ok)
	assert.Equal(t, 2024, y.Year())

	_, ok = ParseBucketKey(TotalKey)
	assert.False(t, ok)
}
