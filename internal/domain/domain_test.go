package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrade_IsClosed(t *testing.T) {
	tests := []struct {
		name       string
		trade      Trade
		wantClosed bool
		wantOpen   bool
	}{
		{"no close fields", Trade{}, false, true},
		{"all three set", Trade{CloseDate: "2024-03-15", CloseTime: "10:30", Result: "250"}, true, false},
		{"missing result", Trade{CloseDate: "2024-03-15", CloseTime: "10:30"}, false, false},
		{"missing time", Trade{CloseDate: "2024-03-15", Result: "1"}, false, false},
		{"whitespace date", Trade{CloseDate: "  ", CloseTime: "10:30", Result: "1"}, false, true},
		{"partials only", Trade{CloseEvents: []CloseEvent{{ID: "e1", QuantitySold: 1}}}, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantClosed, tt.trade.IsClosed())
			assert.Equal(t, tt.wantOpen, tt.trade.IsOpen())
			assert.False(t, tt.trade.IsClosed() && tt.trade.IsOpen())
		})
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"250", 250, true},
		{" -12.5 ", -12.5, true},
		{"", 0, false},
		{"abc", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"1e3", 1000, true},
	}
	for _, tt := range tests {
		got, ok := ParseNumber(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseDate(t *testing.T) {
	d, ok := ParseDate("2024-03-15")
	require.True(t, ok)
	assert.Equal(t, "15-03-2024", d.Format(DayKeyLayout))

	d, ok = ParseDate("15-03-2024")
	require.True(t, ok)
	assert.Equal(t, time.March, d.Month())

	local := time.Date(2024, 3, 15, 23, 0, 0, 0, time.Local)
	d, ok = ParseDate(local.Format(time.RFC3339))
	require.True(t, ok)
	assert.Equal(t, "15-03-2024", d.Format(DayKeyLayout))

	_, ok = ParseDate("")
	assert.False(t, ok)
	_, ok = ParseDate("not a date")
	assert.False(t, ok)
}

func TestMinutesSinceMidnight(t *testing.T) {
	assert.Equal(t, 630, MinutesSinceMidnight("10:30"))
	assert.Equal(t, 600, MinutesSinceMidnight("10"))
	assert.Equal(t, 30, MinutesSinceMidnight("xx:30"))
	assert.Equal(t, 0, MinutesSinceMidnight(""))
	assert.Equal(t, 0, MinutesSinceMidnight(":"))
}

func TestValidateOpen(t *testing.T) {
	valid := &Trade{OpenDate: "2024-03-15", SymbolName: "AAPL", PositionType: Buy, EntryPrice: 100, Quantity: 10}
	assert.NoError(t, ValidateOpen(valid))

	err := ValidateOpen(&Trade{PositionType: "long", Rating: 9})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	for _, field := range []string{"openDate", "symbolName", "positionType", "entryPrice", "quantity", "rating"} {
		assert.Contains(t, verr.Fields, field)
	}
}

func TestValidateCloseEvent(t *testing.T) {
	ev := CloseEvent{Date: "2024-03-15", Time: "10:00", QuantitySold: 5, SellPrice: 110, Result: 50}
	assert.NoError(t, ValidateCloseEvent(ev, 10))

	ev.QuantitySold = 11
	err := ValidateCloseEvent(ev, 10)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields["quantitySold"], "exceeds remaining")
}

func TestValidateFinalClose(t *testing.T) {
	assert.NoError(t, ValidateFinalClose(FinalClose{CloseDate: "2024-03-15", CloseTime: "16:00", Result: "-20"}))

	err := ValidateFinalClose(FinalClose{CloseDate: "2024-03-15", Result: "x"})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "closeTime")
	assert.Contains(t, verr.Fields, "result")
}

func TestTradePatch_Apply(t *testing.T) {
	orig := &Trade{
		ID:               "t1",
		SymbolName:       "AAPL",
		Quantity:         10,
		OpenCustomFields: map[string]string{"setup": "breakout"},
		CloseEvents:      []CloseEvent{{ID: "e1", QuantitySold: 2}},
	}
	notes := "scaled out early"
	qty := 12.0
	fields := map[string]string{"setup": "pullback"}

	got := TradePatch{Notes: &notes, Quantity: &qty, OpenCustomFields: &fields}.Apply(orig)

	assert.Equal(t, "scaled out early", got.Notes)
	assert.Equal(t, 12.0, got.Quantity)
	assert.Equal(t, "pullback", got.OpenCustomFields["setup"])
	assert.Equal(t, "AAPL", got.SymbolName)
	// original untouched
	assert.Equal(t, 10.0, orig.Quantity)
	assert.Equal(t, "breakout", orig.OpenCustomFields["setup"])

	got.CloseEvents[0].QuantitySold = 99
	assert.Equal(t, 2.0, orig.CloseEvents[0].QuantitySold)
}

func TestFinalClose_Apply(t *testing.T) {
	orig := &Trade{ID: "t1", Quantity: 10}
	got := FinalClose{CloseDate: "2024-03-15", CloseTime: "16:00", SellPrice: 120, QuantitySold: 10, Result: "200"}.Apply(orig)
	assert.True(t, got.IsClosed())
	assert.False(t, orig.IsClosed())
}

func TestStrategy_TotalRules(t *testing.T) {
	s := Strategy{OpenPositionRules: []Rule{{ID: "a"}, {ID: "b"}}, ClosePositionRules: []Rule{{ID: "c"}}}
	assert.Equal(t, 3, s.TotalRules())
	assert.Equal(t, 0, (&Strategy{}).TotalRules())
}

func TestCustomFieldNames_ForSet(t *testing.T) {
	var n CustomFieldNames
	n.Set(FieldKindOpen, []string{"setup"})
	n.Set(FieldKindClose, []string{"exit reason", "mood"})

	assert.Equal(t, []string{"setup"}, n.For(FieldKindOpen))
	assert.Equal(t, []string{"exit reason", "mood"}, n.For(FieldKindClose))
}
