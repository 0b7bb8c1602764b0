package utils

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/shopspring/decimal"

	"tradejournal/internal/position"
)

var closedTradeHeader = []string{
	"id", "symbol", "position_type", "open_date", "open_time", "close_date", "close_time",
	"entry_price", "avg_exit_price", "quantity", "partial_closes", "result", "rating", "strategy_id",
}

// WriteClosedTradesCSV writes the closed history, one row per trade, results rounded to cents.
func WriteClosedTradesCSV(w io.Writer, views []position.ClosedTradeView) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(closedTradeHeader); err != nil {
		return err
	}

	for _, v := range views {
		t := v.Trade
		if err := writer.Write([]string{
			t.ID,
			t.SymbolName,
			string(t.PositionType),
			t.OpenDate,
			t.OpenTime,
			t.CloseDate,
			t.CloseTime,
			formatFloat(t.EntryPrice),
			money(v.AverageExitPrice),
			formatFloat(v.TotalQuantity),
			strconv.Itoa(len(t.CloseEvents)),
			money(v.TotalResult),
			strconv.Itoa(t.Rating),
			t.StrategyID,
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteClosedTradesCSVFile writes the closed history to filename.
func WriteClosedTradesCSVFile(views []position.ClosedTradeView, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteClosedTradesCSV(file, views)
}

func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
