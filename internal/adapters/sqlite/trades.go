package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tradejournal/internal/domain"
	"tradejournal/internal/ports"
)

const tradeColumns = `id, symbol_name, position_type, open_date, open_time, close_date, close_time,
	entry_price, sell_price, quantity, quantity_sold, result, rating, notes, strategy_id,
	applied_open_rules, applied_close_rules, open_custom_fields, close_custom_fields`

// --- TradeRepository Implementation ---

// CreateTrade saves a new trade and its close events in one transaction.
func (r *Repository) CreateTrade(ctx context.Context, trade *domain.Trade) error {
	args, err := tradeArgs(trade)
	if err != nil {
		return fmt.Errorf("failed to encode trade %s: %w: %w", trade.ID, ports.ErrInvalidRequest, err)
	}

	return r.withTx(ctx, func(tx *sql.Tx) error {
		const query = `
		INSERT INTO trades (` + tradeColumns + `, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

		if _, err := tx.ExecContext(ctx, query, append(args, time.Now().UTC())...); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("trade %s: %w", trade.ID, ports.ErrDuplicateEntry)
			}
			return fmt.Errorf("failed to insert trade %s: %w: %w", trade.ID, dbError(err, ports.ErrQueryFailed), err)
		}
		if err := insertCloseEvents(ctx, tx, trade); err != nil {
			return err
		}
		r.logger.Debug(ctx, "Trade created", map[string]interface{}{"tradeID": trade.ID, "symbol": trade.SymbolName})
		return nil
	})
}

// UpdateTrade replaces a stored trade and its close events.
func (r *Repository) UpdateTrade(ctx context.Context, trade *domain.Trade) error {
	args, err := tradeArgs(trade)
	if err != nil {
		return fmt.Errorf("failed to encode trade %s: %w: %w", trade.ID, ports.ErrInvalidRequest, err)
	}

	return r.withTx(ctx, func(tx *sql.Tx) error {
		const query = `
		UPDATE trades
		SET symbol_name = ?, position_type = ?, open_date = ?, open_time = ?, close_date = ?, close_time = ?,
		    entry_price = ?, sell_price = ?, quantity = ?, quantity_sold = ?, result = ?, rating = ?, notes = ?,
		    strategy_id = ?, applied_open_rules = ?, applied_close_rules = ?, open_custom_fields = ?,
		    close_custom_fields = ?
		WHERE id = ?`

		// args[0] is the id; move it to the WHERE clause
		updateArgs := append(append([]interface{}{}, args[1:]...), args[0])
		result, err := tx.ExecContext(ctx, query, updateArgs...)
		if err != nil {
			return fmt.Errorf("failed to update trade %s: %w: %w", trade.ID, dbError(err, ports.ErrUpdateFailed), err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected for update trade %s: %w", trade.ID, err)
		}
		if rowsAffected == 0 {
			return fmt.Errorf("trade %s not found for update: %w", trade.ID, ports.ErrNotFound)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM close_events WHERE trade_id = ?`, trade.ID); err != nil {
			return fmt.Errorf("failed to clear close events of trade %s: %w: %w", trade.ID, dbError(err, ports.ErrUpdateFailed), err)
		}
		if err := insertCloseEvents(ctx, tx, trade); err != nil {
			return err
		}
		r.logger.Debug(ctx, "Trade updated", map[string]interface{}{"tradeID": trade.ID, "closed": trade.IsClosed()})
		return nil
	})
}

// DeleteTrade removes a trade; its close events are removed by the foreign key cascade.
func (r *Repository) DeleteTrade(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM trades WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete trade %s: %w: %w", id, dbError(err, ports.ErrDeleteFailed), err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for delete trade %s: %w", id, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("trade %s not found for delete: %w", id, ports.ErrNotFound)
	}
	r.logger.Debug(ctx, "Trade deleted", map[string]interface{}{"tradeID": id})
	return nil
}

// FindTradeByID retrieves a trade with its close events.
func (r *Repository) FindTradeByID(ctx context.Context, id string) (*domain.Trade, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+tradeColumns+` FROM trades WHERE id = ?`, id)
	trade, err := scanTrade(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.Debug(ctx, "Trade not found by ID", map[string]interface{}{"tradeID": id})
			return nil, nil // Not an error, just not found
		}
		return nil, fmt.Errorf("failed to query trade by ID %s: %w: %w", id, dbError(err, ports.ErrQueryFailed), err)
	}

	events, err := r.closeEvents(ctx, `WHERE trade_id = ?`, id)
	if err != nil {
		return nil, err
	}
	trade.CloseEvents = events[id]
	return trade, nil
}

// FindAllTrades retrieves every trade, most recently opened first.
func (r *Repository) FindAllTrades(ctx context.Context) ([]*domain.Trade, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+tradeColumns+` FROM trades
		ORDER BY open_date DESC, open_time DESC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query all trades: %w: %w", dbError(err, ports.ErrQueryFailed), err)
	}
	defer rows.Close()

	trades := make([]*domain.Trade, 0)
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade during FindAllTrades: %w", err)
		}
		trades = append(trades, trade)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trade rows: %w", err)
	}

	events, err := r.closeEvents(ctx, "")
	if err != nil {
		return nil, err
	}
	for _, t := range trades {
		t.CloseEvents = events[t.ID]
	}
	return trades, nil
}

// closeEvents loads close events grouped by trade id, each group in insertion order.
func (r *Repository) closeEvents(ctx context.Context, where string, args ...interface{}) (map[string][]domain.CloseEvent, error) {
	query := `SELECT trade_id, id, date, time, quantity_sold, sell_price, result FROM close_events ` +
		where + ` ORDER BY trade_id, seq`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query close events: %w: %w", dbError(err, ports.ErrQueryFailed), err)
	}
	defer rows.Close()

	out := make(map[string][]domain.CloseEvent)
	for rows.Next() {
		var tradeID string
		var ev domain.CloseEvent
		if err := rows.Scan(&tradeID, &ev.ID, &ev.Date, &ev.Time, &ev.QuantitySold, &ev.SellPrice, &ev.Result); err != nil {
			return nil, fmt.Errorf("failed to scan close event: %w", err)
		}
		out[tradeID] = append(out[tradeID], ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating close event rows: %w", err)
	}
	return out, nil
}

func insertCloseEvents(ctx context.Context, tx *sql.Tx, trade *domain.Trade) error {
	const query = `
	INSERT INTO close_events (trade_id, id, seq, date, time, quantity_sold, sell_price, result)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	for i, ev := range trade.CloseEvents {
		if _, err := tx.ExecContext(ctx, query, trade.ID, ev.ID, i, ev.Date, ev.Time, ev.QuantitySold, ev.SellPrice, ev.Result); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("close event %s of trade %s: %w", ev.ID, trade.ID, ports.ErrDuplicateEntry)
			}
			return fmt.Errorf("failed to insert close event %s of trade %s: %w: %w", ev.ID, trade.ID, dbError(err, ports.ErrQueryFailed), err)
		}
	}
	return nil
}

func (r *Repository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w: %w", dbError(err, ports.ErrDBConnection), err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			r.logger.Warn(ctx, "Rollback failed", map[string]interface{}{"error": rbErr.Error()})
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// tradeArgs returns the column values in tradeColumns order.
func tradeArgs(t *domain.Trade) ([]interface{}, error) {
	openRules, err := encodeJSON(nonNilRules(t.AppliedOpenRules))
	if err != nil {
		return nil, err
	}
	closeRules, err := encodeJSON(nonNilRules(t.AppliedCloseRules))
	if err != nil {
		return nil, err
	}
	openFields, err := encodeJSON(nonNilFields(t.OpenCustomFields))
	if err != nil {
		return nil, err
	}
	closeFields, err := encodeJSON(nonNilFields(t.CloseCustomFields))
	if err != nil {
		return nil, err
	}

	var strategyID sql.NullString
	if t.StrategyID != "" {
		strategyID = sql.NullString{String: t.StrategyID, Valid: true}
	}

	return []interface{}{
		t.ID, t.SymbolName, string(t.PositionType), t.OpenDate, t.OpenTime, t.CloseDate, t.CloseTime,
		t.EntryPrice, t.SellPrice, t.Quantity, t.QuantitySold, t.Result, t.Rating, t.Notes, strategyID,
		openRules, closeRules, openFields, closeFields,
	}, nil
}

// scanTrade scans a row into a domain.Trade struct (without close events).
func scanTrade(s scanner) (*domain.Trade, error) {
	t := &domain.Trade{}
	var positionType string
	var strategyID sql.NullString
	var openRules, closeRules, openFields, closeFields string
	err := s.Scan(
		&t.ID, &t.SymbolName, &positionType, &t.OpenDate, &t.OpenTime, &t.CloseDate, &t.CloseTime,
		&t.EntryPrice, &t.SellPrice, &t.Quantity, &t.QuantitySold, &t.Result, &t.Rating, &t.Notes, &strategyID,
		&openRules, &closeRules, &openFields, &closeFields)
	if err != nil {
		return nil, err // Handle sql.ErrNoRows in the caller
	}
	t.PositionType = domain.PositionType(positionType)
	if strategyID.Valid {
		t.StrategyID = strategyID.String
	}
	if err := decodeJSON(openRules, &t.AppliedOpenRules); err != nil {
		return nil, fmt.Errorf("decode applied_open_rules: %w", err)
	}
	if err := decodeJSON(closeRules, &t.AppliedCloseRules); err != nil {
		return nil, fmt.Errorf("decode applied_close_rules: %w", err)
	}
	if err := decodeJSON(openFields, &t.OpenCustomFields); err != nil {
		return nil, fmt.Errorf("decode open_custom_fields: %w", err)
	}
	if err := decodeJSON(closeFields, &t.CloseCustomFields); err != nil {
		return nil, fmt.Errorf("decode close_custom_fields: %w", err)
	}
	return t, nil
}

func nonNilRules(rules []domain.Rule) []domain.Rule {
	if rules == nil {
		return []domain.Rule{}
	}
	return rules
}

func nonNilFields(fields map[string]string) map[string]string {
	if fields == nil {
		return map[string]string{}
	}
	return fields
}
