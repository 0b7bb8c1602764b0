package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tradejournal/internal/domain"
	"tradejournal/internal/ports"
)

// --- StrategyRegistry Implementation ---

// CreateStrategy saves a new strategy with its rule checklists.
func (r *Repository) CreateStrategy(ctx context.Context, strategy *domain.Strategy) error {
	openRules, err := encodeJSON(nonNilRules(strategy.OpenPositionRules))
	if err != nil {
		return fmt.Errorf("failed to encode strategy %s: %w: %w", strategy.ID, ports.ErrInvalidRequest, err)
	}
	closeRules, err := encodeJSON(nonNilRules(strategy.ClosePositionRules))
	if err != nil {
		return fmt.Errorf("failed to encode strategy %s: %w: %w", strategy.ID, ports.ErrInvalidRequest, err)
	}

	const query = `
	INSERT INTO strategies (id, name, open_position_rules, close_position_rules)
	VALUES (?, ?, ?, ?)`

	if _, err := r.db.ExecContext(ctx, query, strategy.ID, strategy.Name, openRules, closeRules); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("strategy %s: %w", strategy.ID, ports.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to insert strategy %s: %w: %w", strategy.ID, dbError(err, ports.ErrQueryFailed), err)
	}
	r.logger.Debug(ctx, "Strategy created", map[string]interface{}{"strategyID": strategy.ID, "name": strategy.Name})
	return nil
}

// FindStrategyByID returns nil, nil when the strategy does not exist.
func (r *Repository) FindStrategyByID(ctx context.Context, id string) (*domain.Strategy, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, open_position_rules, close_position_rules FROM strategies WHERE id = ?`, id)
	s, err := scanStrategy(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query strategy by ID %s: %w: %w", id, dbError(err, ports.ErrQueryFailed), err)
	}
	return s, nil
}

// FindAllStrategies returns all strategies ordered by name.
func (r *Repository) FindAllStrategies(ctx context.Context) ([]*domain.Strategy, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, open_position_rules, close_position_rules FROM strategies ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query strategies: %w: %w", dbError(err, ports.ErrQueryFailed), err)
	}
	defer rows.Close()

	strategies := make([]*domain.Strategy, 0)
	for rows.Next() {
		s, err := scanStrategy(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan strategy: %w", err)
		}
		strategies = append(strategies, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating strategy rows: %w", err)
	}
	return strategies, nil
}

func scanStrategy(s scanner) (*domain.Strategy, error) {
	st := &domain.Strategy{}
	var openRules, closeRules string
	if err := s.Scan(&st.ID, &st.Name, &openRules, &closeRules); err != nil {
		return nil, err
	}
	if err := decodeJSON(openRules, &st.OpenPositionRules); err != nil {
		return nil, fmt.Errorf("decode open_position_rules: %w", err)
	}
	if err := decodeJSON(closeRules, &st.ClosePositionRules); err != nil {
		return nil, fmt.Errorf("decode close_position_rules: %w", err)
	}
	return st, nil
}
