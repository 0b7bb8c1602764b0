package ports

import (
	"context"

	"tradejournal/internal/domain"
)

// TradeRepository defines the interface for storing and retrieving journal trades,
// including their partial close events.
type TradeRepository interface {
	// CreateTrade saves a new trade with its close events.
	// Returns ErrDuplicateEntry if the ID is already taken.
	CreateTrade(ctx context.Context, trade *domain.Trade) error
	// UpdateTrade replaces a stored trade and its close events.
	// Returns ErrNotFound if the trade does not exist.
	UpdateTrade(ctx context.Context, trade *domain.Trade) error
	// DeleteTrade removes a trade and its close events.
	// Returns ErrNotFound if the trade does not exist.
	DeleteTrade(ctx context.Context, id string) error
	// FindTradeByID retrieves a trade by ID. Returns nil, nil if not found.
	FindTradeByID(ctx context.Context, id string) (*domain.Trade, error)
	// FindAllTrades retrieves every trade, ordered by open date descending.
	FindAllTrades(ctx context.Context) ([]*domain.Trade, error)
}

// CapitalStore holds the user's starting capital as entered.
type CapitalStore interface {
	// GetCapital returns the stored capital, or "" if none was set.
	GetCapital(ctx context.Context) (string, error)
	// SetCapital inserts or updates the capital.
	SetCapital(ctx context.Context, capital string) error
}

// CustomFieldRegistry is the user-scoped dictionary of custom field names.
type CustomFieldRegistry interface {
	GetCustomFieldNames(ctx context.Context) (domain.CustomFieldNames, error)
	// AddCustomFieldName is idempotent: adding an existing name succeeds without change.
	AddCustomFieldName(ctx context.Context, kind domain.FieldKind, name string) error
	RemoveCustomFieldName(ctx context.Context, kind domain.FieldKind, name string) error
}

// StrategyRegistry stores strategies and their rule checklists.
type StrategyRegistry interface {
	CreateStrategy(ctx context.Context, strategy *domain.Strategy) error
	// FindStrategyByID returns nil, nil if not found.
	FindStrategyByID(ctx context.Context, id string) (*domain.Strategy, error)
	FindAllStrategies(ctx context.Context) ([]*domain.Strategy, error)
}
