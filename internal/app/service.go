package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"tradejournal/config"
	"tradejournal/internal/analytics"
	"tradejournal/internal/autocalc"
	"tradejournal/internal/domain"
	"tradejournal/internal/ports"
	"tradejournal/internal/position"
)

// JournalService orchestrates the trade journal: it keeps the TradeBook in sync with
// persistence and computes every derived view from it.
type JournalService struct {
	cfg        *config.Config
	logger     ports.Logger
	tradeRepo  ports.TradeRepository
	capital    ports.CapitalStore
	fields     ports.CustomFieldRegistry
	strategies ports.StrategyRegistry
	book       *TradeBook
	newID      func() string

	mu sync.Mutex // serialises mutations so the book and the store agree
}

// Option configures a JournalService.
type Option func(*JournalService)

// WithIDGenerator overrides the uuid-based identifier generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *JournalService) { s.newID = fn }
}

// NewJournalService creates a new application service instance.
func NewJournalService(
	cfg *config.Config,
	logger ports.Logger,
	tradeRepo ports.TradeRepository,
	capital ports.CapitalStore,
	fields ports.CustomFieldRegistry,
	strategies ports.StrategyRegistry,
	opts ...Option,
) (*JournalService, error) {
	if cfg == nil || logger == nil || tradeRepo == nil || capital == nil || fields == nil || strategies == nil {
		return nil, fmt.Errorf("missing required dependencies for JournalService")
	}
	if cfg.AutoCalcDebounce < 0 {
		return nil, fmt.Errorf("configuration AutoCalcDebounce cannot be negative")
	}

	s := &JournalService{
		cfg:        cfg,
		logger:     logger,
		tradeRepo:  tradeRepo,
		capital:    capital,
		fields:     fields,
		strategies: strategies,
		book:       NewTradeBook(),
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Load replaces the in-memory book with the persisted trades.
func (s *JournalService) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	trades, err := s.tradeRepo.FindAllTrades(ctx)
	if err != nil {
		s.logger.Error(ctx, err, "Failed to load trades")
		return fmt.Errorf("failed to load trades: %w", err)
	}
	s.book.Replace(trades)
	s.logger.Info(ctx, "Trade book loaded", map[string]interface{}{"trades": len(trades)})
	return nil
}

// --- Trades ---

// Trades returns every trade in the book.
func (s *JournalService) Trades() []*domain.Trade {
	return s.book.All()
}

// Trade returns one trade or ports.ErrNotFound.
func (s *JournalService) Trade(id string) (*domain.Trade, error) {
	t, ok := s.book.Get(id)
	if !ok {
		return nil, fmt.Errorf("trade %s: %w", id, ports.ErrNotFound)
	}
	return t, nil
}

// CreateTrade validates and stores a new trade. Missing trade and close event IDs are generated.
func (s *JournalService) CreateTrade(ctx context.Context, trade *domain.Trade) (*domain.Trade, error) {
	t := trade.Clone()
	t.SymbolName = strings.ToUpper(strings.TrimSpace(t.SymbolName))
	if t.ID == "" {
		t.ID = s.newID()
	}
	for i := range t.CloseEvents {
		if t.CloseEvents[i].ID == "" {
			t.CloseEvents[i].ID = s.newID()
		}
	}
	if err := domain.ValidateOpen(t); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.tradeRepo.CreateTrade(ctx, t); err != nil {
		s.logger.Error(ctx, err, "Failed to create trade", map[string]interface{}{"tradeID": t.ID})
		return nil, fmt.Errorf("failed to create trade: %w", err)
	}
	s.book.Put(t)
	s.logger.Info(ctx, "Trade recorded", map[string]interface{}{
		"tradeID":      t.ID,
		"symbol":       t.SymbolName,
		"positionType": string(t.PositionType),
		"quantity":     t.Quantity,
	})
	return t.Clone(), nil
}

// UpdateTrade applies patch to the trade with id and persists the result.
func (s *JournalService) UpdateTrade(ctx context.Context, id string, patch domain.TradePatch) (*domain.Trade, error) {
	return s.mutate(ctx, id, "Trade updated", func(t *domain.Trade) (*domain.Trade, error) {
		updated := patch.Apply(t)
		if err := domain.ValidateOpen(updated); err != nil {
			return nil, err
		}
		return updated, nil
	})
}

// AddCloseEvent records a partial close. The quantity sold cannot exceed the quantity
// still held and a fully closed trade takes no more partials.
func (s *JournalService) AddCloseEvent(ctx context.Context, id string, ev domain.CloseEvent) (*domain.Trade, error) {
	return s.mutate(ctx, id, "Partial close recorded", func(t *domain.Trade) (*domain.Trade, error) {
		if t.IsClosed() {
			return nil, &domain.ValidationError{Fields: map[string]string{"trade": "trade is already closed"}}
		}
		if err := domain.ValidateCloseEvent(ev, position.RemainingQuantity(t)); err != nil {
			return nil, err
		}
		if ev.ID == "" {
			ev.ID = s.newID()
		}
		updated := t.Clone()
		updated.CloseEvents = append(updated.CloseEvents, ev)
		return updated, nil
	})
}

// CloseTrade marks a trade as fully closed.
func (s *JournalService) CloseTrade(ctx context.Context, id string, fc domain.FinalClose) (*domain.Trade, error) {
	return s.mutate(ctx, id, "Trade closed", func(t *domain.Trade) (*domain.Trade, error) {
		if err := domain.ValidateFinalClose(fc); err != nil {
			return nil, err
		}
		if remaining := position.RemainingQuantity(t); fc.QuantitySold > remaining {
			// over-selling is recorded but surfaced
			s.logger.Warn(ctx, "Final close sells more than remaining quantity", map[string]interface{}{
				"tradeID":      id,
				"remaining":    remaining,
				"quantitySold": fc.QuantitySold,
			})
		}
		return fc.Apply(t), nil
	})
}

// DeleteTrade removes a trade from the store and the book.
func (s *JournalService) DeleteTrade(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.book.Get(id); !ok {
		return fmt.Errorf("trade %s: %w", id, ports.ErrNotFound)
	}
	if err := s.tradeRepo.DeleteTrade(ctx, id); err != nil {
		s.logger.Error(ctx, err, "Failed to delete trade", map[string]interface{}{"tradeID": id})
		return fmt.Errorf("failed to delete trade: %w", err)
	}
	s.book.Remove(id)
	s.logger.Info(ctx, "Trade deleted", map[string]interface{}{"tradeID": id})
	return nil
}

// mutate loads the trade, lets fn derive the new version and persists it. The book is
// only touched once the store accepted the change.
func (s *JournalService) mutate(ctx context.Context, id, logMsg string, fn func(*domain.Trade) (*domain.Trade, error)) (*domain.Trade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.book.Get(id)
	if !ok {
		return nil, fmt.Errorf("trade %s: %w", id, ports.ErrNotFound)
	}
	updated, err := fn(current)
	if err != nil {
		return nil, err
	}
	updated.ID = id

	if err := s.tradeRepo.UpdateTrade(ctx, updated); err != nil {
		s.logger.Error(ctx, err, "Failed to update trade", map[string]interface{}{"tradeID": id})
		return nil, fmt.Errorf("failed to update trade: %w", err)
	}
	s.book.Put(updated)
	s.logger.Info(ctx, logMsg, map[string]interface{}{
		"tradeID":   id,
		"closed":    updated.IsClosed(),
		"remaining": position.RemainingQuantity(updated),
	})
	return updated.Clone(), nil
}

// --- Views ---

// OpenTrades returns the open trades with their derived position figures.
func (s *JournalService) OpenTrades() []position.OpenTradeView {
	return analytics.OpenViews(s.book.All())
}

// ClosedTrades returns the closed trades, most recently closed first.
func (s *JournalService) ClosedTrades() []position.ClosedTradeView {
	return analytics.ClosedViews(s.book.All())
}

// Summary aggregates realized results into buckets.
func (s *JournalService) Summary(groupBy domain.GroupBy) map[string]float64 {
	return analytics.Aggregate(s.book.All(), groupBy)
}

// WinLoss returns the per-day win/loss map of the calendar.
func (s *JournalService) WinLoss() map[string]analytics.DayStats {
	return analytics.PerDayWinLoss(s.book.All())
}

// ClosedOnDay lists the closes booked on dayKey (DD-MM-YYYY).
func (s *JournalService) ClosedOnDay(dayKey string) []analytics.DayItem {
	return analytics.ClosedItemsForDay(s.book.All(), dayKey)
}

// HistoryTotal is the realized total of the journal: final results of closed trades plus
// every partial close, including those of trades that are still open.
func (s *JournalService) HistoryTotal() float64 {
	return analytics.HistoryTotal(s.book.All())
}

// Stats computes performance metrics against the stored capital (zero when unset).
func (s *JournalService) Stats(ctx context.Context) (*analytics.PerformanceMetrics, error) {
	capital, err := s.capital.GetCapital(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read capital: %w", err)
	}
	initial, _ := domain.ParseNumber(capital)
	return analytics.AnalyzePerformance(s.book.All(), initial), nil
}

// --- Capital ---

// CapitalReport relates the realized history to the user's capital.
type CapitalReport struct {
	Capital       string  `json:"capital"`
	HistoryTotal  float64 `json:"historyTotal"`
	Percentage    float64 `json:"percentage"`
	HasPercentage bool    `json:"hasPercentage"`
}

// Capital returns the stored capital and the share of it realized so far.
func (s *JournalService) Capital(ctx context.Context) (CapitalReport, error) {
	capital, err := s.capital.GetCapital(ctx)
	if err != nil {
		return CapitalReport{}, fmt.Errorf("failed to read capital: %w", err)
	}
	total := s.HistoryTotal()
	pct, ok := analytics.CapitalPercentage(total, capital)
	return CapitalReport{Capital: capital, HistoryTotal: total, Percentage: pct, HasPercentage: ok}, nil
}

// SetCapital stores a new capital value.
func (s *JournalService) SetCapital(ctx context.Context, capital string) error {
	capital = strings.TrimSpace(capital)
	if v, ok := domain.ParseNumber(capital); !ok || v < 0 {
		return &domain.ValidationError{Fields: map[string]string{"capital": "capital must be a non-negative number"}}
	}
	if err := s.capital.SetCapital(ctx, capital); err != nil {
		s.logger.Error(ctx, err, "Failed to save capital")
		return fmt.Errorf("failed to save capital: %w", err)
	}
	s.logger.Info(ctx, "Capital updated", map[string]interface{}{"capital": capital})
	return nil
}

// --- Custom fields ---

// CustomFieldNames returns the registered custom field names.
func (s *JournalService) CustomFieldNames(ctx context.Context) (domain.CustomFieldNames, error) {
	return s.fields.GetCustomFieldNames(ctx)
}

// AddCustomField registers a custom field name; registering it twice is a no-op.
func (s *JournalService) AddCustomField(ctx context.Context, kind domain.FieldKind, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return &domain.ValidationError{Fields: map[string]string{"name": "name is required"}}
	}
	if err := s.fields.AddCustomFieldName(ctx, kind, name); err != nil {
		return fmt.Errorf("failed to add custom field: %w", err)
	}
	s.logger.Debug(ctx, "Custom field registered", map[string]interface{}{"kind": string(kind), "name": name})
	return nil
}

// RemoveCustomField unregisters a custom field name. Values already stored on trades are kept.
func (s *JournalService) RemoveCustomField(ctx context.Context, kind domain.FieldKind, name string) error {
	if err := s.fields.RemoveCustomFieldName(ctx, kind, name); err != nil {
		return fmt.Errorf("failed to remove custom field: %w", err)
	}
	return nil
}

// --- Strategies ---

// Strategies returns all stored strategies.
func (s *JournalService) Strategies(ctx context.Context) ([]*domain.Strategy, error) {
	return s.strategies.FindAllStrategies(ctx)
}

// CreateStrategy validates and stores a strategy. Missing strategy and rule IDs are generated.
func (s *JournalService) CreateStrategy(ctx context.Context, strategy *domain.Strategy) (*domain.Strategy, error) {
	st := *strategy
	st.Name = strings.TrimSpace(st.Name)
	if st.ID == "" {
		st.ID = s.newID()
	}
	st.OpenPositionRules = s.withRuleIDs(st.OpenPositionRules)
	st.ClosePositionRules = s.withRuleIDs(st.ClosePositionRules)
	if err := domain.ValidateStrategy(&st); err != nil {
		return nil, err
	}
	if err := s.strategies.CreateStrategy(ctx, &st); err != nil {
		s.logger.Error(ctx, err, "Failed to create strategy", map[string]interface{}{"strategyID": st.ID})
		return nil, fmt.Errorf("failed to create strategy: %w", err)
	}
	s.logger.Info(ctx, "Strategy created", map[string]interface{}{"strategyID": st.ID, "rules": st.TotalRules()})
	return &st, nil
}

func (s *JournalService) withRuleIDs(rules []domain.Rule) []domain.Rule {
	out := make([]domain.Rule, len(rules))
	for i, r := range rules {
		if r.ID == "" {
			r.ID = s.newID()
		}
		if r.Priority == "" {
			r.Priority = domain.PriorityMedium
		}
		out[i] = r
	}
	return out
}

// StrategyHistory returns the closed trades of a strategy and their total.
func (s *JournalService) StrategyHistory(ctx context.Context, strategyID string) (analytics.StrategyHistory, error) {
	st, err := s.strategies.FindStrategyByID(ctx, strategyID)
	if err != nil {
		return analytics.StrategyHistory{}, fmt.Errorf("failed to find strategy: %w", err)
	}
	if st == nil {
		return analytics.StrategyHistory{}, fmt.Errorf("strategy %s: %w", strategyID, ports.ErrNotFound)
	}
	return analytics.HistoryForStrategy(s.book.All(), strategyID), nil
}

// RulesFollowed returns the percentage of its strategy's rules a trade applied.
// ok is false when the trade has no strategy or the strategy has no rules.
func (s *JournalService) RulesFollowed(ctx context.Context, tradeID string) (float64, bool, error) {
	t, err := s.Trade(tradeID)
	if err != nil {
		return 0, false, err
	}
	if t.StrategyID == "" {
		return 0, false, nil
	}
	st, err := s.strategies.FindStrategyByID(ctx, t.StrategyID)
	if err != nil {
		return 0, false, fmt.Errorf("failed to find strategy: %w", err)
	}
	if st == nil {
		return 0, false, nil
	}
	pct, ok := analytics.RulesFollowedPercentage(t, st)
	return pct, ok, nil
}

// --- Result auto-calculation ---

// PreviewResult computes the result a form with these inputs would show.
func (s *JournalService) PreviewResult(in autocalc.Inputs) (string, bool) {
	return autocalc.Compute(in)
}

// NewResultSession starts an auto-calculation session with the configured debounce.
// The caller owns the session and must Close it.
func (s *JournalService) NewResultSession(in autocalc.Inputs, result string, onChange func(string)) *autocalc.Session {
	debounce := s.cfg.AutoCalcDebounce
	if debounce == 0 {
		debounce = autocalc.DefaultDebounce
	}
	return autocalc.NewSession(in, result, autocalc.WithDebounce(debounce), autocalc.WithOnChange(onChange))
}

// --- Import ---

// ImportResult counts what an import stored.
type ImportResult struct {
	Trades     int
	Strategies int
	Skipped    int
}

// Import stores strategies then trades. Entries whose ID already exists are skipped;
// any other failure stops the import.
func (s *JournalService) Import(ctx context.Context, trades []*domain.Trade, strategies []*domain.Strategy) (ImportResult, error) {
	start := time.Now()
	var res ImportResult
	for _, st := range strategies {
		if _, err := s.CreateStrategy(ctx, st); err != nil {
			if isDuplicate(err) {
				res.Skipped++
				continue
			}
			return res, err
		}
		res.Strategies++
	}
	for _, t := range trades {
		if _, err := s.CreateTrade(ctx, t); err != nil {
			if isDuplicate(err) {
				res.Skipped++
				continue
			}
			return res, fmt.Errorf("trade %s: %w", t.ID, err)
		}
		res.Trades++
	}
	s.logger.Info(ctx, "Import finished", map[string]interface{}{
		"trades":     res.Trades,
		"strategies": res.Strategies,
		"skipped":    res.Skipped,
		"duration":   time.Since(start).String(),
	})
	return res, nil
}

func isDuplicate(err error) bool {
	return errors.Is(err, ports.ErrDuplicateEntry)
}
