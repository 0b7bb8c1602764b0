package analytics

import (
	"tradejournal/internal/domain"
)

// RulesFollowedPercentage returns the share of the strategy's rules applied to the trade.
// ok is false when the strategy is missing or has no rules.
func RulesFollowedPercentage(t *domain.Trade, s *domain.Strategy) (float64, bool) {
	if s == nil {
		return 0, false
	}
	total := s.TotalRules()
	if total == 0 {
		return 0, false
	}
	followed := len(t.AppliedOpenRules) + len(t.AppliedCloseRules)
	return float64(followed) / float64(total) * 100, true
}

// CapitalPercentage expresses result as a percentage of the stored starting capital.
// ok is false when capital is missing, not numeric or zero.
func CapitalPercentage(result float64, capital string) (float64, bool) {
	c, ok := domain.ParseNumber(capital)
	if !ok || c == 0 {
		return 0, false
	}
	return result / c * 100, true
}

// StrategyHistory is the closed-trade record of one strategy.
type StrategyHistory struct {
	StrategyID string          `json:"strategyId"`
	Trades     []*domain.Trade `json:"trades"`
	Total      float64         `json:"total"`
}

// HistoryForStrategy collects the closed trades of a strategy, most recent first, and
// sums their final results.
func HistoryForStrategy(trades []*domain.Trade, strategyID string) StrategyHistory {
	own := make([]*domain.Trade, 0)
	for _, t := range trades {
		if t.StrategyID == strategyID {
			own = append(own, t)
		}
	}
	closed := SortClosedByRecency(ClassifyClosed(own))
	h := StrategyHistory{StrategyID: strategyID, Trades: closed}
	for _, t := range closed {
		if v, ok := t.FinalResult(); ok {
			h.Total += v
		}
	}
	return h
}
