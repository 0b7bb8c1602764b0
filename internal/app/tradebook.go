package app

import (
	"sync"

	"tradejournal/internal/domain"
)

// TradeBook is the in-memory copy of the journal that every derived view is computed
// from. It hands out clones so callers cannot mutate the stored trades.
type TradeBook struct {
	mu     sync.RWMutex
	trades []*domain.Trade
	index  map[string]int
}

// NewTradeBook returns an empty book.
func NewTradeBook() *TradeBook {
	return &TradeBook{index: make(map[string]int)}
}

// Replace swaps the whole content of the book, keeping the given order.
func (b *TradeBook) Replace(trades []*domain.Trade) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.trades = make([]*domain.Trade, 0, len(trades))
	b.index = make(map[string]int, len(trades))
	for _, t := range trades {
		if _, dup := b.index[t.ID]; dup {
			continue
		}
		b.index[t.ID] = len(b.trades)
		b.trades = append(b.trades, t.Clone())
	}
}

// Put inserts a new trade at the front or replaces the trade with the same ID in place.
func (b *TradeBook) Put(t *domain.Trade) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i, ok := b.index[t.ID]; ok {
		b.trades[i] = t.Clone()
		return
	}
	b.trades = append([]*domain.Trade{t.Clone()}, b.trades...)
	b.reindex()
}

// Remove deletes the trade with id. It reports whether the trade was present.
func (b *TradeBook) Remove(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	i, ok := b.index[id]
	if !ok {
		return false
	}
	b.trades = append(b.trades[:i], b.trades[i+1:]...)
	b.reindex()
	return true
}

// Get returns a copy of the trade with id.
func (b *TradeBook) Get(id string) (*domain.Trade, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	i, ok := b.index[id]
	if !ok {
		return nil, false
	}
	return b.trades[i].Clone(), true
}

// All returns copies of every trade in book order.
func (b *TradeBook) All() []*domain.Trade {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]*domain.Trade, len(b.trades))
	for i, t := range b.trades {
		out[i] = t.Clone()
	}
	return out
}

// Len returns the number of trades.
func (b *TradeBook) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.trades)
}

func (b *TradeBook) reindex() {
	b.index = make(map[string]int, len(b.trades))
	for i, t := range b.trades {
		b.index[t.ID] = i
	}
}
