package domain

import "strings"

// Rule is a single checklist item of a strategy.
type Rule struct {
	ID       string       `json:"id" yaml:"id"`
	Rule     string       `json:"rule" yaml:"rule"`
	Priority RulePriority `json:"priority" yaml:"priority"`
}

// CloseEvent is a partial close that realizes P/L on part of a trade's quantity.
// Result is positive for a profit regardless of the trade direction.
type CloseEvent struct {
	ID           string  `json:"id" yaml:"id"`
	Date         string  `json:"date" yaml:"date"` // ISO date or RFC3339 timestamp
	Time         string  `json:"time" yaml:"time"` // HH:MM
	QuantitySold float64 `json:"quantitySold" yaml:"quantitySold"`
	SellPrice    float64 `json:"sellPrice" yaml:"sellPrice"`
	Result       float64 `json:"result" yaml:"result"`
}

// Trade is a single journal entry, from open to (optionally) full close.
//
// The final close is described by CloseDate, CloseTime, SellPrice, QuantitySold and
// Result. Result is kept as entered (a numeric string) so an empty value can be told
// apart from a zero result. Zero SellPrice and QuantitySold mean "not entered".
// CloseEvents keep insertion order, which is not guaranteed to be chronological.
type Trade struct {
	ID           string       `json:"id" yaml:"id"`
	SymbolName   string       `json:"symbolName" yaml:"symbolName"`
	PositionType PositionType `json:"positionType" yaml:"positionType"`
	OpenDate     string       `json:"openDate" yaml:"openDate"`
	OpenTime     string       `json:"openTime" yaml:"openTime"`
	CloseDate    string       `json:"closeDate,omitempty" yaml:"closeDate,omitempty"`
	CloseTime    string       `json:"closeTime,omitempty" yaml:"closeTime,omitempty"`
	EntryPrice   float64      `json:"entryPrice" yaml:"entryPrice"`
	SellPrice    float64      `json:"sellPrice,omitempty" yaml:"sellPrice,omitempty"`
	Quantity     float64      `json:"quantity" yaml:"quantity"`
	QuantitySold float64      `json:"quantitySold,omitempty" yaml:"quantitySold,omitempty"`
	Result       string       `json:"result,omitempty" yaml:"result,omitempty"`
	Rating       int          `json:"rating" yaml:"rating"`
	Notes        string       `json:"notes,omitempty" yaml:"notes,omitempty"`
	StrategyID   string       `json:"strategyId,omitempty" yaml:"strategyId,omitempty"`

	AppliedOpenRules  []Rule `json:"appliedOpenRules" yaml:"appliedOpenRules,omitempty"`
	AppliedCloseRules []Rule `json:"appliedCloseRules" yaml:"appliedCloseRules,omitempty"`

	OpenCustomFields  map[string]string `json:"openCustomFields,omitempty" yaml:"openCustomFields,omitempty"`
	CloseCustomFields map[string]string `json:"closeCustomFields,omitempty" yaml:"closeCustomFields,omitempty"`

	CloseEvents []CloseEvent `json:"closeEvents" yaml:"closeEvents,omitempty"`
}

// IsClosed reports whether the trade is fully closed: close date, close time and
// result must all be non-empty. Anything else, including partial closes without a
// final close, is open.
func (t *Trade) IsClosed() bool {
	return strings.TrimSpace(t.CloseDate) != "" &&
		strings.TrimSpace(t.CloseTime) != "" &&
		strings.TrimSpace(t.Result) != ""
}

// IsOpen reports whether the trade has no final close date.
func (t *Trade) IsOpen() bool {
	return strings.TrimSpace(t.CloseDate) == ""
}

// FinalResult returns the numeric final close result. ok is false when the result is
// empty or not a finite number.
func (t *Trade) FinalResult() (float64, bool) {
	return ParseNumber(t.Result)
}

// Clone returns a deep copy so callers can mutate it without affecting the original.
func (t *Trade) Clone() *Trade {
	c := *t
	c.AppliedOpenRules = append([]Rule(nil), t.AppliedOpenRules...)
	c.AppliedCloseRules = append([]Rule(nil), t.AppliedCloseRules...)
	c.CloseEvents = append([]CloseEvent(nil), t.CloseEvents...)
	c.OpenCustomFields = cloneFields(t.OpenCustomFields)
	c.CloseCustomFields = cloneFields(t.CloseCustomFields)
	return &c
}

func cloneFields(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Strategy is a named checklist of rules for opening and closing positions.
type Strategy struct {
	ID                 string `json:"id" yaml:"id"`
	Name               string `json:"name" yaml:"name"`
	OpenPositionRules  []Rule `json:"openPositionRules" yaml:"openPositionRules,omitempty"`
	ClosePositionRules []Rule `json:"closePositionRules" yaml:"closePositionRules,omitempty"`
}

// TotalRules returns the number of open and close rules of the strategy.
func (s *Strategy) TotalRules() int {
	return len(s.OpenPositionRules) + len(s.ClosePositionRules)
}

// CustomFieldNames lists the user's registered custom field keys.
type CustomFieldNames struct {
	OpenFields  []string `json:"openFields"`
	CloseFields []string `json:"closeFields"`
}

// For returns the names registered for kind.
func (n CustomFieldNames) For(kind FieldKind) []string {
	if kind == FieldKindClose {
		return n.CloseFields
	}
	return n.OpenFields
}

// Set replaces the names registered for kind.
func (n *CustomFieldNames) Set(kind FieldKind, names []string) {
	if kind == FieldKindClose {
		n.CloseFields = names
		return
	}
	n.OpenFields = names
}
