package domain

// PositionType represents the direction of a trade (buy or sell).
type PositionType string

const (
	Buy  PositionType = "buy"
	Sell PositionType = "sell"
)

// Valid reports whether the position type is one of the known directions.
func (p PositionType) Valid() bool {
	return p == Buy || p == Sell
}

// Sign returns the multiplier applied to a price difference for this direction.
func (p PositionType) Sign() int64 {
	if p == Buy {
		return 1
	}
	return -1
}

// RulePriority ranks a strategy rule.
type RulePriority string

const (
	PriorityLow    RulePriority = "low"
	PriorityMedium RulePriority = "medium"
	PriorityHigh   RulePriority = "high"
)

// GroupBy selects the bucket granularity of a summary.
type GroupBy string

const (
	GroupByDay   GroupBy = "day"
	GroupByMonth GroupBy = "month"
	GroupByYear  GroupBy = "year"
	GroupByTotal GroupBy = "total"
)

// ParseGroupBy converts a string to a GroupBy, reporting whether it was recognised.
func ParseGroupBy(s string) (GroupBy, bool) {
	switch g := GroupBy(s); g {
	case GroupByDay, GroupByMonth, GroupByYear, GroupByTotal:
		return g, true
	}
	return "", false
}

// FieldKind distinguishes custom fields captured when opening a trade from those captured on close.
type FieldKind string

const (
	FieldKindOpen  FieldKind = "open"
	FieldKindClose FieldKind = "close"
)

// ParseFieldKind converts a string to a FieldKind.
func ParseFieldKind(s string) (FieldKind, bool) {
	switch k := FieldKind(s); k {
	case FieldKindOpen, FieldKindClose:
		return k, true
	}
	return "", false
}
