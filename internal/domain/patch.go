package domain

// TradePatch describes a partial update of a trade. Nil fields are left untouched.
type TradePatch struct {
	SymbolName        *string            `json:"symbolName,omitempty"`
	PositionType      *PositionType      `json:"positionType,omitempty"`
	OpenDate          *string            `json:"openDate,omitempty"`
	OpenTime          *string            `json:"openTime,omitempty"`
	CloseDate         *string            `json:"closeDate,omitempty"`
	CloseTime         *string            `json:"closeTime,omitempty"`
	EntryPrice        *float64           `json:"entryPrice,omitempty"`
	SellPrice         *float64           `json:"sellPrice,omitempty"`
	Quantity          *float64           `json:"quantity,omitempty"`
	QuantitySold      *float64           `json:"quantitySold,omitempty"`
	Result            *string            `json:"result,omitempty"`
	Rating            *int               `json:"rating,omitempty"`
	Notes             *string            `json:"notes,omitempty"`
	StrategyID        *string            `json:"strategyId,omitempty"`
	AppliedOpenRules  *[]Rule            `json:"appliedOpenRules,omitempty"`
	AppliedCloseRules *[]Rule            `json:"appliedCloseRules,omitempty"`
	OpenCustomFields  *map[string]string `json:"openCustomFields,omitempty"`
	CloseCustomFields *map[string]string `json:"closeCustomFields,omitempty"`
	CloseEvents       *[]CloseEvent      `json:"closeEvents,omitempty"`
}

// FinalClose is the set of fields filled when a trade is fully closed.
type FinalClose struct {
	CloseDate    string            `json:"closeDate"`
	CloseTime    string            `json:"closeTime"`
	SellPrice    float64           `json:"sellPrice"`
	QuantitySold float64           `json:"quantitySold"`
	Result       string            `json:"result"`
	CloseRules   []Rule            `json:"appliedCloseRules,omitempty"`
	CustomFields map[string]string `json:"closeCustomFields,omitempty"`
}

// Apply returns a copy of t with the patch applied.
func (p TradePatch) Apply(t *Trade) *Trade {
	out := t.Clone()
	setString(&out.SymbolName, p.SymbolName)
	if p.PositionType != nil {
		out.PositionType = *p.PositionType
	}
	setString(&out.OpenDate, p.OpenDate)
	setString(&out.OpenTime, p.OpenTime)
	setString(&out.CloseDate, p.CloseDate)
	setString(&out.CloseTime, p.CloseTime)
	setFloat(&out.EntryPrice, p.EntryPrice)
	setFloat(&out.SellPrice, p.SellPrice)
	setFloat(&out.Quantity, p.Quantity)
	setFloat(&out.QuantitySold, p.QuantitySold)
	setString(&out.Result, p.Result)
	if p.Rating != nil {
		out.Rating = *p.Rating
	}
	setString(&out.Notes, p.Notes)
	setString(&out.StrategyID, p.StrategyID)
	if p.AppliedOpenRules != nil {
		out.AppliedOpenRules = append([]Rule(nil), (*p.AppliedOpenRules)...)
	}
	if p.AppliedCloseRules != nil {
		out.AppliedCloseRules = append([]Rule(nil), (*p.AppliedCloseRules)...)
	}
	if p.OpenCustomFields != nil {
		out.OpenCustomFields = cloneFields(*p.OpenCustomFields)
	}
	if p.CloseCustomFields != nil {
		out.CloseCustomFields = cloneFields(*p.CloseCustomFields)
	}
	if p.CloseEvents != nil {
		out.CloseEvents = append([]CloseEvent(nil), (*p.CloseEvents)...)
	}
	return out
}

// Apply returns a copy of t marked as fully closed.
func (f FinalClose) Apply(t *Trade) *Trade {
	out := t.Clone()
	out.CloseDate = f.CloseDate
	out.CloseTime = f.CloseTime
	out.SellPrice = f.SellPrice
	out.QuantitySold = f.QuantitySold
	out.Result = f.Result
	if f.CloseRules != nil {
		out.AppliedCloseRules = append([]Rule(nil), f.CloseRules...)
	}
	if f.CustomFields != nil {
		out.CloseCustomFields = cloneFields(f.CustomFields)
	}
	return out
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}
