package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrValidation is wrapped by every ValidationError.
var ErrValidation = errors.New("validation failed")

// ValidationError collects per-field messages so they can be shown next to each input.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return fmt.Sprintf("%v: %s", ErrValidation, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

type fieldErrors map[string]string

func (f fieldErrors) add(field, msg string) {
	if _, exists := f[field]; !exists {
		f[field] = msg
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: f}
}

// ValidateOpen checks the fields required to record a new trade.
func ValidateOpen(t *Trade) error {
	errs := fieldErrors{}
	if strings.TrimSpace(t.OpenDate) == "" {
		errs.add("openDate", "open date is required")
	} else if _, ok := ParseDate(t.OpenDate); !ok {
		errs.add("openDate", "open date is not a valid date")
	}
	if strings.TrimSpace(t.SymbolName) == "" {
		errs.add("symbolName", "symbol is required")
	}
	if !t.PositionType.Valid() {
		errs.add("positionType", "position type must be buy or sell")
	}
	if t.EntryPrice <= 0 {
		errs.add("entryPrice", "entry price must be positive")
	}
	if t.Quantity <= 0 {
		errs.add("quantity", "quantity must be positive")
	}
	if t.Rating < 0 || t.Rating > 5 {
		errs.add("rating", "rating must be between 0 and 5")
	}
	if t.CloseDate != "" {
		if _, ok := ParseDate(t.CloseDate); !ok {
			errs.add("closeDate", "close date is not a valid date")
		}
	}
	if strings.TrimSpace(t.Result) != "" {
		if _, ok := ParseNumber(t.Result); !ok {
			errs.add("result", "result must be a number")
		}
	}
	for i, ev := range t.CloseEvents {
		if ev.QuantitySold <= 0 {
			errs.add(fmt.Sprintf("closeEvents[%d].quantitySold", i), "quantity sold must be positive")
		}
	}
	return errs.err()
}

// ValidateCloseEvent checks a partial close against the quantity still held.
func ValidateCloseEvent(ev CloseEvent, remaining float64) error {
	errs := fieldErrors{}
	if _, ok := ParseDate(ev.Date); !ok {
		errs.add("date", "date is required")
	}
	if ev.QuantitySold <= 0 {
		errs.add("quantitySold", "quantity sold must be positive")
	} else if ev.QuantitySold > remaining {
		errs.add("quantitySold", fmt.Sprintf("quantity sold exceeds remaining quantity %g", remaining))
	}
	if ev.SellPrice <= 0 {
		errs.add("sellPrice", "sell price must be positive")
	}
	return errs.err()
}

// ValidateFinalClose checks the fields that mark a trade as fully closed.
func ValidateFinalClose(f FinalClose) error {
	errs := fieldErrors{}
	if _, ok := ParseDate(f.CloseDate); !ok {
		errs.add("closeDate", "close date is required")
	}
	if strings.TrimSpace(f.CloseTime) == "" {
		errs.add("closeTime", "close time is required")
	}
	if _, ok := ParseNumber(f.Result); !ok {
		errs.add("result", "result must be a number")
	}
	if f.QuantitySold < 0 {
		errs.add("quantitySold", "quantity sold cannot be negative")
	}
	return errs.err()
}

// ValidateStrategy checks a strategy before it is stored.
func ValidateStrategy(s *Strategy) error {
	errs := fieldErrors{}
	if strings.TrimSpace(s.Name) == "" {
		errs.add("name", "name is required")
	}
	return errs.err()
}
