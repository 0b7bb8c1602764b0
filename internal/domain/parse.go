package domain

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// DayKeyLayout formats a calendar day as DD-MM-YYYY.
const DayKeyLayout = "02-01-2006"

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	DayKeyLayout,
}

// ParseNumber parses a user-entered numeric string. ok is false for empty,
// non-numeric and non-finite input.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ParseDate parses a stored date in the local time zone. Timestamps carrying a zone
// are converted to local time so the calendar day matches what the user saw.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t.Local(), true
		}
	}
	return time.Time{}, false
}

// MinutesSinceMidnight converts "HH:MM" to minutes. Missing or non-numeric parts count as 0.
func MinutesSinceMidnight(s string) int {
	parts := strings.Split(strings.TrimSpace(s), ":")
	hours := atoiOrZero(parts[0])
	minutes := 0
	if len(parts) > 1 {
		minutes = atoiOrZero(parts[1])
	}
	return hours*60 + minutes
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
