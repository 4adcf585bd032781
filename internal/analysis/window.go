// Package analysis derives spending status, behavioural insights and
// population comparisons from a set of expenses.
//
// Every function is a pure computation over its arguments. The current time
// is always passed in by the caller, and its Location is treated as the
// user's local zone for hour-of-day and calendar-day decisions.
package analysis

import (
	"fmt"
	"strings"
	"time"

	"github.com/receiptia/receiptia/internal/model"
)

// Range names a relative analysis window.
type Range string

const (
	Last24h   Range = "24h"
	Last7d    Range = "7d"
	Last30d   Range = "30d"
	ThisMonth Range = "month"
)

// Ranges lists the supported ranges in display order.
var Ranges = []Range{Last24h, Last7d, Last30d, ThisMonth}

// ParseRange accepts "24h", "7d", "30d" or "month" (case-insensitive).
func ParseRange(s string) (Range, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "24h", "1d", "day":
		return Last24h, nil
	case "7d", "week":
		return Last7d, nil
	case "30d":
		return Last30d, nil
	case "month", "this-month", "mtd":
		return ThisMonth, nil
	}
	return "", fmt.Errorf("unknown range %q (want 24h, 7d, 30d or month)", s)
}

// Label returns a short human-readable description.
func (r Range) Label() string {
	switch r {
	case Last24h:
		return "Last 24h"
	case Last7d:
		return "Last 7d"
	case Last30d:
		return "Last 30d"
	case ThisMonth:
		return "This month"
	}
	return string(r)
}

// Window is a time interval used to filter expenses. Both bounds are inclusive.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// SelectWindow maps a range to a concrete window ending at now.
// Unknown ranges fall back to the last 24 hours.
func SelectWindow(r Range, now time.Time) Window {
	switch r {
	case Last7d:
		return Window{Start: now.AddDate(0, 0, -7), End: now}
	case Last30d:
		return Window{Start: now.AddDate(0, 0, -30), End: now}
	case ThisMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return Window{Start: start, End: now}
	default:
		return Window{Start: now.Add(-24 * time.Hour), End: now}
	}
}

// Contains reports whether t lies within [Start, End].
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Duration returns the length of the window.
func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Previous returns the window of equal length immediately before w.
func (w Window) Previous() Window {
	return Window{Start: w.Start.Add(-w.Duration()), End: w.Start}
}

// Filter returns the expenses whose timestamp falls within the window.
// The input slice is never modified.
func (w Window) Filter(expenses []model.Expense) []model.Expense {
	var result []model.Expense
	for _, e := range expenses {
		if w.Contains(e.Timestamp) {
			result = append(result, e)
		}
	}
	return result
}
