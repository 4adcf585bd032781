// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

var (
	hundred  = decimal.NewFromInt(100)
	thousand = decimal.NewFromInt(1000)
)

// FormatMoney formats an amount with the currency prefix. Precision drops
// as the amount grows: "€4.20", "€123", "€1,234".
func FormatMoney(d decimal.Decimal, currency string) string {
	if d.IsNegative() {
		return "-" + FormatMoney(d.Neg(), currency)
	}
	switch {
	case d.GreaterThanOrEqual(thousand):
		return currency + humanize.Comma(d.Round(0).IntPart())
	case d.GreaterThanOrEqual(hundred):
		return currency + d.StringFixed(0)
	default:
		return currency + d.StringFixed(2)
	}
}

// FormatMoneyShort formats whole currency units, as used in insight copy.
func FormatMoneyShort(d decimal.Decimal, currency string) string {
	return currency + humanize.Comma(d.Truncate(0).IntPart())
}

// FormatDelta formats a signed amount difference, e.g. "+€5.00".
func FormatDelta(delta decimal.Decimal, currency string) string {
	if delta.IsNegative() {
		return "-" + FormatMoney(delta.Neg(), currency)
	}
	return "+" + FormatMoney(delta, currency)
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	return humanize.Comma(n)
}

// FormatPercent formats a 0-100 value as a percentage string.
func FormatPercent(pct float64) string {
	return fmt.Sprintf("%.1f%%", pct)
}

// FormatRelative describes t relative to now, e.g. "3 hours ago".
func FormatRelative(t, now time.Time) string {
	return humanize.RelTime(t, now, "ago", "from now")
}

// FormatDayOfWeek returns a 3-letter day abbreviation from a weekday number.
func FormatDayOfWeek(weekday int) string {
	days := []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	if weekday >= 0 && weekday < 7 {
		return days[weekday]
	}
	return "???"
}
