package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var seven = decimal.NewFromInt(7)

// DailySpending is the total spent on one calendar day.
type DailySpending struct {
	Date            time.Time       `json:"date"`
	Amount          decimal.Decimal `json:"amount"`
	DayAbbreviation string          `json:"day_abbreviation"`
}

// WeeklySpending holds seven consecutive days, Monday first.
// Total, Average and PeakDay are always derived from Days.
type WeeklySpending struct {
	Start time.Time       `json:"start"`
	End   time.Time       `json:"end"`
	Days  []DailySpending `json:"days"`
}

// Total is the sum of the daily amounts.
func (w WeeklySpending) Total() decimal.Decimal {
	total := decimal.Zero
	for _, d := range w.Days {
		total = total.Add(d.Amount)
	}
	return total
}

// Average is Total divided by seven, or zero for an empty week.
func (w WeeklySpending) Average() decimal.Decimal {
	if len(w.Days) == 0 {
		return decimal.Zero
	}
	return w.Total().Div(seven)
}

// PeakDay returns the day with the highest amount. Ties go to the earliest day.
func (w WeeklySpending) PeakDay() (DailySpending, bool) {
	if len(w.Days) == 0 {
		return DailySpending{}, false
	}
	peak := w.Days[0]
	for _, d := range w.Days[1:] {
		if d.Amount.GreaterThan(peak.Amount) {
			peak = d
		}
	}
	return peak, true
}

// RangeLabel formats the week as "Week 13-19 January".
func (w WeeklySpending) RangeLabel() string {
	if w.Start.Month() == w.End.Month() {
		return fmt.Sprintf("Week %d-%d %s", w.Start.Day(), w.End.Day(), w.End.Month())
	}
	return fmt.Sprintf("Week %d %s-%d %s", w.Start.Day(), w.Start.Month(), w.End.Day(), w.End.Month())
}

// SpendingStatus summarizes recent spending against the previous day.
// HighlightedWord is always a substring of StatusMessage.
type SpendingStatus struct {
	AmountLast24h       decimal.Decimal `json:"amount_last_24h"`
	ComparisonYesterday decimal.Decimal `json:"comparison_yesterday"`
	IsSpendingLess      bool            `json:"is_spending_less"`
	StatusMessage       string          `json:"status_message"`
	HighlightedWord     string          `json:"highlighted_word"`
}

// Split breaks the status message around the first occurrence of the highlighted word.
func (s SpendingStatus) Split() (prefix, highlight, suffix string) {
	i := strings.Index(s.StatusMessage, s.HighlightedWord)
	if i < 0 || s.HighlightedWord == "" {
		return s.StatusMessage, "", ""
	}
	return s.StatusMessage[:i], s.HighlightedWord, s.StatusMessage[i+len(s.HighlightedWord):]
}

// ComparisonText renders the delta as "€45 less than yesterday".
func (s SpendingStatus) ComparisonText(currency string) string {
	direction := "more"
	if s.ComparisonYesterday.IsNegative() {
		direction = "less"
	}
	return fmt.Sprintf("%s%s %s than yesterday", currency, s.ComparisonYesterday.Abs().StringFixed(0), direction)
}

// SpendingComparison places the user's week within the reference population.
type SpendingComparison struct {
	Percentile int    `json:"percentile"`
	Message    string `json:"message"`
	IsPositive bool   `json:"is_positive"`
}
