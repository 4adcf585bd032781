package analysis

import (
	"time"

	"github.com/receiptia/receiptia/internal/model"
)

// DefaultCurrency prefixes amounts in insight descriptions.
const DefaultCurrency = "€"

// Report is the full result of one analysis run.
type Report struct {
	Window     Window                   `json:"window"`
	Now        time.Time                `json:"now"`
	Status     model.SpendingStatus     `json:"status"`
	Insights   InsightSet               `json:"insights"`
	Weekly     model.WeeklySpending     `json:"weekly"`
	Comparison model.SpendingComparison `json:"comparison"`
}

// Analyzer runs the analysis with a configurable currency and detector list.
// The zero value uses DefaultCurrency and DefaultDetectors.
type Analyzer struct {
	Currency  string
	Detectors []Detector
}

// Analyze runs the default analyzer.
func Analyze(expenses []model.Expense, w Window, now time.Time) Report {
	return Analyzer{}.Analyze(expenses, w, now)
}

// Analyze filters expenses to w and derives the status and insights from the
// windowed set. The weekly breakdown and percentile cover the calendar week
// containing now, drawn from the full input.
func (a Analyzer) Analyze(expenses []model.Expense, w Window, now time.Time) Report {
	currency := a.Currency
	if currency == "" {
		currency = DefaultCurrency
	}
	detectors := a.Detectors
	if detectors == nil {
		detectors = DefaultDetectors
	}

	windowed := w.Filter(expenses)
	weekly := AggregateWeek(expenses, StartOfWeek(now))

	return Report{
		Window: w,
		Now:    now,
		Status: ComposeStatus(windowed, now),
		Insights: GenerateInsights(Input{
			Expenses: windowed,
			Now:      now,
			Currency: currency,
		}, detectors),
		Weekly:     weekly,
		Comparison: Compare(weekly.Total()),
	}
}
