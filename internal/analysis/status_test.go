package analysis

import (
	"strings"
	"testing"
	"time"

	"github.com/receiptia/receiptia/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposeStatus(t *testing.T) {
	now := at(20, 9)

	tests := []struct {
		name     string
		expenses []model.Expense
		less     bool
		word     string
		delta    string
		total    string
	}{
		{
			name: "less than yesterday",
			expenses: []model.Expense{
				expense("10", model.CategoryFood, at(20, 8)),
				expense("55", model.CategoryFood, at(19, 20)),
			},
			less: true, word: "less", delta: "-45", total: "65",
		},
		{
			name: "more than yesterday",
			expenses: []model.Expense{
				expense("30", model.CategoryFood, at(20, 1)),
				expense("5", model.CategoryFood, at(19, 23)),
			},
			less: false, word: "more", delta: "25", total: "35",
		},
		{
			name:     "no expenses",
			expenses: nil,
			less:     false, word: "steady", delta: "0", total: "0",
		},
		{
			name: "older expenses only count toward the total",
			expenses: []model.Expense{
				expense("8", model.CategoryFood, at(18, 10)),
			},
			less: false, word: "steady", delta: "0", total: "8",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := ComposeStatus(tt.expenses, now)
			assert.Equal(t, tt.less, s.IsSpendingLess)
			assert.Equal(t, tt.word, s.HighlightedWord)
			assert.True(t, s.ComparisonYesterday.Equal(dec(tt.delta)), "delta = %s", s.ComparisonYesterday)
			assert.True(t, s.AmountLast24h.Equal(dec(tt.total)), "total = %s", s.AmountLast24h)
			assert.GreaterOrEqual(t, strings.Index(s.StatusMessage, s.HighlightedWord), 0)
		})
	}
}

func TestComposeStatusCalendarDayInLocalZone(t *testing.T) {
	now := at(20, 9)
	// 23:30 UTC on the 19th is 00:30 CET on the 20th: today, not yesterday.
	ts := time.Date(2025, time.June, 19, 23, 30, 0, 0, time.UTC)

	s := ComposeStatus([]model.Expense{expense("12", model.CategoryFood, ts)}, now)
	assert.True(t, s.ComparisonYesterday.Equal(dec("12")))
	assert.Equal(t, "more", s.HighlightedWord)
}

func TestStatusSplit(t *testing.T) {
	s := ComposeStatus([]model.Expense{expense("4", model.CategoryFood, at(19, 10))}, at(20, 9))

	prefix, highlight, suffix := s.Split()
	assert.Equal(t, "less", highlight)
	assert.Equal(t, s.StatusMessage, prefix+highlight+suffix)
	assert.Equal(t, "€4 less than yesterday", s.ComparisonText("€"))
}

func TestAnalyze(t *testing.T) {
	now := at(20, 12) // Friday
	night := expense("20", model.CategoryShopping, at(20, 1))
	night.IsNightPurchase = true
	expenses := []model.Expense{
		night,
		expense("30", model.CategoryFood, at(20, 10)),
		expense("100", model.CategoryTravel, at(16, 10)), // Monday, outside 24h
		expense("500", model.CategoryTravel, at(2, 10)),  // previous weeks
	}

	report := Analyze(expenses, SelectWindow(Last24h, now), now)

	assert.True(t, report.Status.AmountLast24h.Equal(dec("50")))
	assert.Equal(t, "more", report.Status.HighlightedWord)
	assert.Len(t, report.Insights, 3)
	assert.True(t, report.Weekly.Start.Equal(at(16, 0)))
	assert.True(t, report.Weekly.Total().Equal(dec("150")))
	assert.Equal(t, 84, report.Comparison.Percentile)
}

func TestAnalyzeEmpty(t *testing.T) {
	now := at(20, 12)
	report := Analyzer{Currency: "$"}.Analyze(nil, SelectWindow(Last7d, now), now)

	assert.True(t, report.Insights.Empty())
	assert.True(t, report.Status.AmountLast24h.IsZero())
	assert.True(t, report.Weekly.Total().IsZero())
	assert.Equal(t, 95, report.Comparison.Percentile)
}

func TestAnalyzerCustomDetectors(t *testing.T) {
	now := at(20, 12)
	only := func(in Input) (model.Insight, bool) {
		return newInsight(in, model.InsightWarning, "exclamationmark", "Custom", in.Currency), true
	}

	report := Analyzer{Currency: "$", Detectors: []Detector{only}}.Analyze(nil, SelectWindow(Last24h, now), now)
	require.Len(t, report.Insights, 1)
	assert.Equal(t, "$", report.Insights[0].Description)
}

func TestComputeBudget(t *testing.T) {
	now := at(10, 12) // June has 30 days
	expenses := []model.Expense{
		expense("100", model.CategoryFood, at(1, 9)),
		expense("150", model.CategoryBills, at(9, 9)),
		expense("999", model.CategoryTravel, time.Date(2025, time.May, 31, 12, 0, 0, 0, rome)),
	}

	b := ComputeBudget(expenses, decimal.NewFromInt(1000), now)
	assert.True(t, b.CurrentSpend.Equal(dec("250")))
	assert.True(t, b.DailyBurnRate.Equal(dec("25")))
	assert.True(t, b.ProjectedMonthly.Equal(dec("750")))
	assert.Equal(t, 20, b.DaysRemaining)
	assert.InDelta(t, 25.0, b.BudgetUsedPercent, 1e-9)
	assert.False(t, b.OverBudget())

	b = ComputeBudget(expenses, decimal.NewFromInt(500), now)
	assert.True(t, b.OverBudget())
}
