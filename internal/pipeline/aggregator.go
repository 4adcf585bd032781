// Package pipeline orchestrates ledger loading, caching, and metric aggregation.
package pipeline

import (
	"sort"
	"strings"
	"time"

	"github.com/receiptia/receiptia/internal/analysis"
	"github.com/receiptia/receiptia/internal/model"

	"github.com/shopspring/decimal"
)

const dayLayout = "2006-01-02"

// UnknownMerchant labels expenses recorded without a merchant.
const UnknownMerchant = "Unknown"

// Summarize computes top-level statistics for expenses within the window.
func Summarize(expenses []model.Expense, w analysis.Window) model.SummaryStats {
	filtered := w.Filter(expenses)
	loc := w.End.Location()

	stats := model.SummaryStats{Total: decimal.Zero, Largest: decimal.Zero, PerActiveDay: decimal.Zero}
	activeDays := make(map[string]struct{})

	for _, e := range filtered {
		stats.Expenses++
		stats.Total = stats.Total.Add(e.Amount)
		if e.Amount.GreaterThan(stats.Largest) {
			stats.Largest = e.Amount
		}
		if e.IsNightPurchase {
			stats.NightCount++
		}
		if e.IsImpulsive {
			stats.Impulsive++
		}
		activeDays[e.Timestamp.In(loc).Format(dayLayout)] = struct{}{}
	}

	stats.ActiveDays = len(activeDays)
	if stats.ActiveDays > 0 {
		stats.PerActiveDay = stats.Total.Div(decimal.NewFromInt(int64(stats.ActiveDays)))
	}

	return stats
}

// AggregateDays computes per-day statistics, most recent first.
// Every day in the window is present so gaps show as zeros.
func AggregateDays(expenses []model.Expense, w analysis.Window) []model.DailyStats {
	filtered := w.Filter(expenses)
	loc := w.End.Location()

	dayMap := make(map[string]*model.DailyStats)
	newDay := func(t time.Time) *model.DailyStats {
		return &model.DailyStats{Date: t, Total: decimal.Zero, NightTotal: decimal.Zero}
	}

	for _, e := range filtered {
		local := e.Timestamp.In(loc)
		dayKey := local.Format(dayLayout)
		ds, ok := dayMap[dayKey]
		if !ok {
			ds = newDay(time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc))
			dayMap[dayKey] = ds
		}

		ds.Expenses++
		ds.Total = ds.Total.Add(e.Amount)
		if e.IsNightPurchase {
			ds.NightCount++
			ds.NightTotal = ds.NightTotal.Add(e.Amount)
		}
		if e.IsImpulsive {
			ds.Impulsive++
		}
	}

	start := w.Start.In(loc)
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
	end := w.End.In(loc)
	for !day.After(end) {
		dayKey := day.Format(dayLayout)
		if _, ok := dayMap[dayKey]; !ok {
			dayMap[dayKey] = newDay(day)
		}
		day = day.AddDate(0, 0, 1)
	}

	days := make([]model.DailyStats, 0, len(dayMap))
	for _, ds := range dayMap {
		days = append(days, *ds)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Date.After(days[j].Date)
	})

	return days
}

// AggregateHourly computes spend by local hour of day.
func AggregateHourly(expenses []model.Expense, w analysis.Window) []model.HourlyStats {
	filtered := w.Filter(expenses)
	loc := w.End.Location()

	hours := make([]model.HourlyStats, 24)
	for i := range hours {
		hours[i].Hour = i
		hours[i].Total = decimal.Zero
	}

	for _, e := range filtered {
		h := e.Timestamp.In(loc).Hour()
		hours[h].Expenses++
		hours[h].Total = hours[h].Total.Add(e.Amount)
	}

	return hours
}

// AggregateCategories computes per-category spend, largest first.
func AggregateCategories(expenses []model.Expense, w analysis.Window) []model.CategoryStats {
	filtered := w.Filter(expenses)

	catMap := make(map[model.Category]*model.CategoryStats)
	total := decimal.Zero

	for _, e := range filtered {
		cs, ok := catMap[e.Category]
		if !ok {
			cs = &model.CategoryStats{Category: e.Category, Total: decimal.Zero}
			catMap[e.Category] = cs
		}
		cs.Expenses++
		cs.Total = cs.Total.Add(e.Amount)
		total = total.Add(e.Amount)
	}

	cats := make([]model.CategoryStats, 0, len(catMap))
	for _, cs := range catMap {
		if total.IsPositive() {
			cs.SharePercent = cs.Total.Div(total).Mul(decimal.NewFromInt(100)).InexactFloat64()
		}
		cats = append(cats, *cs)
	}
	sort.Slice(cats, func(i, j int) bool {
		if !cats[i].Total.Equal(cats[j].Total) {
			return cats[i].Total.GreaterThan(cats[j].Total)
		}
		return cats[i].Category < cats[j].Category
	})

	return cats
}

// AggregateMerchants computes per-merchant spend, largest first.
func AggregateMerchants(expenses []model.Expense, w analysis.Window) []model.MerchantStats {
	filtered := w.Filter(expenses)

	merchMap := make(map[string]*model.MerchantStats)

	for _, e := range filtered {
		name := e.Merchant
		if name == "" {
			name = UnknownMerchant
		}
		ms, ok := merchMap[name]
		if !ok {
			ms = &model.MerchantStats{
				Merchant: name,
				Category: e.Category,
				Total:    decimal.Zero,
				First:    e.Timestamp,
				Last:     e.Timestamp,
			}
			merchMap[name] = ms
		}
		ms.Expenses++
		ms.Total = ms.Total.Add(e.Amount)
		if e.Timestamp.Before(ms.First) {
			ms.First = e.Timestamp
		}
		if e.Timestamp.After(ms.Last) {
			ms.Last = e.Timestamp
		}
	}

	merchants := make([]model.MerchantStats, 0, len(merchMap))
	for _, ms := range merchMap {
		merchants = append(merchants, *ms)
	}
	sort.Slice(merchants, func(i, j int) bool {
		if !merchants[i].Total.Equal(merchants[j].Total) {
			return merchants[i].Total.GreaterThan(merchants[j].Total)
		}
		return merchants[i].Merchant < merchants[j].Merchant
	})

	return merchants
}

// FilterByCategory returns expenses in the given category.
// An empty category returns the input unchanged.
func FilterByCategory(expenses []model.Expense, category model.Category) []model.Expense {
	if category == "" {
		return expenses
	}
	var result []model.Expense
	for _, e := range expenses {
		if e.Category == category {
			result = append(result, e)
		}
	}
	return result
}

// FilterByMerchant returns expenses whose merchant or title contains the substring.
func FilterByMerchant(expenses []model.Expense, merchant string) []model.Expense {
	if merchant == "" {
		return expenses
	}
	var result []model.Expense
	for _, e := range expenses {
		if containsIgnoreCase(e.Merchant, merchant) || containsIgnoreCase(e.Title, merchant) {
			result = append(result, e)
		}
	}
	return result
}

func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// AggregateTodayHourly computes 24 hourly buckets for the calendar day containing now.
func AggregateTodayHourly(expenses []model.Expense, now time.Time) []model.HourlyStats {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return AggregateHourly(expenses, analysis.Window{Start: start, End: now})
}
