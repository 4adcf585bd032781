package pipeline

import (
	"testing"
	"time"

	"github.com/receiptia/receiptia/internal/analysis"
	"github.com/receiptia/receiptia/internal/model"

	"github.com/shopspring/decimal"
)

var cet = time.FixedZone("CET", 3600)

func exp(amount string, c model.Category, merchant string, ts time.Time) model.Expense {
	return model.Expense{
		Amount:          decimal.RequireFromString(amount),
		Category:        c,
		Title:           string(c),
		Merchant:        merchant,
		Timestamp:       ts,
		IsNightPurchase: analysis.IsNightPurchase(ts),
	}
}

func fixture() ([]model.Expense, analysis.Window) {
	now := time.Date(2025, 6, 20, 12, 0, 0, 0, cet)
	expenses := []model.Expense{
		exp("12.50", model.CategoryFood, "Trattoria", time.Date(2025, 6, 18, 13, 0, 0, 0, cet)),
		exp("40", model.CategoryShopping, "Amazon", time.Date(2025, 6, 18, 23, 30, 0, 0, cet)),
		exp("7.50", model.CategoryFood, "", time.Date(2025, 6, 20, 8, 0, 0, 0, cet)),
		exp("9.99", model.CategorySubscriptions, "Netflix", time.Date(2025, 6, 19, 9, 0, 0, 0, cet)),
		exp("500", model.CategoryTravel, "Ryanair", time.Date(2025, 5, 1, 9, 0, 0, 0, cet)),
	}
	return expenses, analysis.SelectWindow(analysis.Last7d, now)
}

func TestSummarize(t *testing.T) {
	expenses, w := fixture()
	s := Summarize(expenses, w)

	if s.Expenses != 4 {
		t.Errorf("Expenses = %d, want 4", s.Expenses)
	}
	if !s.Total.Equal(decimal.RequireFromString("69.99")) {
		t.Errorf("Total = %s, want 69.99", s.Total)
	}
	if s.ActiveDays != 3 {
		t.Errorf("ActiveDays = %d, want 3", s.ActiveDays)
	}
	if s.NightCount != 1 {
		t.Errorf("NightCount = %d, want 1", s.NightCount)
	}
	if !s.Largest.Equal(decimal.NewFromInt(40)) {
		t.Errorf("Largest = %s, want 40", s.Largest)
	}
	if !s.PerActiveDay.Equal(decimal.RequireFromString("23.33")) {
		t.Errorf("PerActiveDay = %s, want 23.33", s.PerActiveDay)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	_, w := fixture()
	s := Summarize(nil, w)
	if s.Expenses != 0 || !s.Total.IsZero() || !s.PerActiveDay.IsZero() {
		t.Errorf("expected zero summary, got %+v", s)
	}
}

func TestAggregateDays(t *testing.T) {
	expenses, w := fixture()
	days := AggregateDays(expenses, w)

	// 13th through 20th inclusive.
	if len(days) != 8 {
		t.Fatalf("got %d days, want 8", len(days))
	}
	if !days[0].Date.Equal(time.Date(2025, 6, 20, 0, 0, 0, 0, cet)) {
		t.Errorf("first day = %v, want most recent", days[0].Date)
	}

	var d18 model.DailyStats
	for _, d := range days {
		if d.Date.Day() == 18 {
			d18 = d
		}
	}
	if d18.Expenses != 2 || !d18.Total.Equal(decimal.RequireFromString("52.5")) {
		t.Errorf("18th = %d expenses / %s, want 2 / 52.5", d18.Expenses, d18.Total)
	}
	if d18.NightCount != 1 || !d18.NightTotal.Equal(decimal.NewFromInt(40)) {
		t.Errorf("18th night = %d / %s, want 1 / 40", d18.NightCount, d18.NightTotal)
	}
	if !days[len(days)-1].Total.IsZero() {
		t.Error("gap days should be zero")
	}
}

func TestAggregateHourly(t *testing.T) {
	expenses, w := fixture()
	hours := AggregateHourly(expenses, w)

	if len(hours) != 24 {
		t.Fatalf("got %d hours, want 24", len(hours))
	}
	if hours[23].Expenses != 1 || hours[9].Expenses != 1 || hours[8].Expenses != 1 {
		t.Errorf("unexpected hourly distribution: 8=%d 9=%d 23=%d",
			hours[8].Expenses, hours[9].Expenses, hours[23].Expenses)
	}
}

func TestAggregateTodayHourly(t *testing.T) {
	expenses, w := fixture()
	hours := AggregateTodayHourly(expenses, w.End)

	total := 0
	for _, h := range hours {
		total += h.Expenses
	}
	if total != 1 {
		t.Errorf("today has %d expenses, want 1", total)
	}
}

func TestAggregateCategories(t *testing.T) {
	expenses, w := fixture()
	cats := AggregateCategories(expenses, w)

	if len(cats) != 3 {
		t.Fatalf("got %d categories, want 3", len(cats))
	}
	if cats[0].Category != model.CategoryShopping {
		t.Errorf("top category = %s, want shopping", cats[0].Category)
	}
	if cats[1].Category != model.CategoryFood || cats[1].Expenses != 2 {
		t.Errorf("second = %+v, want food with 2 expenses", cats[1])
	}

	var share float64
	for _, c := range cats {
		share += c.SharePercent
	}
	if share < 99.999 || share > 100.001 {
		t.Errorf("shares sum to %f, want 100", share)
	}
}

func TestAggregateMerchants(t *testing.T) {
	expenses, w := fixture()
	merchants := AggregateMerchants(expenses, w)

	if len(merchants) != 4 {
		t.Fatalf("got %d merchants, want 4", len(merchants))
	}
	if merchants[0].Merchant != "Amazon" {
		t.Errorf("top merchant = %s, want Amazon", merchants[0].Merchant)
	}
	found := false
	for _, m := range merchants {
		if m.Merchant == UnknownMerchant {
			found = true
		}
	}
	if !found {
		t.Error("expenses without merchant should be grouped as Unknown")
	}
}

func TestFilterByCategory(t *testing.T) {
	expenses, _ := fixture()

	if got := FilterByCategory(expenses, ""); len(got) != len(expenses) {
		t.Errorf("empty filter returned %d, want all", len(got))
	}
	if got := FilterByCategory(expenses, model.CategoryFood); len(got) != 2 {
		t.Errorf("food filter returned %d, want 2", len(got))
	}
}

func TestFilterByMerchant(t *testing.T) {
	expenses, _ := fixture()

	if got := FilterByMerchant(expenses, "netf"); len(got) != 1 {
		t.Errorf("merchant filter returned %d, want 1", len(got))
	}
	// Title match: the food expense without merchant has title "food".
	if got := FilterByMerchant(expenses, "FOOD"); len(got) != 2 {
		t.Errorf("title filter returned %d, want 2", len(got))
	}
}
