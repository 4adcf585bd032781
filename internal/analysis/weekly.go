package analysis

import (
	"time"

	"github.com/receiptia/receiptia/internal/model"

	"github.com/shopspring/decimal"
)

// StartOfWeek returns midnight on the Monday of the week containing t,
// in t's location.
func StartOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7 // Monday = 0
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, -offset)
}

// AggregateWeek builds the seven DailySpending entries starting at weekStart.
// Expenses outside the week are ignored; days without expenses are zero.
func AggregateWeek(expenses []model.Expense, weekStart time.Time) model.WeeklySpending {
	loc := weekStart.Location()
	start := time.Date(weekStart.Year(), weekStart.Month(), weekStart.Day(), 0, 0, 0, 0, loc)

	days := make([]model.DailySpending, 7)
	index := make(map[string]int, 7)
	for i := range days {
		d := start.AddDate(0, 0, i)
		days[i] = model.DailySpending{
			Date:            d,
			Amount:          decimal.Zero,
			DayAbbreviation: d.Format("Mon"),
		}
		index[dayKey(d)] = i
	}

	for _, e := range expenses {
		i, ok := index[dayKey(e.Timestamp.In(loc))]
		if !ok {
			continue
		}
		days[i].Amount = days[i].Amount.Add(e.Amount)
	}

	return model.WeeklySpending{
		Start: start,
		End:   start.AddDate(0, 0, 6),
		Days:  days,
	}
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// sameDay reports calendar-day equality of a and b in loc.
func sameDay(a, b time.Time, loc *time.Location) bool {
	return dayKey(a.In(loc)) == dayKey(b.In(loc))
}
