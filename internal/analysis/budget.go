package analysis

import (
	"time"

	"github.com/receiptia/receiptia/internal/model"

	"github.com/shopspring/decimal"
)

// ComputeBudget tracks month-to-date spend against a monthly budget and
// projects the month-end total from the current daily burn rate.
func ComputeBudget(expenses []model.Expense, monthly decimal.Decimal, now time.Time) model.BudgetStats {
	month := SelectWindow(ThisMonth, now)
	spend := model.SumAmounts(month.Filter(expenses))

	daysInMonth := month.Start.AddDate(0, 1, -1).Day()
	elapsed := now.Day()

	stats := model.BudgetStats{
		MonthlyBudget: monthly,
		CurrentSpend:  spend,
		DaysRemaining: daysInMonth - elapsed,
	}

	stats.DailyBurnRate = spend.Div(decimal.NewFromInt(int64(elapsed)))
	stats.ProjectedMonthly = stats.DailyBurnRate.Mul(decimal.NewFromInt(int64(daysInMonth)))
	if monthly.IsPositive() {
		stats.BudgetUsedPercent = spend.Div(monthly).Mul(decimal.NewFromInt(100)).InexactFloat64()
	}

	return stats
}
