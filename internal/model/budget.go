package model

import "github.com/shopspring/decimal"

// BudgetStats holds month-to-date budget tracking and forecast data.
type BudgetStats struct {
	MonthlyBudget     decimal.Decimal `json:"monthly_budget"`
	CurrentSpend      decimal.Decimal `json:"current_spend"`
	DailyBurnRate     decimal.Decimal `json:"daily_burn_rate"`
	ProjectedMonthly  decimal.Decimal `json:"projected_monthly"`
	DaysRemaining     int             `json:"days_remaining"`
	BudgetUsedPercent float64         `json:"budget_used_percent"`
}

// OverBudget reports whether the projection exceeds the budget.
func (b BudgetStats) OverBudget() bool {
	return b.MonthlyBudget.IsPositive() && b.ProjectedMonthly.GreaterThan(b.MonthlyBudget)
}
