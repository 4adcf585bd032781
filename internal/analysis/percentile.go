package analysis

import (
	"fmt"

	"github.com/receiptia/receiptia/internal/model"

	"github.com/shopspring/decimal"
)

// Reference population for weekly spend.
var (
	referenceMean   = decimal.NewFromInt(250)
	referenceStdDev = decimal.NewFromInt(100)
)

// percentileSteps maps z-score upper bounds to "better than X%" values.
var percentileSteps = []struct {
	maxZ       decimal.Decimal
	percentile int
}{
	{decimal.NewFromInt(-2), 95},
	{decimal.NewFromInt(-1), 84},
	{decimal.Zero, 60},
	{decimal.NewFromInt(1), 30},
}

const topPercentile = 10

// ZScore returns (weeklyTotal - mean) / stddev against the reference population.
func ZScore(weeklyTotal decimal.Decimal) decimal.Decimal {
	return weeklyTotal.Sub(referenceMean).Div(referenceStdDev)
}

// Percentile maps a weekly total to the share of users it beats.
// Lower spending yields a higher value. The mapping is a step function.
func Percentile(weeklyTotal decimal.Decimal) int {
	z := ZScore(weeklyTotal)
	for _, step := range percentileSteps {
		if z.LessThanOrEqual(step.maxZ) {
			return step.percentile
		}
	}
	return topPercentile
}

// Compare builds the user-facing comparison for a weekly total.
func Compare(weeklyTotal decimal.Decimal) model.SpendingComparison {
	p := Percentile(weeklyTotal)
	return model.SpendingComparison{
		Percentile: p,
		Message:    fmt.Sprintf("You were more disciplined than %d%% of users this week", p),
		IsPositive: p >= 50,
	}
}
