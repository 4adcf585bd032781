package analysis

import (
	"fmt"
	"testing"
	"time"

	"github.com/receiptia/receiptia/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func input(expenses ...model.Expense) Input {
	return Input{Expenses: expenses, Now: at(20, 12), Currency: "€"}
}

func TestDetectNightPurchasesScenario(t *testing.T) {
	in := input(
		expense("20", model.CategoryShopping, at(19, 23)),
		expense("30", model.CategoryFood, at(19, 10)),
	)

	insight, ok := DetectNightPurchases(in)
	require.True(t, ok)
	assert.Equal(t, model.InsightNightPurchase, insight.Type)
	require.NotNil(t, insight.PotentialSavings)
	assert.True(t, insight.PotentialSavings.Equal(dec("10")), "savings = %s", insight.PotentialSavings)
	assert.Contains(t, insight.Description, "50%")
	assert.NotEmpty(t, insight.ID)
	assert.True(t, insight.CreatedAt.Equal(in.Now))
}

func TestDetectNightPurchasesThreshold(t *testing.T) {
	build := func(night, total int) Input {
		var expenses []model.Expense
		for i := 0; i < total; i++ {
			hour := 12
			if i < night {
				hour = 23
			}
			expenses = append(expenses, expense("1", model.CategoryFood, at(19, hour)))
		}
		return input(expenses...)
	}

	tests := []struct {
		night, total int
		want         bool
	}{
		{1, 5, true},  // exactly 20%
		{1, 6, false}, // 16%
		{2, 10, true}, // 20%
		{19, 100, false},
		{20, 100, true},
		{0, 4, false},
		{3, 3, true},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_of_%d", tt.night, tt.total), func(t *testing.T) {
			_, ok := DetectNightPurchases(build(tt.night, tt.total))
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestDetectNightPurchasesEmpty(t *testing.T) {
	_, ok := DetectNightPurchases(input())
	assert.False(t, ok)
}

func TestNightPurchasesUseLocalClock(t *testing.T) {
	// 21:30 UTC is 22:30 in the user's zone.
	ts := time.Date(2025, time.June, 19, 21, 30, 0, 0, time.UTC)
	percent, night := NightPurchasePercent(input(expense("5", model.CategoryFood, ts)))
	assert.Equal(t, 100, percent)
	assert.Len(t, night, 1)
}

func TestSuggestFocusModeIgnoresThreshold(t *testing.T) {
	var expenses []model.Expense
	expenses = append(expenses, expense("5", model.CategoryShopping, at(19, 23)))
	for i := 0; i < 9; i++ {
		expenses = append(expenses, expense("5", model.CategoryFood, at(19, 12)))
	}
	in := input(expenses...)

	_, nightOK := DetectNightPurchases(in)
	assert.False(t, nightOK, "10% is below the night threshold")

	insight, ok := SuggestFocusMode(in)
	require.True(t, ok)
	assert.Equal(t, model.InsightSmartSuggestion, insight.Type)
	assert.Nil(t, insight.PotentialSavings)

	_, ok = SuggestFocusMode(input(expense("5", model.CategoryFood, at(19, 12))))
	assert.False(t, ok)
}

func TestDetectSavingsPotential(t *testing.T) {
	impulsive := expense("12.40", model.CategoryShopping, at(19, 12))
	impulsive.IsImpulsive = true
	night := expense("7.60", model.CategoryFood, at(19, 23))
	night.IsNightPurchase = true
	plain := expense("100", model.CategoryBills, at(19, 9))

	insight, ok := DetectSavingsPotential(input(impulsive, night, plain))
	require.True(t, ok)
	require.NotNil(t, insight.PotentialSavings)
	assert.True(t, insight.PotentialSavings.Equal(dec("20")))
	assert.Contains(t, insight.Description, "€20/month")

	_, ok = DetectSavingsPotential(input(plain))
	assert.False(t, ok, "unflagged expenses never count")
}

func subscription(amount, merchant string) model.Expense {
	e := expense(amount, model.CategorySubscriptions, at(19, 12))
	e.Merchant = merchant
	return e
}

func TestForgottenSubscriptionsScenario(t *testing.T) {
	in := input(
		subscription("12", "Netflix"),
		subscription("10", "Spotify"),
		subscription("12", "Netflix"),
	)

	groups := RecurringSubscriptions(in.Expenses)
	require.Len(t, groups, 1)
	assert.Equal(t, "Netflix", groups[0].Merchant)
	assert.True(t, groups[0].MonthlyCharge().Equal(dec("12")))

	insight, ok := DetectForgottenSubscriptions(in)
	require.True(t, ok)
	require.NotNil(t, insight.PotentialSavings)
	assert.True(t, insight.PotentialSavings.Equal(dec("12")))
	assert.Contains(t, insight.Description, "1 subscriptions")
}

func TestForgottenSubscriptionsUsesFirstCharge(t *testing.T) {
	in := input(
		subscription("9.99", "Netflix"),
		subscription("12.99", "Netflix"),
		subscription("4", ""),
		subscription("5", ""),
	)

	groups := RecurringSubscriptions(in.Expenses)
	require.Len(t, groups, 2)
	assert.Equal(t, "Netflix", groups[0].Merchant)
	assert.Equal(t, "Unknown", groups[1].Merchant)

	assert.True(t, groups[0].MonthlyCharge().Equal(dec("9.99")))

	insight, ok := DetectForgottenSubscriptions(in)
	require.True(t, ok)
	assert.Contains(t, insight.Description, "2 subscriptions costing €13/month")
	assert.Nil(t, insight.PotentialSavings)
}

func TestForgottenSubscriptionsSingleChargeNeverFires(t *testing.T) {
	shopping := expense("12", model.CategoryShopping, at(19, 12))
	shopping.Merchant = "Netflix"

	_, ok := DetectForgottenSubscriptions(input(subscription("12", "Netflix"), shopping))
	assert.False(t, ok)
}

func TestGenerateInsightsOrderAndIndependence(t *testing.T) {
	night := expense("20", model.CategoryShopping, at(19, 23))
	night.IsNightPurchase = true
	in := input(
		night,
		expense("30", model.CategoryFood, at(19, 10)),
		subscription("12", "Netflix"),
		subscription("12", "Netflix"),
	)

	insights := GenerateInsights(in, DefaultDetectors)
	require.False(t, insights.Empty())

	var types []model.InsightType
	for _, i := range insights {
		types = append(types, i.Type)
	}
	assert.Equal(t, []model.InsightType{
		model.InsightNightPurchase,
		model.InsightSmartSuggestion,
		model.InsightSavingsOpportunity,
		model.InsightForgottenSubscription,
	}, types)

	ids := map[string]bool{}
	for _, i := range insights {
		assert.False(t, ids[i.ID], "duplicate id %s", i.ID)
		ids[i.ID] = true
	}

	// night 10 and flagged 20 cover the same purchase; never 42
	assert.True(t, insights.PotentialSavings().Equal(dec("20")), "savings = %s", insights.PotentialSavings())
}

func TestPotentialSavingsNeverExceedsFlaggedSpend(t *testing.T) {
	night := expense("20", model.CategoryShopping, at(19, 23))
	night.IsNightPurchase = true
	insights := GenerateInsights(input(night, expense("30", model.CategoryFood, at(19, 10))), DefaultDetectors)

	require.Len(t, insights, 3)
	assert.True(t, insights.PotentialSavings().Equal(dec("20")))
	assert.True(t, InsightSet{}.PotentialSavings().IsZero())
}

func TestGenerateInsightsEmpty(t *testing.T) {
	insights := GenerateInsights(input(), DefaultDetectors)
	assert.True(t, insights.Empty())
	assert.NotNil(t, insights)

	insights = GenerateInsights(input(expense("3", model.CategoryBills, at(19, 12))), DefaultDetectors)
	assert.True(t, insights.Empty())
}
