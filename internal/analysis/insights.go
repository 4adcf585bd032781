package analysis

import (
	"fmt"
	"time"

	"github.com/receiptia/receiptia/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// nightPercentThreshold is the minimum share of night purchases that
// triggers the night-purchase insight.
const nightPercentThreshold = 20

const unknownMerchant = "Unknown"

var half = decimal.NewFromFloat(0.5)

// Input is the immutable snapshot every detector runs over.
type Input struct {
	Expenses []model.Expense
	Now      time.Time
	Currency string
}

func (in Input) local(t time.Time) time.Time {
	return t.In(in.Now.Location())
}

func (in Input) nightPurchases() []model.Expense {
	var night []model.Expense
	for _, e := range in.Expenses {
		if IsNightPurchase(in.local(e.Timestamp)) {
			night = append(night, e)
		}
	}
	return night
}

// Detector inspects the input and returns at most one insight.
type Detector func(in Input) (model.Insight, bool)

// DefaultDetectors is the fixed detector pipeline, in output order.
var DefaultDetectors = []Detector{
	DetectNightPurchases,
	SuggestFocusMode,
	DetectSavingsPotential,
	DetectForgottenSubscriptions,
}

// InsightSet is the ordered output of one pipeline run.
// An empty set is a valid outcome; callers decide what to show instead.
type InsightSet []model.Insight

// Empty reports whether no detector produced an insight.
func (s InsightSet) Empty() bool { return len(s) == 0 }

// PotentialSavings returns the largest savings figure carried by a single
// insight. Detector figures overlap (night spend is also flagged spend), so
// they are never summed.
func (s InsightSet) PotentialSavings() decimal.Decimal {
	best := decimal.Zero
	for _, in := range s {
		if in.PotentialSavings != nil && in.PotentialSavings.GreaterThan(best) {
			best = *in.PotentialSavings
		}
	}
	return best
}

// GenerateInsights runs every detector over the same input, in order.
// A detector that abstains does not stop the ones after it.
func GenerateInsights(in Input, detectors []Detector) InsightSet {
	insights := InsightSet{}
	for _, detect := range detectors {
		if insight, ok := detect(in); ok {
			insights = append(insights, insight)
		}
	}
	return insights
}

func newInsight(in Input, typ model.InsightType, icon, title, description string) model.Insight {
	return model.Insight{
		ID:          uuid.NewString(),
		Icon:        icon,
		Title:       title,
		Description: description,
		Type:        typ,
		CreatedAt:   in.Now,
	}
}

// NightPurchasePercent returns the share of night purchases as a whole
// percentage rounded down, and the night purchases themselves.
func NightPurchasePercent(in Input) (int, []model.Expense) {
	if len(in.Expenses) == 0 {
		return 0, nil
	}
	night := in.nightPurchases()
	return len(night) * 100 / len(in.Expenses), night
}

// DetectNightPurchases fires when at least 20% of purchases happen at night.
// Potential savings are half of the night spend.
func DetectNightPurchases(in Input) (model.Insight, bool) {
	percent, night := NightPurchasePercent(in)
	if len(night) == 0 || percent < nightPercentThreshold {
		return model.Insight{}, false
	}

	savings := model.SumAmounts(night).Mul(half)
	insight := newInsight(in, model.InsightNightPurchase, "moon.fill",
		"Night purchases",
		fmt.Sprintf("%d%% of your impulsive spending happens after 22:00", percent))
	insight.ActionSuggestion = "Mute shopping notifications in the evening?"
	insight.PotentialSavings = &savings
	return insight, true
}

// SuggestFocusMode fires on any night purchase, regardless of share.
func SuggestFocusMode(in Input) (model.Insight, bool) {
	if len(in.nightPurchases()) == 0 {
		return model.Insight{}, false
	}

	insight := newInsight(in, model.InsightSmartSuggestion, "brain.head.profile",
		"Smart suggestion",
		"Mute shopping notifications in the evening?")
	insight.ActionSuggestion = "Turn on focus mode after 22:00"
	return insight, true
}

// DetectSavingsPotential sums every expense flagged impulsive or night purchase.
func DetectSavingsPotential(in Input) (model.Insight, bool) {
	var flagged []model.Expense
	for _, e := range in.Expenses {
		if e.IsImpulsive || e.IsNightPurchase {
			flagged = append(flagged, e)
		}
	}
	if len(flagged) == 0 {
		return model.Insight{}, false
	}

	savings := model.SumAmounts(flagged)
	insight := newInsight(in, model.InsightSavingsOpportunity, "eurosign.circle.fill",
		"Savings potential",
		fmt.Sprintf("You could have saved %s%s/month by avoiding night purchases",
			in.Currency, savings.Truncate(0).String()))
	insight.PotentialSavings = &savings
	return insight, true
}

// SubscriptionGroup is a set of subscription expenses sharing a merchant.
type SubscriptionGroup struct {
	Merchant string
	Expenses []model.Expense
}

// MonthlyCharge approximates one billing cycle with the group's first charge.
func (g SubscriptionGroup) MonthlyCharge() decimal.Decimal {
	if len(g.Expenses) == 0 {
		return decimal.Zero
	}
	return g.Expenses[0].Amount
}

// RecurringSubscriptions groups subscription expenses by merchant and keeps
// the groups with two or more charges, ordered by first appearance.
// Expenses without a merchant share a single "Unknown" group.
func RecurringSubscriptions(expenses []model.Expense) []SubscriptionGroup {
	var groups []SubscriptionGroup
	byMerchant := make(map[string]int)

	for _, e := range expenses {
		if e.Category != model.CategorySubscriptions {
			continue
		}
		merchant := e.Merchant
		if merchant == "" {
			merchant = unknownMerchant
		}
		i, ok := byMerchant[merchant]
		if !ok {
			i = len(groups)
			byMerchant[merchant] = i
			groups = append(groups, SubscriptionGroup{Merchant: merchant})
		}
		groups[i].Expenses = append(groups[i].Expenses, e)
	}

	n := 0
	for _, g := range groups {
		if len(g.Expenses) >= 2 {
			groups[n] = g
			n++
		}
	}
	return groups[:n]
}

// DetectForgottenSubscriptions reports recurring subscriptions and their
// approximate monthly cost (one charge per merchant).
func DetectForgottenSubscriptions(in Input) (model.Insight, bool) {
	recurring := RecurringSubscriptions(in.Expenses)
	if len(recurring) == 0 {
		return model.Insight{}, false
	}

	total := decimal.Zero
	for _, g := range recurring {
		total = total.Add(g.MonthlyCharge())
	}

	insight := newInsight(in, model.InsightForgottenSubscription, "repeat.circle.fill",
		"Active subscriptions",
		fmt.Sprintf("You have %d subscriptions costing %s%s/month. Do you need them all?",
			len(recurring), in.Currency, total.Truncate(0).String()))
	insight.ActionSuggestion = "Review your subscriptions"
	return insight, true
}
