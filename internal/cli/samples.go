package cli

import (
	"fmt"
	"time"

	"github.com/receiptia/receiptia/internal/model"

	"github.com/shopspring/decimal"
)

// sampleSavings is the placeholder figure used by the sample cards.
var sampleSavings = decimal.NewFromInt(150)

// SampleInsights returns the static cards shown when no detector fired.
// They are placeholders, never derived from the user's expenses.
func SampleInsights(now time.Time, currency string) []model.Insight {
	savings := sampleSavings
	return []model.Insight{
		{
			ID:               "sample-night",
			Icon:             "moon.fill",
			Title:            "Night purchases",
			Description:      "60% of your impulsive spending happens after 22:00",
			Type:             model.InsightNightPurchase,
			ActionSuggestion: "Mute shopping notifications in the evening?",
			PotentialSavings: &savings,
			CreatedAt:        now,
		},
		{
			ID:               "sample-focus",
			Icon:             "brain.head.profile",
			Title:            "Smart suggestion",
			Description:      "Mute shopping notifications in the evening?",
			Type:             model.InsightSmartSuggestion,
			ActionSuggestion: "Turn on focus mode after 22:00",
			CreatedAt:        now,
		},
		{
			ID:               "sample-savings",
			Icon:             "eurosign.circle.fill",
			Title:            "Savings potential",
			Description:      fmt.Sprintf("You could have saved %s150/month by avoiding night purchases", currency),
			Type:             model.InsightSavingsOpportunity,
			PotentialSavings: &savings,
			CreatedAt:        now,
		},
	}
}

// InsightsOrSamples returns the computed insights, or the sample cards when
// there are none. The flag reports whether samples were substituted.
func InsightsOrSamples(computed []model.Insight, now time.Time, currency string) ([]model.Insight, bool) {
	if len(computed) > 0 {
		return computed, false
	}
	return SampleInsights(now, currency), true
}
