package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// InsightType classifies a derived observation.
type InsightType string

const (
	InsightNightPurchase         InsightType = "night_purchase"
	InsightForgottenSubscription InsightType = "forgotten_subscription"
	InsightSavingsOpportunity    InsightType = "savings_opportunity"
	InsightSpendingPattern       InsightType = "spending_pattern"
	InsightSmartSuggestion       InsightType = "smart_suggestion"
	InsightAchievement           InsightType = "achievement"
	InsightWarning               InsightType = "warning"
)

// Emoji returns the tag shown next to insights of this type.
func (t InsightType) Emoji() string {
	switch t {
	case InsightNightPurchase:
		return "🌙"
	case InsightForgottenSubscription:
		return "👻"
	case InsightSavingsOpportunity:
		return "💰"
	case InsightSpendingPattern:
		return "📊"
	case InsightSmartSuggestion:
		return "🧠"
	case InsightAchievement:
		return "🏆"
	case InsightWarning:
		return "⚠️"
	}
	return ""
}

// AccentColorHex returns the card accent colour without the leading '#'.
func (t InsightType) AccentColorHex() string {
	switch t {
	case InsightNightPurchase:
		return "6B5B95"
	case InsightForgottenSubscription:
		return "FF6B6B"
	case InsightSavingsOpportunity:
		return "00FF88"
	case InsightSpendingPattern:
		return "4ECDC4"
	case InsightSmartSuggestion:
		return "00D9C0"
	case InsightAchievement:
		return "FFD700"
	case InsightWarning:
		return "FF4444"
	}
	return "999999"
}

// Insight is a single observation produced by one detector run.
// Insights are never persisted; IDs are unique per generation only.
type Insight struct {
	ID               string           `json:"id"`
	Icon             string           `json:"icon"`
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	Type             InsightType      `json:"type"`
	ActionSuggestion string           `json:"action_suggestion,omitempty"`
	PotentialSavings *decimal.Decimal `json:"potential_savings,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
}
