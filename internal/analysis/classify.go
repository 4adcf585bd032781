package analysis

import (
	"time"

	"github.com/receiptia/receiptia/internal/model"

	"github.com/shopspring/decimal"
)

const (
	nightStartHour = 22
	nightEndHour   = 6
)

var compulsiveAmountThreshold = decimal.NewFromInt(50)

// impulsiveCategories are the categories where late-night purchases count as compulsive.
var impulsiveCategories = map[model.Category]bool{
	model.CategoryShopping:      true,
	model.CategoryEntertainment: true,
	model.CategoryFood:          true,
}

// IsNightPurchase reports whether ts falls between 22:00 and 06:00 on the
// wall clock of ts's own location. Callers convert to the user's zone first.
func IsNightPurchase(ts time.Time) bool {
	return IsNightHour(ts.Hour())
}

// IsNightHour reports whether an hour of day (0-23) is in the night band.
func IsNightHour(h int) bool {
	return h >= nightStartHour || h < nightEndHour
}

// IsCompulsive reports whether a purchase looks impulsive.
//
// The second clause is implied by the first under the current category set;
// it is kept so the amount threshold takes effect if the first clause changes.
func IsCompulsive(amount decimal.Decimal, category model.Category, ts time.Time) bool {
	night := IsNightPurchase(ts)
	impulsiveCategory := impulsiveCategories[category]
	highAmount := amount.GreaterThan(compulsiveAmountThreshold)

	return (night && impulsiveCategory) || (highAmount && impulsiveCategory && night)
}
