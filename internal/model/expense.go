// Package model defines domain types for receiptia expenses and analytics.
package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Category is one of the fixed expense categories.
type Category string

const (
	CategoryFood          Category = "food"
	CategoryTransport     Category = "transport"
	CategoryShopping      Category = "shopping"
	CategoryEntertainment Category = "entertainment"
	CategoryBills         Category = "bills"
	CategorySubscriptions Category = "subscriptions"
	CategoryHealth        Category = "health"
	CategoryEducation     Category = "education"
	CategoryTravel        Category = "travel"
	CategoryOther         Category = "other"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryFood,
	CategoryTransport,
	CategoryShopping,
	CategoryEntertainment,
	CategoryBills,
	CategorySubscriptions,
	CategoryHealth,
	CategoryEducation,
	CategoryTravel,
	CategoryOther,
}

type categoryMeta struct {
	label string
	icon  string
	color string
}

var categoryInfo = map[Category]categoryMeta{
	CategoryFood:          {"Cibo", "fork.knife", "FF6B6B"},
	CategoryTransport:     {"Trasporti", "car.fill", "4ECDC4"},
	CategoryShopping:      {"Shopping", "bag.fill", "FFE66D"},
	CategoryEntertainment: {"Intrattenimento", "tv.fill", "95E1D3"},
	CategoryBills:         {"Bollette", "doc.text.fill", "F38181"},
	CategorySubscriptions: {"Abbonamenti", "repeat", "AA96DA"},
	CategoryHealth:        {"Salute", "heart.fill", "FCBAD3"},
	CategoryEducation:     {"Istruzione", "book.fill", "A8D8EA"},
	CategoryTravel:        {"Viaggi", "airplane", "FFB347"},
	CategoryOther:         {"Altro", "ellipsis.circle.fill", "999999"},
}

// ParseCategory resolves a category from its key or its Italian label.
// Matching is case-insensitive. Unknown values map to CategoryOther and ok=false.
func ParseCategory(s string) (Category, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for c, meta := range categoryInfo {
		if s == string(c) || s == strings.ToLower(meta.label) {
			return c, true
		}
	}
	return CategoryOther, false
}

// Label returns the localized display label.
func (c Category) Label() string { return categoryInfo[c].label }

// Icon returns the symbol name used by the mobile app.
func (c Category) Icon() string { return categoryInfo[c].icon }

// ColorHex returns the category accent colour without the leading '#'.
func (c Category) ColorHex() string {
	if meta, ok := categoryInfo[c]; ok {
		return meta.color
	}
	return categoryInfo[CategoryOther].color
}

// Expense is a single logged purchase. The analysis core treats it as read-only.
type Expense struct {
	ID              string          `json:"id" db:"id"`
	Amount          decimal.Decimal `json:"amount" db:"amount"`
	Category        Category        `json:"category" db:"category"`
	Title           string          `json:"title" db:"title"`
	Timestamp       time.Time       `json:"timestamp" db:"-"`
	Merchant        string          `json:"merchant,omitempty" db:"merchant"`
	Notes           string          `json:"notes,omitempty" db:"notes"`
	IsImpulsive     bool            `json:"is_impulsive" db:"is_impulsive"`
	IsNightPurchase bool            `json:"is_night_purchase" db:"is_night_purchase"`

	// SourceFile is the ledger file the expense was read from.
	SourceFile string `json:"-" db:"source_file"`
}

// SumAmounts returns the total of all expense amounts.
func SumAmounts(expenses []Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total
}
