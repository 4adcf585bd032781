package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyStats holds metrics for a single calendar day.
type DailyStats struct {
	Date       time.Time
	Expenses   int
	Total      decimal.Decimal
	NightCount int
	NightTotal decimal.Decimal
	Impulsive  int
}

// HourlyStats holds expense counts for one hour of the day.
type HourlyStats struct {
	Hour     int
	Expenses int
	Total    decimal.Decimal
}

// CategoryStats holds aggregated spend for one category.
type CategoryStats struct {
	Category     Category
	Expenses     int
	Total        decimal.Decimal
	SharePercent float64
}

// MerchantStats holds aggregated spend for one merchant.
type MerchantStats struct {
	Merchant string
	Category Category
	Expenses int
	Total    decimal.Decimal
	First    time.Time
	Last     time.Time
}

// SummaryStats holds the top-level aggregate across a window.
type SummaryStats struct {
	Expenses     int
	Total        decimal.Decimal
	ActiveDays   int
	NightCount   int
	Impulsive    int
	PerActiveDay decimal.Decimal
	Largest      decimal.Decimal
}
