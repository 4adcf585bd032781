package source

import (
	"github.com/shopspring/decimal"
)

// Ledger file formats.
const (
	FormatJSONL = "jsonl"
	FormatCSV   = "csv"
)

// RawExpense is a single line in a JSONL ledger file. Flags are pointers so
// the parser can tell "false" apart from "not recorded".
type RawExpense struct {
	ID              string           `json:"id,omitempty"`
	Amount          *decimal.Decimal `json:"amount"`
	Category        string           `json:"category"`
	Title           string           `json:"title"`
	Timestamp       string           `json:"timestamp"`
	Date            string           `json:"date,omitempty"`
	Merchant        string           `json:"merchant,omitempty"`
	Notes           string           `json:"notes,omitempty"`
	IsImpulsive     *bool            `json:"is_impulsive,omitempty"`
	IsNightPurchase *bool            `json:"is_night_purchase,omitempty"`
}

// csvColumns is the header every CSV ledger must start with. The flag
// columns are optional.
var csvColumns = []string{"date", "amount", "category", "title", "merchant", "notes", "impulsive", "night"}

// DiscoveredFile represents a ledger file found during directory scanning.
type DiscoveredFile struct {
	Path   string
	Ledger string // display name, e.g. "personal" for personal/2025.jsonl
	Format string
}
