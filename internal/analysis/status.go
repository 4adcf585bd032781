package analysis

import (
	"fmt"
	"time"

	"github.com/receiptia/receiptia/internal/model"

	"github.com/shopspring/decimal"
)

const statusTemplate = "You're spending %s than usual"

// statusMessage fills the template so the highlighted word is always a
// literal substring of the message.
func statusMessage(template, word string) (string, string) {
	return fmt.Sprintf(template, word), word
}

// ComposeStatus summarizes the given (already windowed) expenses.
// Today and yesterday are calendar days in now's location.
func ComposeStatus(expenses []model.Expense, now time.Time) model.SpendingStatus {
	loc := now.Location()
	yesterday := now.AddDate(0, 0, -1)

	total := decimal.Zero
	today := decimal.Zero
	prior := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
		switch {
		case sameDay(e.Timestamp, now, loc):
			today = today.Add(e.Amount)
		case sameDay(e.Timestamp, yesterday, loc):
			prior = prior.Add(e.Amount)
		}
	}

	delta := today.Sub(prior)

	var msg, word string
	switch delta.Sign() {
	case -1:
		msg, word = statusMessage(statusTemplate, "less")
	case 1:
		msg, word = statusMessage(statusTemplate, "more")
	default:
		msg, word = statusMessage("Your spending is %s", "steady")
	}

	return model.SpendingStatus{
		AmountLast24h:       total,
		ComparisonYesterday: delta,
		IsSpendingLess:      delta.IsNegative(),
		StatusMessage:       msg,
		HighlightedWord:     word,
	}
}
