package components

import (
	"strings"
	"testing"

	"github.com/receiptia/receiptia/internal/model"
	"github.com/receiptia/receiptia/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/shopspring/decimal"
)

func init() {
	// Force TrueColor output so ANSI codes are generated in tests
	lipgloss.SetColorProfile(termenv.TrueColor)
	theme.Active = theme.Receiptia
}

func TestLayoutRowSumsToTotal(t *testing.T) {
	for _, total := range []int{80, 81, 119, 180} {
		for n := 1; n <= 5; n++ {
			sum := 0
			for _, w := range LayoutRow(total, n) {
				sum += w
			}
			if sum != total {
				t.Errorf("LayoutRow(%d, %d) sums to %d", total, n, sum)
			}
		}
	}
	if LayoutRow(80, 0) != nil {
		t.Error("LayoutRow(80, 0) should be nil")
	}
}

func TestCardRowPadsShorterCards(t *testing.T) {
	shortCard := ContentCard("Short", "Content", 22)
	tallCard := ContentCard("Tall", "Line 1\nLine 2\nLine 3\nLine 4\nLine 5", 22)

	shortLines := lipgloss.Height(shortCard)
	tallLines := lipgloss.Height(tallCard)
	if shortLines >= tallLines {
		t.Fatal("test setup: short card should be shorter than tall card")
	}

	lines := strings.Split(CardRow([]string{shortCard, tallCard}), "\n")
	if len(lines) != tallLines {
		t.Fatalf("joined height = %d, want %d", len(lines), tallLines)
	}
	for i, line := range lines {
		if w := lipgloss.Width(line); w != 44 {
			t.Errorf("line %d width = %d, want 44", i, w)
		}
		if i >= shortLines && !strings.HasPrefix(line, "\x1b[") {
			t.Errorf("padding line %d starts unstyled: %q", i, line)
		}
	}
}

func TestCardRowSkipsEmptyCards(t *testing.T) {
	card := ContentCard("Only", "x", 30)
	if got := CardRow([]string{"", card, ""}); got != card {
		t.Errorf("CardRow with empty entries should equal the single card")
	}
	if got := CardRow(nil); got != "" {
		t.Errorf("CardRow(nil) = %q", got)
	}
}

func TestStatusCardShowsHighlightAndComparison(t *testing.T) {
	s := model.SpendingStatus{
		AmountLast24h:       decimal.NewFromInt(35),
		ComparisonYesterday: decimal.NewFromInt(-45),
		IsSpendingLess:      true,
		StatusMessage:       "You are spending less than yesterday",
		HighlightedWord:     "less",
	}
	out := StatusCard(s, "€", "Last 24h", 60)
	for _, want := range []string{"€35.00", "less", "€45 less than yesterday", "Last 24h"} {
		if !strings.Contains(out, want) {
			t.Errorf("StatusCard missing %q", want)
		}
	}
}

func TestInsightCardRendersSavings(t *testing.T) {
	savings := decimal.NewFromInt(42)
	in := model.Insight{
		Title:            "Active subscriptions",
		Description:      "You have 2 subscriptions costing €42/month. Do you need them all?",
		Type:             model.InsightForgottenSubscription,
		ActionSuggestion: "Review your subscriptions",
		PotentialSavings: &savings,
	}
	out := InsightCard(in, "€", 80)
	for _, want := range []string{"👻", "Active subscriptions", "Review your subscriptions", "€42.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("InsightCard missing %q", want)
		}
	}
}
