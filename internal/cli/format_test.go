package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/receiptia/receiptia/internal/model"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "€0.00"},
		{"4.2", "€4.20"},
		{"99.999", "€100.00"},
		{"123.4", "€123"},
		{"1234.5", "€1,235"},
		{"1234567", "€1,234,567"},
		{"-45", "-€45.00"},
	}
	for _, tt := range tests {
		if got := FormatMoney(decimal.RequireFromString(tt.in), "€"); got != tt.want {
			t.Errorf("FormatMoney(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatMoneyShort(t *testing.T) {
	if got := FormatMoneyShort(decimal.RequireFromString("1999.99"), "$"); got != "$1,999" {
		t.Errorf("FormatMoneyShort = %q, want $1,999", got)
	}
}

func TestFormatDelta(t *testing.T) {
	if got := FormatDelta(decimal.NewFromInt(5), "€"); got != "+€5.00" {
		t.Errorf("FormatDelta(5) = %q", got)
	}
	if got := FormatDelta(decimal.NewFromInt(-5), "€"); got != "-€5.00" {
		t.Errorf("FormatDelta(-5) = %q", got)
	}
}

func TestFormatNumber(t *testing.T) {
	tests := map[int64]string{0: "0", 999: "999", 1000: "1,000", -1234567: "-1,234,567"}
	for in, want := range tests {
		if got := FormatNumber(in); got != want {
			t.Errorf("FormatNumber(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatRelative(t *testing.T) {
	now := time.Date(2025, 6, 20, 12, 0, 0, 0, time.UTC)
	if got := FormatRelative(now.Add(-3*time.Hour), now); got != "3 hours ago" {
		t.Errorf("FormatRelative = %q", got)
	}
}

func TestRenderTableAlignsMultibyteCells(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Day", "Spent"},
		Rows: [][]string{
			{"Mon", "€4.20"},
			{"---"},
			{"Total", "€1,234"},
		},
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 7 {
		t.Fatalf("got %d lines, want 7:\n%s", len(lines), out)
	}
	width := lipgloss.Width(lines[0])
	for i, line := range lines {
		if w := lipgloss.Width(line); w != width {
			t.Errorf("line %d width = %d, want %d: %q", i, w, width, line)
		}
	}
}

func TestRenderStatus(t *testing.T) {
	s := model.SpendingStatus{
		AmountLast24h:       decimal.NewFromInt(65),
		ComparisonYesterday: decimal.NewFromInt(-45),
		IsSpendingLess:      true,
		StatusMessage:       "You're spending less than usual",
		HighlightedWord:     "less",
	}

	out := RenderStatus(s, "€", "Last 24h")
	for _, want := range []string{"€65.00", "less than usual", "€45 less than yesterday", "Last 24h"} {
		if !strings.Contains(out, want) {
			t.Errorf("status missing %q:\n%s", want, out)
		}
	}
}

func TestRenderInsight(t *testing.T) {
	savings := decimal.NewFromInt(10)
	in := model.Insight{
		Title:            "Night purchases",
		Description:      "50% of your impulsive spending happens after 22:00",
		Type:             model.InsightNightPurchase,
		ActionSuggestion: "Mute shopping notifications in the evening?",
		PotentialSavings: &savings,
	}

	out := RenderInsight(in, "€")
	for _, want := range []string{"Night purchases", "after 22:00", "Mute shopping", "€10.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("insight missing %q:\n%s", want, out)
		}
	}

	in.PotentialSavings = nil
	if strings.Contains(RenderInsight(in, "€"), "Potential savings") {
		t.Error("insight without savings should not print a savings line")
	}
}

func TestRenderSparkline(t *testing.T) {
	if got := RenderSparkline([]float64{0, 4, 8}); got != "▁▄█" {
		t.Errorf("RenderSparkline = %q", got)
	}
	if got := RenderSparkline(nil); got != "" {
		t.Errorf("RenderSparkline(nil) = %q", got)
	}
}

func TestInsightsOrSamples(t *testing.T) {
	now := time.Date(2025, 6, 20, 12, 0, 0, 0, time.UTC)

	got, substituted := InsightsOrSamples(nil, now, "€")
	if !substituted || len(got) != 3 {
		t.Fatalf("empty input: substituted=%v len=%d, want true 3", substituted, len(got))
	}
	wantTypes := []model.InsightType{model.InsightNightPurchase, model.InsightSmartSuggestion, model.InsightSavingsOpportunity}
	for i, in := range got {
		if in.Type != wantTypes[i] {
			t.Errorf("sample[%d].Type = %s, want %s", i, in.Type, wantTypes[i])
		}
	}
	if !strings.Contains(got[2].Description, "€150/month") {
		t.Errorf("savings sample description = %q", got[2].Description)
	}

	computed := []model.Insight{{ID: "x", Type: model.InsightWarning}}
	got, substituted = InsightsOrSamples(computed, now, "€")
	if substituted || len(got) != 1 || got[0].ID != "x" {
		t.Errorf("computed insights should pass through unchanged, got %v (substituted=%v)", got, substituted)
	}
}
