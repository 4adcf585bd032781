package components

import (
	"strings"

	"github.com/receiptia/receiptia/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// StatusInfo is the state shown in the bottom status bar.
type StatusInfo struct {
	DataAge     string
	Refreshing  bool
	AutoRefresh bool
	// BudgetPct is month-to-date spend over the monthly budget; negative hides the gauge.
	BudgetPct float64
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, info StatusInfo) string {
	t := theme.Active
	bg := lipgloss.NewStyle().Background(t.Surface)
	muted := bg.Foreground(t.TextMuted)
	accent := bg.Foreground(t.Accent)

	left := muted.Render(" [?]help  [r]efresh  [q]uit")

	var right []string
	if info.BudgetPct >= 0 && width >= 100 {
		right = append(right, CompactBudgetBar("Budget", info.BudgetPct, 24))
	}
	switch {
	case info.Refreshing:
		right = append(right, accent.Render("↻ refreshing"))
	case info.AutoRefresh:
		right = append(right, muted.Render("auto"))
	}
	if info.DataAge != "" {
		right = append(right, muted.Render("loaded in "+info.DataAge))
	}
	rightStr := strings.Join(right, bg.Render("  ")) + bg.Render(" ")

	padding := max(0, width-lipgloss.Width(left)-lipgloss.Width(rightStr))
	return left + bg.Render(strings.Repeat(" ", padding)) + rightStr
}
