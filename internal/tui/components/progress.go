package components

import (
	"fmt"
	"strings"

	"github.com/receiptia/receiptia/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// ProgressBar renders the loading bar with a trailing percentage.
func ProgressBar(pct float64, width int) string {
	t := theme.Active
	pct = clamp01(pct)
	filled := int(pct * float64(width))

	var barColor lipgloss.Color
	switch {
	case pct >= 0.8:
		barColor = t.AccentBright
	case pct >= 0.5:
		barColor = t.Accent
	default:
		barColor = t.Cyan
	}

	filledStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface)
	emptyStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	var b strings.Builder
	b.WriteString(filledStyle.Render(strings.Repeat("█", filled)))
	b.WriteString(emptyStyle.Render(strings.Repeat("░", width-filled)))
	return b.String() + spaceStyle.Render(" ") + pctStyle.Render(fmt.Sprintf("%.0f%%", pct*100))
}

// ColorForBudget returns green/yellow/orange/red as budget use grows.
// pct is a fraction where 1 means the whole budget is spent.
func ColorForBudget(pct float64) lipgloss.Color {
	t := theme.Active
	switch {
	case pct >= 1:
		return t.Red
	case pct >= 0.8:
		return t.Orange
	case pct >= 0.6:
		return t.Yellow
	default:
		return t.Green
	}
}

func clamp01(pct float64) float64 {
	return max(0, min(pct, 1))
}

// BudgetBar renders a labelled budget bar with percentage and a caption
// such as "12 days left".
func BudgetBar(label string, pct float64, caption string, labelW, barWidth int) string {
	t := theme.Active
	color := ColorForBudget(pct)

	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)
	captionStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, label)) +
		spaceStyle.Render(" ") +
		bar.ViewAs(clamp01(pct)) +
		spaceStyle.Render(" ") +
		pctStyle.Render(fmt.Sprintf("%3.0f%%", pct*100)) +
		spaceStyle.Render("  ") +
		captionStyle.Render(caption)
}

// CompactBudgetBar renders a status-bar-sized budget indicator.
func CompactBudgetBar(label string, pct float64, width int) string {
	t := theme.Active
	color := ColorForBudget(pct)

	barW := max(4, width-lipgloss.Width(label)-6)
	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(barW),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	return labelStyle.Render(label) +
		spaceStyle.Render(" ") +
		bar.ViewAs(clamp01(pct)) +
		spaceStyle.Render(" ") +
		pctStyle.Render(fmt.Sprintf("%2.0f%%", pct*100))
}
