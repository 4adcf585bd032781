// Package components provides reusable TUI widgets for the receiptia dashboard.
package components

import (
	"strings"

	"github.com/receiptia/receiptia/internal/cli"
	"github.com/receiptia/receiptia/internal/model"
	"github.com/receiptia/receiptia/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// LayoutRow distributes totalWidth into n widths that sum to exactly totalWidth.
// First items absorb the remainder from integer division.
func LayoutRow(totalWidth, n int) []int {
	if n <= 0 {
		return nil
	}
	base := totalWidth / n
	remainder := totalWidth % n
	widths := make([]int, n)
	for i := range widths {
		widths[i] = base
		if i < remainder {
			widths[i]++
		}
	}
	return widths
}

// Metric is one entry of a MetricCardRow.
type Metric struct {
	Label string
	Value string
	Delta string
}

func cardStyle(border lipgloss.Color, outerWidth int) lipgloss.Style {
	t := theme.Active
	contentWidth := outerWidth - 2
	if contentWidth < 10 {
		contentWidth = 10
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		BorderBackground(t.Background).
		Background(t.Surface).
		Width(contentWidth).
		Padding(0, 1)
}

// MetricCard renders a small metric card with label, value, and delta.
// outerWidth is the total rendered width including border.
func MetricCard(m Metric, outerWidth int) string {
	t := theme.Active

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)
	deltaStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	content := labelStyle.Render(m.Label) + "\n" + valueStyle.Render(m.Value)
	if m.Delta != "" {
		content += "\n" + deltaStyle.Render(m.Delta)
	}
	return cardStyle(t.Border, outerWidth).Render(content)
}

// MetricCardRow renders a row of metric cards whose widths sum to totalWidth.
func MetricCardRow(metrics []Metric, totalWidth int) string {
	if len(metrics) == 0 {
		return ""
	}
	widths := LayoutRow(totalWidth, len(metrics))
	rendered := make([]string, len(metrics))
	for i, m := range metrics {
		rendered[i] = MetricCard(m, widths[i])
	}
	return CardRow(rendered)
}

// ContentCard renders a bordered content card with an optional title.
func ContentCard(title, body string, outerWidth int) string {
	return AccentCard(title, body, theme.Active.Border, outerWidth)
}

// AccentCard is a ContentCard with a custom border color.
func AccentCard(title, body string, border lipgloss.Color, outerWidth int) string {
	t := theme.Active
	titleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Bold(true)

	content := ""
	if title != "" {
		content = titleStyle.Render(title) + "\n"
	}
	content += body
	return cardStyle(border, outerWidth).Render(content)
}

// CardRow joins pre-rendered cards horizontally. Shorter cards are padded
// with background-filled lines so the row has no unstyled cells.
func CardRow(cards []string) string {
	var nonEmpty []string
	maxH := 0
	for _, c := range cards {
		if c == "" {
			continue
		}
		nonEmpty = append(nonEmpty, c)
		if h := lipgloss.Height(c); h > maxH {
			maxH = h
		}
	}
	if len(nonEmpty) == 0 {
		return ""
	}

	fill := lipgloss.NewStyle().Background(theme.Active.Background)
	for i, c := range nonEmpty {
		h := lipgloss.Height(c)
		if h < maxH {
			blank := fill.Render(strings.Repeat(" ", lipgloss.Width(c)))
			nonEmpty[i] = c + strings.Repeat("\n"+blank, maxH-h)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, nonEmpty...)
}

// CardInnerWidth returns the usable text width inside a ContentCard
// given its outer width (subtracts border + padding).
func CardInnerWidth(outerWidth int) int {
	w := outerWidth - 4
	if w < 10 {
		w = 10
	}
	return w
}

// StatusCard renders the spending status with its highlighted word
// colored by direction.
func StatusCard(s model.SpendingStatus, currency, rangeLabel string, outerWidth int) string {
	t := theme.Active
	bg := lipgloss.NewStyle().Background(t.Surface)

	hlColor := t.Accent
	switch s.HighlightedWord {
	case "less":
		hlColor = t.GreenBright
	case "more":
		hlColor = t.Orange
	}

	amountStyle := bg.Foreground(t.TextPrimary).Bold(true)
	textStyle := bg.Foreground(t.TextPrimary)
	hlStyle := bg.Foreground(hlColor).Bold(true)
	dimStyle := bg.Foreground(t.TextDim)

	prefix, word, suffix := s.Split()

	var b strings.Builder
	b.WriteString(amountStyle.Render(cli.FormatMoney(s.AmountLast24h, currency)))
	b.WriteString("\n")
	b.WriteString(textStyle.Render(prefix) + hlStyle.Render(word) + textStyle.Render(suffix))
	if !s.ComparisonYesterday.IsZero() {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(s.ComparisonText(currency)))
	}

	return AccentCard(rangeLabel, b.String(), t.BorderAccent, outerWidth)
}

// InsightCard renders one insight with the border in its type's accent color.
func InsightCard(in model.Insight, currency string, outerWidth int) string {
	t := theme.Active
	accent := cli.HexColor(in.Type.AccentColorHex())
	if t.Name == theme.Terminal.Name {
		accent = t.Accent
	}
	bg := lipgloss.NewStyle().Background(t.Surface)

	var b strings.Builder
	b.WriteString(bg.Foreground(accent).Bold(true).Render(in.Type.Emoji() + " " + in.Title))
	b.WriteString("\n")
	b.WriteString(bg.Foreground(t.TextPrimary).Width(CardInnerWidth(outerWidth)).Render(in.Description))
	if in.ActionSuggestion != "" {
		b.WriteString("\n")
		b.WriteString(bg.Foreground(t.TextMuted).Render("→ " + in.ActionSuggestion))
	}
	if in.PotentialSavings != nil && in.PotentialSavings.IsPositive() {
		b.WriteString("\n")
		b.WriteString(bg.Foreground(t.TextDim).Render("Potential savings "))
		b.WriteString(bg.Foreground(t.GreenBright).Bold(true).Render(cli.FormatMoney(*in.PotentialSavings, currency)))
	}

	return AccentCard("", b.String(), accent, outerWidth)
}
