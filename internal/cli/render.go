package cli

import (
	"fmt"
	"strings"

	"github.com/receiptia/receiptia/internal/model"

	"github.com/charmbracelet/lipgloss"
)

// Theme colors (Flexoki Dark)
var (
	ColorBorder    = lipgloss.Color("#282726")
	ColorTextDim   = lipgloss.Color("#575653")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorGreen     = lipgloss.Color("#879A39")
	ColorOrange    = lipgloss.Color("#DA702C")
	ColorRed       = lipgloss.Color("#D14D41")
	ColorBlue      = lipgloss.Color("#4385BE")
	ColorPurple    = lipgloss.Color("#8B7EC8")
	ColorYellow    = lipgloss.Color("#D0A215")
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	valueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	moneyStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)
)

// Table represents a bordered text table for CLI output.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Widths  []int // optional column widths, auto-calculated if nil
}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	width := 55
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(width).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

// pad fills s to width display cells. Currency symbols are multi-byte, so
// widths are measured in cells rather than bytes.
func pad(s string, width int, right bool) string {
	gap := width - lipgloss.Width(s)
	if gap <= 0 {
		return s
	}
	if right {
		return strings.Repeat(" ", gap) + s
	}
	return s + strings.Repeat(" ", gap)
}

func separator(left, mid, right string, widths []int) string {
	var b strings.Builder
	b.WriteString(dimStyle.Render(left))
	for i, w := range widths {
		b.WriteString(dimStyle.Render(strings.Repeat("─", w+2)))
		if i < len(widths)-1 {
			b.WriteString(dimStyle.Render(mid))
		}
	}
	b.WriteString(dimStyle.Render(right))
	b.WriteString("\n")
	return b.String()
}

// RenderTable renders a bordered table with headers and rows.
// A row holding the single cell "---" renders as a separator.
func RenderTable(t Table) string {
	if len(t.Rows) == 0 && len(t.Headers) == 0 {
		return ""
	}

	numCols := len(t.Headers)
	if numCols == 0 && len(t.Rows) > 0 {
		numCols = len(t.Rows[0])
	}

	widths := make([]int, numCols)
	if t.Widths != nil {
		copy(widths, t.Widths)
	} else {
		for i, h := range t.Headers {
			widths[i] = max(widths[i], lipgloss.Width(h))
		}
		for _, row := range t.Rows {
			for i, cell := range row {
				if i < numCols {
					widths[i] = max(widths[i], lipgloss.Width(cell))
				}
			}
		}
	}

	var b strings.Builder

	if t.Title != "" {
		b.WriteString("  ")
		b.WriteString(headerStyle.Render(t.Title))
		b.WriteString("\n")
	}

	b.WriteString(separator("╭", "┬", "╮", widths))

	if len(t.Headers) > 0 {
		b.WriteString(dimStyle.Render("│"))
		for i, h := range t.Headers {
			b.WriteString(headerStyle.Render(" " + pad(h, widths[i], false) + " "))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")
		b.WriteString(separator("├", "┼", "┤", widths))
	}

	for _, row := range t.Rows {
		if len(row) == 1 && row[0] == "---" {
			b.WriteString(separator("├", "┼", "┤", widths))
			continue
		}

		b.WriteString(dimStyle.Render("│"))
		for i := 0; i < numCols; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			// Right-align numeric columns (all except first)
			b.WriteString(valueStyle.Render(" " + pad(cell, widths[i], i > 0) + " "))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")
	}

	b.WriteString(separator("╰", "┴", "╯", widths))

	return b.String()
}

// RenderProgressBar renders a simple text progress bar.
func RenderProgressBar(current, total int, width int) string {
	if total <= 0 {
		return ""
	}

	pct := float64(current) / float64(total)
	if pct > 1 {
		pct = 1
	}

	filled := int(pct * float64(width))
	if filled > width {
		filled = width
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("[%s] %s/%s",
		mutedStyle.Render(bar),
		FormatNumber(int64(current)),
		FormatNumber(int64(total)),
	)
}

// RenderSparkline generates a unicode block sparkline from a series of values.
func RenderSparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	peak := values[0]
	for _, v := range values[1:] {
		if v > peak {
			peak = v
		}
	}
	if peak == 0 {
		peak = 1
	}

	var b strings.Builder
	for _, v := range values {
		idx := int(v / peak * float64(len(blocks)-1))
		if idx >= len(blocks) {
			idx = len(blocks) - 1
		}
		if idx < 0 {
			idx = 0
		}
		b.WriteRune(blocks[idx])
	}

	return b.String()
}

// RenderHorizontalBar renders a bar scaled against maxValue.
func RenderHorizontalBar(value, maxValue float64, maxWidth int) string {
	if maxValue <= 0 {
		return ""
	}
	barLen := int(value / maxValue * float64(maxWidth))
	if barLen < 0 {
		barLen = 0
	}
	return strings.Repeat("█", barLen)
}

// HexColor converts a bare hex string ("FF6B6B") to a lipgloss color.
func HexColor(hex string) lipgloss.Color {
	return lipgloss.Color("#" + strings.TrimPrefix(hex, "#"))
}

// highlightColor picks the accent for the status highlight.
func highlightColor(s model.SpendingStatus) lipgloss.Color {
	switch s.HighlightedWord {
	case "less":
		return ColorGreen
	case "more":
		return ColorOrange
	}
	return ColorAccent
}

// RenderStatus renders the spending status card: the amount, the message
// with its highlighted word, and the day-over-day comparison.
func RenderStatus(s model.SpendingStatus, currency, rangeLabel string) string {
	prefix, word, suffix := s.Split()
	hl := lipgloss.NewStyle().Bold(true).Foreground(highlightColor(s))

	var b strings.Builder
	b.WriteString("  ")
	b.WriteString(mutedStyle.Render(rangeLabel))
	b.WriteString("\n  ")
	b.WriteString(moneyStyle.Render(FormatMoney(s.AmountLast24h, currency)))
	b.WriteString("\n  ")
	b.WriteString(valueStyle.Render(prefix))
	b.WriteString(hl.Render(word))
	b.WriteString(valueStyle.Render(suffix))
	b.WriteString("\n")
	if !s.ComparisonYesterday.IsZero() {
		b.WriteString("  ")
		b.WriteString(dimStyle.Render(s.ComparisonText(currency)))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderInsight renders one insight as an indented block.
func RenderInsight(in model.Insight, currency string) string {
	accent := lipgloss.NewStyle().Bold(true).Foreground(HexColor(in.Type.AccentColorHex()))

	var b strings.Builder
	fmt.Fprintf(&b, "  %s %s\n", in.Type.Emoji(), accent.Render(in.Title))
	fmt.Fprintf(&b, "     %s\n", valueStyle.Render(in.Description))
	if in.ActionSuggestion != "" {
		fmt.Fprintf(&b, "     %s %s\n", dimStyle.Render("→"), mutedStyle.Render(in.ActionSuggestion))
	}
	if in.PotentialSavings != nil && in.PotentialSavings.IsPositive() {
		fmt.Fprintf(&b, "     %s %s\n",
			mutedStyle.Render("Potential savings:"),
			lipgloss.NewStyle().Foreground(ColorGreen).Render(FormatMoney(*in.PotentialSavings, currency)))
	}
	return b.String()
}

// RenderComparison renders the percentile line, green when positive.
func RenderComparison(c model.SpendingComparison) string {
	color := ColorOrange
	if c.IsPositive {
		color = ColorGreen
	}
	return "  " + lipgloss.NewStyle().Foreground(color).Render(c.Message) + "\n"
}
