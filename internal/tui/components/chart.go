package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/receiptia/receiptia/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

var (
	sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	barBlocks   = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
)

// Sparkline renders a unicode sparkline from values.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	peak := maxOf(values)
	if peak == 0 {
		peak = 1
	}

	var buf strings.Builder
	for _, v := range values {
		idx := int(v / peak * float64(len(sparkBlocks)-1))
		idx = max(0, min(idx, len(sparkBlocks)-1))
		buf.WriteRune(sparkBlocks[idx])
	}
	return lipgloss.NewStyle().Foreground(color).Background(theme.Active.Surface).Render(buf.String())
}

// BarChart renders a vertical bar chart with a labelled Y axis.
// Values are drawn left to right; labels, when given, must match values.
// The peak bar is drawn in the bright accent.
func BarChart(values []float64, labels []string, color lipgloss.Color, width, height int) string {
	if len(values) == 0 {
		return ""
	}
	if width < 15 || height < 3 {
		return Sparkline(values, color)
	}
	t := theme.Active

	peak := maxOf(values)
	step := chartTickStep(peak)
	intervals := int(math.Ceil(peak / step))
	for intervals > max(2, height/2) {
		step *= 2
		intervals = int(math.Ceil(peak / step))
	}
	intervals = max(1, intervals)
	ceiling := step * float64(intervals)

	rowsPerTick := max(2, height/intervals)
	chartH := rowsPerTick * intervals
	yLabelW := max(4, len(formatChartLabel(ceiling))+1)

	n := len(values)
	chartW := max(5, width-yLabelW-1)
	barW := chartW
	if n > 1 {
		barW = (chartW - (n - 1)) / n
	}
	if barW < 2 && n > 1 {
		values, labels = downsample(values, labels, max(2, (chartW+1)/3))
		n = len(values)
		barW = 2
	}
	barW = min(barW, 6)
	gap := 0
	if n > 1 {
		gap = 1
	}
	axisLen := n*barW + (n-1)*gap

	peakIdx := 0
	for i, v := range values {
		if v > values[peakIdx] {
			peakIdx = i
		}
	}

	surface := lipgloss.NewStyle().Background(t.Surface)
	axisStyle := surface.Foreground(t.TextDim)
	barStyle := surface.Foreground(color)
	peakStyle := surface.Foreground(t.AccentBright)

	var b strings.Builder
	for row := chartH; row >= 1; row-- {
		top := ceiling * float64(row) / float64(chartH)
		bottom := ceiling * float64(row-1) / float64(chartH)

		label := ""
		if row%rowsPerTick == 0 {
			label = formatChartLabel(step * float64(row/rowsPerTick))
		}
		b.WriteString(axisStyle.Render(fmt.Sprintf("%*s│", yLabelW, label)))

		for i, v := range values {
			if i > 0 {
				b.WriteString(surface.Render(strings.Repeat(" ", gap)))
			}
			style := barStyle
			if i == peakIdx && v > 0 {
				style = peakStyle
			}
			switch {
			case v >= top:
				b.WriteString(style.Render(strings.Repeat("█", barW)))
			case v > bottom:
				idx := int((v - bottom) / (top - bottom) * 8)
				idx = max(1, min(idx, 8))
				b.WriteString(style.Render(strings.Repeat(string(barBlocks[idx]), barW)))
			default:
				b.WriteString(surface.Render(strings.Repeat(" ", barW)))
			}
		}
		b.WriteString("\n")
	}

	b.WriteString(axisStyle.Render(fmt.Sprintf("%*s└%s", yLabelW, "0", strings.Repeat("─", axisLen))))

	if len(labels) == n {
		b.WriteString("\n")
		b.WriteString(surface.Render(strings.Repeat(" ", yLabelW+1)))
		b.WriteString(axisStyle.Render(xAxisLabels(labels, barW, gap, axisLen)))
	}
	return b.String()
}

// xAxisLabels places each label under its bar, skipping labels that
// would collide with the previous one.
func xAxisLabels(labels []string, barW, gap, axisLen int) string {
	buf := []rune(strings.Repeat(" ", axisLen))
	lastEnd := -1
	for i, lbl := range labels {
		pos := i * (barW + gap)
		r := []rune(lbl)
		if pos <= lastEnd || pos+len(r) > axisLen {
			continue
		}
		copy(buf[pos:], r)
		lastEnd = pos + len(r)
	}
	return strings.TrimRight(string(buf), " ")
}

func downsample(values []float64, labels []string, n int) ([]float64, []string) {
	if n >= len(values) {
		return values, labels
	}
	out := make([]float64, n)
	var outLabels []string
	if len(labels) == len(values) {
		outLabels = make([]string, n)
	}
	for i := range out {
		src := i * (len(values) - 1) / (n - 1)
		out[i] = values[src]
		if outLabels != nil {
			outLabels[i] = labels[src]
		}
	}
	return out, outLabels
}

func maxOf(values []float64) float64 {
	peak := 0.0
	for _, v := range values {
		if v > peak {
			peak = v
		}
	}
	return peak
}

// chartTickStep computes a round tick interval targeting ~5 ticks.
func chartTickStep(maxVal float64) float64 {
	if maxVal <= 0 {
		return 1
	}
	rough := maxVal / 5
	base := math.Pow(10, math.Floor(math.Log10(rough)))
	switch frac := rough / base; {
	case frac < 1.5:
		return base
	case frac < 3.5:
		return 2 * base
	default:
		return 5 * base
	}
}

// formatChartLabel renders an axis value compactly: 5, 250, 1.5k, 12k.
func formatChartLabel(v float64) string {
	switch {
	case v >= 1e6:
		return trimZero(fmt.Sprintf("%.1f", v/1e6)) + "M"
	case v >= 1e3:
		return trimZero(fmt.Sprintf("%.1f", v/1e3)) + "k"
	case v >= 1 || v == 0:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

func trimZero(s string) string {
	return strings.TrimSuffix(s, ".0")
}
