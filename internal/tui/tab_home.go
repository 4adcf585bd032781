package tui

import (
	"fmt"
	"strings"

	"github.com/receiptia/receiptia/internal/cli"
	"github.com/receiptia/receiptia/internal/tui/components"
	"github.com/receiptia/receiptia/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// homeInsightLimit caps the insight cards shown on the Home tab.
const homeInsightLimit = 3

func (a App) renderHomeTab(cw int) string {
	t := theme.Active
	currency := a.opts.Currency
	var b strings.Builder

	if notice := a.loadNotice(); notice != "" {
		b.WriteString(notice)
		b.WriteString("\n")
	}

	// Row 1: status + this week
	halves := components.LayoutRow(cw, 2)
	statusW, weekW := halves[0], halves[1]
	if a.isCompactLayout() {
		statusW, weekW = cw, cw
	}
	statusCard := components.StatusCard(a.report.Status, currency, a.rng.Label(), statusW)
	weekCard := a.renderWeekCard(weekW)
	if a.isCompactLayout() {
		b.WriteString(statusCard)
		b.WriteString("\n")
		b.WriteString(weekCard)
	} else {
		b.WriteString(components.CardRow([]string{statusCard, weekCard}))
	}
	b.WriteString("\n")

	// Row 2: Monday-first weekly chart
	weekly := a.report.Weekly
	if len(weekly.Days) > 0 {
		vals := make([]float64, len(weekly.Days))
		labels := make([]string, len(weekly.Days))
		for i, d := range weekly.Days {
			vals[i] = d.Amount.InexactFloat64()
			labels[i] = d.DayAbbreviation
		}
		chartH := 8
		if a.isCompactLayout() {
			chartH = 6
		}
		b.WriteString(components.ContentCard(
			weekly.RangeLabel(),
			components.BarChart(vals, labels, t.Accent, components.CardInnerWidth(cw), chartH),
			cw,
		))
		b.WriteString("\n")
	}

	// Row 3: insights
	title := "Insights"
	if a.samples {
		title = "Insights · examples until your ledgers show a pattern"
	}
	titleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Background).Bold(true)
	b.WriteString(titleStyle.Render(" " + title))
	b.WriteString("\n")

	insights := a.insights
	if len(insights) > homeInsightLimit {
		insights = insights[:homeInsightLimit]
	}
	if a.isCompactLayout() {
		for _, in := range insights {
			b.WriteString(components.InsightCard(in, currency, cw))
			b.WriteString("\n")
		}
	} else {
		widths := components.LayoutRow(cw, len(insights))
		cards := make([]string, len(insights))
		for i, in := range insights {
			cards[i] = components.InsightCard(in, currency, widths[i])
		}
		b.WriteString(components.CardRow(cards))
	}

	return b.String()
}

// renderWeekCard shows the calendar week total, average, peak and percentile.
func (a App) renderWeekCard(w int) string {
	t := theme.Active
	surface := lipgloss.NewStyle().Background(t.Surface)
	labelStyle := surface.Foreground(t.TextMuted)
	valueStyle := surface.Foreground(t.TextPrimary).Bold(true)

	weekly := a.report.Weekly
	currency := a.opts.Currency

	var body strings.Builder
	fmt.Fprintf(&body, "%s %s\n", labelStyle.Render("Total   "), valueStyle.Render(cli.FormatMoney(weekly.Total(), currency)))
	fmt.Fprintf(&body, "%s %s\n", labelStyle.Render("Average "), valueStyle.Render(cli.FormatMoney(weekly.Average(), currency)+"/day"))
	if peak, ok := weekly.PeakDay(); ok && peak.Amount.IsPositive() {
		fmt.Fprintf(&body, "%s %s\n", labelStyle.Render("Peak    "),
			valueStyle.Render(fmt.Sprintf("%s %s", peak.DayAbbreviation, cli.FormatMoney(peak.Amount, currency))))
	}

	cmp := a.report.Comparison
	cmpColor := t.Orange
	if cmp.IsPositive {
		cmpColor = t.GreenBright
	}
	body.WriteString(surface.Foreground(cmpColor).Width(components.CardInnerWidth(w)).Render(cmp.Message))

	return components.ContentCard("This week", body.String(), w)
}

// loadNotice reports load failures and skipped ledger lines, or "" when clean.
func (a App) loadNotice() string {
	t := theme.Active
	style := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Background)
	switch {
	case a.loadErr != nil:
		return style.Render(" Could not read ledgers: " + a.loadErr.Error())
	case a.parseErrors > 0:
		return style.Render(fmt.Sprintf(" %d ledger lines could not be parsed and were skipped", a.parseErrors))
	}
	return ""
}
