package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/receiptia/receiptia/internal/cli"
	"github.com/receiptia/receiptia/internal/model"
	"github.com/receiptia/receiptia/internal/tui/components"
	"github.com/receiptia/receiptia/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderGeniusTab(cw int) string {
	t := theme.Active
	stats := a.summary
	prev := a.prevSummary
	currency := a.opts.Currency
	var b strings.Builder

	// Row 1: metric cards against the previous window of equal length
	spentDelta := "vs " + cli.FormatMoney(prev.Total, currency) + " before"
	if prev.Total.IsPositive() {
		spentDelta = cli.FormatDelta(stats.Total.Sub(prev.Total), currency) + " vs previous"
	}
	metrics := []components.Metric{
		{Label: "Spent", Value: cli.FormatMoney(stats.Total, currency), Delta: spentDelta},
		{Label: "Expenses", Value: cli.FormatNumber(int64(stats.Expenses)), Delta: fmt.Sprintf("%d active days", stats.ActiveDays)},
		{Label: "Per active day", Value: cli.FormatMoney(stats.PerActiveDay, currency), Delta: "largest " + cli.FormatMoney(stats.Largest, currency)},
		{Label: "Night / impulsive", Value: fmt.Sprintf("%d / %d", stats.NightCount, stats.Impulsive), Delta: "potential " + cli.FormatMoney(a.report.Insights.PotentialSavings(), currency)},
	}
	b.WriteString(components.MetricCardRow(metrics, cw))
	b.WriteString("\n")

	// Row 2: daily spend over the window
	if len(a.dailyStats) > 1 {
		days := a.dailyStats
		vals := make([]float64, len(days))
		for i, d := range days {
			vals[len(days)-1-i] = d.Total.InexactFloat64()
		}
		b.WriteString(components.ContentCard(
			fmt.Sprintf("Daily spending (%s)", a.rng.Label()),
			components.BarChart(vals, chartDateLabels(days), t.Accent, components.CardInnerWidth(cw), 8),
			cw,
		))
		b.WriteString("\n")
	}

	// Row 3: today by hour + budget
	halves := components.LayoutRow(cw, 2)
	if a.isCompactLayout() {
		halves = []int{cw, cw}
	}
	hourVals := make([]float64, len(a.todayHourly))
	for i, h := range a.todayHourly {
		hourVals[i] = h.Total.InexactFloat64()
	}
	todayCard := components.ContentCard(
		"Today by hour",
		components.BarChart(hourVals, hourLabels24(), t.Blue, components.CardInnerWidth(halves[0]), 6),
		halves[0],
	)
	budgetCard := a.renderBudgetCard(halves[1])
	if a.isCompactLayout() {
		b.WriteString(todayCard)
		b.WriteString("\n")
		b.WriteString(budgetCard)
	} else {
		b.WriteString(components.CardRow([]string{todayCard, budgetCard}))
	}
	b.WriteString("\n")

	// Row 4: every insight, then recurring subscriptions
	for _, in := range a.insights {
		b.WriteString(components.InsightCard(in, currency, cw))
		b.WriteString("\n")
	}
	if len(a.recurring) > 0 {
		b.WriteString(a.renderSubscriptionsCard(cw))
	}

	return b.String()
}

func (a App) renderBudgetCard(w int) string {
	t := theme.Active
	bs := a.budget
	currency := a.opts.Currency
	surface := lipgloss.NewStyle().Background(t.Surface)
	labelStyle := surface.Foreground(t.TextMuted)
	valueStyle := surface.Foreground(t.TextPrimary)

	innerW := components.CardInnerWidth(w)
	barW := max(10, innerW-30)

	var body strings.Builder
	body.WriteString(components.BudgetBar("Used", bs.BudgetUsedPercent/100,
		fmt.Sprintf("%d days left", bs.DaysRemaining), 5, barW))
	body.WriteString("\n\n")

	rows := []struct{ label, value string }{
		{"Spent this month", cli.FormatMoney(bs.CurrentSpend, currency) + " of " + cli.FormatMoney(bs.MonthlyBudget, currency)},
		{"Daily burn rate", cli.FormatMoney(bs.DailyBurnRate, currency) + "/day"},
		{"Projected", cli.FormatMoney(bs.ProjectedMonthly, currency)},
	}
	for _, r := range rows {
		fmt.Fprintf(&body, "%s %s\n", labelStyle.Render(fmt.Sprintf("%-17s", r.label)), valueStyle.Render(r.value))
	}
	if bs.OverBudget() {
		body.WriteString(surface.Foreground(t.Red).Bold(true).Render("On track to exceed the monthly budget"))
	} else {
		body.WriteString(surface.Foreground(t.GreenBright).Render("On track to stay within budget"))
	}

	border := t.Border
	if bs.OverBudget() {
		border = t.Red
	}
	return components.AccentCard("Monthly budget", body.String(), border, w)
}

func (a App) renderSubscriptionsCard(cw int) string {
	t := theme.Active
	currency := a.opts.Currency
	surface := lipgloss.NewStyle().Background(t.Surface)
	headerStyle := surface.Foreground(t.Accent).Bold(true)
	nameStyle := surface.Foreground(t.TextPrimary)
	mutedStyle := surface.Foreground(t.TextMuted)
	moneyStyle := surface.Foreground(t.GreenBright)

	innerW := components.CardInnerWidth(cw)
	nameW := max(12, innerW-8-12-2)

	var body strings.Builder
	body.WriteString(headerStyle.Render(fmt.Sprintf("%-*s %8s %12s", nameW, "Merchant", "Charges", "Per month")))
	body.WriteString("\n")
	body.WriteString(mutedStyle.Render(strings.Repeat("─", innerW)))
	body.WriteString("\n")
	for _, g := range a.recurring {
		body.WriteString(nameStyle.Render(fmt.Sprintf("%-*s", nameW, truncStr(g.Merchant, nameW))))
		body.WriteString(mutedStyle.Render(fmt.Sprintf(" %8d", len(g.Expenses))))
		body.WriteString(moneyStyle.Render(fmt.Sprintf(" %12s", cli.FormatMoney(g.MonthlyCharge(), currency))))
		body.WriteString("\n")
	}
	return components.ContentCard("Recurring subscriptions", body.String(), cw)
}

// chartDateLabels builds compact X-axis labels for a date series.
// First label and month boundaries show the month abbreviation, the rest
// the day number. days is newest-first; labels are returned oldest-left.
func chartDateLabels(days []model.DailyStats) []string {
	n := len(days)
	labels := make([]string, n)
	prevMonth := time.Month(0)
	for i := range days {
		dt := days[n-1-i].Date
		if i == 0 || (dt.Month() != prevMonth && i != n-1) {
			labels[i] = dt.Format("Jan")
		} else {
			labels[i] = strconv.Itoa(dt.Day())
		}
		prevMonth = dt.Month()
	}
	return labels
}

// hourLabels24 returns X-axis labels for 24 hourly buckets.
func hourLabels24() []string {
	labels := make([]string, 24)
	for i := range labels {
		labels[i] = fmt.Sprintf("%02d", i)
	}
	return labels
}
