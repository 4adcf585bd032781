package tui

import (
	"fmt"
	"strings"

	"github.com/receiptia/receiptia/internal/cli"
	"github.com/receiptia/receiptia/internal/tui/components"
	"github.com/receiptia/receiptia/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// merchantLimit caps the merchant table.
const merchantLimit = 15

func (a App) renderCategoriesCard(cw int) string {
	t := theme.Active
	currency := a.opts.Currency
	surface := lipgloss.NewStyle().Background(t.Surface)
	headerStyle := surface.Foreground(t.Accent).Bold(true)
	mutedStyle := surface.Foreground(t.TextMuted)
	rowStyle := surface.Foreground(t.TextPrimary)
	moneyStyle := surface.Foreground(t.GreenBright)

	innerW := components.CardInnerWidth(cw)
	const nameW, countW, moneyW, shareW = 16, 6, 10, 6
	barMax := max(1, innerW-nameW-countW-moneyW-shareW-4)

	maxShare := 0.0
	for _, cs := range a.categories {
		maxShare = max(maxShare, cs.SharePercent)
	}

	var body strings.Builder
	body.WriteString(headerStyle.Render(fmt.Sprintf("%-*s %*s %*s %*s", nameW, "Category", countW, "Count", moneyW, "Spent", shareW, "Share")))
	body.WriteString("\n")
	body.WriteString(mutedStyle.Render(strings.Repeat("─", innerW)))
	body.WriteString("\n")

	if len(a.categories) == 0 {
		body.WriteString(mutedStyle.Render("No expenses in this range"))
	}
	for _, cs := range a.categories {
		barStyle := surface.Foreground(categoryColor(cs.Category))
		body.WriteString(barStyle.Render(fmt.Sprintf("%-*s", nameW, truncStr(cs.Category.Label(), nameW))))
		body.WriteString(rowStyle.Render(fmt.Sprintf(" %*d", countW, cs.Expenses)))
		body.WriteString(moneyStyle.Render(fmt.Sprintf(" %*s", moneyW, cli.FormatMoney(cs.Total, currency))))
		body.WriteString(mutedStyle.Render(fmt.Sprintf(" %*s ", shareW, fmt.Sprintf("%.0f%%", cs.SharePercent))))
		body.WriteString(barStyle.Render(cli.RenderHorizontalBar(cs.SharePercent, maxShare, barMax)))
		body.WriteString("\n")
	}

	title := "Categories  " + cli.FormatMoney(a.summary.Total, currency)
	return components.ContentCard(title, body.String(), cw)
}

func (a App) renderMerchantsCard(cw int) string {
	t := theme.Active
	currency := a.opts.Currency
	surface := lipgloss.NewStyle().Background(t.Surface)
	headerStyle := surface.Foreground(t.Accent).Bold(true)
	mutedStyle := surface.Foreground(t.TextMuted)
	nameStyle := surface.Foreground(t.Cyan)
	rowStyle := surface.Foreground(t.TextPrimary)
	moneyStyle := surface.Foreground(t.GreenBright)

	innerW := components.CardInnerWidth(cw)
	compact := a.isCompactLayout()
	fixed := 6 + 10 + 2
	if !compact {
		fixed += 16 + 12 + 2
	}
	nameW := max(12, innerW-fixed)

	var body strings.Builder
	if compact {
		body.WriteString(headerStyle.Render(fmt.Sprintf("%-*s %6s %10s", nameW, "Merchant", "Count", "Spent")))
	} else {
		body.WriteString(headerStyle.Render(fmt.Sprintf("%-*s %-16s %6s %10s %12s", nameW, "Merchant", "Category", "Count", "Spent", "Last")))
	}
	body.WriteString("\n")
	body.WriteString(mutedStyle.Render(strings.Repeat("─", innerW)))
	body.WriteString("\n")

	merchants := a.merchants
	if len(merchants) > merchantLimit {
		merchants = merchants[:merchantLimit]
	}
	for _, ms := range merchants {
		body.WriteString(nameStyle.Render(fmt.Sprintf("%-*s", nameW, truncStr(ms.Merchant, nameW))))
		if !compact {
			body.WriteString(mutedStyle.Render(fmt.Sprintf(" %-16s", truncStr(ms.Category.Label(), 16))))
		}
		body.WriteString(rowStyle.Render(fmt.Sprintf(" %6d", ms.Expenses)))
		body.WriteString(moneyStyle.Render(fmt.Sprintf(" %10s", cli.FormatMoney(ms.Total, currency))))
		if !compact {
			body.WriteString(mutedStyle.Render(fmt.Sprintf(" %12s", ms.Last.In(a.now.Location()).Format("Jan 02 15:04"))))
		}
		body.WriteString("\n")
	}

	title := "Merchants"
	if len(a.merchants) > merchantLimit {
		title = fmt.Sprintf("Merchants (top %d of %d)", merchantLimit, len(a.merchants))
	}
	return components.ContentCard(title, body.String(), cw)
}

func (a App) renderBreakdownTab(cw int) string {
	var b strings.Builder
	b.WriteString(a.renderCategoriesCard(cw))
	b.WriteString("\n")
	b.WriteString(a.renderMerchantsCard(cw))
	return b.String()
}
