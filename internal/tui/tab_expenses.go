package tui

import (
	"fmt"
	"strings"

	"github.com/receiptia/receiptia/internal/analysis"
	"github.com/receiptia/receiptia/internal/cli"
	"github.com/receiptia/receiptia/internal/model"
	"github.com/receiptia/receiptia/internal/tui/components"
	"github.com/receiptia/receiptia/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Expenses view modes. Split is the zero value so it's the default.
const (
	expViewSplit  = iota // list + detail side by side
	expViewDetail        // full-screen detail
)

// expensesState holds the expenses tab state.
type expensesState struct {
	cursor   int
	viewMode int
	offset   int // scroll offset for the list

	searching   bool
	searchInput textinput.Model
	searchQuery string
}

func (s *expensesState) moveCursor(delta, n int) {
	s.cursor = max(0, min(s.cursor+delta, n-1))
}

func newSearchInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "merchant, title, notes or category"
	ti.CharLimit = 64
	ti.Width = 40
	ti.Prompt = "/ "
	return ti
}

// filterExpensesBySearch matches the query against title, merchant, notes
// and category label, case-insensitively.
func filterExpensesBySearch(expenses []model.Expense, query string) []model.Expense {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return expenses
	}
	var out []model.Expense
	for _, e := range expenses {
		haystack := strings.ToLower(strings.Join([]string{e.Title, e.Merchant, e.Notes, e.Category.Label(), string(e.Category)}, " "))
		if strings.Contains(haystack, q) {
			out = append(out, e)
		}
	}
	return out
}

// getSearchFilteredExpenses returns the windowed expenses narrowed by the search query.
func (a App) getSearchFilteredExpenses() []model.Expense {
	return filterExpensesBySearch(a.filtered, a.expState.searchQuery)
}

// updateExpensesSearch handles key events while the search input is focused.
func (a App) updateExpensesSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.expState.searchQuery = strings.TrimSpace(a.expState.searchInput.Value())
		a.expState.searching = false
		a.expState.cursor = 0
		a.expState.offset = 0
		return a, nil
	case "esc":
		a.expState.searching = false
		return a, nil
	}

	var cmd tea.Cmd
	a.expState.searchInput, cmd = a.expState.searchInput.Update(msg)
	return a, cmd
}

// updateExpensesKey handles list navigation. handled is false for keys the
// global handler should see.
func (a App) updateExpensesKey(key string) (tea.Model, tea.Cmd, bool) {
	n := len(a.getSearchFilteredExpenses())
	halfPage := max(1, (a.height-scrollOverhead)/2)

	switch key {
	case "/":
		a.expState.searching = true
		a.expState.searchInput = newSearchInput()
		a.expState.searchInput.SetValue(a.expState.searchQuery)
		a.expState.searchInput.Focus()
		return a, a.expState.searchInput.Cursor.BlinkCmd(), true
	case "q":
		if a.expState.viewMode == expViewDetail {
			a.expState.viewMode = expViewSplit
			return a, nil, true
		}
		return a, tea.Quit, true
	case "enter", "f":
		if !a.isCompactLayout() {
			a.expState.viewMode = expViewDetail
		}
		return a, nil, true
	case "esc":
		switch {
		case a.expState.searchQuery != "":
			a.expState.searchQuery = ""
			a.expState.cursor = 0
			a.expState.offset = 0
		case a.expState.viewMode == expViewDetail:
			a.expState.viewMode = expViewSplit
		}
		return a, nil, true
	case "j", "down":
		a.expState.moveCursor(1, n)
		return a, nil, true
	case "k", "up":
		a.expState.moveCursor(-1, n)
		return a, nil, true
	case "home":
		a.expState.moveCursor(-n, n)
		a.expState.offset = 0
		return a, nil, true
	case "end":
		a.expState.moveCursor(n, n)
		return a, nil, true
	case "ctrl+d":
		a.expState.moveCursor(halfPage, n)
		return a, nil, true
	case "ctrl+u":
		a.expState.moveCursor(-halfPage, n)
		return a, nil, true
	}
	return a, nil, false
}

func (a App) renderExpensesContent(expenses []model.Expense, cw, h int) string {
	t := theme.Active
	es := a.expState

	var header string
	if es.searching {
		header = es.searchInput.View() + "\n"
	} else if es.searchQuery != "" {
		header = lipgloss.NewStyle().Foreground(t.Accent).Background(t.Background).
			Render(fmt.Sprintf(" search: %q  [Esc] clear", es.searchQuery)) + "\n"
	}
	h -= lipgloss.Height(header) - 1

	if len(expenses) == 0 {
		empty := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Render("No expenses in this range")
		return header + components.ContentCard("Expenses", empty, cw)
	}

	if es.viewMode == expViewDetail && !a.isCompactLayout() {
		sel := expenses[es.cursor]
		return header + components.ContentCard(sel.Title, a.renderExpenseDetail(sel, cw), cw)
	}
	return header + a.renderExpensesSplit(expenses, cw, h)
}

func (a App) renderExpensesSplit(expenses []model.Expense, cw, h int) string {
	t := theme.Active
	es := a.expState
	currency := a.opts.Currency

	leftW := cw
	if !a.isCompactLayout() {
		leftW = max(44, cw/2)
	}
	leftInner := components.CardInnerWidth(leftW)

	surface := lipgloss.NewStyle().Background(t.Surface)
	rowStyle := surface.Foreground(t.TextPrimary)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceHover).Bold(true)
	nightStyle := surface.Foreground(t.Magenta)

	visible := max(5, h-4)
	offset := es.offset
	if es.cursor < offset {
		offset = es.cursor
	}
	if es.cursor >= offset+visible {
		offset = es.cursor - visible + 1
	}
	end := min(offset+visible, len(expenses))

	amountW := 10
	timeW := 12
	titleW := max(8, leftInner-amountW-timeW-4)

	var list strings.Builder
	for i := offset; i < end; i++ {
		e := expenses[i]
		marker := " "
		if e.IsNightPurchase {
			marker = "☾"
		}
		line := fmt.Sprintf("%-*s %-*s %*s",
			timeW, e.Timestamp.In(a.now.Location()).Format("Jan 02 15:04"),
			titleW, truncStr(e.Title, titleW),
			amountW, cli.FormatMoney(e.Amount, currency))

		style := rowStyle
		if i == es.cursor {
			style = selectedStyle
		}
		if e.IsNightPurchase && i != es.cursor {
			list.WriteString(nightStyle.Render(marker))
		} else {
			list.WriteString(style.Render(marker))
		}
		list.WriteString(style.Render(" " + line))
		list.WriteString("\n")
	}

	title := fmt.Sprintf("Expenses [%s] %d/%d", a.rng.Label(), es.cursor+1, len(expenses))
	leftCard := components.ContentCard(title, list.String(), leftW)
	if a.isCompactLayout() {
		return leftCard
	}

	rightW := cw - leftW
	sel := expenses[es.cursor]
	rightCard := components.ContentCard(sel.Title, a.renderExpenseDetail(sel, rightW), rightW)
	return components.CardRow([]string{leftCard, rightCard})
}

// renderExpenseDetail shows one expense with its classification flags.
func (a App) renderExpenseDetail(e model.Expense, w int) string {
	t := theme.Active
	currency := a.opts.Currency
	innerW := components.CardInnerWidth(w)
	surface := lipgloss.NewStyle().Background(t.Surface)
	labelStyle := surface.Foreground(t.TextMuted)
	valueStyle := surface.Foreground(t.TextPrimary)
	mutedStyle := surface.Foreground(t.TextDim)
	amountStyle := surface.Foreground(t.GreenBright).Bold(true)
	catStyle := surface.Foreground(categoryColor(e.Category))

	local := e.Timestamp.In(a.now.Location())

	var body strings.Builder
	body.WriteString(amountStyle.Render(cli.FormatMoney(e.Amount, currency)))
	body.WriteString("  ")
	body.WriteString(catStyle.Render(e.Category.Label()))
	body.WriteString("\n")
	body.WriteString(mutedStyle.Render(strings.Repeat("─", innerW)))
	body.WriteString("\n")

	merchant := e.Merchant
	if merchant == "" {
		merchant = "(none)"
	}
	rows := []struct{ label, value string }{
		{"When", local.Format("Mon 02 Jan 2006 15:04 MST")},
		{"Ago", cli.FormatRelative(e.Timestamp, a.now)},
		{"Merchant", merchant},
	}
	if e.Notes != "" {
		rows = append(rows, struct{ label, value string }{"Notes", e.Notes})
	}
	for _, r := range rows {
		fmt.Fprintf(&body, "%s %s\n", labelStyle.Render(fmt.Sprintf("%-9s", r.label)), valueStyle.Render(truncStr(r.value, innerW-10)))
	}

	var flags []string
	if e.IsNightPurchase {
		flags = append(flags, "night purchase")
	}
	if e.IsImpulsive {
		flags = append(flags, "impulsive")
	}
	if analysis.IsCompulsive(e.Amount, e.Category, e.Timestamp.In(a.now.Location())) {
		flags = append(flags, "compulsive pattern")
	}
	if len(flags) > 0 {
		body.WriteString("\n")
		body.WriteString(surface.Foreground(t.Orange).Render("⚑ " + strings.Join(flags, ", ")))
		body.WriteString("\n")
	}

	if e.SourceFile != "" {
		body.WriteString("\n")
		body.WriteString(mutedStyle.Render(truncStr(e.SourceFile, innerW)))
		body.WriteString("\n")
	}

	body.WriteString("\n")
	body.WriteString(mutedStyle.Render("[Enter] expand  [j/k] navigate  [/] search"))
	return body.String()
}

func categoryColor(c model.Category) lipgloss.Color {
	if theme.Active.Name == theme.Terminal.Name {
		return theme.Active.Accent
	}
	return cli.HexColor(c.ColorHex())
}
