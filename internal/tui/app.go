// Package tui provides the interactive Bubble Tea dashboard for receiptia.
package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/receiptia/receiptia/internal/analysis"
	"github.com/receiptia/receiptia/internal/cli"
	"github.com/receiptia/receiptia/internal/config"
	"github.com/receiptia/receiptia/internal/model"
	"github.com/receiptia/receiptia/internal/pipeline"
	"github.com/receiptia/receiptia/internal/store"
	"github.com/receiptia/receiptia/internal/tui/components"
	"github.com/receiptia/receiptia/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DataLoadedMsg is sent when the data pipeline finishes.
type DataLoadedMsg struct {
	Expenses    []model.Expense
	LoadTime    time.Duration
	ParseErrors int
	Err         error
}

// ProgressMsg reports file parsing progress.
type ProgressMsg struct {
	Current int
	Total   int
}

// RefreshDataMsg is sent when a background data refresh completes.
type RefreshDataMsg struct {
	Expenses []model.Expense
	LoadTime time.Duration
	Err      error
}

// Options configures the dashboard.
type Options struct {
	DataDir  string
	Range    analysis.Range
	Category model.Category // empty means all categories
	Merchant string
	Currency string
	Budget   decimal.Decimal
	UseCache bool
	Logger   *zap.Logger
	// Now returns the analysis clock. Its Location is the user's zone.
	Now func() time.Time
}

// App is the root Bubble Tea model.
type App struct {
	opts Options

	// Data
	expenses    []model.Expense
	loaded      bool
	loadTime    time.Duration
	parseErrors int
	loadErr     error

	// Auto-refresh state
	autoRefresh     bool
	refreshInterval time.Duration
	lastRefresh     time.Time
	refreshing      bool

	// Pre-computed for current filter
	now         time.Time
	window      analysis.Window
	report      analysis.Report
	insights    []model.Insight
	samples     bool // insights are the static placeholders
	summary     model.SummaryStats
	prevSummary model.SummaryStats // previous window of equal length
	dailyStats  []model.DailyStats
	todayHourly []model.HourlyStats
	categories  []model.CategoryStats
	merchants   []model.MerchantStats
	recurring   []analysis.SubscriptionGroup
	budget      model.BudgetStats
	filtered    []model.Expense // windowed, newest first

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool

	// Filter state
	rng      analysis.Range
	category model.Category
	merchant string

	// Per-tab state
	expState expensesState
	settings settingsState

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals *SetupValues
	needSetup bool

	// Loading, fed by the loader goroutine through loadSub
	spinner     spinner.Model
	progress    int
	progressMax int
	loadSub     chan tea.Msg
}

const (
	tabHome = iota
	tabGenius
	tabExpenses
	tabBreakdown
	tabSettings
)

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180

	scrollOverhead   = 10 // approximate header + status bar height for half-page calc
	minContentHeight = 5
)

// loadConfigOrDefault loads config, returning defaults on error
// so the TUI can always start even if the file is corrupted.
func loadConfigOrDefault() config.Config {
	cfg, err := config.Load()
	if err != nil {
		return config.DefaultConfig()
	}
	return cfg
}

// NewApp creates a new TUI app model.
func NewApp(opts Options) App {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Currency == "" {
		opts.Currency = analysis.DefaultCurrency
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	cfg := loadConfigOrDefault()

	return App{
		opts:            opts,
		rng:             opts.Range,
		category:        opts.Category,
		merchant:        opts.Merchant,
		needSetup:       !config.Exists(),
		autoRefresh:     cfg.TUI.AutoRefresh,
		refreshInterval: config.RefreshInterval(cfg),
		spinner:         sp,
		loadSub:         make(chan tea.Msg, 1),
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		loadDataCmd(a.opts, a.loadSub),
		a.spinner.Tick,
		tickCmd(),
	)
}

func (a *App) recompute() {
	now := a.opts.Now()
	w := analysis.SelectWindow(a.rng, now)

	expenses := a.expenses
	if a.category != "" {
		expenses = pipeline.FilterByCategory(expenses, a.category)
	}
	if a.merchant != "" {
		expenses = pipeline.FilterByMerchant(expenses, a.merchant)
	}

	a.now = now
	a.window = w
	a.report = analysis.Analyzer{Currency: a.opts.Currency}.Analyze(expenses, w, now)
	a.insights, a.samples = cli.InsightsOrSamples(a.report.Insights, now, a.opts.Currency)
	a.summary = pipeline.Summarize(expenses, w)
	a.prevSummary = pipeline.Summarize(expenses, w.Previous())
	a.dailyStats = pipeline.AggregateDays(expenses, w)
	a.todayHourly = pipeline.AggregateTodayHourly(expenses, now)
	a.categories = pipeline.AggregateCategories(expenses, w)
	a.merchants = pipeline.AggregateMerchants(expenses, w)
	a.budget = analysis.ComputeBudget(expenses, a.opts.Budget, now)

	windowed := w.Filter(expenses)
	a.recurring = analysis.RecurringSubscriptions(windowed)
	sort.SliceStable(windowed, func(i, j int) bool {
		return windowed[i].Timestamp.After(windowed[j].Timestamp)
	})
	a.filtered = windowed

	// Clamp expenses cursor to the new list bounds
	n := len(a.getSearchFilteredExpenses())
	if a.expState.cursor >= n {
		a.expState.cursor = n - 1
	}
	if a.expState.cursor < 0 {
		a.expState.cursor = 0
	}
}

// cycleRange advances to the next analysis range.
func (a *App) cycleRange() {
	next := analysis.Ranges[0]
	for i, r := range analysis.Ranges {
		if r == a.rng && i+1 < len(analysis.Ranges) {
			next = analysis.Ranges[i+1]
		}
	}
	a.rng = next
	a.recompute()
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || (a.needSetup && a.setupForm != nil) {
			return a, nil
		}
		return a.updateMouse(msg)

	case tea.KeyMsg:
		return a.updateKey(msg)

	case DataLoadedMsg:
		a.expenses = msg.Expenses
		a.loaded = true
		a.loadTime = msg.LoadTime
		a.parseErrors = msg.ParseErrors
		a.loadErr = msg.Err
		a.lastRefresh = time.Now()
		a.recompute()

		if a.needSetup {
			a.setupVals = DefaultSetupValues(loadConfigOrDefault())
			a.setupForm = NewSetupForm(len(a.expenses), a.opts.DataDir, a.setupVals)
			if a.width > 0 {
				a.setupForm = a.setupForm.WithWidth(a.width).WithHeight(a.height)
			}
			return a, a.setupForm.Init()
		}
		return a, nil

	case ProgressMsg:
		a.progress = msg.Current
		a.progressMax = msg.Total
		return a, waitForLoadMsg(a.loadSub)

	case spinner.TickMsg:
		if !a.loaded {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case tickMsg:
		cmds := []tea.Cmd{tickCmd()}
		if a.loaded && a.autoRefresh && !a.refreshing && time.Since(a.lastRefresh) >= a.refreshInterval {
			a.refreshing = true
			cmds = append(cmds, refreshDataCmd(a.opts))
		}
		return a, tea.Batch(cmds...)

	case RefreshDataMsg:
		a.refreshing = false
		a.lastRefresh = time.Now()
		if msg.Err != nil {
			a.opts.Logger.Warn("refresh failed", zap.Error(msg.Err))
			return a, nil
		}
		a.expenses = msg.Expenses
		a.loadTime = msg.LoadTime
		a.recompute()
		return a, nil
	}

	// Forward unhandled messages to the setup form (cursor blinks, etc.)
	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	return a, nil
}

func (a App) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if a.activeTab == tabExpenses && !a.expState.searching {
			a.expState.moveCursor(-1, len(a.getSearchFilteredExpenses()))
		}
	case tea.MouseButtonWheelDown:
		if a.activeTab == tabExpenses && !a.expState.searching {
			a.expState.moveCursor(1, len(a.getSearchFilteredExpenses()))
		}
	case tea.MouseButtonLeft:
		if msg.Action == tea.MouseActionPress && msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.activeTab = tab
			}
		}
	}
	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return a, tea.Quit
	}
	if !a.loaded {
		return a, nil
	}

	// First-run setup wizard intercepts all keys
	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	if a.activeTab == tabSettings && a.settings.editing {
		return a.updateSettingsInput(msg)
	}
	if a.activeTab == tabExpenses && a.expState.searching {
		return a.updateExpensesSearch(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch a.activeTab {
	case tabExpenses:
		if m, cmd, handled := a.updateExpensesKey(key); handled {
			return m, cmd
		}
	case tabSettings:
		switch key {
		case "j", "down":
			if a.settings.cursor < settingsFieldCount-1 {
				a.settings.cursor++
			}
			return a, nil
		case "k", "up":
			if a.settings.cursor > 0 {
				a.settings.cursor--
			}
			return a, nil
		case "enter":
			return a.settingsStartEdit()
		}
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "r":
		if !a.refreshing {
			a.refreshing = true
			return a, refreshDataCmd(a.opts)
		}
		return a, nil
	case "R":
		a.autoRefresh = !a.autoRefresh
		cfg := loadConfigOrDefault()
		cfg.TUI.AutoRefresh = a.autoRefresh
		if err := config.Save(cfg); err != nil {
			a.opts.Logger.Warn("saving auto-refresh preference", zap.Error(err))
		}
		return a, nil
	case "t":
		a.cycleRange()
		return a, nil
	case "left":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		return a, nil
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	}

	if idx := components.TabIdxByKey(key); idx >= 0 {
		a.activeTab = idx
	}
	return a, nil
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		if err := a.saveSetupConfig(); err != nil {
			a.opts.Logger.Warn("saving setup config", zap.Error(err))
		}
		a.recompute()
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	}
	return a, cmd
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	switch {
	case a.width == 0:
		return ""
	case a.width < minTerminalWidth:
		return a.viewTooNarrow()
	case !a.loaded:
		return a.viewLoading()
	case a.needSetup && a.setupForm != nil:
		return a.setupForm.View()
	case a.showHelp:
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  receiptia needs at least %d columns.\n",
		a.width, minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active
	surface := lipgloss.NewStyle().Background(t.Surface)

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)
	logoStyle := surface.Foreground(t.AccentBright).Bold(true)
	subtitleStyle := surface.Foreground(t.TextMuted)
	spinnerStyle := surface.Foreground(t.Accent)
	countStyle := surface.Foreground(t.TextPrimary)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ receiptia"))
	b.WriteString(subtitleStyle.Render(" · spending genius"))
	b.WriteString("\n\n")

	if a.progressMax > 0 {
		barW := max(20, min(40, a.width-30))
		pct := float64(a.progress) / float64(a.progressMax)
		b.WriteString(spinnerStyle.Render(a.spinner.View()))
		b.WriteString(subtitleStyle.Render(" Reading ledgers\n\n"))
		b.WriteString(components.ProgressBar(pct, barW))
		b.WriteString("\n")
		b.WriteString(countStyle.Render(cli.FormatNumber(int64(a.progress))))
		b.WriteString(subtitleStyle.Render(" / "))
		b.WriteString(countStyle.Render(cli.FormatNumber(int64(a.progressMax))))
	} else {
		b.WriteString(spinnerStyle.Render(a.spinner.View()))
		b.WriteString(subtitleStyle.Render(" Discovering ledgers..."))
	}

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active
	surface := lipgloss.NewStyle().Background(t.Surface)

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := surface.Foreground(t.AccentBright).Bold(true)
	sectionStyle := surface.Foreground(t.Accent).Bold(true)
	keyStyle := surface.Foreground(t.Cyan).Bold(true)
	descStyle := surface.Foreground(t.TextMuted)
	dimStyle := surface.Foreground(t.TextDim)

	sections := []struct {
		title    string
		bindings [][2]string
	}{
		{"Navigation", [][2]string{
			{"h g e b s", "Jump to tab"},
			{"← →", "Previous / Next tab"},
			{"j k", "Navigate lists"},
			{"home end", "First / last expense"},
			{"^d ^u", "Half-page scroll"},
		}},
		{"Actions", [][2]string{
			{"t", "Cycle range (24h, 7d, 30d, month)"},
			{"/", "Search expenses"},
			{"Enter", "Expand / Confirm"},
			{"Esc", "Back / Cancel"},
			{"r", "Refresh data"},
			{"R", "Toggle auto-refresh"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n")
	for _, s := range sections {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(s.title))
		b.WriteString("\n")
		for _, bind := range s.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind[0])),
				descStyle.Render(bind[1]))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

// filterLabel describes the active range and filters, e.g. "Last 7d │ food".
func (a App) filterLabel() string {
	parts := []string{a.rng.Label()}
	if a.category != "" {
		parts = append(parts, a.category.Label())
	}
	if a.merchant != "" {
		parts = append(parts, a.merchant)
	}
	return strings.Join(parts, " │ ")
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	filterStyle := lipgloss.NewStyle().
		Foreground(t.Accent).
		Background(t.Surface).
		Bold(true).
		Width(w)
	header := components.RenderTabBar(a.activeTab, w) + "\n" +
		filterStyle.Render(" "+a.filterLabel())

	budgetPct := -1.0
	if a.budget.MonthlyBudget.IsPositive() {
		budgetPct = a.budget.BudgetUsedPercent / 100
	}
	statusBar := components.RenderStatusBar(w, components.StatusInfo{
		DataAge:     fmt.Sprintf("%.1fs", a.loadTime.Seconds()),
		Refreshing:  a.refreshing,
		AutoRefresh: a.autoRefresh,
		BudgetPct:   budgetPct,
	})

	contentH := max(minContentHeight, h-lipgloss.Height(header)-lipgloss.Height(statusBar))

	var content string
	switch a.activeTab {
	case tabHome:
		content = a.renderHomeTab(cw)
	case tabGenius:
		content = a.renderGeniusTab(cw)
	case tabExpenses:
		content = a.renderExpensesContent(a.getSearchFilteredExpenses(), cw, contentH)
	case tabBreakdown:
		content = a.renderBreakdownTab(cw)
	case tabSettings:
		content = a.renderSettingsTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Helpers ────────────────────────────────────────────────────

type tickMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// loadExpenses runs the cached pipeline, falling back to a plain load when
// the cache cannot be opened or read.
func loadExpenses(opts Options, progress pipeline.ProgressFunc) ([]model.Expense, int, error) {
	lo := pipeline.LoadOptions{
		DataDir:  opts.DataDir,
		Location: opts.Now().Location(),
		Logger:   opts.Logger,
		Progress: progress,
	}

	if opts.UseCache {
		cache, err := store.Open(pipeline.CachePath())
		if err == nil {
			cr, loadErr := pipeline.LoadWithCache(lo, cache)
			_ = cache.Close()
			if loadErr == nil {
				return cr.Expenses, cr.ParseErrors, nil
			}
			opts.Logger.Warn("cached load failed, reparsing", zap.Error(loadErr))
		} else {
			opts.Logger.Warn("opening cache", zap.Error(err))
		}
	}

	result, err := pipeline.Load(lo)
	if err != nil {
		return nil, 0, err
	}
	return result.Expenses, result.ParseErrors, nil
}

// loadDataCmd starts the data loading pipeline in a background goroutine.
// It streams ProgressMsg updates and a final DataLoadedMsg through sub.
func loadDataCmd(opts Options, sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		go func() {
			start := time.Now()

			// Non-blocking send so workers aren't stalled; the next update catches up.
			progressFn := func(current, total int) {
				select {
				case sub <- ProgressMsg{Current: current, Total: total}:
				default:
				}
			}

			expenses, parseErrors, err := loadExpenses(opts, progressFn)
			sub <- DataLoadedMsg{
				Expenses:    expenses,
				LoadTime:    time.Since(start),
				ParseErrors: parseErrors,
				Err:         err,
			}
		}()

		return <-sub
	}
}

// waitForLoadMsg blocks until the next message arrives from the loader goroutine.
func waitForLoadMsg(sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-sub
	}
}

// refreshDataCmd reloads expenses in the background without progress UI.
func refreshDataCmd(opts Options) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		expenses, _, err := loadExpenses(opts, nil)
		return RefreshDataMsg{Expenses: expenses, LoadTime: time.Since(start), Err: err}
	}
}

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with the background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
	}
	return strings.Join(lines, "\n")
}

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes follow the widths used by RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW + 1
	}
	return -1
}
