package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/receiptia/receiptia/internal/analysis"
	"github.com/receiptia/receiptia/internal/cli"
	"github.com/receiptia/receiptia/internal/config"
	"github.com/receiptia/receiptia/internal/tui/components"
	"github.com/receiptia/receiptia/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

const (
	settingsFieldTheme = iota
	settingsFieldRange
	settingsFieldCurrency
	settingsFieldBudget
	settingsFieldTimezone
	settingsFieldAutoRefresh
	settingsFieldRefreshInterval
	settingsFieldCount // sentinel
)

// settingsState tracks the settings tab state.
type settingsState struct {
	cursor  int
	editing bool
	input   textinput.Model
	saved   bool
	saveErr error // non-nil if the last save failed or the value was rejected
}

func (a App) settingsStartEdit() (tea.Model, tea.Cmd) {
	cfg := loadConfigOrDefault()
	a.settings.editing = true
	a.settings.saved = false
	a.settings.saveErr = nil

	ti := textinput.New()
	ti.CharLimit = 64
	ti.Width = 40

	switch a.settings.cursor {
	case settingsFieldTheme:
		ti.Placeholder = strings.Join(theme.Names(), ", ")
		ti.SetValue(cfg.Appearance.Theme)
	case settingsFieldRange:
		ti.Placeholder = "24h, 7d, 30d or month"
		ti.SetValue(string(a.rng))
	case settingsFieldCurrency:
		ti.Placeholder = "€"
		ti.SetValue(a.opts.Currency)
	case settingsFieldBudget:
		ti.Placeholder = "1000 (leave empty for the default)"
		if cfg.Budget.Monthly != nil {
			ti.SetValue(strconv.FormatFloat(*cfg.Budget.Monthly, 'f', -1, 64))
		}
	case settingsFieldTimezone:
		ti.Placeholder = "Europe/Rome (empty for system zone)"
		ti.SetValue(cfg.General.Timezone)
	case settingsFieldAutoRefresh:
		ti.Placeholder = "true or false"
		ti.SetValue(strconv.FormatBool(a.autoRefresh))
	case settingsFieldRefreshInterval:
		ti.Placeholder = "60 (seconds, minimum 10)"
		ti.SetValue(strconv.Itoa(int(a.refreshInterval.Seconds())))
	}

	ti.Focus()
	a.settings.input = ti
	return a, ti.Cursor.BlinkCmd()
}

func (a App) updateSettingsInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.settingsSave()
		a.settings.editing = false
		a.settings.saved = a.settings.saveErr == nil
		return a, nil
	case "esc":
		a.settings.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.settings.input, cmd = a.settings.input.Update(msg)
	return a, cmd
}

// settingsSave validates the edited field, applies it to the running app
// and persists the config.
func (a *App) settingsSave() {
	cfg := loadConfigOrDefault()
	val := strings.TrimSpace(a.settings.input.Value())

	switch a.settings.cursor {
	case settingsFieldTheme:
		t := theme.ByName(val)
		if t.Name != val {
			a.settings.saveErr = fmt.Errorf("unknown theme %q", val)
			return
		}
		cfg.Appearance.Theme = val
		theme.SetActive(val)
	case settingsFieldRange:
		r, err := analysis.ParseRange(val)
		if err != nil {
			a.settings.saveErr = err
			return
		}
		cfg.General.DefaultRange = string(r)
		a.rng = r
		a.recompute()
	case settingsFieldCurrency:
		if val == "" {
			a.settings.saveErr = fmt.Errorf("currency cannot be empty")
			return
		}
		cfg.General.Currency = val
		a.opts.Currency = val
		a.recompute()
	case settingsFieldBudget:
		if val == "" {
			cfg.Budget.Monthly = nil
		} else {
			d, err := decimal.NewFromString(val)
			if err != nil || !d.IsPositive() {
				a.settings.saveErr = fmt.Errorf("budget must be a positive number")
				return
			}
			f := d.InexactFloat64()
			cfg.Budget.Monthly = &f
		}
		a.opts.Budget = config.MonthlyBudget(cfg)
		a.recompute()
	case settingsFieldTimezone:
		cfg.General.Timezone = val
		if _, err := config.Location(cfg); err != nil {
			a.settings.saveErr = err
			return
		}
	case settingsFieldAutoRefresh:
		b, err := strconv.ParseBool(val)
		if err != nil {
			a.settings.saveErr = fmt.Errorf("auto refresh must be true or false")
			return
		}
		cfg.TUI.AutoRefresh = b
		a.autoRefresh = b
	case settingsFieldRefreshInterval:
		sec, err := strconv.Atoi(val)
		if err != nil || sec < 10 {
			a.settings.saveErr = fmt.Errorf("refresh interval must be at least 10 seconds")
			return
		}
		cfg.TUI.RefreshIntervalSec = sec
		a.refreshInterval = time.Duration(sec) * time.Second
	}

	a.settings.saveErr = config.Save(cfg)
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active
	cfg := loadConfigOrDefault()

	surface := lipgloss.NewStyle().Background(t.Surface)
	labelStyle := surface.Foreground(t.TextMuted)
	valueStyle := surface.Foreground(t.TextPrimary)
	accentStyle := surface.Foreground(t.AccentBright)
	greenStyle := surface.Foreground(t.GreenBright)
	selected := lipgloss.NewStyle().Background(t.SurfaceBright)
	selectedStyle := selected.Foreground(t.TextPrimary).Bold(true)
	selectedLabelStyle := selected.Foreground(t.Accent).Bold(true)
	markerStyle := selected.Foreground(t.AccentBright)

	budget := "(default) " + cli.FormatMoney(config.MonthlyBudget(cfg), a.opts.Currency)
	if cfg.Budget.Monthly != nil {
		budget = cli.FormatMoney(config.MonthlyBudget(cfg), a.opts.Currency)
	}
	tz := cfg.General.Timezone
	if tz == "" {
		tz = "(system) " + a.now.Location().String()
	}

	fields := []struct{ label, value string }{
		{"Theme", theme.Active.Name},
		{"Default Range", a.rng.Label()},
		{"Currency", a.opts.Currency},
		{"Monthly Budget", budget},
		{"Timezone", tz},
		{"Auto Refresh", strconv.FormatBool(a.autoRefresh)},
		{"Refresh Interval", fmt.Sprintf("%ds", int(a.refreshInterval.Seconds()))},
	}

	innerW := components.CardInnerWidth(cw)
	var form strings.Builder
	for i, f := range fields {
		switch {
		case a.settings.editing && i == a.settings.cursor:
			form.WriteString(markerStyle.Render("▸ "))
			form.WriteString(accentStyle.Render(fmt.Sprintf("%-18s ", f.label)))
			form.WriteString(a.settings.input.View())
		case i == a.settings.cursor:
			line := markerStyle.Render("▸ ") +
				selectedLabelStyle.Render(fmt.Sprintf("%-18s ", f.label+":")) +
				selectedStyle.Render(f.value)
			form.WriteString(line)
			if pad := innerW - lipgloss.Width(line); pad > 0 {
				form.WriteString(selected.Render(strings.Repeat(" ", pad)))
			}
		default:
			form.WriteString(surface.Render("  "))
			form.WriteString(labelStyle.Render(fmt.Sprintf("%-18s ", f.label+":")))
			form.WriteString(valueStyle.Render(f.value))
		}
		form.WriteString("\n")
	}

	if a.settings.saveErr != nil {
		form.WriteString("\n")
		form.WriteString(surface.Foreground(t.Orange).Render("Not saved: " + a.settings.saveErr.Error()))
	} else if a.settings.saved {
		form.WriteString("\n")
		form.WriteString(greenStyle.Render("Saved!"))
	}
	form.WriteString("\n")
	form.WriteString(labelStyle.Render("[j/k] navigate  [Enter] edit  [Esc] cancel"))

	var info strings.Builder
	infoRows := []struct{ label, value string }{
		{"Data directory:", a.opts.DataDir},
		{"Expenses loaded:", cli.FormatNumber(int64(len(a.expenses)))},
		{"Skipped lines:", cli.FormatNumber(int64(a.parseErrors))},
		{"Load time:", fmt.Sprintf("%.1fs", a.loadTime.Seconds())},
		{"Config file:", config.ConfigPath()},
	}
	for i, r := range infoRows {
		info.WriteString(labelStyle.Render(fmt.Sprintf("%-17s", r.label)) + valueStyle.Render(r.value))
		if i < len(infoRows)-1 {
			info.WriteString("\n")
		}
	}

	var b strings.Builder
	b.WriteString(components.ContentCard("Settings", form.String(), cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("General", info.String(), cw))
	return b.String()
}
