package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/receiptia/receiptia/internal/analysis"
	"github.com/receiptia/receiptia/internal/cli"
	"github.com/receiptia/receiptia/internal/config"
	"github.com/receiptia/receiptia/internal/tui/theme"

	"github.com/charmbracelet/huh"
	"github.com/shopspring/decimal"
)

// SetupValues holds the answers of the first-run form.
type SetupValues struct {
	Range    string
	Currency string
	Budget   string
	Theme    string
}

// DefaultSetupValues pre-fills the form from an existing config.
func DefaultSetupValues(cfg config.Config) *SetupValues {
	budget := ""
	if cfg.Budget.Monthly != nil {
		budget = strconv.FormatFloat(*cfg.Budget.Monthly, 'f', -1, 64)
	}
	return &SetupValues{
		Range:    cfg.General.DefaultRange,
		Currency: cfg.General.Currency,
		Budget:   budget,
		Theme:    cfg.Appearance.Theme,
	}
}

func validateBudget(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return errors.New("enter a number, e.g. 1000")
	}
	if !d.IsPositive() {
		return errors.New("budget must be positive")
	}
	return nil
}

// NewSetupForm builds the first-run form. Answers are written into vals.
func NewSetupForm(expenseCount int, dataDir string, vals *SetupValues) *huh.Form {
	rangeOpts := make([]huh.Option[string], len(analysis.Ranges))
	for i, r := range analysis.Ranges {
		rangeOpts[i] = huh.NewOption(r.Label(), string(r))
	}

	welcome := fmt.Sprintf("Found %s expenses in %s.\nLet's set up a few things.",
		cli.FormatNumber(int64(expenseCount)), dataDir)

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to receiptia").
				Description(welcome),
			huh.NewSelect[string]().
				Title("Default time range").
				Options(rangeOpts...).
				Value(&vals.Range),
			huh.NewInput().
				Title("Currency symbol").
				Placeholder("€").
				CharLimit(4).
				Value(&vals.Currency),
			huh.NewInput().
				Title("Monthly budget").
				Description("Leave empty for the default of 1000").
				Validate(validateBudget).
				Value(&vals.Budget),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(huh.NewOptions(theme.Names()...)...).
				Value(&vals.Theme),
		),
	).WithShowHelp(true).WithTheme(huh.ThemeCharm())
}

// ApplySetup copies the form answers into cfg.
func ApplySetup(cfg *config.Config, vals SetupValues) {
	if _, err := analysis.ParseRange(vals.Range); err == nil {
		cfg.General.DefaultRange = vals.Range
	}
	if c := strings.TrimSpace(vals.Currency); c != "" {
		cfg.General.Currency = c
	}
	if b := strings.TrimSpace(vals.Budget); b == "" {
		cfg.Budget.Monthly = nil
	} else if d, err := decimal.NewFromString(b); err == nil && d.IsPositive() {
		f := d.InexactFloat64()
		cfg.Budget.Monthly = &f
	}
	if vals.Theme != "" {
		cfg.Appearance.Theme = theme.ByName(vals.Theme).Name
	}
}

// saveSetupConfig persists the form answers and applies them to the running app.
func (a *App) saveSetupConfig() error {
	cfg := loadConfigOrDefault()
	ApplySetup(&cfg, *a.setupVals)

	if r, err := analysis.ParseRange(cfg.General.DefaultRange); err == nil {
		a.rng = r
	}
	a.opts.Currency = cfg.General.Currency
	a.opts.Budget = config.MonthlyBudget(cfg)
	theme.SetActive(cfg.Appearance.Theme)

	return config.Save(cfg)
}
