package cmd

import (
	"fmt"

	"github.com/receiptia/receiptia/internal/tui"
	"github.com/receiptia/receiptia/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	env, err := newEnv()
	if err != nil {
		return err
	}
	theme.SetActive(env.cfg.Appearance.Theme)

	// Logs would corrupt the alt screen.
	app := tui.NewApp(tui.Options{
		DataDir:  env.dataDir,
		Range:    env.rng,
		Category: env.category,
		Merchant: flagMerchant,
		Currency: env.currency,
		Budget:   env.budget,
		UseCache: !flagNoCache,
		Now:      clockFrom(env),
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
