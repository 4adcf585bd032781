package cmd

import (
	"fmt"
	"time"

	"github.com/receiptia/receiptia/internal/cli"
	"github.com/receiptia/receiptia/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Default range:  %s\n", cfg.General.DefaultRange)
	fmt.Printf("    Data directory: %s\n", config.DataDir(cfg))
	tz := cfg.General.Timezone
	if tz == "" {
		tz = "system (" + time.Local.String() + ")"
	}
	fmt.Printf("    Timezone:       %s\n", tz)
	fmt.Printf("    Currency:       %s\n", cfg.General.Currency)
	fmt.Println()

	fmt.Println("  [Budget]")
	if cfg.Budget.Monthly != nil {
		fmt.Printf("    Monthly budget: %s\n", cli.FormatMoney(config.MonthlyBudget(cfg), cfg.General.Currency))
	} else {
		fmt.Printf("    Monthly budget: %s (default)\n", cli.FormatMoney(config.MonthlyBudget(cfg), cfg.General.Currency))
	}
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address:  %s\n", cfg.Daemon.Addr)
	fmt.Printf("    Schedule: %s\n", cfg.Daemon.Schedule)
	fmt.Println()

	fmt.Println("  [TUI]")
	fmt.Printf("    Auto refresh:     %v\n", cfg.TUI.AutoRefresh)
	fmt.Printf("    Refresh interval: %s\n", config.RefreshInterval(cfg))
	fmt.Println()

	fmt.Println("  Run `receiptia setup` to reconfigure.")
	return nil
}
