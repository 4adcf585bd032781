package cmd

import (
	"errors"
	"fmt"

	"github.com/receiptia/receiptia/internal/config"
	"github.com/receiptia/receiptia/internal/pipeline"
	"github.com/receiptia/receiptia/internal/tui"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		// A broken config should not block reconfiguring it.
		cfg = config.DefaultConfig()
	}

	dataDir := flagDataDir
	if dataDir == "" {
		dataDir = config.DataDir(cfg)
	}
	count := 0
	if result, err := pipeline.Load(pipeline.LoadOptions{DataDir: dataDir}); err == nil {
		count = len(result.Expenses)
	}

	vals := tui.DefaultSetupValues(cfg)
	form := tui.NewSetupForm(count, dataDir, vals)
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("  Setup cancelled, nothing saved.")
			return nil
		}
		return fmt.Errorf("setup form: %w", err)
	}

	tui.ApplySetup(&cfg, *vals)
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.ConfigPath())
	fmt.Println("  Run `receiptia setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}
