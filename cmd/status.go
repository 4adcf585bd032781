package cmd

import (
	"fmt"

	"github.com/receiptia/receiptia/internal/analysis"
	"github.com/receiptia/receiptia/internal/cli"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "How much you spent in the range, compared with yesterday",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(_ *cobra.Command, _ []string) error {
	env, err := newEnv()
	if err != nil {
		return err
	}
	expenses, result, err := loadFiltered(env)
	if err != nil || expenses == nil {
		return err
	}

	status := analysis.ComposeStatus(env.window.Filter(expenses), env.now)

	fmt.Println()
	fmt.Println(cli.RenderTitle(env.title("STATUS")))
	fmt.Println()
	fmt.Print(cli.RenderStatus(status, env.currency, env.rng.Label()))
	fmt.Println()

	printFileWarnings(result)
	return nil
}
