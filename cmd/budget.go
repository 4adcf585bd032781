package cmd

import (
	"fmt"
	"strings"

	"github.com/receiptia/receiptia/internal/analysis"
	"github.com/receiptia/receiptia/internal/cli"
	"github.com/receiptia/receiptia/internal/model"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Month-to-date spend against the monthly budget",
	RunE:  runBudget,
}

func init() {
	rootCmd.AddCommand(budgetCmd)
}

func runBudget(_ *cobra.Command, _ []string) error {
	env, err := newEnv()
	if err != nil {
		return err
	}
	expenses, result, err := loadFiltered(env)
	if err != nil || expenses == nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("BUDGET  " + env.now.Format("January 2006")))
	fmt.Println()
	printBudget(analysis.ComputeBudget(expenses, env.budget, env.now), env.currency)

	if env.cfg.Budget.Monthly == nil {
		fmt.Println("  Using the default budget. Set yours with `receiptia setup`.")
		fmt.Println()
	}

	printFileWarnings(result)
	return nil
}

func printBudget(b model.BudgetStats, currency string) {
	pct := b.BudgetUsedPercent / 100
	bar := budgetBar(pct, 24)

	projected := cli.FormatMoney(b.ProjectedMonthly, currency)
	if b.OverBudget() {
		projected = lipgloss.NewStyle().Foreground(cli.ColorRed).Render(projected + "  over budget")
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Budget",
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Monthly budget", cli.FormatMoney(b.MonthlyBudget, currency)},
			{"Spent so far", cli.FormatMoney(b.CurrentSpend, currency)},
			{"Used", bar + " " + cli.FormatPercent(b.BudgetUsedPercent)},
			{"Daily burn", cli.FormatMoney(b.DailyBurnRate, currency) + "/day"},
			{"Projected", projected},
			{"Days remaining", fmt.Sprintf("%d", b.DaysRemaining)},
		},
	}))
}

// budgetBar renders a bar coloured by how much of the budget is used.
func budgetBar(pct float64, width int) string {
	filled := int(max(0, min(pct, 1)) * float64(width))

	color := cli.ColorGreen
	switch {
	case pct >= 1:
		color = cli.ColorRed
	case pct >= 0.8:
		color = cli.ColorOrange
	case pct >= 0.6:
		color = cli.ColorYellow
	}

	barStyle := lipgloss.NewStyle().Foreground(color)
	dimStyle := lipgloss.NewStyle().Foreground(cli.ColorTextDim)
	return barStyle.Render(strings.Repeat("█", filled)) +
		dimStyle.Render(strings.Repeat("░", width-filled))
}
