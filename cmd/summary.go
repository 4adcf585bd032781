package cmd

import (
	"fmt"

	"github.com/receiptia/receiptia/internal/analysis"
	"github.com/receiptia/receiptia/internal/cli"
	"github.com/receiptia/receiptia/internal/model"
	"github.com/receiptia/receiptia/internal/pipeline"

	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Full spending report: status, insights, week, budget",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(_ *cobra.Command, _ []string) error {
	env, err := newEnv()
	if err != nil {
		return err
	}
	expenses, result, err := loadFiltered(env)
	if err != nil || expenses == nil {
		return err
	}

	report := env.analyze(expenses)
	stats := pipeline.Summarize(expenses, env.window)
	prev := pipeline.Summarize(expenses, env.window.Previous())

	fmt.Println()
	fmt.Println(cli.RenderTitle(env.title("RECEIPTIA")))
	fmt.Println()
	fmt.Print(cli.RenderStatus(report.Status, env.currency, env.rng.Label()))
	fmt.Println()

	fmt.Print(cli.RenderTable(summaryTable(stats, prev, env.currency)))

	printInsights(report, env)
	printWeek(report.Weekly, env.currency)
	fmt.Print(cli.RenderComparison(report.Comparison))
	fmt.Println()
	printBudget(analysis.ComputeBudget(expenses, env.budget, env.now), env.currency)

	printFileWarnings(result)
	return nil
}

func summaryTable(stats, prev model.SummaryStats, currency string) cli.Table {
	total := cli.FormatMoney(stats.Total, currency)
	if prev.Expenses > 0 {
		total += fmt.Sprintf("  (%s vs previous)", cli.FormatDelta(stats.Total.Sub(prev.Total), currency))
	}

	nightPct := 0.0
	if stats.Expenses > 0 {
		nightPct = 100 * float64(stats.NightCount) / float64(stats.Expenses)
	}

	return cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Expenses", cli.FormatNumber(int64(stats.Expenses))},
			{"Total", total},
			{"Active days", cli.FormatNumber(int64(stats.ActiveDays))},
			{"Per active day", cli.FormatMoney(stats.PerActiveDay, currency)},
			{"Largest", cli.FormatMoney(stats.Largest, currency)},
			{"---"},
			{"Night purchases", fmt.Sprintf("%d  (%s)", stats.NightCount, cli.FormatPercent(nightPct))},
			{"Impulsive", cli.FormatNumber(int64(stats.Impulsive))},
		},
	}
}
