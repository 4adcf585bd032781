package cmd

import (
	"fmt"

	"github.com/receiptia/receiptia/internal/cli"
	"github.com/receiptia/receiptia/internal/pipeline"

	"github.com/spf13/cobra"
)

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Daily spending table",
	RunE:  runDaily,
}

func init() {
	rootCmd.AddCommand(dailyCmd)
}

func runDaily(_ *cobra.Command, _ []string) error {
	env, err := newEnv()
	if err != nil {
		return err
	}
	expenses, result, err := loadFiltered(env)
	if err != nil || expenses == nil {
		return err
	}

	days := pipeline.AggregateDays(expenses, env.window)
	if len(days) == 0 {
		fmt.Println("\n  No data for the selected period.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(env.title("DAILY SPENDING")))
	fmt.Println()

	rows := make([][]string, 0, len(days))
	trend := make([]float64, len(days))
	for i, d := range days {
		rows = append(rows, []string{
			d.Date.Format("2006-01-02"),
			cli.FormatDayOfWeek(int(d.Date.Weekday())),
			cli.FormatNumber(int64(d.Expenses)),
			cli.FormatMoney(d.Total, env.currency),
			cli.FormatNumber(int64(d.NightCount)),
			cli.FormatNumber(int64(d.Impulsive)),
		})
		// days are newest first; the sparkline reads left to right
		trend[len(days)-1-i] = d.Total.InexactFloat64()
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Date", "Day", "Expenses", "Spent", "Night", "Impulsive"},
		Rows:    rows,
	}))
	if len(days) > 1 {
		fmt.Printf("  Trend: %s\n\n", cli.RenderSparkline(trend))
	}

	printFileWarnings(result)
	return nil
}
