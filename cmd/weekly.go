package cmd

import (
	"fmt"

	"github.com/receiptia/receiptia/internal/analysis"
	"github.com/receiptia/receiptia/internal/cli"
	"github.com/receiptia/receiptia/internal/model"

	"github.com/spf13/cobra"
)

var weeklyCmd = &cobra.Command{
	Use:   "weekly",
	Short: "Monday to Sunday breakdown of the current week",
	RunE:  runWeekly,
}

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "How this week's spending ranks against other users",
	RunE:  runCompare,
}

func init() {
	rootCmd.AddCommand(weeklyCmd)
	rootCmd.AddCommand(compareCmd)
}

func runWeekly(_ *cobra.Command, _ []string) error {
	env, err := newEnv()
	if err != nil {
		return err
	}
	expenses, result, err := loadFiltered(env)
	if err != nil || expenses == nil {
		return err
	}

	week := analysis.AggregateWeek(expenses, analysis.StartOfWeek(env.now))

	fmt.Println()
	fmt.Println(cli.RenderTitle("THIS WEEK"))
	printWeek(week, env.currency)
	fmt.Print(cli.RenderComparison(analysis.Compare(week.Total())))
	fmt.Println()

	printFileWarnings(result)
	return nil
}

func runCompare(_ *cobra.Command, _ []string) error {
	env, err := newEnv()
	if err != nil {
		return err
	}
	expenses, result, err := loadFiltered(env)
	if err != nil || expenses == nil {
		return err
	}

	week := analysis.AggregateWeek(expenses, analysis.StartOfWeek(env.now))
	total := week.Total()
	cmp := analysis.Compare(total)

	fmt.Println()
	fmt.Println(cli.RenderTitle("COMPARE"))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Week", week.RangeLabel()},
			{"Spent", cli.FormatMoney(total, env.currency)},
			{"z-score", analysis.ZScore(total).StringFixed(2)},
			{"Percentile", fmt.Sprintf("%d", cmp.Percentile)},
		},
	}))
	fmt.Print(cli.RenderComparison(cmp))
	fmt.Println()

	printFileWarnings(result)
	return nil
}

// printWeek renders the seven days with a bar per day and the peak marked.
func printWeek(week model.WeeklySpending, currency string) {
	peak, _ := week.PeakDay()
	peakF := peak.Amount.InexactFloat64()

	rows := make([][]string, 0, len(week.Days)+3)
	for _, d := range week.Days {
		marker := ""
		if d.Amount.IsPositive() && d.Date.Equal(peak.Date) {
			marker = " ▲"
		}
		rows = append(rows, []string{
			d.DayAbbreviation,
			d.Date.Format("Jan 2"),
			cli.FormatMoney(d.Amount, currency),
			cli.RenderHorizontalBar(d.Amount.InexactFloat64(), peakF, 24) + marker,
		})
	}
	rows = append(rows,
		[]string{"---"},
		[]string{"Total", "", cli.FormatMoney(week.Total(), currency), ""},
		[]string{"Avg/day", "", cli.FormatMoney(week.Average(), currency), ""},
	)

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   week.RangeLabel(),
		Headers: []string{"Day", "Date", "Spent", ""},
		Rows:    rows,
	}))
}
