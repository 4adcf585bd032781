package cmd

import (
	"fmt"

	"github.com/receiptia/receiptia/internal/cli"
	"github.com/receiptia/receiptia/internal/pipeline"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var flagTopMerchants int

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Spending by category and top merchants",
	RunE:  runCategories,
}

func init() {
	categoriesCmd.Flags().IntVar(&flagTopMerchants, "top", 10, "Number of merchants to show")
	rootCmd.AddCommand(categoriesCmd)
}

func runCategories(_ *cobra.Command, _ []string) error {
	env, err := newEnv()
	if err != nil {
		return err
	}
	expenses, result, err := loadFiltered(env)
	if err != nil || expenses == nil {
		return err
	}

	cats := pipeline.AggregateCategories(expenses, env.window)
	if len(cats) == 0 {
		fmt.Println("\n  No data for the selected period.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(env.title("CATEGORIES")))
	fmt.Println()

	maxTotal := cats[0].Total.InexactFloat64()
	rows := make([][]string, 0, len(cats))
	for _, c := range cats {
		bar := lipgloss.NewStyle().Foreground(cli.HexColor(c.Category.ColorHex())).
			Render(cli.RenderHorizontalBar(c.Total.InexactFloat64(), maxTotal, 20))
		rows = append(rows, []string{
			c.Category.Label(),
			cli.FormatNumber(int64(c.Expenses)),
			cli.FormatMoney(c.Total, env.currency),
			cli.FormatPercent(c.SharePercent),
			bar,
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Category", "Expenses", "Spent", "Share", ""},
		Rows:    rows,
	}))

	merchants := pipeline.AggregateMerchants(expenses, env.window)
	if n := flagTopMerchants; n > 0 && len(merchants) > n {
		merchants = merchants[:n]
	}
	if len(merchants) > 0 {
		mrows := make([][]string, 0, len(merchants))
		for _, m := range merchants {
			mrows = append(mrows, []string{
				m.Merchant,
				m.Category.Label(),
				cli.FormatNumber(int64(m.Expenses)),
				cli.FormatMoney(m.Total, env.currency),
				cli.FormatRelative(m.Last, env.now),
			})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Top merchants",
			Headers: []string{"Merchant", "Category", "Expenses", "Spent", "Last"},
			Rows:    mrows,
		}))
	}

	printFileWarnings(result)
	return nil
}
