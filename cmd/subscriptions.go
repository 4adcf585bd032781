package cmd

import (
	"fmt"

	"github.com/receiptia/receiptia/internal/analysis"
	"github.com/receiptia/receiptia/internal/cli"
	"github.com/receiptia/receiptia/internal/model"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var subscriptionsCmd = &cobra.Command{
	Use:   "subscriptions",
	Short: "Recurring subscription charges you may have forgotten",
	RunE:  runSubscriptions,
}

func init() {
	rootCmd.AddCommand(subscriptionsCmd)
}

func runSubscriptions(_ *cobra.Command, _ []string) error {
	env, err := newEnv()
	if err != nil {
		return err
	}
	expenses, result, err := loadFiltered(env)
	if err != nil || expenses == nil {
		return err
	}

	groups := analysis.RecurringSubscriptions(env.window.Filter(expenses))

	fmt.Println()
	fmt.Println(cli.RenderTitle(env.title("SUBSCRIPTIONS")))
	fmt.Println()

	if len(groups) == 0 {
		fmt.Println("  No merchant charged you more than once for a subscription in this range.")
		fmt.Println()
		printFileWarnings(result)
		return nil
	}

	monthly := decimal.Zero
	rows := make([][]string, 0, len(groups)+2)
	for _, g := range groups {
		charge := g.MonthlyCharge()
		monthly = monthly.Add(charge)
		rows = append(rows, []string{
			g.Merchant,
			cli.FormatNumber(int64(len(g.Expenses))),
			cli.FormatMoney(model.SumAmounts(g.Expenses), env.currency),
			cli.FormatMoney(charge, env.currency),
			cli.FormatRelative(g.Expenses[len(g.Expenses)-1].Timestamp, env.now),
		})
	}
	rows = append(rows,
		[]string{"---"},
		[]string{"Monthly", "", "", cli.FormatMoney(monthly, env.currency), ""},
	)

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Merchant", "Charges", "Total", "Per month", "Last"},
		Rows:    rows,
	}))

	printFileWarnings(result)
	return nil
}
