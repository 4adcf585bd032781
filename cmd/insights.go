package cmd

import (
	"fmt"

	"github.com/receiptia/receiptia/internal/analysis"
	"github.com/receiptia/receiptia/internal/cli"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var flagNoSamples bool

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Night purchases, focus suggestions, savings and forgotten subscriptions",
	RunE:  runInsights,
}

func init() {
	insightsCmd.Flags().BoolVar(&flagNoSamples, "no-samples", false, "Do not show example insights when none apply")
	rootCmd.AddCommand(insightsCmd)
}

func runInsights(_ *cobra.Command, _ []string) error {
	env, err := newEnv()
	if err != nil {
		return err
	}
	expenses, result, err := loadFiltered(env)
	if err != nil || expenses == nil {
		return err
	}

	report := env.analyze(expenses)

	fmt.Println()
	fmt.Println(cli.RenderTitle(env.title("INSIGHTS")))

	if report.Insights.Empty() && flagNoSamples {
		fmt.Println("\n  Nothing stands out in this range.")
		fmt.Println()
		printFileWarnings(result)
		return nil
	}
	printInsights(report, env)

	if total := report.Insights.PotentialSavings(); total.IsPositive() {
		green := lipgloss.NewStyle().Foreground(cli.ColorGreen).Bold(true)
		fmt.Printf("  Potential savings: %s\n\n", green.Render(cli.FormatMoney(total, env.currency)))
	}

	printFileWarnings(result)
	return nil
}

// printInsights renders the report's insights, or the example cards when
// the set is empty.
func printInsights(report analysis.Report, env *runEnv) {
	insights, samples := cli.InsightsOrSamples(report.Insights, env.now, env.currency)

	fmt.Println()
	if samples {
		dim := lipgloss.NewStyle().Foreground(cli.ColorTextDim).Italic(true)
		fmt.Println("  " + dim.Render("No patterns yet. Here is what insights look like:"))
		fmt.Println()
	}
	for _, in := range insights {
		fmt.Print(cli.RenderInsight(in, env.currency))
		fmt.Println()
	}
}
