package cmd

import (
	"fmt"

	"github.com/receiptia/receiptia/internal/analysis"
	"github.com/receiptia/receiptia/internal/cli"
	"github.com/receiptia/receiptia/internal/pipeline"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var hourlyCmd = &cobra.Command{
	Use:   "hourly",
	Short: "Spending by hour of day",
	RunE:  runHourly,
}

func init() {
	rootCmd.AddCommand(hourlyCmd)
}

func runHourly(_ *cobra.Command, _ []string) error {
	env, err := newEnv()
	if err != nil {
		return err
	}
	expenses, result, err := loadFiltered(env)
	if err != nil || expenses == nil {
		return err
	}

	hours := pipeline.AggregateHourly(expenses, env.window)

	fmt.Println()
	fmt.Println(cli.RenderTitle(env.title("SPENDING BY HOUR") + " (local time)"))
	fmt.Println()

	maxTotal := 0.0
	peakHour := 0
	for _, h := range hours {
		if v := h.Total.InexactFloat64(); v > maxTotal {
			maxTotal = v
			peakHour = h.Hour
		}
	}

	night := lipgloss.NewStyle().Foreground(cli.ColorPurple)
	day := lipgloss.NewStyle().Foreground(cli.ColorAccent)

	const maxBarWidth = 40
	for _, h := range hours {
		bar := cli.RenderHorizontalBar(h.Total.InexactFloat64(), maxTotal, maxBarWidth)
		style := day
		if analysis.IsNightHour(h.Hour) {
			style = night
		}
		fmt.Printf("  %02d:00 │ %10s │ %s\n", h.Hour, cli.FormatMoney(h.Total, env.currency), style.Render(bar))
	}

	if maxTotal > 0 {
		fmt.Printf("\n  Peak: %02d:00 (%s)\n\n",
			peakHour, cli.FormatMoney(hours[peakHour].Total, env.currency))
	}

	printFileWarnings(result)
	return nil
}
