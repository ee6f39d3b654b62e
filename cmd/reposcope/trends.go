package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/reposcope/reposcope/internal/history"
	"github.com/reposcope/reposcope/internal/trends"
)

var trendsPeriod string

var trendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "Compare health snapshots over time",
	RunE:  runTrends,
}

func init() {
	trendsCmd.Flags().StringVar(&trendsPeriod, "period", "all", "window to compare: day, week, month or all")
}

func runTrends(cmd *cobra.Command, args []string) error {
	period, err := trends.ParsePeriod(trendsPeriod)
	if err != nil {
		return err
	}

	snaps, err := history.NewStore(cfg.History.MaxSnapshots, logger).LoadAll(rootDir)
	if err != nil {
		return err
	}

	result, err := trends.Analyze(snaps, period, cfg.Trends, time.Now())
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(result)
	}

	fmt.Printf("📈 Health Trends (%s)\n", result.Period)
	fmt.Printf("%s\n", strings.Repeat("═", 50))
	fmt.Printf("\n%s %s: %.1f → %.1f (%+.1f)\n",
		directionEmoji(result.Direction), result.Direction,
		result.HealthOld, result.HealthNew, result.HealthChange)
	fmt.Printf("From %s to %s, %s.\n",
		result.From.Format("2006-01-02"), result.To.Format("2006-01-02"),
		plural(result.Snapshots, "snapshot"))

	fmt.Printf("\nMetrics:\n")
	for _, m := range result.Metrics {
		fmt.Printf("  %-14s %10.1f → %-10.1f (%+.1f%%)\n", m.Name, m.Old, m.New, m.ChangePercent)
	}

	if len(result.Insights) > 0 {
		fmt.Printf("\n💡 Insights:\n")
		for _, in := range result.Insights {
			fmt.Printf("  - %s\n", in)
		}
	}
	return nil
}

func directionEmoji(d trends.Direction) string {
	switch d {
	case trends.DirectionImproving:
		return "📈"
	case trends.DirectionDeclining:
		return "📉"
	}
	return "➡️"
}
