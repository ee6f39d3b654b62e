package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/reposcope/reposcope/internal/busfactor"
	"github.com/reposcope/reposcope/internal/cost"
	"github.com/reposcope/reposcope/internal/cycles"
)

var costCmd = &cobra.Command{
	Use:   "cost",
	Short: "Estimate the dollar cost of carrying current technical debt",
	Long: `Prices four debt categories - complexity/churn hotspots, single-owner
knowledge risk, import cycles and dead exported code - at the configured
hourly rate, and surfaces quick wins with the best return per fix hour.`,
	RunE: runCost,
}

func runCost(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	g, err := loadGraph()
	if err != nil {
		return err
	}

	miner, closeCache := newMiner()
	defer closeCache()
	commits := miner.Log(ctx)
	stats := miner.StatsBatch(ctx, g.FilePaths())

	result := cost.Estimate(cost.Inputs{
		Graph:    g,
		Commits:  commits,
		BusRisks: busfactor.Analyze(stats, cfg.BusFactor, time.Now()),
		Cycles:   cycles.Detect(g),
	}, cfg.Cost, logger)

	if jsonOut {
		return printJSON(result)
	}

	fmt.Printf("💰 Technical Debt Cost\n")
	fmt.Printf("%s\n", strings.Repeat("═", 50))
	fmt.Printf("\nTotal: $%.0f (%.1f hours at $%.0f/h)\n",
		result.TotalCost, result.TotalHours, result.HourlyRate)

	fmt.Printf("\nBy category:\n")
	for _, cc := range result.Categories {
		if !cc.Available {
			fmt.Printf("  %-10s unavailable: %s\n", cc.Name, cc.Reason)
			continue
		}
		fmt.Printf("  %-10s $%.0f (%.1fh, %s)\n", cc.Name, cc.Cost, cc.Hours, plural(len(cc.Items), "finding"))
	}

	if len(result.PerFile) > 0 {
		fmt.Printf("\nMost expensive files:\n")
		shown := result.PerFile
		if len(shown) > 10 {
			shown = shown[:10]
		}
		for _, fc := range shown {
			fmt.Printf("  $%-8.0f %s\n", fc.Cost, fc.File)
		}
	}

	if len(result.QuickWins) > 0 {
		fmt.Printf("\n⚡ Quick wins:\n")
		for _, w := range result.QuickWins {
			fmt.Printf("  %s (%s, %.1fh, $%.0f) - %s\n", w.File, w.Category, w.Hours, w.Cost, w.Detail)
		}
	}
	return nil
}
