package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reposcope/reposcope/internal/report"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Run every analyzer and emit one combined report",
	Long: `Runs cycle detection, change coupling, knowledge distribution and cost
estimation concurrently over the knowledge graph. A failing analyzer is
marked unavailable; the rest of the report still comes back.`,
	RunE: runReport,
}

func runReport(cmd *cobra.Command, args []string) error {
	g, err := loadGraph()
	if err != nil {
		return err
	}

	miner, closeCache := newMiner()
	defer closeCache()

	gen := report.NewGenerator(cfg, miner, logger)
	rep := gen.Generate(context.Background(), g)

	if jsonOut {
		return printJSON(rep)
	}

	fmt.Printf("📊 Repository Report\n")
	fmt.Printf("%s\n", strings.Repeat("═", 50))
	fmt.Printf("\nGenerated: %s\n", rep.GeneratedAt.Format("2006-01-02 15:04:05"))

	if rep.Cycles != nil {
		fmt.Printf("\nCycles: %d (affecting %s)\n",
			rep.Cycles.TotalCycles, plural(len(rep.Cycles.AffectedFiles), "file"))
	}
	if rep.Coupling != nil {
		fmt.Printf("Coupled pairs: %d (%d hidden)\n", len(rep.Coupling.Pairs), rep.Coupling.HiddenCount)
	}
	if rep.BusFactor != nil {
		fmt.Printf("Bus factor: %.1f over %s\n",
			rep.BusFactor.OverallBusFactor, plural(rep.BusFactor.AnalyzedFiles, "file"))
	}
	if len(rep.Contributors) > 0 {
		fmt.Printf("Top contributors:")
		for _, c := range rep.Contributors {
			fmt.Printf(" %s (%d)", c.Name, c.Commits)
		}
		fmt.Printf("\n")
	}
	if rep.Cost != nil {
		fmt.Printf("Debt cost: $%.0f (%s)\n", rep.Cost.TotalCost, plural(len(rep.Cost.QuickWins), "quick win"))
	}

	if !rep.Healthy() {
		fmt.Printf("\n⚠️  Unavailable sections:\n")
		for section, reason := range rep.Unavailable {
			fmt.Printf("  %s: %s\n", section, reason)
		}
	}
	return nil
}
