package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/reposcope/reposcope/internal/busfactor"
)

var busfactorLimit int

var busfactorCmd = &cobra.Command{
	Use:   "busfactor",
	Short: "Analyze knowledge distribution across contributors",
	Long: `Computes the per-file bus factor: how many contributors hold a
significant share of a file's history. Single-owner files are knowledge
risks, worse when they are stale or widely depended upon.`,
	RunE: runBusFactor,
}

func init() {
	busfactorCmd.Flags().IntVar(&busfactorLimit, "limit", 15, "maximum files to show")
}

func runBusFactor(cmd *cobra.Command, args []string) error {
	g, err := loadGraph()
	if err != nil {
		return err
	}

	miner, closeCache := newMiner()
	defer closeCache()
	stats := miner.StatsBatch(context.Background(), g.FilePaths())

	result := busfactor.Analyze(stats, cfg.BusFactor, time.Now())
	if jsonOut {
		return printJSON(result)
	}

	fmt.Printf("🚌 Knowledge Distribution\n")
	fmt.Printf("%s\n", strings.Repeat("═", 50))

	if result.AnalyzedFiles == 0 {
		fmt.Printf("\nNo git history available - nothing to analyze.\n")
		return nil
	}

	fmt.Printf("\nOverall bus factor: %.1f across %s.\n",
		result.OverallBusFactor, plural(result.AnalyzedFiles, "file"))

	shown := result.Files
	if len(shown) > busfactorLimit {
		shown = shown[:busfactorLimit]
	}
	fmt.Printf("\nRiskiest files:\n")
	for _, f := range shown {
		fmt.Printf("  [%-8s] bf=%d  %s (top: %s %.0f%%)\n",
			f.RiskLevel, f.BusFactor, f.Path, f.TopOwner, f.TopOwnerShare*100)
	}

	if len(result.TopOwners) > 0 {
		fmt.Printf("\nTop owners:\n")
		for _, o := range result.TopOwners {
			fmt.Printf("  %s - top contributor on %s (%s)\n",
				o.Name, plural(o.FilesOwned, "file"), plural(o.Commits, "commit"))
		}
	}

	if len(result.Insights) > 0 {
		fmt.Printf("\n💡 Insights:\n")
		for _, in := range result.Insights {
			fmt.Printf("  - %s\n", in)
		}
	}
	return nil
}
