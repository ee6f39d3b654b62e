package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reposcope/reposcope/internal/coupling"
)

var couplingLimit int

var couplingCmd = &cobra.Command{
	Use:   "coupling",
	Short: "Find files that change together in git history",
	Long: `Mines commit history for file pairs that change together, then checks
each pair against the import graph: coupled files with no structural link
are hidden dependencies; linked files that rarely co-change are suspicious.`,
	RunE: runCoupling,
}

func init() {
	couplingCmd.Flags().IntVar(&couplingLimit, "limit", 20, "maximum pairs to show")
}

func runCoupling(cmd *cobra.Command, args []string) error {
	g, err := loadGraph()
	if err != nil {
		return err
	}

	miner, closeCache := newMiner()
	defer closeCache()
	commits := miner.Log(context.Background())

	result := coupling.Analyze(g, commits, cfg.Coupling)
	if jsonOut {
		return printJSON(result)
	}

	fmt.Printf("🔗 Change Coupling\n")
	fmt.Printf("%s\n", strings.Repeat("═", 50))
	fmt.Printf("\nAnalyzed %s.\n", plural(result.AnalyzedCommits, "commit"))

	if len(result.Pairs) == 0 {
		fmt.Printf("No coupled pairs above strength %.2f.\n", cfg.Coupling.MinStrength)
		return nil
	}

	shown := result.Pairs
	if len(shown) > couplingLimit {
		shown = shown[:couplingLimit]
	}
	for _, p := range shown {
		marker := "  "
		if p.Classification == coupling.Hidden {
			marker = "⚠️ "
		}
		fmt.Printf("%s%.2f  %s ↔ %s (%d co-changes, %s)\n",
			marker, p.Strength, p.FileA, p.FileB, p.CoChanges, p.Classification)
	}

	if len(result.Recommendations) > 0 {
		fmt.Printf("\n💡 Recommendations:\n")
		for _, r := range result.Recommendations {
			fmt.Printf("  - %s\n", r)
		}
	}
	return nil
}
